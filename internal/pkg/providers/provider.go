package providers

import (
	"context"
	"fmt"
	"strings"
)

// Provider identifies one of the supported payment platforms. The set is
// closed; ParseProvider is the only way callers should obtain a value.
type Provider string

const (
	ProviderStripe       Provider = "stripe"
	ProviderGumroad      Provider = "gumroad"
	ProviderPayPal       Provider = "paypal"
	ProviderLemonSqueezy Provider = "lemonsqueezy"
)

// Info is the per-provider configuration consumed by the UI layer.
type Info struct {
	DisplayName string
	ConnectPath string
}

// Registry replaces per-provider switch statements in handlers and views
// with a single lookup table. Iterate via All() for stable ordering.
var Registry = map[Provider]Info{
	ProviderStripe:       {DisplayName: "Stripe", ConnectPath: "/integrations/stripe/connect"},
	ProviderGumroad:      {DisplayName: "Gumroad", ConnectPath: "/integrations/gumroad/connect"},
	ProviderPayPal:       {DisplayName: "PayPal", ConnectPath: "/integrations/paypal/connect"},
	ProviderLemonSqueezy: {DisplayName: "Lemon Squeezy", ConnectPath: "/integrations/lemonsqueezy/connect"},
}

// All returns the providers in a fixed display order.
func All() []Provider {
	return []Provider{ProviderStripe, ProviderGumroad, ProviderPayPal, ProviderLemonSqueezy}
}

// ParseProvider validates a provider name from a route parameter.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := Registry[p]; !ok {
		return "", fmt.Errorf("unknown provider %q", s)
	}
	return p, nil
}

// Token is the credential fragment returned by a successful code exchange.
// RefreshToken and ProviderUserID are empty for providers that do not issue
// them (Stripe Connect returns a stripe_user_id, Gumroad returns neither).
type Token struct {
	AccessToken    string
	RefreshToken   string
	ProviderUserID string
}

// Client is the capability set every payment provider implements. One
// concrete implementation exists per provider; selection happens through
// ClientFor with the Provider tag.
type Client interface {
	// AuthorizeURL deterministically builds the provider's authorization
	// endpoint URL for the given redirect URI. No network call.
	AuthorizeURL(redirectURI string) (string, error)
	// AuthorizeURLWithState is AuthorizeURL with a CSRF state parameter
	// attached. The callback must see the same value come back.
	AuthorizeURLWithState(redirectURI, state string) (string, error)
	// ExchangeCode performs the authorization_code grant against the
	// provider's token endpoint.
	ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error)
	// FetchDailyRevenue calls the provider's transaction listing API with the
	// stored access token and normalizes the result into a daily series.
	FetchDailyRevenue(ctx context.Context, accessToken string) (*Series, error)
}

// ClientFor returns the concrete client for a provider, constructed from the
// environment. Lemon Squeezy has no OAuth endpoints yet and yields a stub
// whose methods fail with ErrProviderNotImplemented.
func ClientFor(p Provider) (Client, error) {
	switch p {
	case ProviderStripe:
		return NewStripeClientFromEnv(), nil
	case ProviderGumroad:
		return NewGumroadClientFromEnv(), nil
	case ProviderPayPal:
		return NewPayPalClientFromEnv(), nil
	case ProviderLemonSqueezy:
		return lemonSqueezyClient{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", p)
	}
}
