package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/revenuefox/revenuefox/internal/pkg/env"
)

const (
	defaultStripeAuthorizeURL = "https://connect.stripe.com/oauth/authorize"
	defaultStripeTokenURL     = "https://connect.stripe.com/oauth/token"
	defaultStripeAPIBaseURL   = "https://api.stripe.com/v1"
)

// StripeClient talks to Stripe Connect OAuth and the charges API.
type StripeClient struct {
	ClientID     string
	ClientSecret string

	AuthorizeURLBase string
	TokenURL         string
	APIBaseURL       string

	HTTPClient *http.Client
}

func NewStripeClientFromEnv() *StripeClient {
	return &StripeClient{
		ClientID:         strings.TrimSpace(env.GetEnv("STRIPE_CLIENT_ID", "")),
		ClientSecret:     strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		AuthorizeURLBase: strings.TrimSpace(env.GetEnv("STRIPE_AUTHORIZE_URL", defaultStripeAuthorizeURL)),
		TokenURL:         strings.TrimSpace(env.GetEnv("STRIPE_TOKEN_URL", defaultStripeTokenURL)),
		APIBaseURL:       strings.TrimSpace(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *StripeClient) AuthorizeURL(redirectURI string) (string, error) {
	if strings.TrimSpace(c.ClientID) == "" {
		return "", fmt.Errorf("STRIPE_CLIENT_ID is missing: %w", ErrProviderNotConfigured)
	}
	u, err := url.Parse(c.AuthorizeURLBase)
	if err != nil {
		return "", fmt.Errorf("invalid STRIPE_AUTHORIZE_URL: %w", err)
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", c.ClientID)
	q.Set("scope", "read_write")
	q.Set("redirect_uri", redirectURI)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// AuthorizeURLWithState attaches the CSRF state parameter the connect flow
// stores in the session.
func (c *StripeClient) AuthorizeURLWithState(redirectURI, state string) (string, error) {
	raw, err := c.AuthorizeURL(redirectURI)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExchangeCode runs the Stripe Connect authorization_code grant. Stripe does
// not echo the redirect URI back and issues no refresh token in this flow;
// the stripe_user_id identifies the connected account.
func (c *StripeClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	_ = redirectURI
	if strings.TrimSpace(c.ClientSecret) == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is missing: %w", ErrProviderNotConfigured)
	}
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("oauth code is required")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", strings.TrimSpace(code))
	form.Set("client_secret", c.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TokenExchangeError{Provider: ProviderStripe, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		StripeUserID string `json:"stripe_user_id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return nil, errors.New("stripe token exchange returned empty access_token")
	}
	return &Token{
		AccessToken:    out.AccessToken,
		RefreshToken:   out.RefreshToken,
		ProviderUserID: out.StripeUserID,
	}, nil
}

// StripeCharge is the subset of a charge object the normalizer needs.
// Created is unix seconds, Amount is in minor units (cents).
type StripeCharge struct {
	Created  int64 `json:"created"`
	Amount   int64 `json:"amount"`
	Paid     bool  `json:"paid"`
	Refunded bool  `json:"refunded"`
}

// FetchCharges lists recent charges with the connected account's token.
func (c *StripeClient) FetchCharges(ctx context.Context, accessToken string) ([]StripeCharge, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, errors.New("access token is required")
	}

	u, err := url.Parse(strings.TrimRight(c.APIBaseURL, "/") + "/charges")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("limit", "100")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIFetchError{Provider: ProviderStripe, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out struct {
		Data []StripeCharge `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *StripeClient) FetchDailyRevenue(ctx context.Context, accessToken string) (*Series, error) {
	charges, err := c.FetchCharges(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return NormalizeStripeCharges(charges), nil
}

// NormalizeStripeCharges aggregates paid, non-refunded charges into daily
// revenue. Amounts convert from cents to major units.
func NormalizeStripeCharges(charges []StripeCharge) *Series {
	agg := newDayAggregator()
	for _, ch := range charges {
		if !ch.Paid || ch.Refunded {
			continue
		}
		if ch.Created <= 0 {
			continue
		}
		agg.add(time.Unix(ch.Created, 0), float64(ch.Amount)/100)
	}
	return agg.series()
}
