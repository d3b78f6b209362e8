package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/revenuefox/revenuefox/internal/pkg/env"
)

const (
	defaultGumroadAuthorizeURL = "https://gumroad.com/oauth/authorize"
	defaultGumroadTokenURL     = "https://gumroad.com/oauth/token"
	defaultGumroadAPIBaseURL   = "https://api.gumroad.com/v2"
)

// GumroadClient talks to Gumroad OAuth and the sales API.
type GumroadClient struct {
	ClientID     string
	ClientSecret string

	AuthorizeURLBase string
	TokenURL         string
	APIBaseURL       string

	HTTPClient *http.Client
}

func NewGumroadClientFromEnv() *GumroadClient {
	return &GumroadClient{
		ClientID:         strings.TrimSpace(env.GetEnv("GUMROAD_CLIENT_ID", "")),
		ClientSecret:     strings.TrimSpace(env.GetEnv("GUMROAD_CLIENT_SECRET", "")),
		AuthorizeURLBase: strings.TrimSpace(env.GetEnv("GUMROAD_AUTHORIZE_URL", defaultGumroadAuthorizeURL)),
		TokenURL:         strings.TrimSpace(env.GetEnv("GUMROAD_TOKEN_URL", defaultGumroadTokenURL)),
		APIBaseURL:       strings.TrimSpace(env.GetEnv("GUMROAD_API_BASE_URL", defaultGumroadAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *GumroadClient) AuthorizeURL(redirectURI string) (string, error) {
	if strings.TrimSpace(c.ClientID) == "" {
		return "", fmt.Errorf("GUMROAD_CLIENT_ID is missing: %w", ErrProviderNotConfigured)
	}
	u, err := url.Parse(c.AuthorizeURLBase)
	if err != nil {
		return "", fmt.Errorf("invalid GUMROAD_AUTHORIZE_URL: %w", err)
	}
	q := u.Query()
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "view_sales")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// AuthorizeURLWithState attaches the CSRF state parameter the connect flow
// stores in the session.
func (c *GumroadClient) AuthorizeURLWithState(redirectURI, state string) (string, error) {
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

// ExchangeCode runs the authorization_code grant. Gumroad wants the client
// secret and the redirect URI in the form body.
func (c *GumroadClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return nil, fmt.Errorf("GUMROAD_CLIENT_ID/GUMROAD_CLIENT_SECRET are missing: %w", ErrProviderNotConfigured)
	}
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("oauth code is required")
	}

	form := url.Values{}
	form.Set("code", strings.TrimSpace(code))
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("redirect_uri", redirectURI)
	form.Set("grant_type", "authorization_code")

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
		return nil, &TokenExchangeError{Provider: ProviderGumroad, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return nil, errors.New("gumroad token exchange returned empty access_token")
	}
	return &Token{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}

// GumroadSale is the subset of a sale record the normalizer needs.
// CreatedAt is an ISO timestamp, Price a string amount in cents.
type GumroadSale struct {
	CreatedAt string `json:"created_at"`
	Price     string `json:"price"`
}

// FetchSales lists sales with bearer auth.
func (c *GumroadClient) FetchSales(ctx context.Context, accessToken string) ([]GumroadSale, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, errors.New("access token is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.APIBaseURL, "/")+"/sales", nil)
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
		return nil, &APIFetchError{Provider: ProviderGumroad, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out struct {
		Sales []GumroadSale `json:"sales"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.Sales, nil
}

func (c *GumroadClient) FetchDailyRevenue(ctx context.Context, accessToken string) (*Series, error) {
	sales, err := c.FetchSales(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return NormalizeGumroadSales(sales), nil
}

// NormalizeGumroadSales aggregates sales into daily revenue. Records with an
// unparseable date or price are skipped rather than failing the series.
func NormalizeGumroadSales(sales []GumroadSale) *Series {
	agg := newDayAggregator()
	for _, sale := range sales {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(sale.CreatedAt))
		if err != nil {
			continue
		}
		cents, err := strconv.ParseFloat(strings.TrimSpace(sale.Price), 64)
		if err != nil {
			continue
		}
		agg.add(t, cents/100)
	}
	return agg.series()
}
