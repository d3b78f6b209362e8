package providers

import (
	"context"
	"encoding/base64"
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
	defaultPayPalAuthorizeURL = "https://www.paypal.com/signin/authorize"
	defaultPayPalTokenURL     = "https://api-m.paypal.com/v1/oauth2/token"
	defaultPayPalAPIBaseURL   = "https://api-m.paypal.com/v1"

	paypalScope = "openid profile email https://uri.paypal.com/services/paypalattributes"

	// The reporting API rejects unbounded queries; this is the default window.
	paypalReportingWindow = 30 * 24 * time.Hour
)

// PayPalClient talks to PayPal OAuth and the transaction reporting API.
// Sandbox endpoints can be injected through the *_URL env overrides.
type PayPalClient struct {
	ClientID     string
	ClientSecret string

	AuthorizeURLBase string
	TokenURL         string
	APIBaseURL       string

	HTTPClient *http.Client

	// now is swapped in tests to pin the reporting window.
	now func() time.Time
}

func NewPayPalClientFromEnv() *PayPalClient {
	return &PayPalClient{
		ClientID:         strings.TrimSpace(env.GetEnv("PAYPAL_CLIENT_ID", "")),
		ClientSecret:     strings.TrimSpace(env.GetEnv("PAYPAL_CLIENT_SECRET", "")),
		AuthorizeURLBase: strings.TrimSpace(env.GetEnv("PAYPAL_AUTHORIZE_URL", defaultPayPalAuthorizeURL)),
		TokenURL:         strings.TrimSpace(env.GetEnv("PAYPAL_TOKEN_URL", defaultPayPalTokenURL)),
		APIBaseURL:       strings.TrimSpace(env.GetEnv("PAYPAL_API_BASE_URL", defaultPayPalAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

func (c *PayPalClient) AuthorizeURL(redirectURI string) (string, error) {
	if strings.TrimSpace(c.ClientID) == "" {
		return "", fmt.Errorf("PAYPAL_CLIENT_ID is missing: %w", ErrProviderNotConfigured)
	}
	u, err := url.Parse(c.AuthorizeURLBase)
	if err != nil {
		return "", fmt.Errorf("invalid PAYPAL_AUTHORIZE_URL: %w", err)
	}
	q := u.Query()
	q.Set("client_id", c.ClientID)
	q.Set("response_type", "code")
	q.Set("scope", paypalScope)
	q.Set("redirect_uri", redirectURI)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// AuthorizeURLWithState attaches the CSRF state parameter the connect flow
// stores in the session.
func (c *PayPalClient) AuthorizeURLWithState(redirectURI, state string) (string, error) {
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

// ExchangeCode runs the authorization_code grant with HTTP Basic auth
// (client_id:client_secret); the redirect URI is not part of this grant.
func (c *PayPalClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	_ = redirectURI
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return nil, fmt.Errorf("PAYPAL_CLIENT_ID/PAYPAL_CLIENT_SECRET are missing: %w", ErrProviderNotConfigured)
	}
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("oauth code is required")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", strings.TrimSpace(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.ClientID + ":" + c.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TokenExchangeError{Provider: ProviderPayPal, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return nil, errors.New("paypal token exchange returned empty access_token")
	}
	return &Token{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}

// PayPalTransaction mirrors the reporting API record shape.
type PayPalTransaction struct {
	TransactionInfo struct {
		TransactionInitiationDate string `json:"transaction_initiation_date"`
		TransactionStatus         string `json:"transaction_status"`
		TransactionAmount         struct {
			Value string `json:"value"`
		} `json:"transaction_amount"`
	} `json:"transaction_info"`
}

// FetchTransactions lists transactions for the trailing 30-day window.
func (c *PayPalClient) FetchTransactions(ctx context.Context, accessToken string) ([]PayPalTransaction, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, errors.New("access token is required")
	}

	end := c.now().UTC()
	start := end.Add(-paypalReportingWindow)

	u, err := url.Parse(strings.TrimRight(c.APIBaseURL, "/") + "/reporting/transactions")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("start_date", start.Format(time.RFC3339))
	q.Set("end_date", end.Format(time.RFC3339))
	q.Set("fields", "all")
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
		return nil, &APIFetchError{Provider: ProviderPayPal, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out struct {
		TransactionDetails []PayPalTransaction `json:"transaction_details"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.TransactionDetails, nil
}

func (c *PayPalClient) FetchDailyRevenue(ctx context.Context, accessToken string) (*Series, error) {
	txns, err := c.FetchTransactions(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return NormalizePayPalTransactions(txns), nil
}

// NormalizePayPalTransactions aggregates successful ("S") transactions with a
// positive amount into daily revenue. Amounts are already in major units.
func NormalizePayPalTransactions(txns []PayPalTransaction) *Series {
	agg := newDayAggregator()
	for _, tx := range txns {
		info := tx.TransactionInfo
		if info.TransactionStatus != "S" {
			continue
		}
		t, err := parsePayPalTime(info.TransactionInitiationDate)
		if err != nil {
			continue
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(info.TransactionAmount.Value), 64)
		if err != nil || amount <= 0 {
			continue
		}
		agg.add(t, amount)
	}
	return agg.series()
}

// parsePayPalTime accepts both RFC 3339 and PayPal's numeric-offset variant
// ("2024-02-01T00:00:00+0000").
func parsePayPalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05-0700", s)
}
