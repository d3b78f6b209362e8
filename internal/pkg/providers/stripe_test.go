package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestStripeClient(srv *httptest.Server) *StripeClient {
	return &StripeClient{
		ClientID:         "ca_test123",
		ClientSecret:     "sk_test_secret",
		AuthorizeURLBase: defaultStripeAuthorizeURL,
		TokenURL:         srv.URL + "/oauth/token",
		APIBaseURL:       srv.URL + "/v1",
		HTTPClient:       srv.Client(),
	}
}

func TestStripeAuthorizeURL(t *testing.T) {
	c := &StripeClient{ClientID: "ca_test123", AuthorizeURLBase: defaultStripeAuthorizeURL}

	got, err := c.AuthorizeURL("https://app.example.com/integrations/stripe/callback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://connect.stripe.com/oauth/authorize?client_id=ca_test123&redirect_uri=https%3A%2F%2Fapp.example.com%2Fintegrations%2Fstripe%2Fcallback&response_type=code&scope=read_write"
	if got != want {
		t.Fatalf("AuthorizeURL mismatch:\n got %s\nwant %s", got, want)
	}

	// the same input must always yield the same URL
	again, err := c.AuthorizeURL("https://app.example.com/integrations/stripe/callback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != got {
		t.Fatalf("AuthorizeURL is not deterministic: %s vs %s", again, got)
	}
}

func TestStripeAuthorizeURLWithState(t *testing.T) {
	c := &StripeClient{ClientID: "ca_test123", AuthorizeURLBase: defaultStripeAuthorizeURL}

	got, err := c.AuthorizeURLWithState("https://app.example.com/integrations/stripe/callback", "st_abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://connect.stripe.com/oauth/authorize?client_id=ca_test123&redirect_uri=https%3A%2F%2Fapp.example.com%2Fintegrations%2Fstripe%2Fcallback&response_type=code&scope=read_write&state=st_abc123"
	if got != want {
		t.Fatalf("AuthorizeURLWithState mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestStripeAuthorizeURLMissingClientID(t *testing.T) {
	c := &StripeClient{AuthorizeURLBase: defaultStripeAuthorizeURL}
	_, err := c.AuthorizeURL("https://app.example.com/cb")
	if !errors.Is(err, ErrProviderNotConfigured) {
		t.Fatalf("expected ErrProviderNotConfigured, got %v", err)
	}
}

func TestStripeExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Fatalf("unexpected content type %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Fatalf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("code"); got != "ac_code_1" {
			t.Fatalf("code = %q", got)
		}
		if got := r.PostForm.Get("client_secret"); got != "sk_test_secret" {
			t.Fatalf("client_secret = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at_1","refresh_token":"rt_1","stripe_user_id":"acct_42"}`))
	}))
	defer srv.Close()

	c := newTestStripeClient(srv)
	tok, err := c.ExchangeCode(context.Background(), "ac_code_1", "https://app.example.com/cb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "at_1" || tok.RefreshToken != "rt_1" || tok.ProviderUserID != "acct_42" {
		t.Fatalf("unexpected token: %+v", tok)
	}
}

func TestStripeExchangeCodeNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	c := newTestStripeClient(srv)
	_, err := c.ExchangeCode(context.Background(), "used-code", "")
	if err == nil {
		t.Fatalf("expected error")
	}
	var exchErr *TokenExchangeError
	if !errors.As(err, &exchErr) {
		t.Fatalf("expected *TokenExchangeError, got %T: %v", err, err)
	}
	if exchErr.Provider != ProviderStripe || exchErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected error fields: %+v", exchErr)
	}
	if exchErr.Body == "" {
		t.Fatalf("expected response body to be captured")
	}
}

func TestStripeFetchDailyRevenue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/charges" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer at_1" {
			t.Fatalf("authorization = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Fatalf("limit = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		// 1700000000 = 2023-11-14T22:13:20Z
		w.Write([]byte(`{"data":[
			{"created":1700000000,"amount":1050,"paid":true,"refunded":false},
			{"created":1700000100,"amount":500,"paid":true,"refunded":false},
			{"created":1700000200,"amount":9999,"paid":false,"refunded":false},
			{"created":1700000300,"amount":9999,"paid":true,"refunded":true}
		]}`))
	}))
	defer srv.Close()

	c := newTestStripeClient(srv)
	s, err := c.FetchDailyRevenue(context.Background(), "at_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Points) != 1 {
		t.Fatalf("expected 1 day, got %d", len(s.Points))
	}
	if s.Points[0].Date != "2023-11-14" || s.Points[0].Amount != 15.50 {
		t.Fatalf("unexpected point: %+v", s.Points[0])
	}
	if s.TotalRevenue != 15.50 {
		t.Fatalf("expected total 15.50, got %v", s.TotalRevenue)
	}
	if s.Count != 2 {
		t.Fatalf("expected 2 qualifying charges, got %d", s.Count)
	}
}

func TestStripeFetchChargesNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Expired API Key"}}`))
	}))
	defer srv.Close()

	c := newTestStripeClient(srv)
	_, err := c.FetchCharges(context.Background(), "expired")
	var fetchErr *APIFetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *APIFetchError, got %T: %v", err, err)
	}
	if fetchErr.Provider != ProviderStripe || fetchErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected error fields: %+v", fetchErr)
	}
}

func TestNormalizeStripeChargesEmpty(t *testing.T) {
	s := NormalizeStripeCharges(nil)
	if len(s.Points) != 0 || s.TotalRevenue != 0 || s.Count != 0 {
		t.Fatalf("expected empty series, got %+v", s)
	}
}
