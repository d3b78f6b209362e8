package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func newTestPayPalClient(srv *httptest.Server) *PayPalClient {
	return &PayPalClient{
		ClientID:         "pp_client",
		ClientSecret:     "pp_secret",
		AuthorizeURLBase: defaultPayPalAuthorizeURL,
		TokenURL:         srv.URL + "/v1/oauth2/token",
		APIBaseURL:       srv.URL + "/v1",
		HTTPClient:       srv.Client(),
		now:              time.Now,
	}
}

func TestPayPalAuthorizeURLContainsScope(t *testing.T) {
	c := &PayPalClient{ClientID: "pp_client", AuthorizeURLBase: defaultPayPalAuthorizeURL}

	got, err := c.AuthorizeURL("https://app.example.com/integrations/paypal/callback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("result is not a URL: %v", err)
	}
	q := u.Query()
	if q.Get("client_id") != "pp_client" {
		t.Fatalf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("response_type") != "code" {
		t.Fatalf("response_type = %q", q.Get("response_type"))
	}
	if q.Get("scope") != paypalScope {
		t.Fatalf("scope = %q", q.Get("scope"))
	}
	if q.Get("redirect_uri") != "https://app.example.com/integrations/paypal/callback" {
		t.Fatalf("redirect_uri = %q", q.Get("redirect_uri"))
	}
}

func TestPayPalAuthorizeURLWithState(t *testing.T) {
	c := &PayPalClient{ClientID: "pp_client", AuthorizeURLBase: defaultPayPalAuthorizeURL}

	got, err := c.AuthorizeURLWithState("https://app.example.com/integrations/paypal/callback", "st_pp1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("result is not a URL: %v", err)
	}
	if s := u.Query().Get("state"); s != "st_pp1" {
		t.Fatalf("state = %q, want %q", s, "st_pp1")
	}
	if s := u.Query().Get("scope"); s != paypalScope {
		t.Fatalf("scope dropped when adding state: %q", s)
	}
}

func TestPayPalExchangeCodeUsesBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("pp_client:pp_secret"))
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Fatalf("authorization = %q, want %q", got, wantAuth)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Fatalf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("code"); got != "pp_code" {
			t.Fatalf("code = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"pp_at","refresh_token":"pp_rt"}`))
	}))
	defer srv.Close()

	c := newTestPayPalClient(srv)
	tok, err := c.ExchangeCode(context.Background(), "pp_code", "ignored")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "pp_at" || tok.RefreshToken != "pp_rt" {
		t.Fatalf("unexpected token: %+v", tok)
	}
}

func TestPayPalExchangeCodeNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	c := newTestPayPalClient(srv)
	_, err := c.ExchangeCode(context.Background(), "pp_code", "")
	var exchErr *TokenExchangeError
	if !errors.As(err, &exchErr) {
		t.Fatalf("expected *TokenExchangeError, got %T: %v", err, err)
	}
	if exchErr.Provider != ProviderPayPal {
		t.Fatalf("unexpected provider %q", exchErr.Provider)
	}
}

func TestPayPalFetchTransactionsWindow(t *testing.T) {
	fixed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/reporting/transactions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q.Get("end_date"); got != fixed.Format(time.RFC3339) {
			t.Fatalf("end_date = %q", got)
		}
		if got := q.Get("start_date"); got != fixed.Add(-paypalReportingWindow).Format(time.RFC3339) {
			t.Fatalf("start_date = %q", got)
		}
		if got := q.Get("fields"); got != "all" {
			t.Fatalf("fields = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transaction_details":[]}`))
	}))
	defer srv.Close()

	c := newTestPayPalClient(srv)
	c.now = func() time.Time { return fixed }

	if _, err := c.FetchTransactions(context.Background(), "pp_at"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPayPalFetchDailyRevenue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transaction_details":[
			{"transaction_info":{"transaction_initiation_date":"2024-06-01T10:00:00+0000","transaction_status":"S","transaction_amount":{"value":"25.00"}}},
			{"transaction_info":{"transaction_initiation_date":"2024-06-01T11:00:00+0000","transaction_status":"D","transaction_amount":{"value":"99.00"}}},
			{"transaction_info":{"transaction_initiation_date":"2024-06-02T09:00:00Z","transaction_status":"S","transaction_amount":{"value":"-5.00"}}}
		]}`))
	}))
	defer srv.Close()

	c := newTestPayPalClient(srv)
	s, err := c.FetchDailyRevenue(context.Background(), "pp_at")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Points) != 1 {
		t.Fatalf("expected 1 day, got %d", len(s.Points))
	}
	if s.Points[0].Date != "2024-06-01" || s.Points[0].Amount != 25.00 {
		t.Fatalf("unexpected point: %+v", s.Points[0])
	}
	if s.Count != 1 {
		t.Fatalf("expected 1 qualifying transaction, got %d", s.Count)
	}
}

func TestParsePayPalTime(t *testing.T) {
	for _, in := range []string{"2024-02-01T00:00:00+0000", "2024-02-01T00:00:00Z", "2024-02-01T00:00:00+02:00"} {
		if _, err := parsePayPalTime(in); err != nil {
			t.Fatalf("parsePayPalTime(%q): %v", in, err)
		}
	}
	if _, err := parsePayPalTime("yesterday"); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}
