package providers

import (
	"errors"
	"fmt"
)

// ErrProviderNotImplemented marks providers that are part of the enumeration
// but have no working OAuth/data integration yet (Lemon Squeezy).
var ErrProviderNotImplemented = errors.New("provider integration not implemented")

// ErrProviderNotConfigured indicates missing OAuth client credentials in the
// environment. Connect handlers turn it into a flash, not a 500.
var ErrProviderNotConfigured = errors.New("provider oauth is not configured")

// TokenExchangeError reports a non-2xx response from a provider's token
// endpoint. The body is kept for logs only and must not reach the user.
type TokenExchangeError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("%s token exchange failed: status=%d body=%s", e.Provider, e.StatusCode, e.Body)
}

// APIFetchError reports a non-2xx response from a provider's data endpoint,
// including expired or revoked tokens. There is no automatic refresh.
type APIFetchError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

func (e *APIFetchError) Error() string {
	return fmt.Sprintf("%s API request failed: status=%d body=%s", e.Provider, e.StatusCode, e.Body)
}
