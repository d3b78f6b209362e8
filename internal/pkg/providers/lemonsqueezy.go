package providers

import "context"

// lemonSqueezyClient is a placeholder for the fourth provider slot. The
// OAuth endpoints are not settled yet, so every operation fails with
// ErrProviderNotImplemented instead of guessing at URLs.
type lemonSqueezyClient struct{}

func (lemonSqueezyClient) AuthorizeURL(string) (string, error) {
	return "", ErrProviderNotImplemented
}

func (lemonSqueezyClient) AuthorizeURLWithState(string, string) (string, error) {
	return "", ErrProviderNotImplemented
}

func (lemonSqueezyClient) ExchangeCode(context.Context, string, string) (*Token, error) {
	return nil, ErrProviderNotImplemented
}

func (lemonSqueezyClient) FetchDailyRevenue(context.Context, string) (*Series, error) {
	return nil, ErrProviderNotImplemented
}
