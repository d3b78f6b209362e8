package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/revenuefox/revenuefox/app/models"
	"github.com/revenuefox/revenuefox/internal/pkg/providers"
	"gorm.io/gorm"
)

// ErrNotConnected is returned when revenue is requested for a provider the
// user has not linked. Callers map it to a "not connected" response, not a
// server fault.
var ErrNotConnected = errors.New("provider not connected")

// Status describes one provider's connection state for the dashboard.
type Status struct {
	Connected      bool   `json:"connected"`
	ProviderUserID string `json:"providerUserId,omitempty"`
}

// Service orchestrates the OAuth connect flow and the revenue read path on
// top of the store adapter. Clients are resolved per call so endpoint
// overrides from the environment always apply.
type Service struct {
	repo      Repository
	clientFor func(p providers.Provider) (providers.Client, error)
}

// NewService creates an integration service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, clientFor: providers.ClientFor}
}

// NewServiceFromDB creates an integration service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// BeginAuth builds the provider's authorization redirect URL carrying the
// CSRF state the caller stored in the session. Pure construction; nothing is
// persisted until the callback completes.
func (s *Service) BeginAuth(p providers.Provider, redirectURI, state string) (string, error) {
	client, err := s.clientFor(p)
	if err != nil {
		return "", err
	}
	return client.AuthorizeURLWithState(redirectURI, state)
}

// CompleteAuth exchanges the callback code and upserts the credential. On
// any failure before the upsert nothing is written; the upsert itself is
// atomic at the repository boundary. Replaying a consumed code fails the
// exchange with a *providers.TokenExchangeError, which is a normal outcome.
func (s *Service) CompleteAuth(ctx context.Context, userID uint, p providers.Provider, code, redirectURI string) (*models.Integration, error) {
	if userID == 0 {
		return nil, errors.New("user_id is required")
	}
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("oauth code is required")
	}

	client, err := s.clientFor(p)
	if err != nil {
		return nil, err
	}

	token, err := client.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return nil, err
	}

	in := &models.Integration{
		UserID:         userID,
		Provider:       string(p),
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		ProviderUserID: token.ProviderUserID,
	}
	if err := s.repo.UpsertIntegration(ctx, in); err != nil {
		return nil, fmt.Errorf("persist %s integration: %w", p, err)
	}
	return in, nil
}

// GetRevenue loads the stored credential and returns the provider's daily
// revenue series. Every call re-fetches from the provider; expired tokens
// surface as *providers.APIFetchError without a refresh attempt.
func (s *Service) GetRevenue(ctx context.Context, userID uint, p providers.Provider) (*providers.Series, error) {
	in, err := s.repo.GetIntegration(ctx, userID, string(p))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotConnected
		}
		return nil, fmt.Errorf("load %s integration: %w", p, err)
	}

	client, err := s.clientFor(p)
	if err != nil {
		return nil, err
	}
	return client.FetchDailyRevenue(ctx, in.AccessToken)
}

// StatusByProvider reports the connection state of every known provider for
// the dashboard's integration cards.
func (s *Service) StatusByProvider(ctx context.Context, userID uint) (map[providers.Provider]Status, error) {
	ins, err := s.repo.ListIntegrationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}

	out := make(map[providers.Provider]Status, len(providers.Registry))
	for _, p := range providers.All() {
		out[p] = Status{}
	}
	for _, in := range ins {
		p, err := providers.ParseProvider(in.Provider)
		if err != nil {
			continue
		}
		out[p] = Status{Connected: true, ProviderUserID: in.ProviderUserID}
	}
	return out, nil
}
