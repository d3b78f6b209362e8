package integration

import (
	"context"

	"github.com/revenuefox/revenuefox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the integration service. It is
// the only component allowed to touch the integrations table.
type Repository interface {
	UpsertIntegration(ctx context.Context, in *models.Integration) error
	GetIntegration(ctx context.Context, userID uint, provider string) (*models.Integration, error)
	ListIntegrationsByUser(ctx context.Context, userID uint) ([]models.Integration, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an integration repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// UpsertIntegration replaces the credential for (user_id, provider) in one
// statement. Concurrent callbacks race with last-writer-wins semantics.
func (r *gormRepository) UpsertIntegration(ctx context.Context, in *models.Integration) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "provider"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token",
			"refresh_token",
			"provider_user_id",
			"updated_at",
		}),
	}).Create(in).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", in.UserID, in.Provider).
		First(in).Error
}

func (r *gormRepository) GetIntegration(ctx context.Context, userID uint, provider string) (*models.Integration, error) {
	var in models.Integration
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&in).Error
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *gormRepository) ListIntegrationsByUser(ctx context.Context, userID uint) ([]models.Integration, error) {
	var ins []models.Integration
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&ins).Error
	return ins, err
}
