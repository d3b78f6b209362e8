package models

import "time"

// Integration stores the OAuth credential linking a user to one payment
// provider. At most one row exists per (user_id, provider); a re-connect
// replaces the stored tokens wholesale. Tokens never serialize to JSON.
type Integration struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index:user_provider,unique" json:"user_id"`
	Provider       string    `gorm:"index:user_provider,unique;type:varchar(50)" json:"provider"`
	AccessToken    string    `gorm:"type:text" json:"-"`
	RefreshToken   string    `gorm:"type:text" json:"-"`
	ProviderUserID string    `gorm:"type:varchar(191)" json:"provider_user_id,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
