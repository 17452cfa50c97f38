package models

import "time"

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `json:"-"`
	FullName     string `json:"full_name"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	// OAuth provider identities. Nullable so unlinked accounts don't
	// collide on the unique index.
	GoogleID  *string `gorm:"uniqueIndex" json:"-"`
	DiscordID *string `gorm:"uniqueIndex" json:"-"`

	// Subscription
	SubscriptionStatus  string     `gorm:"default:'free'" json:"subscription_status"` // free, premium
	SubscriptionExpires *time.Time `json:"subscription_expires,omitempty"`

	// Discord integration settings (JSON)
	DiscordIntegrationSettings string `gorm:"type:text" json:"-"`

	// Relationships
	Campaigns []Campaign `gorm:"foreignKey:OwnerID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
