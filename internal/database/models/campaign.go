package models

import "github.com/google/uuid"

type Campaign struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	RPGSystem   string `gorm:"column:rpg_system;not null" json:"rpg_system"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Owner is fixed at creation and never reassigned.
	OwnerID uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`

	// Campaign content
	CampaignNotes     string `gorm:"type:text" json:"campaign_notes,omitempty"`
	UploadedDocuments string `gorm:"type:text" json:"uploaded_documents,omitempty"` // JSON array of file ids

	// Relationships
	Owner    *User     `gorm:"foreignKey:OwnerID" json:"-"`
	Sessions []Session `gorm:"foreignKey:CampaignID" json:"-"`
}

func (Campaign) TableName() string {
	return "campaigns"
}
