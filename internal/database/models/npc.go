package models

import "github.com/google/uuid"

type IntegrationStatus string

const (
	IntegrationStatusPending    IntegrationStatus = "pending"
	IntegrationStatusApproved   IntegrationStatus = "approved"
	IntegrationStatusIntegrated IntegrationStatus = "integrated"
)

type NPC struct {
	Base
	SessionID uuid.UUID `gorm:"type:uuid;index;not null" json:"session_id"`

	// Basic info
	Name string `gorm:"not null" json:"name"`
	Role string `json:"role,omitempty"` // shopkeeper, witness, antagonist, etc.

	// Description
	Appearance        string `gorm:"type:text" json:"appearance,omitempty"`
	PersonalityTraits string `gorm:"type:text" json:"personality_traits,omitempty"`
	Backstory         string `gorm:"type:text" json:"backstory,omitempty"`

	// Game mechanics
	RelevantSkillsStats    string `gorm:"type:text" json:"relevant_skills_stats,omitempty"`
	RelationshipToCampaign string `gorm:"type:text" json:"relationship_to_campaign,omitempty"`

	// Generation info. Parameters are stored opaquely; the API never
	// interprets them. AIGenerated carries no column default: a false
	// value would be dropped from the INSERT and come back as true.
	GeneratedParameters string `gorm:"type:text" json:"generated_parameters,omitempty"`
	AIGenerated         bool   `json:"ai_generated"`

	IntegrationStatus IntegrationStatus `gorm:"not null;default:'pending'" json:"integration_status"`

	// Relationships
	Session *Session `gorm:"foreignKey:SessionID" json:"-"`
}

func (NPC) TableName() string {
	return "npcs"
}
