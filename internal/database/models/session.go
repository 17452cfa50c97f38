package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusPlanned    SessionStatus = "planned"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
)

type Session struct {
	Base
	CampaignID    uuid.UUID `gorm:"type:uuid;index;not null" json:"campaign_id"`
	SessionNumber int       `gorm:"not null;index" json:"session_number"`
	Name          string    `json:"name,omitempty"`

	// Session content
	PreparationNotes   string `gorm:"type:text" json:"preparation_notes,omitempty"`
	AudioRecordingPath string `json:"audio_recording_path,omitempty"`
	Transcript         string `gorm:"type:text" json:"transcript,omitempty"`
	Recap              string `gorm:"type:text" json:"recap,omitempty"`

	// Status
	Status SessionStatus `gorm:"not null;default:'planned'" json:"status"`

	// Schedule
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	ActualDate    *time.Time `json:"actual_date,omitempty"`

	// Relationships
	Campaign *Campaign `gorm:"foreignKey:CampaignID" json:"-"`
	NPCs     []NPC     `gorm:"foreignKey:SessionID" json:"-"`
}

func (Session) TableName() string {
	return "sessions"
}
