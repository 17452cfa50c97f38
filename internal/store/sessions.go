package store

import (
	"context"
	"fmt"
	"time"

	"github.com/robin/questkeeper/internal/authz"
	"github.com/robin/questkeeper/internal/database/models"
	"gorm.io/gorm"
)

type Sessions struct {
	db *gorm.DB
}

func NewSessions(db *gorm.DB) *Sessions {
	return &Sessions{db: db}
}

type SessionInput struct {
	SessionNumber    int
	Name             string
	PreparationNotes string
	ScheduledDate    *time.Time
}

// SessionPatch applies only the fields that are non-nil.
type SessionPatch struct {
	Name               *string
	PreparationNotes   *string
	AudioRecordingPath *string
	Transcript         *string
	Recap              *string
	Status             *models.SessionStatus
	ScheduledDate      *time.Time
	ActualDate         *time.Time
}

func (p SessionPatch) changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if p.Name != nil {
		changes["name"] = *p.Name
	}
	if p.PreparationNotes != nil {
		changes["preparation_notes"] = *p.PreparationNotes
	}
	if p.AudioRecordingPath != nil {
		changes["audio_recording_path"] = *p.AudioRecordingPath
	}
	if p.Transcript != nil {
		changes["transcript"] = *p.Transcript
	}
	if p.Recap != nil {
		changes["recap"] = *p.Recap
	}
	if p.Status != nil {
		changes["status"] = *p.Status
	}
	if p.ScheduledDate != nil {
		changes["scheduled_date"] = *p.ScheduledDate
	}
	if p.ActualDate != nil {
		changes["actual_date"] = *p.ActualDate
	}
	return changes
}

// Create requires a campaign grant, so the parent's ownership has already
// been proven before the insert.
func (r *Sessions) Create(ctx context.Context, grant authz.CampaignGrant, input SessionInput) (*models.Session, error) {
	session := models.Session{
		CampaignID:       grant.CampaignID(),
		SessionNumber:    input.SessionNumber,
		Name:             input.Name,
		PreparationNotes: input.PreparationNotes,
		Status:           models.SessionStatusPlanned,
		ScheduledDate:    input.ScheduledDate,
	}
	if err := r.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return &session, nil
}

// ListByCampaign returns the campaign's sessions ordered by session_number.
func (r *Sessions) ListByCampaign(ctx context.Context, grant authz.CampaignGrant) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", grant.CampaignID()).
		Order("session_number ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

func (r *Sessions) Update(ctx context.Context, grant authz.SessionGrant, patch SessionPatch) (*models.Session, error) {
	changes := patch.changes()
	if len(changes) == 0 {
		return grant.Session(), nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", grant.SessionID()).
		Updates(changes).Error
	if err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}

	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", grant.SessionID()).Error; err != nil {
		return nil, fmt.Errorf("reloading session: %w", err)
	}
	return &session, nil
}

func (r *Sessions) Delete(ctx context.Context, grant authz.SessionGrant) error {
	err := r.db.WithContext(ctx).
		Delete(&models.Session{}, "id = ?", grant.SessionID()).Error
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
