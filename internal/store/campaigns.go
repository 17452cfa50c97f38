// Package store holds the GORM repositories for campaigns, sessions and
// NPCs. Repositories enforce referential integrity only; ownership is the
// authorizer's job, and mutations on scoped resources take an authz grant
// so they cannot be reached without it.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/robin/questkeeper/internal/authz"
	"github.com/robin/questkeeper/internal/database/models"
	"gorm.io/gorm"
)

type Campaigns struct {
	db *gorm.DB
}

func NewCampaigns(db *gorm.DB) *Campaigns {
	return &Campaigns{db: db}
}

type CampaignInput struct {
	Name        string
	RPGSystem   string
	Description string
}

// CampaignPatch applies only the fields that are non-nil.
type CampaignPatch struct {
	Name          *string
	RPGSystem     *string
	Description   *string
	CampaignNotes *string
}

func (p CampaignPatch) changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if p.Name != nil {
		changes["name"] = *p.Name
	}
	if p.RPGSystem != nil {
		changes["rpg_system"] = *p.RPGSystem
	}
	if p.Description != nil {
		changes["description"] = *p.Description
	}
	if p.CampaignNotes != nil {
		changes["campaign_notes"] = *p.CampaignNotes
	}
	return changes
}

func (r *Campaigns) Create(ctx context.Context, ownerID uuid.UUID, input CampaignInput) (*models.Campaign, error) {
	campaign := models.Campaign{
		Name:        input.Name,
		RPGSystem:   input.RPGSystem,
		Description: input.Description,
		OwnerID:     ownerID,
	}
	if err := r.db.WithContext(ctx).Create(&campaign).Error; err != nil {
		return nil, fmt.Errorf("creating campaign: %w", err)
	}
	return &campaign, nil
}

func (r *Campaigns) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&campaigns).Error
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	return campaigns, nil
}

func (r *Campaigns) Update(ctx context.Context, grant authz.CampaignGrant, patch CampaignPatch) (*models.Campaign, error) {
	changes := patch.changes()
	if len(changes) == 0 {
		return grant.Campaign(), nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", grant.CampaignID()).
		Updates(changes).Error
	if err != nil {
		return nil, fmt.Errorf("updating campaign: %w", err)
	}

	var campaign models.Campaign
	if err := r.db.WithContext(ctx).First(&campaign, "id = ?", grant.CampaignID()).Error; err != nil {
		return nil, fmt.Errorf("reloading campaign: %w", err)
	}
	return &campaign, nil
}

// Delete removes only the campaign row. Sessions and NPCs under it are
// left in place; see the no-cascade test in campaigns_test.go.
func (r *Campaigns) Delete(ctx context.Context, grant authz.CampaignGrant) error {
	err := r.db.WithContext(ctx).
		Delete(&models.Campaign{}, "id = ?", grant.CampaignID()).Error
	if err != nil {
		return fmt.Errorf("deleting campaign: %w", err)
	}
	return nil
}
