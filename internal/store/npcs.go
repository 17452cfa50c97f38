package store

import (
	"context"
	"fmt"

	"github.com/robin/questkeeper/internal/authz"
	"github.com/robin/questkeeper/internal/database/models"
	"gorm.io/gorm"
)

type NPCs struct {
	db *gorm.DB
}

func NewNPCs(db *gorm.DB) *NPCs {
	return &NPCs{db: db}
}

type NPCInput struct {
	Name                   string
	Role                   string
	Appearance             string
	PersonalityTraits      string
	Backstory              string
	RelevantSkillsStats    string
	RelationshipToCampaign string
	GeneratedParameters    string
	AIGenerated            bool
}

// NPCPatch applies only the fields that are non-nil.
type NPCPatch struct {
	Name                   *string
	Role                   *string
	Appearance             *string
	PersonalityTraits      *string
	Backstory              *string
	RelevantSkillsStats    *string
	RelationshipToCampaign *string
	IntegrationStatus      *models.IntegrationStatus
}

func (p NPCPatch) changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if p.Name != nil {
		changes["name"] = *p.Name
	}
	if p.Role != nil {
		changes["role"] = *p.Role
	}
	if p.Appearance != nil {
		changes["appearance"] = *p.Appearance
	}
	if p.PersonalityTraits != nil {
		changes["personality_traits"] = *p.PersonalityTraits
	}
	if p.Backstory != nil {
		changes["backstory"] = *p.Backstory
	}
	if p.RelevantSkillsStats != nil {
		changes["relevant_skills_stats"] = *p.RelevantSkillsStats
	}
	if p.RelationshipToCampaign != nil {
		changes["relationship_to_campaign"] = *p.RelationshipToCampaign
	}
	if p.IntegrationStatus != nil {
		changes["integration_status"] = *p.IntegrationStatus
	}
	return changes
}

// Create requires a session grant for the parent session.
func (r *NPCs) Create(ctx context.Context, grant authz.SessionGrant, input NPCInput) (*models.NPC, error) {
	npc := models.NPC{
		SessionID:              grant.SessionID(),
		Name:                   input.Name,
		Role:                   input.Role,
		Appearance:             input.Appearance,
		PersonalityTraits:      input.PersonalityTraits,
		Backstory:              input.Backstory,
		RelevantSkillsStats:    input.RelevantSkillsStats,
		RelationshipToCampaign: input.RelationshipToCampaign,
		GeneratedParameters:    input.GeneratedParameters,
		AIGenerated:            input.AIGenerated,
		IntegrationStatus:      models.IntegrationStatusPending,
	}
	if err := r.db.WithContext(ctx).Create(&npc).Error; err != nil {
		return nil, fmt.Errorf("creating npc: %w", err)
	}
	return &npc, nil
}

func (r *NPCs) ListBySession(ctx context.Context, grant authz.SessionGrant) ([]models.NPC, error) {
	var npcs []models.NPC
	err := r.db.WithContext(ctx).
		Where("session_id = ?", grant.SessionID()).
		Order("created_at ASC").
		Find(&npcs).Error
	if err != nil {
		return nil, fmt.Errorf("listing npcs: %w", err)
	}
	return npcs, nil
}

func (r *NPCs) Update(ctx context.Context, grant authz.NPCGrant, patch NPCPatch) (*models.NPC, error) {
	changes := patch.changes()
	if len(changes) == 0 {
		return grant.NPC(), nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.NPC{}).
		Where("id = ?", grant.NPCID()).
		Updates(changes).Error
	if err != nil {
		return nil, fmt.Errorf("updating npc: %w", err)
	}

	var npc models.NPC
	if err := r.db.WithContext(ctx).First(&npc, "id = ?", grant.NPCID()).Error; err != nil {
		return nil, fmt.Errorf("reloading npc: %w", err)
	}
	return &npc, nil
}

func (r *NPCs) Delete(ctx context.Context, grant authz.NPCGrant) error {
	err := r.db.WithContext(ctx).
		Delete(&models.NPC{}, "id = ?", grant.NPCID()).Error
	if err != nil {
		return fmt.Errorf("deleting npc: %w", err)
	}
	return nil
}
