// Package authz decides whether a user may touch a campaign, session or
// NPC by walking the containment chain (NPC -> Session -> Campaign -> User)
// in a single joined query. A failed check is always reported as
// ErrNotFound, whether the row is missing or belongs to someone else, so a
// caller can never probe for another tenant's resources.
//
// Successful checks return grant values. Grants can only be built here, and
// the store layer requires them for every scoped mutation, so skipping
// authorization is a compile error rather than a code-review catch.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/robin/questkeeper/internal/database/models"
	"gorm.io/gorm"
)

// ErrNotFound covers both "row does not exist" and "row is owned by
// another user". The two cases are intentionally indistinguishable.
var ErrNotFound = errors.New("resource not found")

type Authorizer struct {
	db *gorm.DB
}

func NewAuthorizer(db *gorm.DB) *Authorizer {
	return &Authorizer{db: db}
}

// CampaignGrant proves the holder owns the campaign it wraps.
type CampaignGrant struct {
	campaign *models.Campaign
}

func (g CampaignGrant) Campaign() *models.Campaign { return g.campaign }
func (g CampaignGrant) CampaignID() uuid.UUID      { return g.campaign.ID }

// SessionGrant proves the holder owns the campaign containing the session.
type SessionGrant struct {
	session *models.Session
}

func (g SessionGrant) Session() *models.Session { return g.session }
func (g SessionGrant) SessionID() uuid.UUID     { return g.session.ID }

// NPCGrant proves the holder owns the campaign containing the NPC's session.
type NPCGrant struct {
	npc *models.NPC
}

func (g NPCGrant) NPC() *models.NPC { return g.npc }
func (g NPCGrant) NPCID() uuid.UUID { return g.npc.ID }

// Campaign checks the one-hop chain Campaign -> User.
func (a *Authorizer) Campaign(ctx context.Context, userID, campaignID uuid.UUID) (CampaignGrant, error) {
	var campaign models.Campaign
	err := a.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", campaignID, userID).
		First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CampaignGrant{}, ErrNotFound
		}
		return CampaignGrant{}, fmt.Errorf("authorizing campaign: %w", err)
	}
	return CampaignGrant{campaign: &campaign}, nil
}

// Session checks the chain Session -> Campaign -> User. The session id and
// the campaign owner are filtered in one query; there is no window between
// an existence check and an ownership check.
func (a *Authorizer) Session(ctx context.Context, userID, sessionID uuid.UUID) (SessionGrant, error) {
	var session models.Session
	err := a.db.WithContext(ctx).
		Joins("JOIN campaigns ON campaigns.id = sessions.campaign_id AND campaigns.deleted_at IS NULL").
		Where("sessions.id = ? AND campaigns.owner_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SessionGrant{}, ErrNotFound
		}
		return SessionGrant{}, fmt.Errorf("authorizing session: %w", err)
	}
	return SessionGrant{session: &session}, nil
}

// NPC checks the full chain NPC -> Session -> Campaign -> User as a
// three-tier join.
func (a *Authorizer) NPC(ctx context.Context, userID, npcID uuid.UUID) (NPCGrant, error) {
	var npc models.NPC
	err := a.db.WithContext(ctx).
		Joins("JOIN sessions ON sessions.id = npcs.session_id AND sessions.deleted_at IS NULL").
		Joins("JOIN campaigns ON campaigns.id = sessions.campaign_id AND campaigns.deleted_at IS NULL").
		Where("npcs.id = ? AND campaigns.owner_id = ?", npcID, userID).
		First(&npc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NPCGrant{}, ErrNotFound
		}
		return NPCGrant{}, fmt.Errorf("authorizing npc: %w", err)
	}
	return NPCGrant{npc: &npc}, nil
}
