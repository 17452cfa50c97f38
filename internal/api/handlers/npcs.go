package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/robin/questkeeper/internal/api/dto"
	"github.com/robin/questkeeper/internal/api/middleware"
	"github.com/robin/questkeeper/internal/authz"
	"github.com/robin/questkeeper/internal/database/models"
	"github.com/robin/questkeeper/internal/store"
)

type NPCHandler struct {
	authorizer *authz.Authorizer
	npcs       *store.NPCs
}

func NewNPCHandler(authorizer *authz.Authorizer, npcs *store.NPCs) *NPCHandler {
	return &NPCHandler{authorizer: authorizer, npcs: npcs}
}

var validIntegrationStatuses = map[models.IntegrationStatus]bool{
	models.IntegrationStatusPending:    true,
	models.IntegrationStatusApproved:   true,
	models.IntegrationStatusIntegrated: true,
}

// CreateNPCRequest represents the request to create an NPC
type CreateNPCRequest struct {
	SessionID              string `json:"session_id"`
	Name                   string `json:"name"`
	Role                   string `json:"role,omitempty"`
	Appearance             string `json:"appearance,omitempty"`
	PersonalityTraits      string `json:"personality_traits,omitempty"`
	Backstory              string `json:"backstory,omitempty"`
	RelevantSkillsStats    string `json:"relevant_skills_stats,omitempty"`
	RelationshipToCampaign string `json:"relationship_to_campaign,omitempty"`
	GeneratedParameters    string `json:"generated_parameters,omitempty"`
	AIGenerated            *bool  `json:"ai_generated,omitempty"`
}

func (r CreateNPCRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.SessionID == "" {
		errors["session_id"] = "Session ID is required"
	} else if _, err := uuid.Parse(r.SessionID); err != nil {
		errors["session_id"] = "Invalid session ID"
	}
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	return errors
}

// UpdateNPCRequest carries a partial update; absent fields are left
// untouched.
type UpdateNPCRequest struct {
	Name                   *string `json:"name,omitempty"`
	Role                   *string `json:"role,omitempty"`
	Appearance             *string `json:"appearance,omitempty"`
	PersonalityTraits      *string `json:"personality_traits,omitempty"`
	Backstory              *string `json:"backstory,omitempty"`
	RelevantSkillsStats    *string `json:"relevant_skills_stats,omitempty"`
	RelationshipToCampaign *string `json:"relationship_to_campaign,omitempty"`
	IntegrationStatus      *string `json:"integration_status,omitempty"`
}

func (r UpdateNPCRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name != nil && *r.Name == "" {
		errors["name"] = "Name cannot be empty"
	}
	if r.IntegrationStatus != nil && !validIntegrationStatuses[models.IntegrationStatus(*r.IntegrationStatus)] {
		errors["integration_status"] = "Integration status must be one of: pending, approved, integrated"
	}
	return errors
}

// NPCResponse represents an NPC in API responses
type NPCResponse struct {
	ID                     string `json:"id"`
	SessionID              string `json:"session_id"`
	Name                   string `json:"name"`
	Role                   string `json:"role,omitempty"`
	Appearance             string `json:"appearance,omitempty"`
	PersonalityTraits      string `json:"personality_traits,omitempty"`
	Backstory              string `json:"backstory,omitempty"`
	RelevantSkillsStats    string `json:"relevant_skills_stats,omitempty"`
	RelationshipToCampaign string `json:"relationship_to_campaign,omitempty"`
	GeneratedParameters    string `json:"generated_parameters,omitempty"`
	AIGenerated            bool   `json:"ai_generated"`
	IntegrationStatus      string `json:"integration_status"`
	CreatedAt              string `json:"created_at"`
	UpdatedAt              string `json:"updated_at"`
}

func npcToResponse(npc *models.NPC) NPCResponse {
	return NPCResponse{
		ID:                     npc.ID.String(),
		SessionID:              npc.SessionID.String(),
		Name:                   npc.Name,
		Role:                   npc.Role,
		Appearance:             npc.Appearance,
		PersonalityTraits:      npc.PersonalityTraits,
		Backstory:              npc.Backstory,
		RelevantSkillsStats:    npc.RelevantSkillsStats,
		RelationshipToCampaign: npc.RelationshipToCampaign,
		GeneratedParameters:    npc.GeneratedParameters,
		AIGenerated:            npc.AIGenerated,
		IntegrationStatus:      string(npc.IntegrationStatus),
		CreatedAt:              npc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              npc.UpdatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /api/v1/npcs
func (h *NPCHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateNPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	sessionID, _ := uuid.Parse(req.SessionID)

	grant, err := h.authorizer.Session(r.Context(), userID, sessionID)
	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Session not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get session"})
		return
	}

	aiGenerated := true
	if req.AIGenerated != nil {
		aiGenerated = *req.AIGenerated
	}

	npc, err := h.npcs.Create(r.Context(), grant, store.NPCInput{
		Name:                   req.Name,
		Role:                   req.Role,
		Appearance:             req.Appearance,
		PersonalityTraits:      req.PersonalityTraits,
		Backstory:              req.Backstory,
		RelevantSkillsStats:    req.RelevantSkillsStats,
		RelationshipToCampaign: req.RelationshipToCampaign,
		GeneratedParameters:    req.GeneratedParameters,
		AIGenerated:            aiGenerated,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create NPC"})
		return
	}

	writeJSON(w, http.StatusCreated, npcToResponse(npc))
}

// ListBySession handles GET /api/v1/npcs/session/:sessionID
func (h *NPCHandler) ListBySession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid session ID"})
		return
	}

	grant, err := h.authorizer.Session(r.Context(), userID, sessionID)
	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Session not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get session"})
		return
	}

	npcs, err := h.npcs.ListBySession(r.Context(), grant)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list NPCs"})
		return
	}

	response := make([]NPCResponse, len(npcs))
	for i, npc := range npcs {
		response[i] = npcToResponse(&npc)
	}

	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /api/v1/npcs/:id
func (h *NPCHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	npcID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid NPC ID"})
		return
	}

	grant, err := h.authorizer.NPC(r.Context(), userID, npcID)
	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "NPC not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get NPC"})
		return
	}

	writeJSON(w, http.StatusOK, npcToResponse(grant.NPC()))
}

// Update handles PUT /api/v1/npcs/:id
func (h *NPCHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	npcID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid NPC ID"})
		return
	}

	var req UpdateNPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	grant, err := h.authorizer.NPC(r.Context(), userID, npcID)
	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "NPC not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get NPC"})
		return
	}

	patch := store.NPCPatch{
		Name:                   req.Name,
		Role:                   req.Role,
		Appearance:             req.Appearance,
		PersonalityTraits:      req.PersonalityTraits,
		Backstory:              req.Backstory,
		RelevantSkillsStats:    req.RelevantSkillsStats,
		RelationshipToCampaign: req.RelationshipToCampaign,
	}
	if req.IntegrationStatus != nil {
		status := models.IntegrationStatus(*req.IntegrationStatus)
		patch.IntegrationStatus = &status
	}

	npc, err := h.npcs.Update(r.Context(), grant, patch)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update NPC"})
		return
	}

	writeJSON(w, http.StatusOK, npcToResponse(npc))
}

// Delete handles DELETE /api/v1/npcs/:id
func (h *NPCHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	npcID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid NPC ID"})
		return
	}

	grant, err := h.authorizer.NPC(r.Context(), userID, npcID)
	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "NPC not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get NPC"})
		return
	}

	if err := h.npcs.Delete(r.Context(), grant); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete NPC"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "NPC deleted successfully"})
}
