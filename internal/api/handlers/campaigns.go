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

type CampaignHandler struct {
	authorizer *authz.Authorizer
	campaigns  *store.Campaigns
}

func NewCampaignHandler(authorizer *authz.Authorizer, campaigns *store.Campaigns) *CampaignHandler {
	return &CampaignHandler{authorizer: authorizer, campaigns: campaigns}
}

// CreateCampaignRequest represents the request to create a campaign
type CreateCampaignRequest struct {
	Name        string `json:"name"`
	RPGSystem   string `json:"rpg_system"`
	Description string `json:"description,omitempty"`
}

func (r CreateCampaignRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.RPGSystem == "" {
		errors["rpg_system"] = "RPG system is required"
	}
	return errors
}

// UpdateCampaignRequest carries a partial update; absent fields are left
// untouched.
type UpdateCampaignRequest struct {
	Name          *string `json:"name,omitempty"`
	RPGSystem     *string `json:"rpg_system,omitempty"`
	Description   *string `json:"description,omitempty"`
	CampaignNotes *string `json:"campaign_notes,omitempty"`
}

func (r UpdateCampaignRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name != nil && *r.Name == "" {
		errors["name"] = "Name cannot be empty"
	}
	if r.RPGSystem != nil && *r.RPGSystem == "" {
		errors["rpg_system"] = "RPG system cannot be empty"
	}
	return errors
}

// CampaignResponse represents a campaign in API responses
type CampaignResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	RPGSystem     string `json:"rpg_system"`
	Description   string `json:"description,omitempty"`
	CampaignNotes string `json:"campaign_notes,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func campaignToResponse(campaign *models.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:            campaign.ID.String(),
		Name:          campaign.Name,
		RPGSystem:     campaign.RPGSystem,
		Description:   campaign.Description,
		CampaignNotes: campaign.CampaignNotes,
		CreatedAt:     campaign.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     campaign.UpdatedAt.Format(time.RFC3339),
	}
}

// List handles GET /api/v1/campaigns
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	campaigns, err := h.campaigns.ListByOwner(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list campaigns"})
		return
	}

	response := make([]CampaignResponse, len(campaigns))
	for i, campaign := range campaigns {
		response[i] = campaignToResponse(&campaign)
	}

	writeJSON(w, http.StatusOK, response)
}

// Create handles POST /api/v1/campaigns
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	campaign, err := h.campaigns.Create(r.Context(), userID, store.CampaignInput{
		Name:        req.Name,
		RPGSystem:   req.RPGSystem,
		Description: req.Description,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create campaign"})
		return
	}

	writeJSON(w, http.StatusCreated, campaignToResponse(campaign))
}

// Get handles GET /api/v1/campaigns/:id
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	campaignID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid campaign ID"})
		return
	}

	grant, err := h.authorizer.Campaign(r.Context(), userID, campaignID)
	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Campaign not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get campaign"})
		return
	}

	writeJSON(w, http.StatusOK, campaignToResponse(grant.Campaign()))
}

// Update handles PUT /api/v1/campaigns/:id
func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	campaignID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid campaign ID"})
		return
	}

	var req UpdateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	grant, err := h.authorizer.Campaign(r.Context(), userID, campaignID)
	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Campaign not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get campaign"})
		return
	}

	campaign, err := h.campaigns.Update(r.Context(), grant, store.CampaignPatch{
		Name:          req.Name,
		RPGSystem:     req.RPGSystem,
		Description:   req.Description,
		CampaignNotes: req.CampaignNotes,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update campaign"})
		return
	}

	writeJSON(w, http.StatusOK, campaignToResponse(campaign))
}

// Delete handles DELETE /api/v1/campaigns/:id
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	campaignID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid campaign ID"})
		return
	}

	grant, err := h.authorizer.Campaign(r.Context(), userID, campaignID)
	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Campaign not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get campaign"})
		return
	}

	if err := h.campaigns.Delete(r.Context(), grant); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete campaign"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Campaign deleted successfully"})
}
