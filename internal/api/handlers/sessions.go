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

type SessionHandler struct {
	authorizer *authz.Authorizer
	sessions   *store.Sessions
}

func NewSessionHandler(authorizer *authz.Authorizer, sessions *store.Sessions) *SessionHandler {
	return &SessionHandler{authorizer: authorizer, sessions: sessions}
}

var validSessionStatuses = map[models.SessionStatus]bool{
	models.SessionStatusPlanned:    true,
	models.SessionStatusInProgress: true,
	models.SessionStatusCompleted:  true,
}

// CreateSessionRequest represents the request to create a session
type CreateSessionRequest struct {
	CampaignID       string     `json:"campaign_id"`
	SessionNumber    int        `json:"session_number"`
	Name             string     `json:"name,omitempty"`
	PreparationNotes string     `json:"preparation_notes,omitempty"`
	ScheduledDate    *time.Time `json:"scheduled_date,omitempty"`
}

func (r CreateSessionRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.CampaignID == "" {
		errors["campaign_id"] = "Campaign ID is required"
	} else if _, err := uuid.Parse(r.CampaignID); err != nil {
		errors["campaign_id"] = "Invalid campaign ID"
	}
	if r.SessionNumber < 1 {
		errors["session_number"] = "Session number must be positive"
	}
	return errors
}

// UpdateSessionRequest carries a partial update; absent fields are left
// untouched.
type UpdateSessionRequest struct {
	Name               *string    `json:"name,omitempty"`
	PreparationNotes   *string    `json:"preparation_notes,omitempty"`
	AudioRecordingPath *string    `json:"audio_recording_path,omitempty"`
	Transcript         *string    `json:"transcript,omitempty"`
	Recap              *string    `json:"recap,omitempty"`
	Status             *string    `json:"status,omitempty"`
	ScheduledDate      *time.Time `json:"scheduled_date,omitempty"`
	ActualDate         *time.Time `json:"actual_date,omitempty"`
}

func (r UpdateSessionRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Status != nil && !validSessionStatuses[models.SessionStatus(*r.Status)] {
		errors["status"] = "Status must be one of: planned, in_progress, completed"
	}
	return errors
}

// SessionResponse represents a session in API responses
type SessionResponse struct {
	ID                 string     `json:"id"`
	CampaignID         string     `json:"campaign_id"`
	SessionNumber      int        `json:"session_number"`
	Name               string     `json:"name,omitempty"`
	PreparationNotes   string     `json:"preparation_notes,omitempty"`
	AudioRecordingPath string     `json:"audio_recording_path,omitempty"`
	Transcript         string     `json:"transcript,omitempty"`
	Recap              string     `json:"recap,omitempty"`
	Status             string     `json:"status"`
	ScheduledDate      *time.Time `json:"scheduled_date,omitempty"`
	ActualDate         *time.Time `json:"actual_date,omitempty"`
	CreatedAt          string     `json:"created_at"`
	UpdatedAt          string     `json:"updated_at"`
}

func sessionToResponse(session *models.Session) SessionResponse {
	return SessionResponse{
		ID:                 session.ID.String(),
		CampaignID:         session.CampaignID.String(),
		SessionNumber:      session.SessionNumber,
		Name:               session.Name,
		PreparationNotes:   session.PreparationNotes,
		AudioRecordingPath: session.AudioRecordingPath,
		Transcript:         session.Transcript,
		Recap:              session.Recap,
		Status:             string(session.Status),
		ScheduledDate:      session.ScheduledDate,
		ActualDate:         session.ActualDate,
		CreatedAt:          session.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          session.UpdatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	campaignID, _ := uuid.Parse(req.CampaignID)

	grant, err := h.authorizer.Campaign(r.Context(), userID, campaignID)
	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Campaign not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get campaign"})
		return
	}

	session, err := h.sessions.Create(r.Context(), grant, store.SessionInput{
		SessionNumber:    req.SessionNumber,
		Name:             req.Name,
		PreparationNotes: req.PreparationNotes,
		ScheduledDate:    req.ScheduledDate,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create session"})
		return
	}

	writeJSON(w, http.StatusCreated, sessionToResponse(session))
}

// ListByCampaign handles GET /api/v1/sessions/campaign/:campaignID
func (h *SessionHandler) ListByCampaign(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	campaignID, err := uuid.Parse(chi.URLParam(r, "campaignID"))
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

	sessions, err := h.sessions.ListByCampaign(r.Context(), grant)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list sessions"})
		return
	}

	response := make([]SessionResponse, len(sessions))
	for i, session := range sessions {
		response[i] = sessionToResponse(&session)
	}

	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
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

	writeJSON(w, http.StatusOK, sessionToResponse(grant.Session()))
}

// Update handles PUT /api/v1/sessions/:id
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid session ID"})
		return
	}

	var req UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
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

	patch := store.SessionPatch{
		Name:               req.Name,
		PreparationNotes:   req.PreparationNotes,
		AudioRecordingPath: req.AudioRecordingPath,
		Transcript:         req.Transcript,
		Recap:              req.Recap,
		ScheduledDate:      req.ScheduledDate,
		ActualDate:         req.ActualDate,
	}
	if req.Status != nil {
		status := models.SessionStatus(*req.Status)
		patch.Status = &status
	}

	session, err := h.sessions.Update(r.Context(), grant, patch)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update session"})
		return
	}

	writeJSON(w, http.StatusOK, sessionToResponse(session))
}

// Delete handles DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
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

	if err := h.sessions.Delete(r.Context(), grant); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete session"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Session deleted successfully"})
}
