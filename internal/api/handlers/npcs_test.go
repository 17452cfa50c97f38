package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/robin/questkeeper/internal/api/handlers"
	"github.com/robin/questkeeper/internal/api/middleware"
	"github.com/robin/questkeeper/internal/authz"
	"github.com/robin/questkeeper/internal/store"
	"github.com/robin/questkeeper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupNPCRouter(ts *testutil.TestSetup) http.Handler {
	authorizer := authz.NewAuthorizer(ts.DB)
	handler := handlers.NewNPCHandler(authorizer, store.NewNPCs(ts.DB))

	r := chi.NewRouter()
	r.Route("/api/v1/npcs", func(r chi.Router) {
		r.Use(middleware.Auth(ts.JWTService, nil))
		r.Post("/", handler.Create)
		r.Get("/session/{sessionID}", handler.ListBySession)
		r.Get("/{id}", handler.Get)
		r.Put("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
	})
	return r
}

func TestNPCHandler_Create(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupNPCRouter(ts)

	campaign := testutil.CreateTestCampaign(t, ts.DB, ts.User.ID)
	session := testutil.CreateTestSession(t, ts.DB, campaign.ID, 1)

	t.Run("valid request", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/npcs/", map[string]interface{}{
			"session_id": session.ID.String(),
			"name":       "Madam Eva",
			"role":       "fortune teller",
		}, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp handlers.NPCResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Madam Eva", resp.Name)
		assert.Equal(t, "pending", resp.IntegrationStatus)
		assert.True(t, resp.AIGenerated)
	})

	t.Run("ai_generated can be overridden", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/npcs/", map[string]interface{}{
			"session_id":   session.ID.String(),
			"name":         "Handmade NPC",
			"ai_generated": false,
		}, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp handlers.NPCResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.AIGenerated)
	})

	t.Run("missing name", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/npcs/", map[string]interface{}{
			"session_id": session.ID.String(),
		}, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create in someone else's session is not found", func(t *testing.T) {
		_, otherToken := ts.OtherUser(t)
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/npcs/", map[string]interface{}{
			"session_id": session.ID.String(),
			"name":       "Intruder",
		}, otherToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNPCHandler_ListBySession(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupNPCRouter(ts)

	campaign := testutil.CreateTestCampaign(t, ts.DB, ts.User.ID)
	session := testutil.CreateTestSession(t, ts.DB, campaign.ID, 1)
	testutil.CreateTestNPC(t, ts.DB, session.ID, "First")
	testutil.CreateTestNPC(t, ts.DB, session.ID, "Second")

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/npcs/session/"+session.ID.String(), nil, ts.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []handlers.NPCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestNPCHandler_Get(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupNPCRouter(ts)

	campaign := testutil.CreateTestCampaign(t, ts.DB, ts.User.ID)
	session := testutil.CreateTestSession(t, ts.DB, campaign.ID, 1)
	npc := testutil.CreateTestNPC(t, ts.DB, session.ID, "Ireena")

	t.Run("own npc", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/npcs/"+npc.ID.String(), nil, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp handlers.NPCResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Ireena", resp.Name)
	})

	t.Run("someone else's npc is not found", func(t *testing.T) {
		_, otherToken := ts.OtherUser(t)
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/npcs/"+npc.ID.String(), nil, otherToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNPCHandler_Update(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupNPCRouter(ts)

	campaign := testutil.CreateTestCampaign(t, ts.DB, ts.User.ID)
	session := testutil.CreateTestSession(t, ts.DB, campaign.ID, 1)
	npc := testutil.CreateTestNPC(t, ts.DB, session.ID, "Ireena")

	t.Run("approve npc", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/npcs/"+npc.ID.String(), map[string]interface{}{
			"integration_status": "approved",
		}, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp handlers.NPCResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "approved", resp.IntegrationStatus)
		assert.Equal(t, "Ireena", resp.Name)
	})

	t.Run("invalid integration status rejected", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/npcs/"+npc.ID.String(), map[string]interface{}{
			"integration_status": "rejected",
		}, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("cross-tenant update is not found", func(t *testing.T) {
		_, otherToken := ts.OtherUser(t)
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/npcs/"+npc.ID.String(), map[string]interface{}{
			"name": "Hijacked",
		}, otherToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNPCHandler_Delete(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupNPCRouter(ts)

	campaign := testutil.CreateTestCampaign(t, ts.DB, ts.User.ID)
	session := testutil.CreateTestSession(t, ts.DB, campaign.ID, 1)
	npc := testutil.CreateTestNPC(t, ts.DB, session.ID, "Doomed")

	req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/npcs/"+npc.ID.String(), nil, ts.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = testutil.AuthenticatedRequest(t, "GET", "/api/v1/npcs/"+npc.ID.String(), nil, ts.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
