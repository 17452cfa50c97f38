package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/robin/questkeeper/internal/api/handlers"
	"github.com/robin/questkeeper/internal/api/middleware"
	"github.com/robin/questkeeper/internal/authz"
	"github.com/robin/questkeeper/internal/store"
	"github.com/robin/questkeeper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCampaignRouter(ts *testutil.TestSetup) http.Handler {
	authorizer := authz.NewAuthorizer(ts.DB)
	handler := handlers.NewCampaignHandler(authorizer, store.NewCampaigns(ts.DB))

	r := chi.NewRouter()
	r.Route("/api/v1/campaigns", func(r chi.Router) {
		r.Use(middleware.Auth(ts.JWTService, nil))
		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Get("/{id}", handler.Get)
		r.Put("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
	})
	return r
}

func TestCampaignHandler_Create(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupCampaignRouter(ts)

	t.Run("valid request", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/campaigns/", map[string]string{
			"name":       "Curse of Strahd",
			"rpg_system": "D&D 5e",
		}, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp handlers.CampaignResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Curse of Strahd", resp.Name)
		assert.Equal(t, "D&D 5e", resp.RPGSystem)
		assert.NotEmpty(t, resp.ID)
	})

	t.Run("missing name", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/campaigns/", map[string]string{
			"rpg_system": "D&D 5e",
		}, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no token", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/campaigns/", map[string]string{
			"name":       "Sneaky Campaign",
			"rpg_system": "D&D 5e",
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCampaignHandler_List(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupCampaignRouter(ts)

	testutil.CreateTestCampaign(t, ts.DB, ts.User.ID)
	testutil.CreateTestCampaign(t, ts.DB, ts.User.ID)

	// Another user's campaign must not show up
	other, _ := ts.OtherUser(t)
	testutil.CreateTestCampaign(t, ts.DB, other.ID)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/campaigns/", nil, ts.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []handlers.CampaignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestCampaignHandler_Get(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupCampaignRouter(ts)

	campaign := testutil.CreateTestCampaign(t, ts.DB, ts.User.ID)

	t.Run("own campaign", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/campaigns/"+campaign.ID.String(), nil, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp handlers.CampaignResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, campaign.ID.String(), resp.ID)
	})

	t.Run("someone else's campaign is not found", func(t *testing.T) {
		_, otherToken := ts.OtherUser(t)
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/campaigns/"+campaign.ID.String(), nil, otherToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/campaigns/"+uuid.New().String(), nil, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/campaigns/not-a-uuid", nil, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCampaignHandler_Update(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupCampaignRouter(ts)

	campaign := testutil.CreateTestCampaign(t, ts.DB, ts.User.ID)

	t.Run("partial update", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/campaigns/"+campaign.ID.String(), map[string]string{
			"campaign_notes": "The party reached Vallaki.",
		}, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp handlers.CampaignResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "The party reached Vallaki.", resp.CampaignNotes)
		// Untouched fields survive
		assert.Equal(t, "Test Campaign", resp.Name)
		assert.Equal(t, "D&D 5e", resp.RPGSystem)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/campaigns/"+campaign.ID.String(), map[string]string{
			"name": "",
		}, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("cross-tenant update is not found", func(t *testing.T) {
		_, otherToken := ts.OtherUser(t)
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/campaigns/"+campaign.ID.String(), map[string]string{
			"name": "Hijacked",
		}, otherToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCampaignHandler_Delete(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupCampaignRouter(ts)

	campaign := testutil.CreateTestCampaign(t, ts.DB, ts.User.ID)

	t.Run("cross-tenant delete is not found", func(t *testing.T) {
		_, otherToken := ts.OtherUser(t)
		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/campaigns/"+campaign.ID.String(), nil, otherToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("owner deletes", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/campaigns/"+campaign.ID.String(), nil, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		// Fetching again reports not found
		req = testutil.AuthenticatedRequest(t, "GET", "/api/v1/campaigns/"+campaign.ID.String(), nil, ts.Token)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
