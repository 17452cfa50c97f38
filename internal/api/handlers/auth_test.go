package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/robin/questkeeper/internal/api/dto"
	"github.com/robin/questkeeper/internal/api/handlers"
	"github.com/robin/questkeeper/internal/api/middleware"
	"github.com/robin/questkeeper/internal/auth"
	"github.com/robin/questkeeper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(ts *testutil.TestSetup) http.Handler {
	authService := auth.NewService(ts.DB, ts.JWTService, auth.NewRevocationStore(nil))
	handler := handlers.NewAuthHandler(authService, ts.JWTService, nil)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", handler.Register)
		r.Post("/auth/login", handler.Login)
		r.Post("/auth/logout", handler.Logout)
		r.Get("/auth/{provider}", handler.OAuthLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(ts.JWTService, nil))
			r.Get("/me", handler.Me)
		})
	})
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupAuthRouter(ts)

	t.Run("valid registration", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", map[string]string{
			"email":     "newgm@example.com",
			"password":  "password123",
			"full_name": "New GM",
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp dto.AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "newgm@example.com", resp.User.Email)

		// Token cookie is set
		cookies := rec.Result().Cookies()
		var found bool
		for _, c := range cookies {
			if c.Name == "token" && c.Value != "" {
				found = true
			}
		}
		assert.True(t, found, "token cookie should be set")
	})

	t.Run("duplicate email", func(t *testing.T) {
		body := map[string]string{
			"email":    "dup@example.com",
			"password": "password123",
		}
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		req = testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("weak password", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", map[string]string{
			"email":    "weak@example.com",
			"password": "short",
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", map[string]string{
			"email":    "notanemail",
			"password": "password123",
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupAuthRouter(ts)

	register := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", map[string]string{
		"email":    "login@example.com",
		"password": "password123",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, register)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("correct credentials", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", map[string]string{
			"email":    "login@example.com",
			"password": "password123",
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp dto.AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", map[string]string{
			"email":    "login@example.com",
			"password": "wrongpass123",
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", map[string]string{
			"email":    "nobody@example.com",
			"password": "password123",
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupAuthRouter(ts)

	t.Run("with token clears cookie", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/auth/logout", nil, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var cleared bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == "token" && c.MaxAge < 0 {
				cleared = true
			}
		}
		assert.True(t, cleared, "token cookie should be expired")
	})

	t.Run("without token still succeeds", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/logout", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupAuthRouter(ts)

	t.Run("authenticated", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/me", nil, ts.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp dto.UserDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, ts.User.ID.String(), resp.ID)
		assert.Equal(t, ts.User.Email, resp.Email)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/me", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_OAuthLogin_UnknownProvider(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()
	router := setupAuthRouter(ts)

	req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/auth/myspace", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthHandler_OAuthLogin_RedirectsWithState(t *testing.T) {
	ts := testutil.NewTestContext(t)
	defer ts.Cleanup()

	authService := auth.NewService(ts.DB, ts.JWTService, auth.NewRevocationStore(nil))
	providers := map[string]*auth.OAuthProvider{
		"google": auth.NewGoogleProvider("client-id", "client-secret", "http://localhost:8080/api/v1/auth/google/callback"),
	}
	handler := handlers.NewAuthHandler(authService, ts.JWTService, providers)

	r := chi.NewRouter()
	r.Get("/api/v1/auth/{provider}", handler.OAuthLogin)

	req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/auth/google", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.Contains(t, location, "client_id=client-id")
	assert.Contains(t, location, "state=")

	var stateCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "oauth_state" {
			stateCookie = c
		}
	}
	require.NotNil(t, stateCookie)
	assert.NotEmpty(t, stateCookie.Value)
}
