package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/robin/questkeeper/internal/api/handlers"
	"github.com/robin/questkeeper/internal/api/middleware"
	"github.com/robin/questkeeper/internal/auth"
	"github.com/robin/questkeeper/internal/authz"
	"github.com/robin/questkeeper/internal/store"
	"github.com/robin/questkeeper/internal/uploads"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	Revocations    *auth.RevocationStore
	OAuthProviders map[string]*auth.OAuthProvider
	UploadStore    *uploads.Store
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	authorizer := authz.NewAuthorizer(cfg.DB)
	campaigns := store.NewCampaigns(cfg.DB)
	sessions := store.NewSessions(cfg.DB)
	npcs := store.NewNPCs(cfg.DB)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.JWTService, cfg.OAuthProviders)
	campaignHandler := handlers.NewCampaignHandler(authorizer, campaigns)
	sessionHandler := handlers.NewSessionHandler(authorizer, sessions)
	npcHandler := handlers.NewNPCHandler(authorizer, npcs)
	uploadHandler := handlers.NewUploadHandler(cfg.UploadStore)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/{provider}", authHandler.OAuthLogin)
		r.Get("/auth/{provider}/callback", authHandler.OAuthCallback)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService, cfg.Revocations))

			r.Get("/me", authHandler.Me)

			// Campaign endpoints
			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", campaignHandler.List)
				r.Post("/", campaignHandler.Create)
				r.Get("/{id}", campaignHandler.Get)
				r.Put("/{id}", campaignHandler.Update)
				r.Delete("/{id}", campaignHandler.Delete)
			})

			// Session endpoints
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", sessionHandler.Create)
				r.Get("/campaign/{campaignID}", sessionHandler.ListByCampaign)
				r.Get("/{id}", sessionHandler.Get)
				r.Put("/{id}", sessionHandler.Update)
				r.Delete("/{id}", sessionHandler.Delete)
			})

			// NPC endpoints
			r.Route("/npcs", func(r chi.Router) {
				r.Post("/", npcHandler.Create)
				r.Get("/session/{sessionID}", npcHandler.ListBySession)
				r.Get("/{id}", npcHandler.Get)
				r.Put("/{id}", npcHandler.Update)
				r.Delete("/{id}", npcHandler.Delete)
			})

			// Upload endpoints - limited per user since files are heavy
			r.Route("/uploads", func(r chi.Router) {
				r.Use(middleware.RateLimitByUser(30, 60))
				r.Post("/file", uploadHandler.Upload)
				r.Get("/files", uploadHandler.List)
				r.Get("/file/{fileID}", uploadHandler.Download)
				r.Delete("/file/{fileID}", uploadHandler.Delete)
			})
		})
	})

	return &Router{r}
}
