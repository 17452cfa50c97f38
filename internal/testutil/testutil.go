package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/robin/questkeeper/internal/auth"
	"github.com/robin/questkeeper/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Campaign{},
		&models.Session{},
		&models.NPC{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CreateTestUser creates a test user with a hashed password
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		FullName:     "Test User",
		IsActive:     true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestCampaign creates a test campaign owned by the given user
func CreateTestCampaign(t *testing.T, db *gorm.DB, ownerID uuid.UUID) *models.Campaign {
	t.Helper()

	campaign := &models.Campaign{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name:      "Test Campaign",
		RPGSystem: "D&D 5e",
		OwnerID:   ownerID,
	}

	if err := db.Create(campaign).Error; err != nil {
		t.Fatalf("failed to create test campaign: %v", err)
	}

	return campaign
}

// CreateTestSession creates a test session in the given campaign
func CreateTestSession(t *testing.T, db *gorm.DB, campaignID uuid.UUID, number int) *models.Session {
	t.Helper()

	session := &models.Session{
		Base: models.Base{
			ID: uuid.New(),
		},
		CampaignID:    campaignID,
		SessionNumber: number,
		Status:        models.SessionStatusPlanned,
	}

	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}

	return session
}

// CreateTestNPC creates a test NPC in the given session
func CreateTestNPC(t *testing.T, db *gorm.DB, sessionID uuid.UUID, name string) *models.NPC {
	t.Helper()

	npc := &models.NPC{
		Base: models.Base{
			ID: uuid.New(),
		},
		SessionID:         sessionID,
		Name:              name,
		Role:              "shopkeeper",
		AIGenerated:       true,
		IntegrationStatus: models.IntegrationStatusPending,
	}

	if err := db.Create(npc).Error; err != nil {
		t.Fatalf("failed to create test npc: %v", err)
	}

	return npc
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// TestSetup holds the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	User       *models.User
	Token      string
}

// NewTestContext creates a complete test setup with DB, user, and token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	user := CreateTestUser(t, db)
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		User:       user,
		Token:      token,
	}
}

// OtherUser creates a second user with their own token, for
// cross-tenant cases.
func (ts *TestSetup) OtherUser(t *testing.T) (*models.User, string) {
	t.Helper()
	user := CreateTestUser(t, ts.DB)
	return user, GenerateTestToken(t, ts.JWTService, user)
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
