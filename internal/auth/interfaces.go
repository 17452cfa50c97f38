package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/robin/questkeeper/internal/database/models"
)

// Authenticator defines the interface for user authentication operations.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	LoginWithOAuth(ctx context.Context, identity OAuthIdentity) (*AuthResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateToken(userID uuid.UUID, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Revoker checks whether a token id has been denylisted by logout.
type Revoker interface {
	IsRevoked(ctx context.Context, jti string) bool
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
	_ Revoker       = (*RevocationStore)(nil)
)
