package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/robin/questkeeper/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
)

type Service struct {
	db          *gorm.DB
	jwt         *JWTService
	revocations *RevocationStore
}

func NewService(db *gorm.DB, jwt *JWTService, revocations *RevocationStore) *Service {
	return &Service{db: db, jwt: jwt, revocations: revocations}
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("email = ?", input.Email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if user.PasswordHash == "" || !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

// LoginWithOAuth finds the user by provider id, falls back to linking by
// email, and registers a new account when neither matches.
func (s *Service) LoginWithOAuth(ctx context.Context, identity OAuthIdentity) (*AuthResponse, error) {
	providerColumn, err := providerIDColumn(identity.Provider)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).
		Where(providerColumn+" = ?", identity.ProviderID).
		First(&user).Error

	switch {
	case err == nil:
		// Known provider identity.
	case errors.Is(err, gorm.ErrRecordNotFound) && identity.Email != "":
		err = s.db.WithContext(ctx).Where("email = ?", identity.Email).First(&user).Error
		if err == nil {
			// Existing account: link the provider identity.
			if uerr := s.db.WithContext(ctx).Model(&user).
				Update(providerColumn, identity.ProviderID).Error; uerr != nil {
				return nil, uerr
			}
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			user, err = s.createOAuthUser(ctx, providerColumn, identity)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = s.createOAuthUser(ctx, providerColumn, identity)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

func (s *Service) createOAuthUser(ctx context.Context, providerColumn string, identity OAuthIdentity) (models.User, error) {
	providerID := identity.ProviderID
	user := models.User{
		Email:     identity.Email,
		FullName:  identity.Name,
		AvatarURL: identity.AvatarURL,
		IsActive:  true,
	}
	switch providerColumn {
	case "google_id":
		user.GoogleID = &providerID
	case "discord_id":
		user.DiscordID = &providerID
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Logout revokes the token's jti for the remainder of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.revocations.Revoke(ctx, claims.ID, ttl)
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
