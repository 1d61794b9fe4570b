package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskapp/internal/models"
	"taskapp/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultTokenTTL is how long a session token stays valid.
const DefaultTokenTTL = time.Hour

// AuthService issues, verifies and revokes session tokens.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService. A non-positive ttl falls back
// to DefaultTokenTTL.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  ttl,
	}
}

// IssueToken signs a token bound to the user and appends it to the user's
// active sessions.
func (s *AuthService) IssueToken(ctx context.Context, user *models.User) (string, error) {
	now := jwt.TimeFunc()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"jti":     uuid.New().String(),
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.userRepo.AddToken(ctx, user.ID, tokenString); err != nil {
		return "", err
	}
	return tokenString, nil
}

// ValidateToken checks the signature and expiry of a token and returns its
// claims. It does not consult the store.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token: %v", ErrAuth, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, authError("invalid token")
	}
	if _, ok := claims["exp"]; !ok {
		return nil, authError("token has no expiry")
	}
	return claims, nil
}

// ResolveToken maps a bearer token to its user. The token must be validly
// signed, unexpired, and still present in the user's active sessions.
func (s *AuthService) ResolveToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, authError("token carries no user")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, authError("user no longer exists")
		}
		return nil, err
	}

	active, err := s.userRepo.HasToken(ctx, user.ID, tokenString)
	if err != nil {
		return nil, err
	}
	if !active {
		log.Debug().Str("user_id", user.ID).Msg("rejected revoked token")
		return nil, authError("token has been revoked")
	}
	return user, nil
}

// RevokeToken ends a single session.
func (s *AuthService) RevokeToken(ctx context.Context, user *models.User, token string) error {
	return s.userRepo.RemoveToken(ctx, user.ID, token)
}

// RevokeAllTokens ends every session of the user.
func (s *AuthService) RevokeAllTokens(ctx context.Context, user *models.User) error {
	return s.userRepo.RemoveAllTokens(ctx, user.ID)
}
