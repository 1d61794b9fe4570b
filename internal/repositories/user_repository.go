package repositories

import (
	"context"

	"taskapp/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Update persists name, email, password and age of an existing user.
	Update(ctx context.Context, user *models.User) error
	// Delete removes the user together with every task and token it owns.
	Delete(ctx context.Context, id string) error

	AddToken(ctx context.Context, userID, token string) error
	HasToken(ctx context.Context, userID, token string) (bool, error)
	RemoveToken(ctx context.Context, userID, token string) error
	RemoveAllTokens(ctx context.Context, userID string) error

	GetAvatar(ctx context.Context, userID string) ([]byte, error)
	// SetAvatar replaces the stored avatar; a nil slice clears it.
	SetAvatar(ctx context.Context, userID string, avatar []byte) error
}
