package repositories

import (
	"context"
	"errors"
	"fmt"

	"taskapp/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Tokens").Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID. The avatar blob is not loaded.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Omit("Avatar").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by their (normalized) email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Omit("Avatar").First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// Update writes the profile columns of user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).
		Model(user).
		Select("Name", "Email", "Password", "Age", "UpdatedAt").
		Updates(user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user %s: %w", user.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrNotFound)
	}
	return nil
}

// Delete removes the user, its tasks and its tokens in one transaction.
func (r *GORMUserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("failed to delete tasks of user %s: %w", id, err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.UserToken{}).Error; err != nil {
			return fmt.Errorf("failed to delete tokens of user %s: %w", id, err)
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// AddToken appends a session token to the user's active list.
func (r *GORMUserRepository) AddToken(ctx context.Context, userID, token string) error {
	row := &models.UserToken{UserID: userID, Token: token}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to store token for user %s: %w", userID, err)
	}
	return nil
}

// HasToken reports whether token is still active for the user.
func (r *GORMUserRepository) HasToken(ctx context.Context, userID, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserToken{}).
		Where("user_id = ? AND token = ?", userID, token).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up token for user %s: %w", userID, err)
	}
	return count > 0, nil
}

// RemoveToken revokes a single session.
func (r *GORMUserRepository) RemoveToken(ctx context.Context, userID, token string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&models.UserToken{}).Error
	if err != nil {
		return fmt.Errorf("failed to revoke token for user %s: %w", userID, err)
	}
	return nil
}

// RemoveAllTokens revokes every session of the user.
func (r *GORMUserRepository) RemoveAllTokens(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.UserToken{}).Error; err != nil {
		return fmt.Errorf("failed to revoke tokens for user %s: %w", userID, err)
	}
	return nil
}

// GetAvatar returns the stored avatar bytes, which may be empty.
func (r *GORMUserRepository) GetAvatar(ctx context.Context, userID string) ([]byte, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Select("id", "avatar").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get avatar of user %s: %w", userID, err)
	}
	return user.Avatar, nil
}

// SetAvatar stores avatar on the user record.
func (r *GORMUserRepository) SetAvatar(ctx context.Context, userID string, avatar []byte) error {
	var value interface{} = avatar
	if len(avatar) == 0 {
		value = gorm.Expr("NULL")
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("avatar", value)
	if res.Error != nil {
		return fmt.Errorf("failed to update avatar of user %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", userID, ErrNotFound)
	}
	return nil
}
