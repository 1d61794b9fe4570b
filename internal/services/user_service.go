package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"taskapp/internal/models"
	"taskapp/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const passwordHashCost = 8

// ProfileUpdate carries the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// UserService handles account registration, credentials and profile data.
type UserService struct {
	userRepo repositories.UserRepository
	auth     *AuthService
	notifier AccountNotifier
	validate *validator.Validate
}

// NewUserService creates a new UserService. A nil notifier disables
// account notifications.
func NewUserService(userRepo repositories.UserRepository, auth *AuthService, notifier AccountNotifier) *UserService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &UserService{
		userRepo: userRepo,
		auth:     auth,
		notifier: notifier,
		validate: newValidator(),
	}
}

// Register creates a user, hashes the password before it is stored and
// opens a first session. The user is removed again when the session cannot
// be opened.
func (s *UserService) Register(ctx context.Context, in UserInput) (*models.User, string, error) {
	in.normalize()
	if err := s.validate.Struct(in); err != nil {
		return nil, "", fromValidator(err)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Age:      in.Age,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, "", newValidationError("email", "is already registered")
		}
		return nil, "", err
	}

	token, err := s.auth.IssueToken(ctx, user)
	if err != nil {
		// Undo the registration.
		if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
			log.Error().Err(delErr).Str("user_id", user.ID).Msg("failed to roll back registration")
		}
		return nil, "", err
	}
	s.notifier.Welcome(user.Name, user.Email)
	return user, token, nil
}

// Authenticate checks an email/password pair against the stored hash.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, authError("no such user")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(strings.TrimSpace(password))); err != nil {
		return nil, authError("credential mismatch")
	}
	return user, nil
}

// Login authenticates and opens a new session alongside any existing ones.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.auth.IssueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetByID returns a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return user, nil
}

// UpdateProfile validates and applies patch to user. The password is
// re-hashed only when the patch changes it.
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, patch ProfileUpdate) (*models.User, error) {
	var in UserInput
	var fields []string
	if patch.Name != nil {
		in.Name = *patch.Name
		fields = append(fields, "Name")
	}
	if patch.Email != nil {
		in.Email = *patch.Email
		fields = append(fields, "Email")
	}
	if patch.Password != nil {
		in.Password = *patch.Password
		fields = append(fields, "Password")
	}
	if patch.Age != nil {
		in.Age = *patch.Age
		fields = append(fields, "Age")
	}
	if len(fields) == 0 {
		return user, nil
	}

	in.normalize()
	if err := s.validate.StructPartial(in, fields...); err != nil {
		return nil, fromValidator(err)
	}

	updated := *user
	if patch.Name != nil {
		updated.Name = in.Name
	}
	if patch.Email != nil {
		updated.Email = in.Email
	}
	if patch.Age != nil {
		updated.Age = in.Age
	}
	if patch.Password != nil {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		updated.Password = hash
	}

	if err := s.userRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, newValidationError("email", "is already registered")
		}
		return nil, translateNotFound(err)
	}
	return &updated, nil
}

// Delete removes the user and every task it owns, then says goodbye.
func (s *UserService) Delete(ctx context.Context, user *models.User) error {
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return translateNotFound(err)
	}
	log.Info().Str("user_id", user.ID).Msg("user deleted")
	s.notifier.Farewell(user.Name, user.Email)
	return nil
}

// UploadAvatar checks the upload metadata, then resizes and stores the
// image. Nothing is decoded when the metadata is rejected.
func (s *UserService) UploadAvatar(ctx context.Context, user *models.User, filename string, size int64, r io.Reader) error {
	if err := CheckAvatarUpload(filename, size); err != nil {
		return err
	}
	data, err := ProcessAvatar(r)
	if err != nil {
		return err
	}
	return s.SetAvatar(ctx, user, data)
}

// SetAvatar replaces the user's avatar with already processed bytes.
func (s *UserService) SetAvatar(ctx context.Context, user *models.User, data []byte) error {
	if err := s.userRepo.SetAvatar(ctx, user.ID, data); err != nil {
		return translateNotFound(err)
	}
	user.Avatar = data
	return nil
}

// ClearAvatar removes the user's avatar.
func (s *UserService) ClearAvatar(ctx context.Context, user *models.User) error {
	return s.SetAvatar(ctx, user, nil)
}

// GetAvatar returns a user's avatar, or ErrNotFound when the user or the
// avatar is missing.
func (s *UserService) GetAvatar(ctx context.Context, userID string) ([]byte, error) {
	data, err := s.userRepo.GetAvatar(ctx, userID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("avatar of user %s: %w", userID, ErrNotFound)
	}
	return data, nil
}

// Logout revokes the token the current request was made with.
func (s *UserService) Logout(ctx context.Context, user *models.User, token string) error {
	return s.auth.RevokeToken(ctx, user, token)
}

// LogoutAll revokes every session of the user.
func (s *UserService) LogoutAll(ctx context.Context, user *models.User) error {
	return s.auth.RevokeAllTokens(ctx, user)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func translateNotFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
