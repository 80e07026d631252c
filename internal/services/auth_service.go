package services

import (
	"context"
	"errors"
	"fmt"

	"cinematch/internal/auth"
	"cinematch/internal/config"
	"cinematch/internal/models"
	"cinematch/internal/storage"

	"gorm.io/gorm"
)

var (
	ErrUserAlreadyExists  = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService defines the user authentication service interface.
type AuthService interface {
	Register(ctx context.Context, username, displayName, email, password string) (*models.User, error)
	Login(ctx context.Context, usernameOrEmail, password string) (token string, user *models.User, err error)
}

type authService struct {
	userRepo storage.UserRepository
	listRepo storage.ListRepository
	cfg      config.Config
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(userRepo storage.UserRepository, listRepo storage.ListRepository, cfg config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		listRepo: listRepo,
		cfg:      cfg,
	}
}

// Register creates the account and seeds the user's default wishlist and
// recommendations lists, completing onboarding in one step.
func (s *authService) Register(ctx context.Context, username, displayName, email, password string) (*models.User, error) {
	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if email != "" {
		_, err = s.userRepo.GetByEmail(ctx, email)
		if err == nil {
			return nil, ErrUserAlreadyExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := &models.User{
		Username:     username,
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Default lists; a failure here is non-fatal since lists can be
	// created later through the API.
	defaults := []*models.List{
		{UserID: newUser.ID, Type: models.WishlistType, Name: "Wishlist"},
		{UserID: newUser.ID, Type: models.RecommendationsType, Name: "Recommendations", IsPublic: true},
	}
	for _, list := range defaults {
		if err := s.listRepo.CreateList(ctx, list); err != nil {
			return newUser, fmt.Errorf("user created but default list setup failed: %w", err)
		}
	}

	return newUser, nil
}

// Login verifies credentials and issues a JWT.
func (s *authService) Login(ctx context.Context, usernameOrEmail, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, usernameOrEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.userRepo.GetByEmail(ctx, usernameOrEmail)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrUserNotFound
		} else if err != nil {
			return "", nil, fmt.Errorf("failed to look up user by email: %w", err)
		}
	} else if err != nil {
		return "", nil, fmt.Errorf("failed to look up user by username: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.cfg.Auth)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}
