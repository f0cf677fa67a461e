package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ShinAdam/Badminton-Elo-App/metrics"
	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/ShinAdam/Badminton-Elo-App/rating"
	"github.com/ShinAdam/Badminton-Elo-App/repositories"
	"github.com/ShinAdam/Badminton-Elo-App/tokens"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	maxUsernameLength = 50
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	// Authenticate verifies a bearer token and rejects revoked ones.
	Authenticate(ctx context.Context, rawToken string) (*AccessToken, error)
	Logout(ctx context.Context, token *AccessToken) error
}

type RegisterInput struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Bio      *string `json:"bio,omitempty"`
	Picture  *string `json:"picture,omitempty"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   int64        `json:"expires_at"`
}

type authService struct {
	userRepo   repositories.UserRepository
	tokens     TokenService
	revocation tokens.RevocationStore
	logger     *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, tokenService TokenService, revocation tokens.RevocationStore, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		userRepo:   userRepo,
		tokens:     tokenService,
		revocation: revocation,
		logger:     logger.With(slog.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Rating:       rating.DefaultRating,
		Bio:          input.Bio,
		Picture:      input.Picture,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserUsernameConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("%w: failed to create user: %v", ErrStorage, err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.Int("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("%w: failed to find user by username: %v", ErrStorage, err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	signed, at, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{
		User:        user,
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresAt:   at.ExpiresAt.Unix(),
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, rawToken string) (*AccessToken, error) {
	at, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, err
	}
	if s.revocation == nil {
		return at, nil
	}
	revoked, err := s.revocation.IsRevoked(ctx, at.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to check token revocation: %v", ErrStorage, err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return at, nil
}

func (s *authService) Logout(ctx context.Context, token *AccessToken) error {
	if token == nil {
		return ErrTokenInvalid
	}
	if s.revocation == nil {
		return nil
	}
	if err := s.revocation.Revoke(ctx, token.ID, token.ExpiresAt); err != nil {
		return fmt.Errorf("%w: failed to revoke token: %v", ErrStorage, err)
	}
	metrics.RevokedTokens.Inc()
	s.logger.InfoContext(ctx, "token revoked", slog.Int("user_id", token.UserID))
	return nil
}

func normalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if username == "" {
		return "", validationError("username is required")
	}
	if len(username) > maxUsernameLength {
		return "", validationError(fmt.Sprintf("username must be at most %d characters", maxUsernameLength))
	}
	return username, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
