package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/techdesk/helpdesk-service/internal/auth"
	"github.com/techdesk/helpdesk-service/internal/config"
	"github.com/techdesk/helpdesk-service/internal/domain"
	"github.com/techdesk/helpdesk-service/internal/repository"
	apperrors "github.com/techdesk/helpdesk-service/pkg/util"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
)

// AuthService handles account registration and login.
type AuthService struct {
	accounts repository.AccountRepository
	tokens   *auth.TokenManager
	cfg      config.AuthConfig
	logger   *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	AccountRepo repository.AccountRepository
	Logger      *zap.Logger
}

// RegisterInput describes a registration payload.
type RegisterInput struct {
	Username string
	Password string
	Role     domain.Role
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		accounts: deps.AccountRepo,
		tokens:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		cfg:      cfg.Auth,
		logger:   deps.Logger,
	}
}

// TokenManager exposes the token manager for the HTTP middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Register creates a new account with a hashed password. Usernames are
// unique; the role is fixed at registration and never changes afterwards.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	username := strings.TrimSpace(input.Username)
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return nil, apperrors.NewValidationError("username must be between 3 and 50 characters", nil)
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password must be at least 6 characters", nil)
	}
	if _, ok := domain.ParseRole(string(input.Role)); !ok {
		return nil, apperrors.NewValidationError("invalid role value", nil)
	}

	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		s.logger.Warn("registration failed: username already exists", zap.String("username", username))
		return nil, apperrors.NewConflict("username already exists", map[string]any{"username": username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hashed, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	account := &domain.Account{
		Username:     username,
		PasswordHash: hashed,
		Role:         input.Role,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		zap.String("account_id", account.ID),
		zap.String("username", account.Username),
		zap.String("role", string(account.Role)))
	return account, nil
}

// Login verifies credentials and issues a bearer token carrying the account
// id and role.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Account, string, time.Time, error) {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("login failed: unknown username", zap.String("username", username))
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		s.logger.Warn("login failed: bad password", zap.String("username", username))
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	s.logger.Info("account logged in", zap.String("username", account.Username))
	return account, token, expiresAt, nil
}
