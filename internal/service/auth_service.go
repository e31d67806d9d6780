package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/benisnotitdog/task-manager-api/internal/domain"
	"github.com/benisnotitdog/task-manager-api/internal/logger"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 64
	minPasswordLen = 1
	maxPasswordLen = 72 // bcrypt input limit, in bytes
)

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

// AuthService owns registration, credential checks and token verification.
type AuthService struct {
	users     UserStore
	passwords *PasswordHasher
	tokens    *JWTService
	now       func() time.Time
}

func NewAuthService(users UserStore, passwords *PasswordHasher, tokens *JWTService) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		now:       time.Now,
	}
}

// SetClock replaces the time source.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// NormalizeUsername trims and lower-cases a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateCredentials(username, password string) error {
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return fmt.Errorf("%w: username must be %d-%d characters", domain.ErrValidation, minUsernameLen, maxUsernameLen)
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return fmt.Errorf("%w: password must be %d-%d bytes", domain.ErrValidation, minPasswordLen, maxPasswordLen)
	}
	return nil
}

// Register creates a user with a hashed password.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = NormalizeUsername(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Authenticate checks credentials. Unknown users and wrong passwords both
// yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (int64, error) {
	username = NormalizeUsername(username)

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.passwords.burn(password)
			return 0, s.fail(ctx, ErrInvalidCredentials)
		}
		return 0, err
	}

	if !s.passwords.Verify(password, u.PasswordHash) {
		return 0, s.fail(ctx, ErrInvalidCredentials)
	}
	return u.ID, nil
}

// Login authenticates and issues an access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	userID, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.GenerateJWT(userID, s.now())
	if err != nil {
		return nil, err
	}
	TokensIssued.Inc()

	logger.WithContext(ctx).Info("user logged in", "user_id", userID)
	return &LoginResult{UserID: userID, Token: token, ExpiresAt: expiresAt}, nil
}

// VerifyToken validates a bearer token and returns the authenticated user id.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (int64, error) {
	userID, err := s.tokens.ParseJWT(token, s.now())
	if err != nil {
		return 0, s.fail(ctx, err)
	}
	return userID, nil
}

// Me returns the caller's user record.
func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// the token outlived its user
			return nil, s.fail(ctx, ErrInvalidCredentials)
		}
		return nil, err
	}
	return u, nil
}

// DeleteAccount removes the caller and, through the store, all their tasks.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.fail(ctx, ErrInvalidCredentials)
		}
		return err
	}
	logger.WithContext(ctx).Info("user deleted", "user_id", userID)
	return nil
}

func (s *AuthService) fail(ctx context.Context, err error) error {
	reason := FailureReason(err)
	AuthFailures.WithLabelValues(reason).Inc()
	logger.WithContext(ctx).Warn("authentication failed", "reason", reason)
	return err
}
