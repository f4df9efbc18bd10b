// Package auth handles account registration, credential checks, and the
// opaque bearer tokens the HTTP layer authenticates with.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/storage"
)

// ErrInvalidCredentials covers both unknown emails and wrong passwords,
// so a caller cannot probe which accounts exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidToken marks a bearer token that is unknown or expired.
var ErrInvalidToken = errors.New("invalid or expired token")

type Service struct {
	store      *storage.Store
	bcryptCost int
	tokenTTL   time.Duration
}

func New(store *storage.Store, bcryptCost int, tokenTTL time.Duration) *Service {
	return &Service{store: store, bcryptCost: bcryptCost, tokenTTL: tokenTTL}
}

// Register creates an account with zero balances.
func (s *Service) Register(ctx context.Context, email, username, password string) (*core.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)
	if email == "" || !strings.Contains(email, "@") {
		return nil, core.NewValidationError("a valid email is required")
	}
	if username == "" {
		return nil, core.NewValidationError("username is required")
	}
	if len(password) < 8 {
		return nil, core.NewValidationError("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, email, username, string(hash))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, core.NewValidationError("email or username already registered")
		}
		return nil, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Login verifies the password and mints a session token. Only the
// SHA-256 of the token is stored; the plaintext exists once, in the
// response to this call.
func (s *Service) Login(ctx context.Context, email, password string) (string, *core.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", nil, fmt.Errorf("generating session token: %w", err)
	}
	expiresAt := time.Now().UTC().Add(s.tokenTTL)
	if err := s.store.CreateSession(ctx, hashToken(token), user.ID, expiresAt); err != nil {
		return "", nil, err
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return token, user, nil
}

// Logout revokes a session token. Revoking an unknown token is a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, hashToken(token))
}

// ResolveToken maps a bearer token to its user, rejecting expired and
// unknown tokens alike.
func (s *Service) ResolveToken(ctx context.Context, token string) (*core.User, error) {
	user, err := s.store.GetSessionUser(ctx, hashToken(token), time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// PurgeExpiredSessions drops sessions past their expiry.
func (s *Service) PurgeExpiredSessions(ctx context.Context) error {
	return s.store.DeleteExpiredSessions(ctx, time.Now().UTC())
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
