// Package auth implements password accounts with opaque bearer
// session tokens. Passwords are bcrypt-hashed; tokens are random and
// carry no claims, every request hits the session store.
package auth

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/internal/errors"
)

// minPasswordLength matches the registration contract
const minPasswordLength = 8

// UserRepository is the account store the service persists through
type UserRepository interface {
	Create(ctx context.Context, user *dataset.User) error
	GetByID(ctx context.Context, id core.ID) (*dataset.User, error)
	GetByEmail(ctx context.Context, email string) (*dataset.User, error)
	Update(ctx context.Context, user *dataset.User) error
	Delete(ctx context.Context, id core.ID) error
}

// SessionRepository is the token store
type SessionRepository interface {
	Create(ctx context.Context, session *dataset.Session) error
	GetByToken(ctx context.Context, token string) (*dataset.Session, error)
	Delete(ctx context.Context, token string) error
}

// Service handles registration, login and session validation
type Service struct {
	users      UserRepository
	sessions   SessionRepository
	sessionTTL time.Duration
}

// NewService creates an auth service
func NewService(users UserRepository, sessions SessionRepository, sessionTTL time.Duration) *Service {
	return &Service{users: users, sessions: sessions, sessionTTL: sessionTTL}
}

// Register creates a new account with a bcrypt-hashed password
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*dataset.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.ValidationError("a valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, errors.ValidationError("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &dataset.User{
		ID:             core.NewID(),
		Email:          email,
		FullName:       strings.TrimSpace(fullName),
		HashedPassword: string(hash),
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[Auth] registered user %s", user.ID)
	return user, nil
}

// Login verifies credentials and issues a session token. Wrong email
// and wrong password produce the same error so accounts cannot be
// enumerated.
func (s *Service) Login(ctx context.Context, email, password string) (*dataset.Session, *dataset.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			return nil, nil, errors.Unauthorized("invalid email or password")
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, errors.Unauthorized("account is disabled")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, nil, errors.Unauthorized("invalid email or password")
	}

	session := &dataset.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// Logout invalidates a session token
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a bearer token to its user. Expired tokens
// are deleted on sight.
func (s *Service) Authenticate(ctx context.Context, token string) (*dataset.User, error) {
	if token == "" {
		return nil, errors.Unauthorized("missing session token")
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			log.Printf("[Auth] expired-session cleanup failed: %v", err)
		}
		return nil, errors.Unauthorized("session expired")
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			return nil, errors.Unauthorized("invalid session token")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.Unauthorized("account is disabled")
	}
	return user, nil
}

// UpdateProfile changes the user's email and/or full name. Empty
// fields keep their current value.
func (s *Service) UpdateProfile(ctx context.Context, user *dataset.User, email, fullName string) (*dataset.User, error) {
	if email != "" {
		email = strings.ToLower(strings.TrimSpace(email))
		if !strings.Contains(email, "@") {
			return nil, errors.ValidationError("a valid email is required")
		}
		user.Email = email
	}
	if fullName != "" {
		user.FullName = strings.TrimSpace(fullName)
	}
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user; sessions and dataset rows cascade
// in the schema
func (s *Service) DeleteAccount(ctx context.Context, id core.ID) error {
	return s.users.Delete(ctx, id)
}
