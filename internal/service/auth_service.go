package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"admindash/internal/auth"
	apperr "admindash/internal/errors"
	"admindash/internal/logging"
	"admindash/internal/model"
	"admindash/internal/repository"
)

// Session is the outcome of a successful register or login.
type Session struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// RegisterInput carries the fields submitted at registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      *int
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	// Logout ends the session carried by token. Sessions are stateless, so this
	// never fails; token may be empty or invalid.
	Logout(ctx context.Context, token string)
	// WhoAmI resolves the user a session token belongs to.
	WhoAmI(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	store  *CredentialStore
	tokens *auth.TokenService
	log    logging.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store *CredentialStore, tokens *auth.TokenService, log logging.Logger) AuthService {
	return &authService{
		store:  store,
		tokens: tokens,
		log:    log.With("component", "auth"),
	}
}

// Register creates an account and opens a session for it.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, apperr.Validation("Name, email, and password are required")
	}
	if err := CheckPassword(in.Password); err != nil {
		return nil, err
	}

	// The unique index still decides races between concurrent registrations.
	if _, err := s.store.FindByEmail(ctx, in.Email, false); err == nil {
		return nil, apperr.ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, s.internal(ctx, "register: check existing email", err)
	}

	user, err := s.store.Create(ctx, NewUser{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Age:      in.Age,
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, s.internal(ctx, "register: create user", err)
	}

	sess, err := s.open(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return sess, nil
}

// Login authenticates by email and password. Every credential failure
// yields the same error; the reason is only logged.
func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	user, err := s.store.FindByEmail(ctx, email, true)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.rejectLogin(ctx, "unknown_email", "")
		}
		return nil, s.internal(ctx, "login: find user", err)
	}
	if !s.store.VerifyPassword(user, password) {
		return nil, s.rejectLogin(ctx, "bad_password", user.ID)
	}
	if !user.IsActive {
		return nil, s.rejectLogin(ctx, "inactive", user.ID)
	}

	user, err = s.store.TouchLastLogin(ctx, user)
	if err != nil {
		return nil, s.internal(ctx, "login: touch last login", err)
	}

	sess, err := s.open(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return sess, nil
}

func (s *authService) Logout(ctx context.Context, token string) {
	// Decoded only to attribute the log line.
	if claims, err := s.tokens.Decode(token); err == nil {
		s.log.Info(ctx, "user logged out", "user_id", claims.ID)
		return
	}
	s.log.Debug(ctx, "logout without session")
}

func (s *authService) WhoAmI(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperr.ErrMissingToken
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.log.Info(ctx, "token rejected", "reason", tokenReason(err))
		return nil, apperr.ErrInvalidToken.WithCause(err)
	}

	user, err := s.store.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrUserUnavailable
		}
		return nil, s.internal(ctx, "whoami: find user", err)
	}
	if !user.IsActive {
		return nil, apperr.ErrUserUnavailable
	}
	return user, nil
}

func (s *authService) open(ctx context.Context, user *model.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(auth.Identity{ID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		return nil, s.internal(ctx, "issue token", err)
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) rejectLogin(ctx context.Context, reason, userID string) error {
	args := []any{"reason", reason}
	if userID != "" {
		args = append(args, "user_id", userID)
	}
	s.log.Warn(ctx, "login rejected", args...)
	return apperr.ErrInvalidCredentials
}

func (s *authService) internal(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op, "error", err)
	return apperr.Internal(err)
}

func tokenReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, auth.ErrTokenSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}
