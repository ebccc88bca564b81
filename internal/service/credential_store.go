package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"admindash/internal/auth"
	apperr "admindash/internal/errors"
	"admindash/internal/model"
	"admindash/internal/repository"
	"admindash/internal/validation"
)

const (
	// MinPasswordLength is the shortest password accepted at registration,
	// counted in characters.
	MinPasswordLength = 6
	// MaxPasswordBytes is the longest password bcrypt can hash.
	MaxPasswordBytes = 72
)

// CheckPassword enforces the password length rules of registration.
func CheckPassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperr.Validation(fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return apperr.Validation(fmt.Sprintf("Password must be at most %d bytes long", MaxPasswordBytes))
	}
	return nil
}

// NewUser carries the fields of a user being created.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Age      *int
}

// CredentialStore persists user identities and verifies their passwords.
type CredentialStore struct {
	repo     repository.UserRepository
	hasher   *auth.PasswordHasher
	validate *validator.Validate
	now      func() time.Time
	onChange []func(ctx context.Context, id string)
}

// StoreOption customizes a CredentialStore.
type StoreOption func(*CredentialStore)

// OnUserChange registers fn to run after a stored user has been modified.
func OnUserChange(fn func(ctx context.Context, id string)) StoreOption {
	return func(s *CredentialStore) {
		s.onChange = append(s.onChange, fn)
	}
}

// NewCredentialStore builds a credential store over repo.
func NewCredentialStore(repo repository.UserRepository, hasher *auth.PasswordHasher, validate *validator.Validate, opts ...StoreOption) *CredentialStore {
	s := &CredentialStore{
		repo:     repo,
		hasher:   hasher,
		validate: validate,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail trims and lowercases an email address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail looks up a user by exact (normalized) email. The password hash
// is only loaded when withPassword is set. Returns repository.ErrNotFound
// when there is no such user.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string, withPassword bool) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email), withPassword)
	if err != nil {
		return nil, err
	}
	if !withPassword {
		return user.Sanitized(), nil
	}
	return user, nil
}

// FindByID returns the sanitized user with id.
func (s *CredentialStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// Create validates nu, hashes its password and stores the user. Validation
// failures and duplicate emails are returned as classified errors.
func (s *CredentialStore) Create(ctx context.Context, nu NewUser) (*model.User, error) {
	if err := CheckPassword(nu.Password); err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     strings.TrimSpace(nu.Name),
		Email:    NormalizeEmail(nu.Email),
		Age:      nu.Age,
		Role:     model.RoleUser,
		IsActive: true,
	}
	if err := s.validate.Struct(user); err != nil {
		return nil, apperr.Validation(validation.Message(err))
	}

	hash, err := s.hasher.Hash(nu.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperr.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user.Sanitized(), nil
}

// VerifyPassword reports whether candidate matches the stored hash of user.
// A user loaded without its hash never verifies.
func (s *CredentialStore) VerifyPassword(user *model.User, candidate string) bool {
	if !user.HasPassword() {
		return false
	}
	return s.hasher.Compare(user.PasswordHash, candidate)
}

// TouchLastLogin records now as the last login of user and returns the
// sanitized, updated user.
func (s *CredentialStore) TouchLastLogin(ctx context.Context, user *model.User) (*model.User, error) {
	at := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, at); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	for _, fn := range s.onChange {
		fn(ctx, user.ID)
	}
	updated := user.Sanitized()
	updated.LastLogin = &at
	return updated, nil
}
