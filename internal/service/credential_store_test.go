package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"admindash/internal/auth"
	apperr "admindash/internal/errors"
	"admindash/internal/model"
	"admindash/internal/repository"
	"admindash/internal/validation"
)

func newTestStore(repo repository.UserRepository) *CredentialStore {
	return NewCredentialStore(repo, auth.NewPasswordHasher(bcrypt.MinCost), validation.New())
}

func intPtr(v int) *int { return &v }

func TestCredentialStore_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      NewUser
		wantMsg string
	}{
		{"short password", NewUser{Name: "Ann", Email: "ann@x.com", Password: "abc"}, "Password must be at least 6 characters long"},
		{"short multibyte password", NewUser{Name: "Ann", Email: "ann@x.com", Password: "ééé"}, "Password must be at least 6 characters long"},
		{"password over bcrypt limit", NewUser{Name: "Ann", Email: "ann@x.com", Password: strings.Repeat("a", 80)}, "Password must be at most 72 bytes long"},
		{"missing name", NewUser{Name: "   ", Email: "ann@x.com", Password: "secret1"}, "Please provide a name"},
		{"bad email", NewUser{Name: "Ann", Email: "ann@x", Password: "secret1"}, "Please provide a valid email"},
		{"long name", NewUser{Name: strings.Repeat("a", 51), Email: "ann@x.com", Password: "secret1"}, "Name cannot be more than 50 characters"},
		{"age too high", NewUser{Name: "Ann", Email: "ann@x.com", Password: "secret1", Age: intPtr(151)}, "Age must be at most 150"},
		{"negative age", NewUser{Name: "Ann", Email: "ann@x.com", Password: "secret1", Age: intPtr(-1)}, "Age must be at least 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			store := newTestStore(repo)

			user, err := store.Create(context.Background(), tt.in)

			assert.Nil(t, user)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tt.wantMsg, err.Error())
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCredentialStore_CreateHashesAndNormalizes(t *testing.T) {
	repo := new(MockUserRepository)
	var stored *model.User
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*model.User)
			stored.ID = "u1"
		}).
		Return(nil)

	store := newTestStore(repo)
	user, err := store.Create(context.Background(), NewUser{
		Name:     "  Ann ",
		Email:    " Ann@X.com ",
		Password: "secret1",
		Age:      intPtr(30),
	})
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "ann@x.com", user.Email)
	assert.True(t, user.IsActive)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Empty(t, user.PasswordHash, "returned user must be sanitized")

	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
	repo.AssertExpectations(t)
}

func TestCredentialStore_CreateDuplicate(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateKey)

	user, err := newTestStore(repo).Create(context.Background(), NewUser{Name: "Ann", Email: "ann@x.com", Password: "secret1"})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
}

func TestCredentialStore_CreateStorageFailure(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := newTestStore(repo).Create(context.Background(), NewUser{Name: "Ann", Email: "ann@x.com", Password: "secret1"})

	assert.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestCredentialStore_FindByEmail(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByEmail", mock.Anything, "ann@x.com", true).
		Return(&model.User{ID: "u1", Email: "ann@x.com", PasswordHash: "h"}, nil)
	repo.On("FindByEmail", mock.Anything, "ann@x.com", false).
		Return(&model.User{ID: "u1", Email: "ann@x.com", PasswordHash: "leaked"}, nil)
	repo.On("FindByEmail", mock.Anything, "bob@x.com", false).
		Return(nil, repository.ErrNotFound)

	store := newTestStore(repo)
	ctx := context.Background()

	withHash, err := store.FindByEmail(ctx, " ANN@x.com", true)
	require.NoError(t, err)
	assert.Equal(t, "h", withHash.PasswordHash)

	noHash, err := store.FindByEmail(ctx, "ann@x.com", false)
	require.NoError(t, err)
	assert.Empty(t, noHash.PasswordHash)

	_, err = store.FindByEmail(ctx, "bob@x.com", false)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCredentialStore_VerifyPassword(t *testing.T) {
	store := newTestStore(new(MockUserRepository))
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{PasswordHash: string(hash)}

	assert.True(t, store.VerifyPassword(user, "secret1"))
	assert.False(t, store.VerifyPassword(user, "secret2"))
	assert.False(t, store.VerifyPassword(&model.User{}, "secret1"))
	assert.False(t, store.VerifyPassword(nil, "secret1"))
}

func TestCredentialStore_TouchLastLogin(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("UpdateLastLogin", mock.Anything, "u1", mock.AnythingOfType("time.Time")).Return(nil)

	store := newTestStore(repo)
	updated, err := store.TouchLastLogin(context.Background(), &model.User{ID: "u1", PasswordHash: "h"})
	require.NoError(t, err)

	require.NotNil(t, updated.LastLogin)
	assert.Empty(t, updated.PasswordHash)
	repo.AssertExpectations(t)
}

func TestCredentialStore_TouchLastLoginNotifiesChange(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("UpdateLastLogin", mock.Anything, "u1", mock.AnythingOfType("time.Time")).Return(nil).Once()
	repo.On("UpdateLastLogin", mock.Anything, "u2", mock.AnythingOfType("time.Time")).Return(errors.New("timeout")).Once()

	var changed []string
	store := NewCredentialStore(repo, auth.NewPasswordHasher(bcrypt.MinCost), validation.New(),
		OnUserChange(func(_ context.Context, id string) { changed = append(changed, id) }))

	_, err := store.TouchLastLogin(context.Background(), &model.User{ID: "u1"})
	require.NoError(t, err)
	_, err = store.TouchLastLogin(context.Background(), &model.User{ID: "u2"})
	require.Error(t, err)

	assert.Equal(t, []string{"u1"}, changed)
}
