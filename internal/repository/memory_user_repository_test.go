package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admindash/internal/model"
)

func newUser(name, email string) *model.User {
	return &model.User{Name: name, Email: email, PasswordHash: "hash", Role: model.RoleUser, IsActive: true}
}

func TestMemoryUserRepository_CreateAndFind(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	u := newUser("Ann", "ann@x.com")
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", byID.Email)
	assert.Empty(t, byID.PasswordHash)

	withHash, err := repo.FindByEmail(ctx, "ann@x.com", true)
	require.NoError(t, err)
	assert.Equal(t, "hash", withHash.PasswordHash)

	noHash, err := repo.FindByEmail(ctx, "ann@x.com", false)
	require.NoError(t, err)
	assert.Empty(t, noHash.PasswordHash)

	_, err = repo.FindByEmail(ctx, "bob@x.com", true)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("Ann", "ann@x.com")))
	err := repo.Create(ctx, newUser("Other Ann", "ann@x.com"))
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemoryUserRepository_ConcurrentCreateSameEmail(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	const workers = 16
	var created, duplicates atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(ctx, newUser(fmt.Sprintf("Ann %d", i), "ann@x.com"))
			switch err {
			case nil:
				created.Add(1)
			case ErrDuplicateKey:
				duplicates.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(workers-1), duplicates.Load())
}

func TestMemoryUserRepository_UpdateLastLoginAndSetActive(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	u := newUser("Ann", "ann@x.com")
	require.NoError(t, repo.Create(ctx, u))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, u.ID, at))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, at.Equal(*got.LastLogin))

	updated, err := repo.SetActive(ctx, u.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Empty(t, updated.PasswordHash)

	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, "missing", at), ErrNotFound)
	_, err = repo.SetActive(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUserRepository_List(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	for i := 1; i <= 12; i++ {
		require.NoError(t, repo.Create(ctx, newUser(fmt.Sprintf("User %02d", i), fmt.Sprintf("u%02d@x.com", i))))
	}

	users, total, err := repo.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, users, DefaultPageSize)
	assert.Equal(t, "User 12", users[0].Name, "newest first")
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}

	users, _, err = repo.List(ctx, ListOptions{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, total, err = repo.List(ctx, ListOptions{Search: "U03@"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "u03@x.com", users[0].Email)

	users, _, err = repo.List(ctx, ListOptions{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, users)
}
