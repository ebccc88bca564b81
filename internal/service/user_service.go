package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admindash/internal/cache"
	apperr "admindash/internal/errors"
	"admindash/internal/model"
	"admindash/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes user administration operations.
type UserService interface {
	ListUsers(ctx context.Context, opts repository.ListOptions) ([]model.User, model.Pagination, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	SetActive(ctx context.Context, id string, active bool) (*model.User, error)
	// Invalidate drops the cached copy of the user with id.
	Invalidate(ctx context.Context, id string)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache. cache may be nil.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

func (s *userService) ListUsers(ctx context.Context, opts repository.ListOptions) ([]model.User, model.Pagination, error) {
	opts = opts.Normalize()
	users, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, model.Pagination{}, apperr.Internal(fmt.Errorf("list users: %w", err))
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, model.NewPagination(opts.Page, opts.Limit, total), nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	user = user.Sanitized()

	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

// SetActive activates or deactivates an account. Deactivated accounts can
// no longer log in and their existing sessions stop resolving.
func (s *userService) SetActive(ctx context.Context, id string, active bool) (*model.User, error) {
	user, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, userLookupError(err)
	}
	s.Invalidate(ctx, id)
	return user.Sanitized(), nil
}

func (s *userService) Invalidate(ctx context.Context, id string) {
	_ = s.cache.Delete(ctx, s.cacheKey(id))
}

func userLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ErrUserNotFound
	}
	return apperr.Internal(err)
}
