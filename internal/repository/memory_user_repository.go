package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"admindash/internal/model"
)

// MemoryUserRepository keeps users in process memory. It enforces the same
// unique email constraint as the database backends and is safe for
// concurrent use.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*memoryUser
	byEmail map[string]string
	seq     int64
	now     func() time.Time
}

type memoryUser struct {
	user model.User
	seq  int64
}

// NewMemoryUserRepository returns an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*memoryUser),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return ErrDuplicateKey
	}

	now := r.now().UTC()
	user.ID = bson.NewObjectID().Hex()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.seq++
	r.byID[user.ID] = &memoryUser{user: *user, seq: r.seq}
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.user.Sanitized(), nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string, withPassword bool) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := r.byID[id].user
	if !withPassword {
		cp.PasswordHash = ""
	}
	return &cp, nil
}

func (r *MemoryUserRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	at = at.UTC()
	u.user.LastLogin = &at
	u.user.UpdatedAt = r.now().UTC()
	return nil
}

func (r *MemoryUserRepository) SetActive(_ context.Context, id string, active bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.user.IsActive = active
	u.user.UpdatedAt = r.now().UTC()
	return u.user.Sanitized(), nil
}

func (r *MemoryUserRepository) List(_ context.Context, opts ListOptions) ([]model.User, int64, error) {
	opts = opts.Normalize()
	search := strings.ToLower(opts.Search)

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*memoryUser, 0, len(r.byID))
	for _, u := range r.byID {
		if search != "" &&
			!strings.Contains(strings.ToLower(u.user.Name), search) &&
			!strings.Contains(strings.ToLower(u.user.Email), search) {
			continue
		}
		matched = append(matched, u)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })

	page := paginate(len(matched), opts)
	users := make([]model.User, 0, page.end-page.start)
	for _, u := range matched[page.start:page.end] {
		users = append(users, *u.user.Sanitized())
	}
	return users, int64(len(matched)), nil
}

type pageBounds struct{ start, end int }

func paginate(n int, opts ListOptions) pageBounds {
	start := opts.Offset()
	if start > n {
		start = n
	}
	end := start + opts.Limit
	if end > n {
		end = n
	}
	return pageBounds{start: start, end: end}
}
