package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"admindash/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	// Create inserts user and fills its server-assigned fields. Returns
	// ErrDuplicateKey when the email is taken.
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByEmail returns the user with exactly this email. The password hash
	// is loaded only when withPassword is set.
	FindByEmail(ctx context.Context, email string, withPassword bool) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool) (*model.User, error)
	List(ctx context.Context, opts ListOptions) ([]model.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return gormError(err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Omit("password").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, gormError(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string, withPassword bool) (*model.User, error) {
	q := r.db.WithContext(ctx)
	if !withPassword {
		q = q.Omit("password")
	}
	var user model.User
	if err := q.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, gormError(err)
	}
	return &user, nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", at)
	if res.Error != nil {
		return gormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("password").Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("is_active", active).Error
	})
	if err != nil {
		return nil, gormError(err)
	}
	user.IsActive = active
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, opts ListOptions) ([]model.User, int64, error) {
	opts = opts.Normalize()
	q := r.db.WithContext(ctx).Model(&model.User{})
	if opts.Search != "" {
		p := likePattern(opts.Search)
		q = q.Where("name LIKE ? OR email LIKE ?", p, p)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := q.Omit("password").Order("created_at DESC").
		Offset(opts.Offset()).Limit(opts.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// gormError maps GORM sentinel errors onto the repository ones. It relies on
// the connection being opened with TranslateError.
func gormError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	default:
		return err
	}
}
