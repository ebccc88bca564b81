package repository

import (
	"context"

	"gorm.io/gorm"

	"admindash/internal/model"
)

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) ([]model.Product, int64, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository builds a GORM-backed product repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return gormError(r.db.WithContext(ctx).Create(product).Error)
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, gormError(err)
	}
	return &product, nil
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	res := r.db.WithContext(ctx).Model(product).Select("*").Omit("created_at", "created_by").Updates(product)
	if res.Error != nil {
		return gormError(res.Error)
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return gormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, opts ListOptions) ([]model.Product, int64, error) {
	opts = opts.Normalize()
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if opts.Search != "" {
		p := likePattern(opts.Search)
		q = q.Where("name LIKE ? OR description LIKE ?", p, p)
	}
	if opts.Category != "" {
		q = q.Where("category = ?", opts.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	if err := q.Order("created_at DESC").Offset(opts.Offset()).Limit(opts.Limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
