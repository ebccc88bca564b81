package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"admindash/internal/cache"
	apperr "admindash/internal/errors"
	"admindash/internal/model"
	"admindash/internal/repository"
	"admindash/internal/validation"
)

const productCacheTTL = 5 * time.Minute

// ProductInput carries the fields of a new product.
type ProductInput struct {
	Name        string          `validate:"required,max=100"`
	Description string          `validate:"max=1000"`
	Price       decimal.Decimal
	Category    string          `validate:"max=50"`
	Stock       int             `validate:"gte=0"`
	IsActive    *bool
}

// ProductService manages the product catalogue.
type ProductService interface {
	ListProducts(ctx context.Context, opts repository.ListOptions) ([]model.Product, model.Pagination, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	CreateProduct(ctx context.Context, createdBy string, in ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type productService struct {
	repo     repository.ProductRepository
	cache    *cache.Client
	validate *validator.Validate
}

// NewProductService builds a ProductService. cache may be nil.
func NewProductService(repo repository.ProductRepository, cache *cache.Client, validate *validator.Validate) ProductService {
	return &productService{repo: repo, cache: cache, validate: validate}
}

func (s *productService) cacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (s *productService) ListProducts(ctx context.Context, opts repository.ListOptions) ([]model.Product, model.Pagination, error) {
	opts = opts.Normalize()
	products, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, model.Pagination{}, apperr.Internal(fmt.Errorf("list products: %w", err))
	}
	return products, model.NewPagination(opts.Page, opts.Limit, total), nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var cached model.Product
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, productLookupError(err)
	}
	s.cache.SetJSON(ctx, s.cacheKey(id), product, productCacheTTL)
	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, createdBy string, in ProductInput) (*model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := s.check(in); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Stock:       in.Stock,
		IsActive:    in.IsActive == nil || *in.IsActive,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apperr.Internal(fmt.Errorf("create product: %w", err))
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, productLookupError(err)
	}

	patch.Apply(product)
	product.Name = strings.TrimSpace(product.Name)
	product.Category = strings.TrimSpace(product.Category)
	if err := s.check(ProductInput{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		Stock:       product.Stock,
	}); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, productLookupError(err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return productLookupError(err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *productService) check(in ProductInput) error {
	if err := s.validate.Struct(in); err != nil {
		return apperr.Validation(validation.Message(err))
	}
	if in.Price.IsNegative() {
		return apperr.Validation("Price cannot be negative")
	}
	return nil
}

func productLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ErrProductNotFound
	}
	return apperr.Internal(err)
}
