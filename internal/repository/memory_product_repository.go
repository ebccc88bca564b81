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

// MemoryProductRepository keeps products in process memory.
type MemoryProductRepository struct {
	mu    sync.RWMutex
	items map[string]*memoryProduct
	seq   int64
	now   func() time.Time
}

type memoryProduct struct {
	product model.Product
	seq     int64
}

// NewMemoryProductRepository returns an empty in-memory product repository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		items: make(map[string]*memoryProduct),
		now:   time.Now,
	}
}

func (r *MemoryProductRepository) Create(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	product.ID = bson.NewObjectID().Hex()
	product.CreatedAt = now
	product.UpdatedAt = now

	r.seq++
	r.items[product.ID] = &memoryProduct{product: *product, seq: r.seq}
	return nil
}

func (r *MemoryProductRepository) FindByID(_ context.Context, id string) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p.product
	return &cp, nil
}

func (r *MemoryProductRepository) Update(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[product.ID]
	if !ok {
		return ErrNotFound
	}
	product.CreatedAt = p.product.CreatedAt
	product.CreatedBy = p.product.CreatedBy
	product.UpdatedAt = r.now().UTC()
	p.product = *product
	return nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryProductRepository) List(_ context.Context, opts ListOptions) ([]model.Product, int64, error) {
	opts = opts.Normalize()
	search := strings.ToLower(opts.Search)

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*memoryProduct, 0, len(r.items))
	for _, p := range r.items {
		if opts.Category != "" && p.product.Category != opts.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.product.Name), search) &&
			!strings.Contains(strings.ToLower(p.product.Description), search) {
			continue
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })

	page := paginate(len(matched), opts)
	products := make([]model.Product, 0, page.end-page.start)
	for _, p := range matched[page.start:page.end] {
		products = append(products, p.product)
	}
	return products, int64(len(matched)), nil
}
