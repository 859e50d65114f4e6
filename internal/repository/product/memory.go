package product

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

type memoryRepo struct {
	mu    sync.RWMutex
	order []string
	byKey map[string]domain.Product
	now   func() time.Time
}

// NewMemory returns an in-process catalog, optionally preloaded.
func NewMemory(products ...domain.Product) Repository {
	r := &memoryRepo{byKey: make(map[string]domain.Product), now: time.Now}
	for _, p := range products {
		_, _ = r.Upsert(context.Background(), p)
	}
	return r
}

func (r *memoryRepo) List(context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Product, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.byKey[key])
	}
	return out, nil
}

func (r *memoryRepo) GetByKey(_ context.Context, key string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byKey[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) Upsert(_ context.Context, product domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byKey[product.Key]; ok {
		product.ID = existing.ID
		product.CreatedAt = existing.CreatedAt
	} else {
		if product.ID == "" {
			product.ID = uuid.NewString()
		}
		product.CreatedAt = r.now().UTC()
		r.order = append(r.order, product.Key)
	}
	product.Options = append([]domain.ProductOption(nil), product.Options...)
	r.byKey[product.Key] = product
	return &product, nil
}
