package memory

import (
	"context"
	"sort"
	"time"

	"mlm/internal/domain/entity"
	"mlm/internal/domain/repository"
	"mlm/internal/errors"

	"github.com/google/uuid"
)

type productRepository struct {
	store *Store
}

// NewProductRepository creates a ProductRepository backed by the store.
func NewProductRepository(store *Store) repository.ProductRepository {
	return &productRepository{store: store}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.data.products {
		if existing.SKU == product.SKU {
			return repository.ErrDuplicateSKU
		}
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	stored := *product
	r.store.data.products[product.ID] = &stored

	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	product, ok := r.store.data.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	found := *product

	return &found, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	products := make(map[uuid.UUID]*entity.Product, len(ids))
	for _, id := range ids {
		if product, ok := r.store.data.products[id]; ok {
			v := *product
			products[id] = &v
		}
	}

	return products, nil
}

func (r *productRepository) List(ctx context.Context, activeOnly bool) ([]*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	products := make([]*entity.Product, 0, len(r.store.data.products))
	for _, product := range r.store.data.products {
		if activeOnly && !product.IsActive {
			continue
		}
		v := *product
		products = append(products, &v)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].SKU < products[j].SKU
	})

	return products, nil
}
