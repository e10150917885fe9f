package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/abgdnv/productstore/internal/catalog/errors"
	"github.com/google/uuid"
)

// InMemoryStore implements ProductStore with a map and an insertion-order index.
// It backs the catalog API when database.driver is "memory".
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[uuid.UUID]Product
	order    []uuid.UUID
	now      func() time.Time
}

// NewInMemoryStore creates an empty in-memory product store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make(map[uuid.UUID]Product),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	return &p, nil
}

func (s *InMemoryStore) FindAll(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.products[id])
	}
	return list, nil
}

func (s *InMemoryStore) Create(_ context.Context, name string, price float64, image string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	product := Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     price,
		Image:     image,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.products[product.ID] = product
	s.order = append(s.order, product.ID)

	return &product, nil
}

func (s *InMemoryStore) Update(_ context.Context, id uuid.UUID, name string, price float64, image string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	product.Name = name
	product.Price = price
	product.Image = image
	product.UpdatedAt = s.now()
	s.products[id] = product

	return &product, nil
}

func (s *InMemoryStore) DeleteByID(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return errors.ErrProductNotFound
	}
	delete(s.products, id)
	s.order = slices.DeleteFunc(s.order, func(v uuid.UUID) bool { return v == id })
	return nil
}

func (s *InMemoryStore) Ping(context.Context) error {
	return nil
}
