package productstore

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/abgdnv/productstore/pkg/messaging/events"
)

const (
	msgFillAllFields = "Please fill in all fields."
	msgCreated       = "Product created successfully"
	msgUpdated       = "Product updated successfully"
	msgDeleted       = "Product deleted successfully"
	msgFetchFailed   = "Failed to fetch products"
	msgCreateFailed  = "Failed to create product"
	msgUpdateFailed  = "Failed to update product"
	msgDeleteFailed  = "Failed to delete product"
)

// Store is the storefront's cache of catalog products.
// The cache is patched in place after create and delete; update reports Reload instead.
// Overlapping mutations of one product are not ordered: the last response wins.
type Store struct {
	api    API
	logger *slog.Logger

	mu       sync.RWMutex
	products []Product
}

func New(api API, logger *slog.Logger) *Store {
	return &Store{
		api:      api,
		logger:   logger.With("component", "productstore"),
		products: []Product{},
	}
}

// Products returns a copy of the cached list in server order.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

// Find returns the cached product with the given id.
func (s *Store) Find(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return Product{}, false
	}
	return s.products[i], true
}

// Fetch replaces the cache with the catalog's current list. On failure the cache is kept.
func (s *Store) Fetch(ctx context.Context) Outcome {
	list, err := s.api.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to fetch products", "error", err)
		return failed(messageOf(err, msgFetchFailed))
	}

	if list == nil {
		list = []Product{}
	}
	s.mu.Lock()
	s.products = slices.Clone(list)
	s.mu.Unlock()
	return Outcome{Success: true}
}

// Create adds a product and appends it to the cache.
func (s *Store) Create(ctx context.Context, fields Fields) Outcome {
	if strings.TrimSpace(fields.Name) == "" || strings.TrimSpace(fields.Image) == "" {
		return failed(msgFillAllFields)
	}

	created, _, err := s.api.Create(ctx, fields)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to create product", "error", err)
		return failed(messageOf(err, msgCreateFailed))
	}

	s.mu.Lock()
	if i := s.indexOf(created.ID); i >= 0 {
		s.products[i] = created
	} else {
		s.products = append(s.products, created)
	}
	s.mu.Unlock()
	return Outcome{Success: true, Message: msgCreated}
}

// Update replaces the fields of a product. The cache is left untouched and the
// successful outcome asks the caller to reload.
func (s *Store) Update(ctx context.Context, id string, fields Fields) Outcome {
	_, message, err := s.api.Update(ctx, id, fields)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to update product", "ID", id, "error", err)
		return failed(messageOf(err, msgUpdateFailed))
	}
	if message == "" {
		message = msgUpdated
	}
	return Outcome{Success: true, Message: message, Reload: true}
}

// Delete removes a product and drops it from the cache.
func (s *Store) Delete(ctx context.Context, id string) Outcome {
	message, err := s.api.Delete(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to delete product", "ID", id, "error", err)
		return failed(messageOf(err, msgDeleteFailed))
	}
	if message == "" {
		message = msgDeleted
	}

	s.remove(id)
	return Outcome{Success: true, Message: message}
}

// Apply patches the cache from a change announced by the catalog.
func (s *Store) Apply(e events.ProductChangedEvent) {
	id := e.ProductID.String()
	if e.Type == events.ProductDeleted {
		s.remove(id)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		if e.Type == events.ProductCreated {
			s.products = append(s.products, Product{ID: id, Name: e.Name, Price: e.Price, Image: e.Image, CreatedAt: e.OccurredAt, UpdatedAt: e.OccurredAt})
		}
		return
	}
	p := s.products[i]
	p.Name, p.Price, p.Image, p.UpdatedAt = e.Name, e.Price, e.Image, e.OccurredAt
	s.products[i] = p
}

func (s *Store) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = slices.DeleteFunc(s.products, func(p Product) bool { return p.ID == id })
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.products, func(p Product) bool { return p.ID == id })
}

// messageOf prefers the catalog's own message and falls back to a generic one.
func messageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
