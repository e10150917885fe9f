// Package store provides the persistence layer of the catalog API.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is a persisted catalog entry.
type Product struct {
	ID        uuid.UUID
	Name      string
	Price     float64
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns all products in creation order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// Create adds a new product and assigns its identifier.
	Create(ctx context.Context, name string, price float64, image string) (*Product, error)

	// Update replaces name, price and image of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, name string, price float64, image string) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// Ping reports whether the store can serve requests.
	Ping(ctx context.Context) error
}
