// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/productstore/internal/catalog/store"
	"github.com/abgdnv/productstore/pkg/messaging"
	"github.com/abgdnv/productstore/pkg/messaging/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// FindAll returns all available products in creation order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// Create adds a new product to the catalog.
	Create(ctx context.Context, input ProductInput) (*ProductDto, error)

	// Update replaces the name, price and image of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Service implements ProductService. Every committed mutation is announced
// through the publisher.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	changes    metric.Int64Counter
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	logger = logger.With("component", "service")
	meter := otel.Meter("catalog")
	changes, err := meter.Int64Counter("catalog_product_changes", metric.WithDescription("Total number of committed product mutations"))
	if err != nil {
		logger.Warn("Failed to create product changes counter", "error", err)
	}
	return &Service{
		repository: repo,
		publisher:  publisher,
		changes:    changes,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ProductInput is the body of create and update requests.
// Price is a pointer so that an omitted price is told apart from zero.
type ProductInput struct {
	Name  string   `json:"name"  validate:"required,max=200"`
	Price *float64 `json:"price" validate:"required,gte=0"`
	Image string   `json:"image" validate:"required,url"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	return toDto(product), nil
}

// FindAll retrieves a list of all products and returns them as ProductDTOs.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return productDTOs, nil
}

// Create creates a new product and returns it as a ProductDto.
func (s *Service) Create(ctx context.Context, input ProductInput) (*ProductDto, error) {
	p, err := s.repository.Create(ctx, input.Name, priceOf(input), input.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(ctx, events.ProductCreated, p)
	return toDto(p), nil
}

// Update modifies an existing product and returns the stored state as a ProductDto.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDto, error) {
	updated, err := s.repository.Update(ctx, id, input.Name, priceOf(input), input.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	s.publish(ctx, events.ProductUpdated, updated)
	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID.
func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}

	s.publish(ctx, events.ProductDeleted, &store.Product{ID: id})
	return nil
}

// publish announces a change. A broker failure never fails the request.
func (s *Service) publish(ctx context.Context, changeType events.ChangeType, p *store.Product) {
	event := events.ProductChangedEvent{
		Type:       changeType,
		ProductID:  p.ID,
		OccurredAt: s.now(),
	}
	if changeType != events.ProductDeleted {
		event.Name = p.Name
		event.Price = p.Price
		event.Image = p.Image
	}
	if s.changes != nil {
		s.changes.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(changeType))))
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish product event",
			"subject", event.Subject(), "ID", p.ID, "error", err)
	}
}

func priceOf(input ProductInput) float64 {
	if input.Price == nil {
		return 0
	}
	return *input.Price
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:        product.ID.String(),
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}
