// Package events holds the payloads published on product change subjects.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abgdnv/productstore/pkg/messaging"
	"github.com/google/uuid"
)

type ChangeType string

const (
	ProductCreated ChangeType = "created"
	ProductUpdated ChangeType = "updated"
	ProductDeleted ChangeType = "deleted"
)

// ProductChangedEvent describes a committed mutation of a catalog product.
// Name, Price and Image are empty for deletions.
type ProductChangedEvent struct {
	Type       ChangeType `json:"type"`
	ProductID  uuid.UUID  `json:"product_id"`
	Name       string     `json:"name,omitempty"`
	Price      float64    `json:"price,omitempty"`
	Image      string     `json:"image,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func (e ProductChangedEvent) Subject() string {
	switch e.Type {
	case ProductCreated:
		return messaging.ProductsCreatedSubject
	case ProductUpdated:
		return messaging.ProductsUpdatedSubject
	default:
		return messaging.ProductsDeletedSubject
	}
}

func (e ProductChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses a payload published by ProductChangedEvent.Payload.
func Decode(data []byte) (ProductChangedEvent, error) {
	var e ProductChangedEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("failed to decode product event: %w", err)
	}
	switch e.Type {
	case ProductCreated, ProductUpdated, ProductDeleted:
	default:
		return e, fmt.Errorf("unknown product event type: %q", e.Type)
	}
	if e.ProductID == uuid.Nil {
		return e, fmt.Errorf("product event without product id")
	}
	return e, nil
}
