// Package productstore holds the storefront's cached copy of the catalog and the
// operations that change it through the catalog API.
package productstore

import "time"

// Product is a catalog entry as the storefront sees it.
type Product struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Fields is the mutable part of a product. Updates replace all three.
type Fields struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// Fields returns the editable fields of p.
func (p Product) Fields() Fields {
	return Fields{Name: p.Name, Price: p.Price, Image: p.Image}
}

// Outcome is the uniform result of every store operation.
// Reload reports that the cache was not patched and the caller must Fetch to see the change.
type Outcome struct {
	Success bool
	Message string
	Reload  bool
}

func failed(message string) Outcome {
	return Outcome{Success: false, Message: message}
}
