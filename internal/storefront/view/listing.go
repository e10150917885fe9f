// Package view holds the presentation state of the storefront: the product listing
// and the per-product cards with their edit and delete dialogs.
package view

import (
	"context"
	"sync"

	"github.com/abgdnv/productstore/internal/storefront/productstore"
)

// ProductStore is what the views need from the product cache.
type ProductStore interface {
	Fetch(ctx context.Context) productstore.Outcome
	Products() []productstore.Product
	Update(ctx context.Context, id string, fields productstore.Fields) productstore.Outcome
	Delete(ctx context.Context, id string) productstore.Outcome
}

// State is the lifecycle of a Listing.
type State int

const (
	Loading State = iota
	LoadedEmpty
	LoadedNonEmpty
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case LoadedEmpty:
		return "loaded-empty"
	case LoadedNonEmpty:
		return "loaded-nonempty"
	default:
		return "unknown"
	}
}

// Listing renders the catalog as a grid of cards. It starts in Loading and leaves
// it after its single mount fetch resolves, whatever the outcome.
type Listing struct {
	store    ProductStore
	notifier Notifier
	mount    sync.Once

	mu    sync.RWMutex
	state State
	cards []*Card
}

func NewListing(store ProductStore, notifier Notifier) *Listing {
	if notifier == nil {
		notifier = NotifierFunc(func(Toast) {})
	}
	return &Listing{store: store, notifier: notifier, state: Loading}
}

// Mount issues the initial fetch. Only the first call does anything.
func (l *Listing) Mount(ctx context.Context) {
	l.mount.Do(func() {
		l.store.Fetch(ctx)
		l.sync()
	})
}

// Refresh re-fetches the catalog and resynchronizes the cards.
func (l *Listing) Refresh(ctx context.Context) {
	l.store.Fetch(ctx)
	l.sync()
}

func (l *Listing) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Cards returns one card per cached product, in server order.
func (l *Listing) Cards() []*Card {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*Card(nil), l.cards...)
}

// Card returns the card of the product with the given id.
func (l *Listing) Card(id string) (*Card, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, c := range l.cards {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// sync rebuilds the card list from the store cache. Existing cards are kept,
// so open dialogs survive, and resynced with the fresh product.
func (l *Listing) sync() {
	products := l.store.Products()

	l.mu.Lock()
	defer l.mu.Unlock()
	existing := make(map[string]*Card, len(l.cards))
	for _, c := range l.cards {
		existing[c.ID()] = c
	}
	cards := make([]*Card, 0, len(products))
	for _, p := range products {
		if c, ok := existing[p.ID]; ok {
			c.Resync(p)
			cards = append(cards, c)
			continue
		}
		cards = append(cards, newCard(p, l.store, l.notifier, l.Refresh, l.sync))
	}
	l.cards = cards
	if len(cards) == 0 {
		l.state = LoadedEmpty
	} else {
		l.state = LoadedNonEmpty
	}
}
