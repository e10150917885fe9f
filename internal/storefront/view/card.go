package view

import (
	"context"
	"sync"

	"github.com/abgdnv/productstore/internal/storefront/productstore"
)

const msgProductUpdated = "Product Updated Successfully"

// Card shows one product and owns its edit and delete dialogs.
//
// The edit draft is a snapshot taken when the dialog opens. Resync replaces the
// source product and, while the dialog is open, re-seeds the draft from it.
type Card struct {
	store    ProductStore
	notifier Notifier
	reload   func(ctx context.Context)
	changed  func()

	mu         sync.Mutex
	product    productstore.Product
	draft      productstore.Fields
	editOpen   bool
	deleteOpen bool
}

// NewCard creates a card that is not part of a listing. After a successful
// update it calls reload, if set.
func NewCard(p productstore.Product, store ProductStore, notifier Notifier, reload func(ctx context.Context)) *Card {
	if notifier == nil {
		notifier = NotifierFunc(func(Toast) {})
	}
	return newCard(p, store, notifier, reload, nil)
}

func newCard(p productstore.Product, store ProductStore, notifier Notifier, reload func(ctx context.Context), changed func()) *Card {
	return &Card{
		store:    store,
		notifier: notifier,
		reload:   reload,
		changed:  changed,
		product:  p,
		draft:    p.Fields(),
	}
}

func (c *Card) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.product.ID
}

func (c *Card) Product() productstore.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.product
}

func (c *Card) Draft() productstore.Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Card) EditOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editOpen
}

func (c *Card) DeleteOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteOpen
}

// OpenEdit opens the edit dialog with a draft seeded from the product.
func (c *Card) OpenEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editOpen {
		return
	}
	c.draft = c.product.Fields()
	c.editOpen = true
}

func (c *Card) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Name = name
}

func (c *Card) SetPrice(price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Price = price
}

func (c *Card) SetImage(image string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Image = image
}

// Resync replaces the source product after the listing re-fetched.
func (c *Card) Resync(p productstore.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.product = p
	if c.editOpen {
		c.draft = p.Fields()
	}
}

func (c *Card) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editOpen = false
}

// ConfirmEdit sends the draft as a full replacement. The dialog closes whatever
// the outcome; a successful update that needs it triggers a reload.
func (c *Card) ConfirmEdit(ctx context.Context) productstore.Outcome {
	c.mu.Lock()
	id, draft := c.product.ID, c.draft
	c.mu.Unlock()

	outcome := c.store.Update(ctx, id, draft)

	c.mu.Lock()
	c.editOpen = false
	c.mu.Unlock()

	if !outcome.Success {
		c.notifier.Notify(ErrorToast(outcome.Message))
		return outcome
	}
	c.notifier.Notify(SuccessToast(msgProductUpdated))
	if outcome.Reload && c.reload != nil {
		c.reload(ctx)
	}
	return outcome
}

func (c *Card) OpenDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteOpen = true
}

func (c *Card) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteOpen = false
}

// ConfirmDelete deletes the product and notifies either way. The confirmation
// stays open: on success the card leaves the listing, on failure it remains.
func (c *Card) ConfirmDelete(ctx context.Context) productstore.Outcome {
	id := c.ID()
	outcome := c.store.Delete(ctx, id)
	if !outcome.Success {
		c.notifier.Notify(ErrorToast(outcome.Message))
		return outcome
	}
	c.notifier.Notify(SuccessToast(outcome.Message))
	if c.changed != nil {
		c.changed()
	}
	return outcome
}
