// Package web serves the storefront pages: the product listing with its edit and
// delete dialogs and the create form. Notifications travel as session flashes.
package web

import (
	"bytes"
	"context"
	"encoding/gob"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/abgdnv/productstore/internal/storefront/productstore"
	"github.com/abgdnv/productstore/internal/storefront/view"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

const (
	msgPriceNotNumber = "Price must be a number"
	msgFillAllFields  = "Please fill in all fields."
	msgNotFound       = "Product not found"
)

func init() {
	gob.Register(view.Toast{})
}

// ProductStore is the product cache the pages work with.
type ProductStore interface {
	view.ProductStore
	Find(id string) (productstore.Product, bool)
	Create(ctx context.Context, fields productstore.Fields) productstore.Outcome
}

type Handler struct {
	store       ProductStore
	sessions    sessions.Store
	sessionName string
	render      *renderer
	logger      *slog.Logger
}

type pageData struct {
	Title   string
	Toasts  []view.Toast
	GridURL string
	Form    createForm
}

type createForm struct {
	Name  string
	Price string
	Image string
}

type gridData struct {
	State view.State
	Cards []*view.Card
}

func (d gridData) Loading() bool { return d.State == view.Loading }
func (d gridData) Empty() bool   { return d.State == view.LoadedEmpty }

// NewHandler creates the storefront handler. Flashes are kept in the session named sessionName.
func NewHandler(store ProductStore, sessionStore sessions.Store, sessionName string, logger *slog.Logger) (*Handler, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Handler{
		store:       store,
		sessions:    sessionStore,
		sessionName: sessionName,
		render:      r,
		logger:      logger.With("component", "web"),
	}, nil
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/products/grid", h.Grid)
	r.Post("/products/{id}", h.Edit)
	r.Post("/products/{id}/delete", h.Delete)
	r.Get("/create", h.CreateForm)
	r.Post("/create", h.Create)
	r.Get("/healthz", h.HealthCheck)
}

// Home serves the page shell with the listing still loading. The shell pulls the
// grid, carrying over the edit and delete query parameters.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	gridURL := "/products/grid"
	if q := dialogQuery(r.URL.Query()); q != "" {
		gridURL += "?" + q
	}
	h.renderPage(w, r, http.StatusOK, "home", pageData{
		Title:   "Home",
		Toasts:  h.takeFlashes(w, r),
		GridURL: gridURL,
	})
}

// Grid mounts a listing and renders the cards or the empty state.
func (h *Handler) Grid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listing := view.NewListing(h.store, nil)
	listing.Mount(ctx)

	q := r.URL.Query()
	if card, ok := listing.Card(q.Get("edit")); ok {
		card.OpenEdit()
	}
	if card, ok := listing.Card(q.Get("delete")); ok {
		card.OpenDelete()
	}

	var buf bytes.Buffer
	if err := h.render.listing(&buf, gridData{State: listing.State(), Cards: listing.Cards()}); err != nil {
		h.logger.ErrorContext(ctx, "Failed to render product grid", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Edit confirms the edit dialog of one product. The dialog closes whatever the outcome.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	toasts := &view.Toasts{}

	card, ok := h.card(ctx, id, toasts)
	if !ok {
		h.redirect(w, r, "/", toasts)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(ctx, "Invalid edit form", "ID", id, "error", err)
		toasts.Notify(view.ErrorToast("Invalid form"))
		h.redirect(w, r, "/", toasts)
		return
	}

	card.OpenEdit()
	price, err := parsePrice(r.PostForm.Get("price"))
	if err != nil {
		toasts.Notify(view.ErrorToast(msgPriceNotNumber))
		h.redirect(w, r, "/?edit="+url.QueryEscape(id), toasts)
		return
	}
	card.SetName(r.PostForm.Get("name"))
	card.SetPrice(price)
	card.SetImage(r.PostForm.Get("image"))

	outcome := card.ConfirmEdit(ctx)
	h.logger.InfoContext(ctx, "Product edit confirmed", "ID", id, "success", outcome.Success)
	h.redirect(w, r, "/", toasts)
}

// Delete confirms deletion. On failure the confirmation is shown again.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	toasts := &view.Toasts{}

	card, ok := h.card(ctx, id, toasts)
	if !ok {
		h.redirect(w, r, "/", toasts)
		return
	}
	card.OpenDelete()
	outcome := card.ConfirmDelete(ctx)
	h.logger.InfoContext(ctx, "Product deletion confirmed", "ID", id, "success", outcome.Success)
	if !outcome.Success {
		h.redirect(w, r, "/?delete="+url.QueryEscape(id), toasts)
		return
	}
	h.redirect(w, r, "/", toasts)
}

func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, "create", pageData{Title: "Create", Toasts: h.takeFlashes(w, r)})
}

// Create adds a product. On failure the form is shown again with the entered values.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(ctx, "Invalid create form", "error", err)
		h.renderPage(w, r, http.StatusBadRequest, "create", pageData{Title: "Create", Toasts: []view.Toast{view.ErrorToast("Invalid form")}})
		return
	}
	form := createForm{
		Name:  r.PostForm.Get("name"),
		Price: r.PostForm.Get("price"),
		Image: r.PostForm.Get("image"),
	}

	var outcome productstore.Outcome
	price, err := parsePrice(form.Price)
	switch {
	case strings.TrimSpace(form.Price) == "":
		outcome = productstore.Outcome{Message: msgFillAllFields}
	case err != nil:
		outcome = productstore.Outcome{Message: msgPriceNotNumber}
	default:
		outcome = h.store.Create(ctx, productstore.Fields{Name: form.Name, Price: price, Image: form.Image})
	}

	if !outcome.Success {
		h.renderPage(w, r, http.StatusUnprocessableEntity, "create", pageData{
			Title:  "Create",
			Toasts: []view.Toast{view.ErrorToast(outcome.Message)},
			Form:   form,
		})
		return
	}
	h.logger.InfoContext(ctx, "Product created", "Name", form.Name)
	h.redirect(w, r, "/", &view.Toasts{}, view.SuccessToast(outcome.Message))
}

func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// card builds the card of a cached product, fetching once if it is not cached yet.
func (h *Handler) card(ctx context.Context, id string, notifier view.Notifier) (*view.Card, bool) {
	p, ok := h.store.Find(id)
	if !ok {
		h.store.Fetch(ctx)
		p, ok = h.store.Find(id)
	}
	if !ok {
		notifier.Notify(view.ErrorToast(msgNotFound))
		return nil, false
	}
	reload := func(ctx context.Context) { h.store.Fetch(ctx) }
	return view.NewCard(p, h.store, notifier, reload), true
}

// redirect stores the collected toasts as flashes and sends the browser to target.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, target string, toasts *view.Toasts, extra ...view.Toast) {
	flashes := append(toasts.Drain(), extra...)
	if len(flashes) > 0 {
		session, err := h.sessions.Get(r, h.sessionName)
		if err != nil {
			h.logger.WarnContext(r.Context(), "Discarding unreadable session", "error", err)
		}
		for _, t := range flashes {
			session.AddFlash(t)
		}
		if err := session.Save(r, w); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to save session", "error", err)
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// takeFlashes pops the toasts left by the previous request.
func (h *Handler) takeFlashes(w http.ResponseWriter, r *http.Request) []view.Toast {
	session, err := h.sessions.Get(r, h.sessionName)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Discarding unreadable session", "error", err)
		return nil
	}
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to save session", "error", err)
	}
	toasts := make([]view.Toast, 0, len(flashes))
	for _, f := range flashes {
		if t, ok := f.(view.Toast); ok {
			toasts = append(toasts, t)
		}
	}
	return toasts
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.render.page(&buf, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func parsePrice(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// dialogQuery keeps only the parameters that open a dialog.
func dialogQuery(q url.Values) string {
	kept := url.Values{}
	for _, key := range []string{"edit", "delete"} {
		if v := q.Get(key); v != "" {
			kept.Set(key, v)
		}
	}
	return kept.Encode()
}
