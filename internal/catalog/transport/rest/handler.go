// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	perrors "github.com/abgdnv/productstore/internal/catalog/errors"
	"github.com/abgdnv/productstore/internal/catalog/service"
	"github.com/abgdnv/productstore/pkg/auth"
	"github.com/abgdnv/productstore/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
)

// Pinger reports store readiness for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	service  service.ProductService
	pinger   Pinger
	limiter  *rate.Limiter
	verifier auth.Verifier
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new catalog API handler. A nil limiter disables rate limiting
// and a nil pinger makes /healthz always report ok.
func NewHandler(service service.ProductService, pinger Pinger, limiter *rate.Limiter, logger *slog.Logger) *Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)
	return &Handler{
		service:  service,
		pinger:   pinger,
		limiter:  limiter,
		validate: validate,
		logger:   logger.With("component", "rest"),
	}
}

// WithWriteAuth requires a verified bearer token on create, update and delete.
func (h *Handler) WithWriteAuth(verifier auth.Verifier) *Handler {
	h.verifier = verifier
	return h
}

// RegisterRoutes registers the HTTP routes for the catalog API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(web.RateLimiter(h.limiter, h.logger))

		r.Get("/", h.FindAll)
		r.Get("/{id}", h.FindByID)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireBearer(h.verifier, h.logger))
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindAll retrieves the whole catalog.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.DebugContext(ctx, "Received request to find all products")
	list, err := h.service.FindAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Server Error")
		return
	}
	h.logger.DebugContext(ctx, "Successfully retrieved product list", "count", len(list))
	web.RespondOK(w, h.logger, http.StatusOK, "", list)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}

	found, err := h.service.FindByID(ctx, id)
	if err != nil {
		h.respondServiceError(w, r, err, "retrieving")
		return
	}
	web.RespondOK(w, h.logger, http.StatusOK, "", found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(ctx, input)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error creating product", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Server Error")
		return
	}
	h.logger.InfoContext(ctx, "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondOK(w, h.logger, http.StatusCreated, "Product created", created)
}

// Update replaces the fields of an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Update(ctx, id, input)
	if err != nil {
		h.respondServiceError(w, r, err, "updating")
		return
	}
	h.logger.InfoContext(ctx, "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondOK(w, h.logger, http.StatusOK, "Product updated", updated)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteByID(ctx, id); err != nil {
		h.respondServiceError(w, r, err, "deleting")
		return
	}
	h.logger.InfoContext(ctx, "Product deleted successfully", "ID", id)
	web.RespondOK(w, h.logger, http.StatusOK, "Product deleted", nil)
}

// HealthCheck reports 503 while the store is unreachable.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.WarnContext(r.Context(), "Health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// decodeInput reads and validates a create/update body. On failure it writes a 400 response.
func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	ctx := r.Context()
	var input service.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.WarnContext(ctx, "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return input, false
	}

	if err := h.validate.Struct(input); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			h.logger.WarnContext(ctx, "Validation errors occurred", "errors", errorResponse)
			web.RespondValidation(w, h.logger, errorResponse)
			return input, false
		}
		h.logger.ErrorContext(ctx, "Error validating request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return input, false
	}
	return input, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if errors.Is(err, perrors.ErrProductNotFound) {
		h.logger.WarnContext(r.Context(), "Product not found", "action", action, "ID", chi.URLParam(r, "id"))
		web.RespondError(w, h.logger, http.StatusNotFound, "Product not found")
		return
	}
	h.logger.ErrorContext(r.Context(), "Error "+action+" product", "ID", chi.URLParam(r, "id"), "error", err)
	web.RespondError(w, h.logger, http.StatusInternalServerError, "Server Error")
}

// jsonFieldName reports validation errors under the JSON names clients send.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
