// Package web contains the JSON envelope and middleware shared by the HTTP services.
package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Envelope is the body of every catalog API response. Clients branch on Success
// and show Message; Data carries the payload of successful reads and writes.
type Envelope[T any] struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    T                 `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondOK writes a successful envelope.
func RespondOK(w http.ResponseWriter, logger *slog.Logger, status int, message string, data any) {
	RespondJSON(w, logger, status, Envelope[any]{Success: true, Message: message, Data: data})
}

// RespondError writes a failed envelope carrying a human-readable message.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, Envelope[any]{Success: false, Message: message})
}

// RespondValidation writes a 400 envelope listing the failed field rules.
func RespondValidation(w http.ResponseWriter, logger *slog.Logger, fieldErrors map[string]string) {
	RespondJSON(w, logger, http.StatusBadRequest, Envelope[any]{
		Success: false,
		Message: "Please provide all fields",
		Errors:  fieldErrors,
	})
}

// ParseID extracts and validates the {id} path parameter. On failure it writes a 400 response.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	pathValueID := chi.URLParam(r, "id")
	id, err := uuid.Parse(pathValueID)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid product id: %s", pathValueID))
		return uuid.UUID{}, false
	}
	return id, true
}
