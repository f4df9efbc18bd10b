package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"budgetbuddy/internal/core"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "error", err, "url", r.URL.Path)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	respondJSON(w, r, status, errorResponse{Detail: detail})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Unclassified errors become opaque 500s; their detail stays in the logs.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *core.ValidationError
	if errors.As(err, &validationErr) {
		respondError(w, r, http.StatusBadRequest, validationErr.Error())
		return
	}

	var notFoundErr *core.NotFoundError
	if errors.As(err, &notFoundErr) {
		respondError(w, r, http.StatusNotFound, notFoundErr.Error())
		return
	}

	slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
	respondError(w, r, http.StatusInternalServerError, "internal server error")
}

// decodeJSON reads one JSON object from the request body with a size cap.
func decodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(dst); err != nil {
		return core.NewValidationError(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
