// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer. Every identity-scoped
// handler runs an access control gate policy to completion before touching a
// service.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rhymove/enrollment-backend/internal/auth"
	"github.com/rhymove/enrollment-backend/internal/model"
	"github.com/rhymove/enrollment-backend/internal/service"
)

// Handler holds all HTTP handlers for the enrollment API.
type Handler struct {
	gate       *auth.Gate
	users      *service.UserService
	offerings  *service.OfferingService
	selections *service.SelectionService
	payments   *service.PaymentService
	validate   *validator.Validate
}

// New constructs a Handler.
func New(
	gate *auth.Gate,
	users *service.UserService,
	offerings *service.OfferingService,
	selections *service.SelectionService,
	payments *service.PaymentService,
) *Handler {
	return &Handler{
		gate:       gate,
		users:      users,
		offerings:  offerings,
		selections: selections,
		payments:   payments,
		validate:   validator.New(),
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: true, Message: msg})
}

// respondError maps sentinel domain errors onto HTTP statuses. Anything
// unrecognized is a 500 with a generic message so internals never leak.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, model.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrConflict),
		errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrInvalidState):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, model.ErrProviderUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeValid decodes a JSON body into dst and runs its validation tags.
func (h *Handler) decodeValid(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
