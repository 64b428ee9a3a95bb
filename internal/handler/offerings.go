package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rhymove/enrollment-backend/internal/model"
)

// CreateOffering handles POST /offerings (instructor only)
// Submits a new offering; it enters the catalog only after admin approval.
func (h *Handler) CreateOffering(w http.ResponseWriter, r *http.Request) {
	id, err := h.gate.RequireRole(r, model.RoleInstructor)
	if err != nil {
		respondError(w, err)
		return
	}

	var req model.CreateOfferingRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	offering, err := h.offerings.Create(r.Context(), id.Email, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, offering)
}

// ListOfferings handles GET /offerings
// Returns the approved catalog.
func (h *Handler) ListOfferings(w http.ResponseWriter, r *http.Request) {
	offerings, err := h.offerings.ListApproved(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(offerings))
}

// ListPopularOfferings handles GET /offerings/popular
// Returns the six most-enrolled approved offerings.
func (h *Handler) ListPopularOfferings(w http.ResponseWriter, r *http.Request) {
	offerings, err := h.offerings.ListPopular(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(offerings))
}

// ListPendingOfferings handles GET /offerings/pending (admin only)
func (h *Handler) ListPendingOfferings(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireRole(r, model.RoleAdmin); err != nil {
		respondError(w, err)
		return
	}

	offerings, err := h.offerings.ListPending(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(offerings))
}

// ListMyOfferings handles GET /offerings/mine (instructor only)
func (h *Handler) ListMyOfferings(w http.ResponseWriter, r *http.Request) {
	id, err := h.gate.RequireRole(r, model.RoleInstructor)
	if err != nil {
		respondError(w, err)
		return
	}

	offerings, err := h.offerings.ListByInstructor(r.Context(), id.Email)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(offerings))
}

// GetOffering handles GET /offerings/{id}
func (h *Handler) GetOffering(w http.ResponseWriter, r *http.Request) {
	offering, err := h.offerings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offering)
}

// SetOfferingStatus handles PATCH /offerings/{id}/status (admin only)
// Applies the approve/deny decision; both outcomes are terminal.
func (h *Handler) SetOfferingStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireRole(r, model.RoleAdmin); err != nil {
		respondError(w, err)
		return
	}

	var req model.SetOfferingStatusRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	offering, err := h.offerings.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offering)
}

// AttachFeedback handles PATCH /offerings/{id}/feedback (admin only)
func (h *Handler) AttachFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := h.gate.RequireRole(r, model.RoleAdmin)
	if err != nil {
		respondError(w, err)
		return
	}

	var req model.AttachFeedbackRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	offering, err := h.offerings.AttachFeedback(r.Context(), chi.URLParam(r, "id"), req.Text, id.Email)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offering)
}

// emptyIfNil keeps list responses as [] rather than null for client
// compatibility.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
