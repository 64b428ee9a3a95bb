package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rhymove/enrollment-backend/internal/model"
)

// CreateSelection handles POST /selections
// Adds an approved offering to the caller's cart.
func (h *Handler) CreateSelection(w http.ResponseWriter, r *http.Request) {
	id, err := h.gate.RequireAuthenticated(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req model.CreateSelectionRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	sel, err := h.selections.Create(r.Context(), id.Email, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sel)
}

// ListSelections handles GET /selections?email=...
// The verified identity must match the requested student.
func (h *Handler) ListSelections(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	id, err := h.gate.RequireSelf(r, email)
	if err != nil {
		respondError(w, err)
		return
	}

	selections, err := h.selections.ListForStudent(r.Context(), id.Email)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(selections))
}

// DeleteSelection handles DELETE /selections/{id}
// Only the owning student may remove a selection, and only while pending.
func (h *Handler) DeleteSelection(w http.ResponseWriter, r *http.Request) {
	id, err := h.gate.RequireAuthenticated(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.selections.Delete(r.Context(), chi.URLParam(r, "id"), id.Email); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
