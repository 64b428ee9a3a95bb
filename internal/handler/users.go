package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rhymove/enrollment-backend/internal/model"
)

// IssueToken handles POST /auth/token
// Exchanges a signed-in identity for a session token.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req model.TokenRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	token, err := h.users.IssueToken(req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateUser handles POST /users
// Registers an account on first sign-in; duplicate emails conflict.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireAuthenticated(r); err != nil {
		respondError(w, err)
		return
	}

	var req model.CreateUserRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.users.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// ListUsers handles GET /users (admin only)
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireRole(r, model.RoleAdmin); err != nil {
		respondError(w, err)
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// GetRole handles GET /users/role/{email}
// Lets the frontend probe the caller's own role. Probing someone else's role
// reports student instead of leaking the real one.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.gate.RequireAuthenticated(r)
	if err != nil {
		respondError(w, err)
		return
	}

	email := chi.URLParam(r, "email")
	if !strings.EqualFold(id.Email, email) {
		writeJSON(w, http.StatusOK, map[string]model.Role{"role": model.RoleStudent})
		return
	}

	role, err := h.users.RoleOf(r.Context(), email)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]model.Role{"role": role})
}

// SetRole handles PATCH /users/{email}/role (admin only)
// Role grants are privileged; they are never reachable without the admin gate.
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireRole(r, model.RoleAdmin); err != nil {
		respondError(w, err)
		return
	}

	var req model.SetRoleRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	email := chi.URLParam(r, "email")
	if err := h.users.SetRole(r.Context(), email, req.Role); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email, "role": string(req.Role)})
}

// DeleteUser handles DELETE /users/{id} (admin only)
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireRole(r, model.RoleAdmin); err != nil {
		respondError(w, err)
		return
	}

	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListInstructors handles GET /instructors
func (h *Handler) ListInstructors(w http.ResponseWriter, r *http.Request) {
	instructors, err := h.users.ListInstructors(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if instructors == nil {
		instructors = []model.User{}
	}
	writeJSON(w, http.StatusOK, instructors)
}

// ListPopularInstructors handles GET /instructors/popular
// The landing page shows at most six instructors.
func (h *Handler) ListPopularInstructors(w http.ResponseWriter, r *http.Request) {
	instructors, err := h.users.ListInstructors(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if len(instructors) > 6 {
		instructors = instructors[:6]
	}
	if instructors == nil {
		instructors = []model.User{}
	}
	writeJSON(w, http.StatusOK, instructors)
}
