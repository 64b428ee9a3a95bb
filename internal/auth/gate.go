package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rhymove/enrollment-backend/internal/model"
)

// RoleResolver looks up the stored role for a verified identity. A missing
// user record resolves to student.
type RoleResolver interface {
	RoleOf(ctx context.Context, email string) (model.Role, error)
}

// Gate composes token verification and role resolution into the named
// policies handlers invoke before any store access. A Gate decision is final
// for the request; there are no retry semantics.
type Gate struct {
	tokens *TokenManager
	roles  RoleResolver
}

// NewGate constructs a Gate.
func NewGate(tokens *TokenManager, roles RoleResolver) *Gate {
	return &Gate{tokens: tokens, roles: roles}
}

// RequireAuthenticated verifies the request's bearer token and returns the
// caller's identity, or ErrUnauthenticated.
func (g *Gate) RequireAuthenticated(r *http.Request) (Identity, error) {
	token, err := BearerToken(r)
	if err != nil {
		return Identity{}, err
	}
	return g.tokens.Verify(token)
}

// RequireSelf verifies the caller and additionally requires the verified
// identity to equal the target identity the endpoint is parameterized by
// ("list my selections" and the like). A mismatch is ErrForbidden.
func (g *Gate) RequireSelf(r *http.Request, targetEmail string) (Identity, error) {
	id, err := g.RequireAuthenticated(r)
	if err != nil {
		return Identity{}, err
	}
	if !strings.EqualFold(id.Email, targetEmail) {
		return Identity{}, fmt.Errorf("%w: identity does not match target", model.ErrForbidden)
	}
	return id, nil
}

// RequireRole verifies the caller and requires their resolved role to equal
// role. A role mismatch is ErrForbidden.
func (g *Gate) RequireRole(r *http.Request, role model.Role) (Identity, error) {
	id, err := g.RequireAuthenticated(r)
	if err != nil {
		return Identity{}, err
	}
	resolved, err := g.roles.RoleOf(r.Context(), id.Email)
	if err != nil {
		return Identity{}, fmt.Errorf("resolve role: %w", err)
	}
	if resolved != role {
		return Identity{}, fmt.Errorf("%w: requires %s role", model.ErrForbidden, role)
	}
	return id, nil
}
