package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rhymove/enrollment-backend/internal/auth"
	"github.com/rhymove/enrollment-backend/internal/model"
)

// UserService handles accounts, roles, and session token issuance.
type UserService struct {
	users  UserStore
	tokens *auth.TokenManager
}

// NewUserService constructs a UserService.
func NewUserService(users UserStore, tokens *auth.TokenManager) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// IssueToken signs a session token for the given identity. Mirrors the
// sign-in flow where the frontend exchanges a fresh identity for a token.
func (s *UserService) IssueToken(req model.TokenRequest) (string, error) {
	return s.tokens.Issue(auth.Identity{Email: strings.ToLower(req.Email), Name: req.Name})
}

// Create registers a user on first sign-in. A duplicate email surfaces as
// model.ErrConflict with no insert.
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	return s.users.Create(ctx, req.Email, req.Name)
}

// List returns all users. Admin-gated by the handler.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// ListInstructors returns every user holding the instructor role.
func (s *UserService) ListInstructors(ctx context.Context) ([]model.User, error) {
	return s.users.ListByRole(ctx, model.RoleInstructor)
}

// RoleOf resolves a user's role; absent users are students.
func (s *UserService) RoleOf(ctx context.Context, email string) (model.Role, error) {
	return s.users.RoleOf(ctx, email)
}

// SetRole grants a role to an existing user. Admin-gated by the handler: the
// role-elevation endpoints must never be reachable without that gate.
func (s *UserService) SetRole(ctx context.Context, email string, role model.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	return s.users.SetRole(ctx, email, role)
}

// Delete removes a user by id. Admin-gated by the handler.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}
