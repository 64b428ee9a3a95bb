package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rhymove/enrollment-backend/internal/model"
)

// Users is the user-store view over a shared Store.
type Users struct {
	s *Store
}

// Create inserts a user on first sign-in; a duplicate email is
// model.ErrConflict.
func (r *Users) Create(_ context.Context, email, name string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := r.s.users[key]; exists {
		return nil, fmt.Errorf("user %s: %w", key, model.ErrConflict)
	}
	u := model.User{
		ID:        uuid.New().String(),
		Email:     key,
		Name:      name,
		Role:      model.RoleStudent,
		CreatedAt: time.Now().UTC(),
	}
	r.s.users[key] = u
	r.s.userOrder = append(r.s.userOrder, key)
	return &u, nil
}

// GetByEmail returns a user or model.ErrNotFound.
func (r *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[strings.ToLower(email)]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &u, nil
}

// RoleOf resolves a role; a missing user record resolves to student.
func (r *Users) RoleOf(_ context.Context, email string) (model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[strings.ToLower(email)]
	if !ok {
		return model.RoleStudent, nil
	}
	return u.Role, nil
}

// List returns all users, insertion-ordered.
func (r *Users) List(_ context.Context) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]model.User, 0, len(r.s.userOrder))
	for _, key := range r.s.userOrder {
		users = append(users, r.s.users[key])
	}
	return users, nil
}

// ListByRole returns users with the given role, insertion-ordered.
func (r *Users) ListByRole(_ context.Context, role model.Role) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var users []model.User
	for _, key := range r.s.userOrder {
		if u := r.s.users[key]; u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

// SetRole updates a user's role or returns model.ErrNotFound.
func (r *Users) SetRole(_ context.Context, email string, role model.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(email)
	u, ok := r.s.users[key]
	if !ok {
		return model.ErrNotFound
	}
	u.Role = role
	r.s.users[key] = u
	return nil
}

// Delete removes a user by id.
func (r *Users) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key, u := range r.s.users {
		if u.ID == id {
			delete(r.s.users, key)
			r.s.userOrder = remove(r.s.userOrder, key)
			return nil
		}
	}
	return model.ErrNotFound
}
