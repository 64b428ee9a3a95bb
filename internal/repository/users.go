// Package repository implements all database access for the enrollment
// backend. It uses pgx directly (no ORM) so the locking behaviour of the
// payment transition stays explicit.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rhymove/enrollment-backend/internal/model"
)

// UserRepository handles persistence for user accounts.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user on first sign-in. A duplicate email returns
// model.ErrConflict and performs no insert.
func (r *UserRepository) Create(ctx context.Context, email, name string) (*model.User, error) {
	user := &model.User{
		ID:        uuid.New().String(),
		Email:     strings.ToLower(email),
		Name:      name,
		Role:      model.RoleStudent,
		CreatedAt: time.Now().UTC(),
	}

	tag, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, name, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO NOTHING`,
		user.ID, user.Email, user.Name, user.Role, user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("user %s: %w", user.Email, model.ErrConflict)
	}
	return user, nil
}

// GetByEmail returns a user or model.ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`SELECT id, email, name, role, created_at FROM users WHERE email = $1`,
		strings.ToLower(email),
	).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// RoleOf resolves the stored role for an identity. A missing user record
// resolves to student rather than an error.
func (r *UserRepository) RoleOf(ctx context.Context, email string) (model.Role, error) {
	var role model.Role
	err := r.db.QueryRow(ctx,
		`SELECT role FROM users WHERE email = $1`,
		strings.ToLower(email),
	).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RoleStudent, nil
		}
		return "", fmt.Errorf("resolve role: %w", err)
	}
	return role, nil
}

// List returns all users ordered by creation time.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	return r.list(ctx,
		`SELECT id, email, name, role, created_at FROM users ORDER BY created_at ASC`)
}

// ListByRole returns users with the given role, insertion-ordered.
func (r *UserRepository) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	return r.list(ctx,
		`SELECT id, email, name, role, created_at FROM users WHERE role = $1 ORDER BY created_at ASC`,
		role)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetRole updates a user's role. Returns model.ErrNotFound when no such user
// exists.
func (r *UserRepository) SetRole(ctx context.Context, email string, role model.Role) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET role = $2 WHERE email = $1`,
		strings.ToLower(email), role,
	)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes a user by id.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
