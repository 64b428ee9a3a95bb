// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the stores.
package service

import (
	"context"

	"github.com/rhymove/enrollment-backend/internal/model"
	"github.com/rhymove/enrollment-backend/internal/repository"
)

// The store interfaces below are satisfied by both the postgres repositories
// and the in-memory stores.

// UserStore persists user accounts and roles.
type UserStore interface {
	Create(ctx context.Context, email, name string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	RoleOf(ctx context.Context, email string) (model.Role, error)
	List(ctx context.Context) ([]model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	SetRole(ctx context.Context, email string, role model.Role) error
	Delete(ctx context.Context, id string) error
}

// OfferingStore persists course offerings and their approval state.
type OfferingStore interface {
	Create(ctx context.Context, instructorEmail string, req model.CreateOfferingRequest) (*model.Offering, error)
	GetByID(ctx context.Context, id string) (*model.Offering, error)
	ListApproved(ctx context.Context) ([]model.Offering, error)
	ListPopular(ctx context.Context) ([]model.Offering, error)
	ListPending(ctx context.Context) ([]model.Offering, error)
	ListByInstructor(ctx context.Context, email string) ([]model.Offering, error)
	SetStatus(ctx context.Context, id string, status model.OfferingStatus) (*model.Offering, error)
	AttachFeedback(ctx context.Context, id string, fb model.Feedback) (*model.Offering, error)
}

// SelectionStore persists student selections.
type SelectionStore interface {
	Create(ctx context.Context, studentEmail, offeringID string) (*model.Selection, error)
	ListForStudent(ctx context.Context, email string) ([]model.Selection, error)
	Delete(ctx context.Context, id, requesterEmail string) error
}

// PaymentStore persists payment records and owns the confirmed-payment
// transition across all three entities.
type PaymentStore interface {
	Confirm(ctx context.Context, p repository.ConfirmParams) (*model.PaymentRecord, bool, error)
	ListForStudent(ctx context.Context, email string) ([]model.PaymentRecord, error)
}
