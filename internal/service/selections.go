package service

import (
	"context"
	"fmt"

	"github.com/rhymove/enrollment-backend/internal/model"
)

// SelectionService orchestrates the student cart.
type SelectionService struct {
	selections SelectionStore
}

// NewSelectionService constructs a SelectionService.
func NewSelectionService(selections SelectionStore) *SelectionService {
	return &SelectionService{selections: selections}
}

// Create adds an approved offering to the caller's cart.
func (s *SelectionService) Create(ctx context.Context, studentEmail string, req model.CreateSelectionRequest) (*model.Selection, error) {
	return s.selections.Create(ctx, studentEmail, req.OfferingID)
}

// ListForStudent returns the caller's selections. The handler has already
// matched the caller's identity against the requested student.
func (s *SelectionService) ListForStudent(ctx context.Context, email string) ([]model.Selection, error) {
	return s.selections.ListForStudent(ctx, email)
}

// Delete removes a pending selection. Ownership is enforced by the store:
// removing another student's selection is model.ErrForbidden.
func (s *SelectionService) Delete(ctx context.Context, id, requesterEmail string) error {
	if id == "" {
		return fmt.Errorf("selection id is required")
	}
	return s.selections.Delete(ctx, id, requesterEmail)
}
