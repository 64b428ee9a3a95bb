package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rhymove/enrollment-backend/internal/model"
)

// Selections is the selection-store view over a shared Store.
type Selections struct {
	s *Store
}

// Create inserts a pending selection against an approved offering.
func (r *Selections) Create(_ context.Context, studentEmail, offeringID string) (*model.Selection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.offerings[offeringID]
	if !ok {
		return nil, fmt.Errorf("offering %s: %w", offeringID, model.ErrNotFound)
	}
	if o.Status != model.OfferingApproved {
		return nil, fmt.Errorf("offering %s is %s: %w", offeringID, o.Status, model.ErrInvalidState)
	}

	sel := model.Selection{
		ID:           uuid.New().String(),
		StudentEmail: strings.ToLower(studentEmail),
		OfferingID:   offeringID,
		Status:       model.SelectionPending,
		CreatedAt:    time.Now().UTC(),
	}
	r.s.selections[sel.ID] = sel
	r.s.selectionOrder = append(r.s.selectionOrder, sel.ID)
	return &sel, nil
}

// GetByID returns a selection or model.ErrNotFound.
func (r *Selections) GetByID(_ context.Context, id string) (*model.Selection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sel, ok := r.s.selections[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &sel, nil
}

// ListForStudent returns a student's selections, insertion-ordered.
func (r *Selections) ListForStudent(_ context.Context, email string) ([]model.Selection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(email)
	var selections []model.Selection
	for _, id := range r.s.selectionOrder {
		if sel := r.s.selections[id]; sel.StudentEmail == key {
			selections = append(selections, sel)
		}
	}
	return selections, nil
}

// Delete removes a pending selection owned by the requester.
func (r *Selections) Delete(_ context.Context, id, requesterEmail string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sel, ok := r.s.selections[id]
	if !ok {
		return model.ErrNotFound
	}
	if !strings.EqualFold(sel.StudentEmail, requesterEmail) {
		return fmt.Errorf("selection %s: %w", id, model.ErrForbidden)
	}
	if sel.Status != model.SelectionPending {
		return fmt.Errorf("selection %s is %s: %w", id, sel.Status, model.ErrInvalidTransition)
	}
	delete(r.s.selections, id)
	r.s.selectionOrder = remove(r.s.selectionOrder, id)
	return nil
}

// MarkPaid flips a pending selection to paid exactly once.
func (r *Selections) MarkPaid(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.markSelectionPaidLocked(id)
}
