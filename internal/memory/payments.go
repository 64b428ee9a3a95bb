package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rhymove/enrollment-backend/internal/model"
	"github.com/rhymove/enrollment-backend/internal/repository"
)

// Payments is the payment-store view over a shared Store.
type Payments struct {
	s *Store
}

// Confirm applies the paid-enrollment transition under the store lock, with
// the same idempotency, referential, capacity, and atomicity guarantees as
// the postgres implementation. The checks run before any mutation, so a
// failure leaves the store untouched.
func (r *Payments) Confirm(_ context.Context, p repository.ConfirmParams) (*model.PaymentRecord, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.payments[p.ProviderChargeRef]; ok {
		return &existing, false, nil
	}

	o, ok := r.s.offerings[p.OfferingID]
	if !ok {
		return nil, false, fmt.Errorf("offering %s does not exist: %w", p.OfferingID, model.ErrInvalidState)
	}
	if o.Status != model.OfferingApproved {
		return nil, false, fmt.Errorf("offering %s is %s: %w", p.OfferingID, o.Status, model.ErrInvalidState)
	}
	sel, ok := r.s.selections[p.SelectionID]
	if !ok {
		return nil, false, fmt.Errorf("selection %s does not exist: %w", p.SelectionID, model.ErrInvalidState)
	}
	if !strings.EqualFold(sel.StudentEmail, p.StudentEmail) {
		return nil, false, fmt.Errorf("selection %s is not owned by caller: %w", p.SelectionID, model.ErrInvalidState)
	}
	if sel.OfferingID != p.OfferingID {
		return nil, false, fmt.Errorf("selection %s references a different offering: %w", p.SelectionID, model.ErrInvalidState)
	}
	if sel.Status != model.SelectionPending {
		return nil, false, fmt.Errorf("selection %s is %s: %w", p.SelectionID, sel.Status, model.ErrInvalidState)
	}
	if o.AvailableSeats < 1 {
		return nil, false, fmt.Errorf("offering %s: %w", p.OfferingID, model.ErrCapacityExceeded)
	}

	if err := r.s.markSelectionPaidLocked(p.SelectionID); err != nil {
		return nil, false, err
	}
	if err := r.s.adjustSeatsLocked(p.OfferingID, -1, +1); err != nil {
		return nil, false, err
	}

	record := model.PaymentRecord{
		ID:                uuid.New().String(),
		StudentEmail:      strings.ToLower(p.StudentEmail),
		SelectionID:       p.SelectionID,
		OfferingID:        p.OfferingID,
		Amount:            p.Amount,
		ProviderChargeRef: p.ProviderChargeRef,
		CreatedAt:         time.Now().UTC(),
	}
	r.s.payments[record.ProviderChargeRef] = record
	r.s.paymentOrder = append(r.s.paymentOrder, record.ProviderChargeRef)
	return &record, true, nil
}

// GetByChargeRef returns the payment recorded for a charge reference.
func (r *Payments) GetByChargeRef(_ context.Context, ref string) (*model.PaymentRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.payments[ref]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &rec, nil
}

// ListForStudent returns a student's payments, newest first.
func (r *Payments) ListForStudent(_ context.Context, email string) ([]model.PaymentRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(email)
	var records []model.PaymentRecord
	for i := len(r.s.paymentOrder) - 1; i >= 0; i-- {
		if rec := r.s.payments[r.s.paymentOrder[i]]; rec.StudentEmail == key {
			records = append(records, rec)
		}
	}
	return records, nil
}
