package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rhymove/enrollment-backend/internal/model"
)

// PaymentRepository handles persistence for payment records and owns the
// multi-entity transition applied when a charge is confirmed.
type PaymentRepository struct {
	db *pgxpool.Pool
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ConfirmParams identifies the selection, offering, and provider charge a
// confirmation callback refers to.
type ConfirmParams struct {
	StudentEmail      string
	SelectionID       string
	OfferingID        string
	ProviderChargeRef string
	Amount            int64
}

// Confirm applies the paid-enrollment transition: insert the payment record,
// flip the selection to paid, and move one seat from available to enrolled.
// The three effects happen in a single transaction or not at all.
//
// Concurrent confirmations for the same offering serialize on the offering
// row lock (SELECT ... FOR UPDATE), so the seat counter is read and written
// under mutual exclusion and can never be decremented below zero. Two
// transactions cannot both see the last free seat: whichever acquires the
// lock second re-reads the counter after the first commits.
//
// The provider charge reference is the idempotency key. A confirmation that
// already happened returns the stored record with applied=false and touches
// nothing. A duplicate racing the original in flight passes the initial
// lookup, queues on the row locks, and is resolved by a second charge-ref
// lookup once it sees the selection already paid; the unique index on
// provider_charge_ref backstops the insert itself.
func (r *PaymentRepository) Confirm(ctx context.Context, p ConfirmParams) (*model.PaymentRecord, bool, error) {
	// Fast path: a duplicate callback (network retry, client resubmission)
	// returns the existing record without taking any locks.
	if existing, err := r.GetByChargeRef(ctx, p.ProviderChargeRef); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, false, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the offering row first. Every confirmation for this offering
	// queues here, which is what makes the seat arithmetic race-free.
	var (
		offeringStatus model.OfferingStatus
		availableSeats int
	)
	err = tx.QueryRow(ctx,
		`SELECT status, available_seats FROM offerings WHERE id = $1 FOR UPDATE`,
		p.OfferingID,
	).Scan(&offeringStatus, &availableSeats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, fmt.Errorf("offering %s does not exist: %w", p.OfferingID, model.ErrInvalidState)
		}
		return nil, false, fmt.Errorf("lock offering row: %w", err)
	}
	if offeringStatus != model.OfferingApproved {
		err = fmt.Errorf("offering %s is %s: %w", p.OfferingID, offeringStatus, model.ErrInvalidState)
		return nil, false, err
	}

	// Referential checks on the selection, under the same transaction.
	var (
		selOwner    string
		selOffering string
		selStatus   model.SelectionStatus
	)
	err = tx.QueryRow(ctx,
		`SELECT student_email, offering_id, status FROM selections WHERE id = $1 FOR UPDATE`,
		p.SelectionID,
	).Scan(&selOwner, &selOffering, &selStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, fmt.Errorf("selection %s does not exist: %w", p.SelectionID, model.ErrInvalidState)
		}
		return nil, false, fmt.Errorf("lock selection row: %w", err)
	}
	if !strings.EqualFold(selOwner, p.StudentEmail) {
		err = fmt.Errorf("selection %s is not owned by caller: %w", p.SelectionID, model.ErrInvalidState)
		return nil, false, err
	}
	if selOffering != p.OfferingID {
		err = fmt.Errorf("selection %s references a different offering: %w", p.SelectionID, model.ErrInvalidState)
		return nil, false, err
	}
	if selStatus != model.SelectionPending {
		// A duplicate that slipped past the pre-transaction lookup while the
		// original confirmation was still in flight lands here: by the time
		// the row locks are acquired the original has committed and flipped
		// the selection to paid. The charge reference resolves it: a match
		// is the idempotent path, anything else is a real state violation.
		_ = tx.Rollback(ctx)
		if existing, getErr := r.GetByChargeRef(ctx, p.ProviderChargeRef); getErr == nil {
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("selection %s is %s: %w", p.SelectionID, selStatus, model.ErrInvalidState)
	}

	if availableSeats < 1 {
		err = fmt.Errorf("offering %s: %w", p.OfferingID, model.ErrCapacityExceeded)
		return nil, false, err
	}

	record := &model.PaymentRecord{
		ID:                uuid.New().String(),
		StudentEmail:      strings.ToLower(p.StudentEmail),
		SelectionID:       p.SelectionID,
		OfferingID:        p.OfferingID,
		Amount:            p.Amount,
		ProviderChargeRef: p.ProviderChargeRef,
		CreatedAt:         time.Now().UTC(),
	}
	var tag pgconn.CommandTag
	tag, err = tx.Exec(ctx,
		`INSERT INTO payments (id, student_email, selection_id, offering_id, amount,
		                       provider_charge_ref, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (provider_charge_ref) DO NOTHING`,
		record.ID, record.StudentEmail, record.SelectionID, record.OfferingID,
		record.Amount, record.ProviderChargeRef, record.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Another confirmation with the same charge reference won; hand back
		// its record instead of applying effects twice.
		_ = tx.Rollback(ctx)
		existing, getErr := r.GetByChargeRef(ctx, p.ProviderChargeRef)
		if getErr != nil {
			return nil, false, fmt.Errorf("load concurrent payment: %w", getErr)
		}
		return existing, false, nil
	}

	_, err = tx.Exec(ctx,
		`UPDATE selections SET status = $2 WHERE id = $1`,
		p.SelectionID, model.SelectionPaid,
	)
	if err != nil {
		return nil, false, fmt.Errorf("mark selection paid: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE offerings
		 SET available_seats = available_seats - 1,
		     enrolled_count  = enrolled_count + 1
		 WHERE id = $1`,
		p.OfferingID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("adjust seats: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit transaction: %w", err)
	}
	return record, true, nil
}

// GetByChargeRef returns the payment recorded for a provider charge
// reference, or model.ErrNotFound.
func (r *PaymentRepository) GetByChargeRef(ctx context.Context, ref string) (*model.PaymentRecord, error) {
	var rec model.PaymentRecord
	err := r.db.QueryRow(ctx,
		`SELECT id, student_email, selection_id, offering_id, amount, provider_charge_ref, created_at
		 FROM payments WHERE provider_charge_ref = $1`, ref,
	).Scan(&rec.ID, &rec.StudentEmail, &rec.SelectionID, &rec.OfferingID,
		&rec.Amount, &rec.ProviderChargeRef, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &rec, nil
}

// ListForStudent returns a student's payment history, newest first.
func (r *PaymentRepository) ListForStudent(ctx context.Context, email string) ([]model.PaymentRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, student_email, selection_id, offering_id, amount, provider_charge_ref, created_at
		 FROM payments WHERE student_email = $1 ORDER BY created_at DESC`,
		strings.ToLower(email),
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var records []model.PaymentRecord
	for rows.Next() {
		var rec model.PaymentRecord
		if err := rows.Scan(&rec.ID, &rec.StudentEmail, &rec.SelectionID, &rec.OfferingID,
			&rec.Amount, &rec.ProviderChargeRef, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
