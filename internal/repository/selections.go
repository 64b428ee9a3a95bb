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

// SelectionRepository handles persistence for student selections (the cart).
type SelectionRepository struct {
	db *pgxpool.Pool
}

// NewSelectionRepository constructs a SelectionRepository.
func NewSelectionRepository(db *pgxpool.Pool) *SelectionRepository {
	return &SelectionRepository{db: db}
}

// Create inserts a pending selection. The referenced offering must exist
// (model.ErrNotFound) and be approved (model.ErrInvalidState).
func (r *SelectionRepository) Create(ctx context.Context, studentEmail, offeringID string) (*model.Selection, error) {
	var status model.OfferingStatus
	err := r.db.QueryRow(ctx,
		`SELECT status FROM offerings WHERE id = $1`, offeringID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("offering %s: %w", offeringID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("check offering: %w", err)
	}
	if status != model.OfferingApproved {
		return nil, fmt.Errorf("offering %s is %s: %w", offeringID, status, model.ErrInvalidState)
	}

	sel := &model.Selection{
		ID:           uuid.New().String(),
		StudentEmail: strings.ToLower(studentEmail),
		OfferingID:   offeringID,
		Status:       model.SelectionPending,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO selections (id, student_email, offering_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		sel.ID, sel.StudentEmail, sel.OfferingID, sel.Status, sel.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert selection: %w", err)
	}
	return sel, nil
}

// GetByID returns a selection or model.ErrNotFound.
func (r *SelectionRepository) GetByID(ctx context.Context, id string) (*model.Selection, error) {
	var s model.Selection
	err := r.db.QueryRow(ctx,
		`SELECT id, student_email, offering_id, status, created_at
		 FROM selections WHERE id = $1`, id,
	).Scan(&s.ID, &s.StudentEmail, &s.OfferingID, &s.Status, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get selection: %w", err)
	}
	return &s, nil
}

// ListForStudent returns a student's selections, insertion-ordered.
func (r *SelectionRepository) ListForStudent(ctx context.Context, email string) ([]model.Selection, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, student_email, offering_id, status, created_at
		 FROM selections WHERE student_email = $1 ORDER BY created_at ASC`,
		strings.ToLower(email),
	)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	defer rows.Close()

	var selections []model.Selection
	for rows.Next() {
		var s model.Selection
		if err := rows.Scan(&s.ID, &s.StudentEmail, &s.OfferingID, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		selections = append(selections, s)
	}
	return selections, rows.Err()
}

// Delete removes a pending selection. Only the owning student may remove it
// (model.ErrForbidden); a paid selection is immutable
// (model.ErrInvalidTransition).
func (r *SelectionRepository) Delete(ctx context.Context, id, requesterEmail string) error {
	sel, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !strings.EqualFold(sel.StudentEmail, requesterEmail) {
		return fmt.Errorf("selection %s: %w", id, model.ErrForbidden)
	}
	if sel.Status != model.SelectionPending {
		return fmt.Errorf("selection %s is %s: %w", id, sel.Status, model.ErrInvalidTransition)
	}

	// Re-check ownership and status in the DELETE itself so a concurrent
	// payment confirmation cannot slip between the read and the delete.
	tag, err := r.db.Exec(ctx,
		`DELETE FROM selections WHERE id = $1 AND student_email = $2 AND status = $3`,
		id, strings.ToLower(requesterEmail), model.SelectionPending,
	)
	if err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("selection %s changed concurrently: %w", id, model.ErrInvalidTransition)
	}
	return nil
}

// MarkPaid performs the pending→paid transition exactly once. A selection
// that is not pending returns model.ErrInvalidTransition.
func (r *SelectionRepository) MarkPaid(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE selections SET status = $2 WHERE id = $1 AND status = $3`,
		id, model.SelectionPaid, model.SelectionPending,
	)
	if err != nil {
		return fmt.Errorf("mark selection paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("selection %s is not pending: %w", id, model.ErrInvalidTransition)
	}
	return nil
}
