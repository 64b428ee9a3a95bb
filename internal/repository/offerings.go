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

const offeringColumns = `id, instructor_email, title, description, price, status,
	available_seats, enrolled_count, feedback_text, feedback_author, created_at`

// OfferingRepository handles persistence for course offerings.
type OfferingRepository struct {
	db *pgxpool.Pool
}

// NewOfferingRepository constructs an OfferingRepository.
func NewOfferingRepository(db *pgxpool.Pool) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// Create inserts a new offering in pending status.
func (r *OfferingRepository) Create(ctx context.Context, instructorEmail string, req model.CreateOfferingRequest) (*model.Offering, error) {
	offering := &model.Offering{
		ID:              uuid.New().String(),
		InstructorEmail: strings.ToLower(instructorEmail),
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		Status:          model.OfferingPending,
		AvailableSeats:  req.Seats,
		EnrolledCount:   0,
		CreatedAt:       time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO offerings (id, instructor_email, title, description, price, status,
		                        available_seats, enrolled_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		offering.ID, offering.InstructorEmail, offering.Title, offering.Description,
		offering.Price, offering.Status, offering.AvailableSeats, offering.EnrolledCount,
		offering.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert offering: %w", err)
	}
	return offering, nil
}

// GetByID returns a single offering or model.ErrNotFound.
func (r *OfferingRepository) GetByID(ctx context.Context, id string) (*model.Offering, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+offeringColumns+` FROM offerings WHERE id = $1`, id)
	o, err := scanOffering(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get offering: %w", err)
	}
	return o, nil
}

// ListApproved returns approved offerings, insertion-ordered.
func (r *OfferingRepository) ListApproved(ctx context.Context) ([]model.Offering, error) {
	return r.list(ctx,
		`SELECT `+offeringColumns+` FROM offerings WHERE status = $1 ORDER BY created_at ASC`,
		model.OfferingApproved)
}

// ListPopular returns the six most-enrolled approved offerings.
func (r *OfferingRepository) ListPopular(ctx context.Context) ([]model.Offering, error) {
	return r.list(ctx,
		`SELECT `+offeringColumns+` FROM offerings
		 WHERE status = $1 ORDER BY enrolled_count DESC LIMIT 6`,
		model.OfferingApproved)
}

// ListPending returns offerings awaiting an admin decision.
func (r *OfferingRepository) ListPending(ctx context.Context) ([]model.Offering, error) {
	return r.list(ctx,
		`SELECT `+offeringColumns+` FROM offerings WHERE status = $1 ORDER BY created_at ASC`,
		model.OfferingPending)
}

// ListByInstructor returns every offering submitted by an instructor.
func (r *OfferingRepository) ListByInstructor(ctx context.Context, email string) ([]model.Offering, error) {
	return r.list(ctx,
		`SELECT `+offeringColumns+` FROM offerings WHERE instructor_email = $1 ORDER BY created_at ASC`,
		strings.ToLower(email))
}

// SetStatus performs the pending→approved or pending→denied transition.
// Approved and denied are terminal: attempting to move an offering that is no
// longer pending returns model.ErrInvalidTransition and leaves it unchanged.
func (r *OfferingRepository) SetStatus(ctx context.Context, id string, status model.OfferingStatus) (*model.Offering, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE offerings SET status = $2
		 WHERE id = $1 AND status = $3
		 RETURNING `+offeringColumns,
		id, status, model.OfferingPending,
	)
	o, err := scanOffering(row)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("set offering status: %w", err)
	}
	// Distinguish a missing offering from a terminal one.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("offering %s is not pending: %w", id, model.ErrInvalidTransition)
}

// AttachFeedback stores an admin note on an offering.
func (r *OfferingRepository) AttachFeedback(ctx context.Context, id string, fb model.Feedback) (*model.Offering, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE offerings SET feedback_text = $2, feedback_author = $3
		 WHERE id = $1
		 RETURNING `+offeringColumns,
		id, fb.Text, strings.ToLower(fb.AuthorEmail),
	)
	o, err := scanOffering(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("attach feedback: %w", err)
	}
	return o, nil
}

// AdjustSeats applies a seat/enrollment delta atomically with respect to
// concurrent callers on the same offering. The guard in the WHERE clause
// refuses any update that would push available_seats negative, so the
// conservation invariant never breaks even under contention.
func (r *OfferingRepository) AdjustSeats(ctx context.Context, id string, seatDelta, enrollDelta int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE offerings
		 SET available_seats = available_seats + $2,
		     enrolled_count  = enrolled_count + $3
		 WHERE id = $1 AND available_seats + $2 >= 0 AND enrolled_count + $3 >= 0`,
		id, seatDelta, enrollDelta,
	)
	if err != nil {
		return fmt.Errorf("adjust seats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("offering %s: %w", id, model.ErrCapacityExceeded)
	}
	return nil
}

func (r *OfferingRepository) list(ctx context.Context, query string, args ...any) ([]model.Offering, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	defer rows.Close()

	var offerings []model.Offering
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offering: %w", err)
		}
		offerings = append(offerings, *o)
	}
	return offerings, rows.Err()
}

func scanOffering(row pgx.Row) (*model.Offering, error) {
	var (
		o              model.Offering
		feedbackText   *string
		feedbackAuthor *string
	)
	err := row.Scan(&o.ID, &o.InstructorEmail, &o.Title, &o.Description, &o.Price,
		&o.Status, &o.AvailableSeats, &o.EnrolledCount, &feedbackText, &feedbackAuthor,
		&o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if feedbackText != nil {
		o.Feedback = &model.Feedback{Text: *feedbackText}
		if feedbackAuthor != nil {
			o.Feedback.AuthorEmail = *feedbackAuthor
		}
	}
	return &o, nil
}
