package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rhymove/enrollment-backend/internal/model"
)

// Offerings is the offering-store view over a shared Store.
type Offerings struct {
	s *Store
}

// Create inserts a new offering in pending status.
func (r *Offerings) Create(_ context.Context, instructorEmail string, req model.CreateOfferingRequest) (*model.Offering, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o := model.Offering{
		ID:              uuid.New().String(),
		InstructorEmail: strings.ToLower(instructorEmail),
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		Status:          model.OfferingPending,
		AvailableSeats:  req.Seats,
		CreatedAt:       time.Now().UTC(),
	}
	r.s.offerings[o.ID] = o
	r.s.offeringOrder = append(r.s.offeringOrder, o.ID)
	return &o, nil
}

// GetByID returns an offering or model.ErrNotFound.
func (r *Offerings) GetByID(_ context.Context, id string) (*model.Offering, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.offerings[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &o, nil
}

// ListApproved returns approved offerings, insertion-ordered.
func (r *Offerings) ListApproved(_ context.Context) ([]model.Offering, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.filterOfferingsLocked(func(o model.Offering) bool {
		return o.Status == model.OfferingApproved
	}), nil
}

// ListPopular returns the six most-enrolled approved offerings.
func (r *Offerings) ListPopular(_ context.Context) ([]model.Offering, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	approved := r.s.filterOfferingsLocked(func(o model.Offering) bool {
		return o.Status == model.OfferingApproved
	})
	sort.SliceStable(approved, func(i, j int) bool {
		return approved[i].EnrolledCount > approved[j].EnrolledCount
	})
	if len(approved) > 6 {
		approved = approved[:6]
	}
	return approved, nil
}

// ListPending returns offerings awaiting an admin decision.
func (r *Offerings) ListPending(_ context.Context) ([]model.Offering, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.filterOfferingsLocked(func(o model.Offering) bool {
		return o.Status == model.OfferingPending
	}), nil
}

// ListByInstructor returns every offering submitted by an instructor.
func (r *Offerings) ListByInstructor(_ context.Context, email string) ([]model.Offering, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(email)
	return r.s.filterOfferingsLocked(func(o model.Offering) bool {
		return o.InstructorEmail == key
	}), nil
}

// SetStatus performs pending→approved or pending→denied; an offering that is
// no longer pending returns model.ErrInvalidTransition unchanged.
func (r *Offerings) SetStatus(_ context.Context, id string, status model.OfferingStatus) (*model.Offering, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.offerings[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if o.Status != model.OfferingPending {
		return nil, fmt.Errorf("offering %s is not pending: %w", id, model.ErrInvalidTransition)
	}
	o.Status = status
	r.s.offerings[id] = o
	return &o, nil
}

// AttachFeedback stores an admin note on an offering.
func (r *Offerings) AttachFeedback(_ context.Context, id string, fb model.Feedback) (*model.Offering, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.offerings[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	fb.AuthorEmail = strings.ToLower(fb.AuthorEmail)
	o.Feedback = &fb
	r.s.offerings[id] = o
	return &o, nil
}

// AdjustSeats applies a seat/enrollment delta, refusing any update that would
// push either counter negative.
func (r *Offerings) AdjustSeats(_ context.Context, id string, seatDelta, enrollDelta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.adjustSeatsLocked(id, seatDelta, enrollDelta)
}
