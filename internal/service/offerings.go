package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rhymove/enrollment-backend/internal/model"
)

// OfferingService orchestrates offering submission, listing, and the admin
// approval workflow.
type OfferingService struct {
	offerings OfferingStore
}

// NewOfferingService constructs an OfferingService.
func NewOfferingService(offerings OfferingStore) *OfferingService {
	return &OfferingService{offerings: offerings}
}

// Create submits a new offering for approval. Instructor-gated by the
// handler; the offering always starts pending.
func (s *OfferingService) Create(ctx context.Context, instructorEmail string, req model.CreateOfferingRequest) (*model.Offering, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, fmt.Errorf("offering title is required")
	}
	return s.offerings.Create(ctx, instructorEmail, req)
}

// Get returns one offering by id.
func (s *OfferingService) Get(ctx context.Context, id string) (*model.Offering, error) {
	return s.offerings.GetByID(ctx, id)
}

// ListApproved returns the public catalog.
func (s *OfferingService) ListApproved(ctx context.Context) ([]model.Offering, error) {
	return s.offerings.ListApproved(ctx)
}

// ListPopular returns the six most-enrolled approved offerings.
func (s *OfferingService) ListPopular(ctx context.Context) ([]model.Offering, error) {
	return s.offerings.ListPopular(ctx)
}

// ListPending returns offerings awaiting a decision. Admin-gated by the
// handler.
func (s *OfferingService) ListPending(ctx context.Context) ([]model.Offering, error) {
	return s.offerings.ListPending(ctx)
}

// ListByInstructor returns an instructor's own submissions.
func (s *OfferingService) ListByInstructor(ctx context.Context, email string) ([]model.Offering, error) {
	return s.offerings.ListByInstructor(ctx, email)
}

// SetStatus applies the admin approve/deny decision. Only pending offerings
// move; approved and denied are terminal, so a second decision surfaces
// model.ErrInvalidTransition and the stored status stays put.
func (s *OfferingService) SetStatus(ctx context.Context, id string, status model.OfferingStatus) (*model.Offering, error) {
	if status != model.OfferingApproved && status != model.OfferingDenied {
		return nil, fmt.Errorf("status must be approved or denied")
	}
	return s.offerings.SetStatus(ctx, id, status)
}

// AttachFeedback stores an admin note on an offering, typically explaining a
// denial.
func (s *OfferingService) AttachFeedback(ctx context.Context, id, text, authorEmail string) (*model.Offering, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("feedback text is required")
	}
	return s.offerings.AttachFeedback(ctx, id, model.Feedback{Text: text, AuthorEmail: authorEmail})
}
