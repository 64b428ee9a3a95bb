package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhymove/enrollment-backend/internal/model"
)

func TestCreateOfferingStartsPending(t *testing.T) {
	f := newFixture()

	o, err := f.offerings.Create(context.Background(), "instructor@example.com", model.CreateOfferingRequest{
		Title: "Salsa Basics",
		Seats: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, model.OfferingPending, o.Status)
	assert.Equal(t, 20, o.AvailableSeats)
	assert.Equal(t, 0, o.EnrolledCount)
}

func TestCreateOfferingRequiresTitle(t *testing.T) {
	f := newFixture()

	_, err := f.offerings.Create(context.Background(), "instructor@example.com", model.CreateOfferingRequest{
		Title: "   ",
		Seats: 20,
	})
	assert.Error(t, err)
}

func TestSetStatusTransitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, err := f.offerings.Create(ctx, "instructor@example.com", model.CreateOfferingRequest{
		Title: "Salsa Basics", Seats: 20,
	})
	require.NoError(t, err)

	denied, err := f.offerings.SetStatus(ctx, o.ID, model.OfferingDenied)
	require.NoError(t, err)
	assert.Equal(t, model.OfferingDenied, denied.Status)

	// Denied is terminal: approving afterwards fails and the status stays.
	_, err = f.offerings.SetStatus(ctx, o.ID, model.OfferingApproved)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	got, err := f.offerings.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OfferingDenied, got.Status)
}

func TestSetStatusRejectsPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, err := f.offerings.Create(ctx, "instructor@example.com", model.CreateOfferingRequest{
		Title: "Salsa Basics", Seats: 20,
	})
	require.NoError(t, err)

	// The decision endpoint only accepts terminal outcomes.
	_, err = f.offerings.SetStatus(ctx, o.ID, model.OfferingPending)
	assert.Error(t, err)
}

func TestSetStatusUnknownOffering(t *testing.T) {
	f := newFixture()

	_, err := f.offerings.SetStatus(context.Background(), "missing", model.OfferingApproved)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestListPendingAndApproved(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.offerings.Create(ctx, "instructor@example.com", model.CreateOfferingRequest{
		Title: "Salsa Basics", Seats: 20,
	})
	require.NoError(t, err)
	second, err := f.offerings.Create(ctx, "instructor@example.com", model.CreateOfferingRequest{
		Title: "Hip Hop Advanced", Seats: 15,
	})
	require.NoError(t, err)

	_, err = f.offerings.SetStatus(ctx, first.ID, model.OfferingApproved)
	require.NoError(t, err)

	pending, err := f.offerings.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	approved, err := f.offerings.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, first.ID, approved[0].ID)
}

func TestAttachFeedback(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, err := f.offerings.Create(ctx, "instructor@example.com", model.CreateOfferingRequest{
		Title: "Salsa Basics", Seats: 20,
	})
	require.NoError(t, err)
	_, err = f.offerings.SetStatus(ctx, o.ID, model.OfferingDenied)
	require.NoError(t, err)

	got, err := f.offerings.AttachFeedback(ctx, o.ID, "Needs a syllabus", "Admin@Example.com")
	require.NoError(t, err)
	require.NotNil(t, got.Feedback)
	assert.Equal(t, "Needs a syllabus", got.Feedback.Text)
	assert.Equal(t, "admin@example.com", got.Feedback.AuthorEmail)
}

func TestListByInstructor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.offerings.Create(ctx, "a@example.com", model.CreateOfferingRequest{Title: "A", Seats: 5})
	require.NoError(t, err)
	_, err = f.offerings.Create(ctx, "b@example.com", model.CreateOfferingRequest{Title: "B", Seats: 5})
	require.NoError(t, err)

	mine, err := f.offerings.ListByInstructor(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0].Title)
}
