package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhymove/enrollment-backend/internal/model"
	"github.com/rhymove/enrollment-backend/internal/repository"
)

func seedApproved(t *testing.T, s *Store, seats int) *model.Offering {
	t.Helper()
	o, err := s.Offerings().Create(context.Background(), "instructor@example.com",
		model.CreateOfferingRequest{Title: "Salsa Basics", Seats: seats})
	require.NoError(t, err)
	o, err = s.Offerings().SetStatus(context.Background(), o.ID, model.OfferingApproved)
	require.NoError(t, err)
	return o
}

func TestAdjustSeatsRefusesNegative(t *testing.T) {
	s := NewStore()
	o := seedApproved(t, s, 1)
	ctx := context.Background()

	require.NoError(t, s.Offerings().AdjustSeats(ctx, o.ID, -1, +1))

	err := s.Offerings().AdjustSeats(ctx, o.ID, -1, +1)
	assert.ErrorIs(t, err, model.ErrCapacityExceeded)

	got, err := s.Offerings().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableSeats)
	assert.Equal(t, 1, got.EnrolledCount)
}

func TestAdjustSeatsConservesTotalUnderConcurrency(t *testing.T) {
	s := NewStore()
	const seats = 40
	o := seedApproved(t, s, seats)
	ctx := context.Background()

	// More attempts than seats: the surplus must fail rather than
	// over-decrement.
	var wg sync.WaitGroup
	for i := 0; i < seats+20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Offerings().AdjustSeats(ctx, o.ID, -1, +1)
		}()
	}
	wg.Wait()

	got, err := s.Offerings().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableSeats)
	assert.Equal(t, seats, got.EnrolledCount)
	assert.Equal(t, seats, got.AvailableSeats+got.EnrolledCount, "seat total must be conserved")
}

func TestMarkPaidExactlyOnce(t *testing.T) {
	s := NewStore()
	o := seedApproved(t, s, 5)
	ctx := context.Background()

	sel, err := s.Selections().Create(ctx, "student@example.com", o.ID)
	require.NoError(t, err)

	require.NoError(t, s.Selections().MarkPaid(ctx, sel.ID))

	err = s.Selections().MarkPaid(ctx, sel.ID)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	got, err := s.Selections().GetByID(ctx, sel.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SelectionPaid, got.Status)
}

func TestConfirmConcurrentSameChargeRef(t *testing.T) {
	s := NewStore()
	o := seedApproved(t, s, 5)
	ctx := context.Background()

	sel, err := s.Selections().Create(ctx, "student@example.com", o.ID)
	require.NoError(t, err)

	params := repository.ConfirmParams{
		StudentEmail:      "student@example.com",
		SelectionID:       sel.ID,
		OfferingID:        o.ID,
		ProviderChargeRef: "charge-1",
		Amount:            4900,
	}

	const callers = 8
	records := make([]*model.PaymentRecord, callers)
	applied := make([]bool, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			records[i], applied[i], errs[i] = s.Payments().Confirm(ctx, params)
		}(i)
	}
	wg.Wait()

	var appliedCount int
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, records[0].ID, records[i].ID, "every caller sees the same record")
		if applied[i] {
			appliedCount++
		}
	}
	assert.Equal(t, 1, appliedCount, "effects applied exactly once")

	got, err := s.Offerings().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.AvailableSeats)
	assert.Equal(t, 1, got.EnrolledCount)
}

func TestListPopularOrdersByEnrollmentTopSix(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		o := seedApproved(t, s, 10)
		for j := 0; j <= i; j++ {
			sel, err := s.Selections().Create(ctx, fmt.Sprintf("s%d-%d@example.com", i, j), o.ID)
			require.NoError(t, err)
			_, _, err = s.Payments().Confirm(ctx, repository.ConfirmParams{
				StudentEmail:      sel.StudentEmail,
				SelectionID:       sel.ID,
				OfferingID:        o.ID,
				ProviderChargeRef: fmt.Sprintf("charge-%d-%d", i, j),
				Amount:            4900,
			})
			require.NoError(t, err)
		}
	}

	popular, err := s.Offerings().ListPopular(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 6)
	for i := 1; i < len(popular); i++ {
		assert.GreaterOrEqual(t, popular[i-1].EnrolledCount, popular[i].EnrolledCount)
	}
	assert.Equal(t, 8, popular[0].EnrolledCount)
}

func TestDeleteSelectionUpdatesOrder(t *testing.T) {
	s := NewStore()
	o := seedApproved(t, s, 5)
	ctx := context.Background()

	first, err := s.Selections().Create(ctx, "student@example.com", o.ID)
	require.NoError(t, err)
	second, err := s.Selections().Create(ctx, "student@example.com", o.ID)
	require.NoError(t, err)

	require.NoError(t, s.Selections().Delete(ctx, first.ID, "student@example.com"))

	selections, err := s.Selections().ListForStudent(ctx, "student@example.com")
	require.NoError(t, err)
	require.Len(t, selections, 1)
	assert.Equal(t, second.ID, selections[0].ID)
}
