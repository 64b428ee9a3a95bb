package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhymove/enrollment-backend/internal/auth"
	"github.com/rhymove/enrollment-backend/internal/model"
)

func TestConfirmPaymentAppliesTransition(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	offering := approvedOffering(t, f, 10)
	sel := pendingSelection(t, f, "student@example.com", offering.ID)

	record, err := f.payments.ConfirmPayment(ctx, "student@example.com", model.ConfirmPaymentRequest{
		SelectionID:       sel.ID,
		OfferingID:        offering.ID,
		ProviderChargeRef: "charge-1",
		Amount:            4900,
	})
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", record.StudentEmail)
	assert.Equal(t, sel.ID, record.SelectionID)
	assert.Equal(t, "charge-1", record.ProviderChargeRef)

	got, err := f.offerings.Get(ctx, offering.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.AvailableSeats)
	assert.Equal(t, 1, got.EnrolledCount)

	selections, err := f.selections.ListForStudent(ctx, "student@example.com")
	require.NoError(t, err)
	require.Len(t, selections, 1)
	assert.Equal(t, model.SelectionPaid, selections[0].Status)
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	offering := approvedOffering(t, f, 10)
	sel := pendingSelection(t, f, "student@example.com", offering.ID)

	req := model.ConfirmPaymentRequest{
		SelectionID:       sel.ID,
		OfferingID:        offering.ID,
		ProviderChargeRef: "charge-dup",
		Amount:            4900,
	}

	first, err := f.payments.ConfirmPayment(ctx, "student@example.com", req)
	require.NoError(t, err)

	// A duplicate callback (network retry, client resubmission) returns the
	// same record and applies no second seat adjustment.
	second, err := f.payments.ConfirmPayment(ctx, "student@example.com", req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := f.offerings.Get(ctx, offering.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.AvailableSeats)
	assert.Equal(t, 1, got.EnrolledCount)
}

func TestConfirmPaymentCapacityRace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// One seat left, five already enrolled.
	offering := approvedOffering(t, f, 6)
	for i := 0; i < 5; i++ {
		sel := pendingSelection(t, f, "earlier@example.com", offering.ID)
		_, err := f.payments.ConfirmPayment(ctx, "earlier@example.com", model.ConfirmPaymentRequest{
			SelectionID:       sel.ID,
			OfferingID:        offering.ID,
			ProviderChargeRef: "seed-" + sel.ID,
			Amount:            4900,
		})
		require.NoError(t, err)
	}

	selA := pendingSelection(t, f, "alice@example.com", offering.ID)
	selB := pendingSelection(t, f, "bob@example.com", offering.ID)

	type outcome struct {
		record *model.PaymentRecord
		err    error
	}
	results := make([]outcome, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		rec, err := f.payments.ConfirmPayment(ctx, "alice@example.com", model.ConfirmPaymentRequest{
			SelectionID: selA.ID, OfferingID: offering.ID, ProviderChargeRef: "charge-a", Amount: 4900,
		})
		results[0] = outcome{rec, err}
	}()
	go func() {
		defer wg.Done()
		rec, err := f.payments.ConfirmPayment(ctx, "bob@example.com", model.ConfirmPaymentRequest{
			SelectionID: selB.ID, OfferingID: offering.ID, ProviderChargeRef: "charge-b", Amount: 4900,
		})
		results[1] = outcome{rec, err}
	}()
	wg.Wait()

	var successes, capacityFailures int
	for _, res := range results {
		switch {
		case res.err == nil:
			successes++
		case assert.ErrorIs(t, res.err, model.ErrCapacityExceeded):
			capacityFailures++
			assert.Nil(t, res.record, "failed confirmation must not produce a record")
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, capacityFailures)

	got, err := f.offerings.Get(ctx, offering.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableSeats)
	assert.Equal(t, 6, got.EnrolledCount)
}

func TestConfirmPaymentRejectsForeignSelection(t *testing.T) {
	f := newFixture()
	offering := approvedOffering(t, f, 10)
	sel := pendingSelection(t, f, "owner@example.com", offering.ID)

	_, err := f.payments.ConfirmPayment(context.Background(), "intruder@example.com", model.ConfirmPaymentRequest{
		SelectionID:       sel.ID,
		OfferingID:        offering.ID,
		ProviderChargeRef: "charge-x",
		Amount:            4900,
	})
	assert.ErrorIs(t, err, model.ErrInvalidState)

	// Nothing moved.
	got, err := f.offerings.Get(context.Background(), offering.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.AvailableSeats)
	assert.Equal(t, 0, got.EnrolledCount)
}

func TestConfirmPaymentRejectsMissingSelection(t *testing.T) {
	f := newFixture()
	offering := approvedOffering(t, f, 10)

	_, err := f.payments.ConfirmPayment(context.Background(), "student@example.com", model.ConfirmPaymentRequest{
		SelectionID:       "11111111-1111-4111-8111-111111111111",
		OfferingID:        offering.ID,
		ProviderChargeRef: "charge-x",
		Amount:            4900,
	})
	assert.ErrorIs(t, err, model.ErrInvalidState)
}

func TestConfirmPaymentRejectsPaidSelection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	offering := approvedOffering(t, f, 10)
	sel := pendingSelection(t, f, "student@example.com", offering.ID)

	_, err := f.payments.ConfirmPayment(ctx, "student@example.com", model.ConfirmPaymentRequest{
		SelectionID: sel.ID, OfferingID: offering.ID, ProviderChargeRef: "charge-1", Amount: 4900,
	})
	require.NoError(t, err)

	// A different charge reference against an already-paid selection is not
	// the idempotent path; it is a state violation.
	_, err = f.payments.ConfirmPayment(ctx, "student@example.com", model.ConfirmPaymentRequest{
		SelectionID: sel.ID, OfferingID: offering.ID, ProviderChargeRef: "charge-2", Amount: 4900,
	})
	assert.ErrorIs(t, err, model.ErrInvalidState)

	got, err := f.offerings.Get(ctx, offering.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.AvailableSeats, "seat adjustment must not re-apply")
}

func TestInitiateCharge(t *testing.T) {
	f := newFixture()
	offering := approvedOffering(t, f, 10)

	caller := auth.Identity{Email: "student@example.com", Name: "Student"}
	authz, err := f.payments.InitiateCharge(context.Background(), caller, model.InitiateChargeRequest{
		OfferingID: offering.ID,
		Amount:     4900,
	})
	require.NoError(t, err)
	assert.Equal(t, "snap-token", authz.ClientSecret)
	assert.NotEmpty(t, authz.OrderRef)

	require.Len(t, f.authorizer.orders, 1)
	assert.Equal(t, int64(4900), f.authorizer.orders[0].Amount)
	assert.Equal(t, "student@example.com", f.authorizer.orders[0].CustomerEmail)
	assert.Equal(t, "Student", f.authorizer.orders[0].CustomerName)
	assert.Equal(t, offering.Title, f.authorizer.orders[0].Description)
}

func TestInitiateChargeUnapprovedOffering(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o, err := f.offerings.Create(ctx, "instructor@example.com", model.CreateOfferingRequest{
		Title: "Salsa Basics", Seats: 10,
	})
	require.NoError(t, err)

	_, err = f.payments.InitiateCharge(ctx, auth.Identity{Email: "student@example.com"}, model.InitiateChargeRequest{
		OfferingID: o.ID,
		Amount:     4900,
	})
	assert.ErrorIs(t, err, model.ErrInvalidState)
	assert.Empty(t, f.authorizer.orders, "no provider call for an unapproved offering")
}

func TestInitiateChargeProviderUnavailable(t *testing.T) {
	f := newFixture()
	f.authorizer.err = model.ErrProviderUnavailable
	offering := approvedOffering(t, f, 10)

	_, err := f.payments.InitiateCharge(context.Background(), auth.Identity{Email: "student@example.com"}, model.InitiateChargeRequest{
		OfferingID: offering.ID,
		Amount:     4900,
	})
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
}

func TestListPaymentsForStudent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	offering := approvedOffering(t, f, 10)
	sel := pendingSelection(t, f, "student@example.com", offering.ID)

	_, err := f.payments.ConfirmPayment(ctx, "student@example.com", model.ConfirmPaymentRequest{
		SelectionID: sel.ID, OfferingID: offering.ID, ProviderChargeRef: "charge-1", Amount: 4900,
	})
	require.NoError(t, err)

	records, err := f.payments.ListForStudent(ctx, "student@example.com")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "charge-1", records[0].ProviderChargeRef)

	other, err := f.payments.ListForStudent(ctx, "other@example.com")
	require.NoError(t, err)
	assert.Empty(t, other)
}
