package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhymove/enrollment-backend/internal/model"
)

func TestCreateSelection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	offering := approvedOffering(t, f, 10)

	sel, err := f.selections.Create(ctx, "student@example.com", model.CreateSelectionRequest{OfferingID: offering.ID})
	require.NoError(t, err)
	assert.Equal(t, model.SelectionPending, sel.Status)
	assert.Equal(t, offering.ID, sel.OfferingID)
}

func TestCreateSelectionUnapprovedOffering(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, err := f.offerings.Create(ctx, "instructor@example.com", model.CreateOfferingRequest{
		Title: "Salsa Basics", Seats: 10,
	})
	require.NoError(t, err)

	_, err = f.selections.Create(ctx, "student@example.com", model.CreateSelectionRequest{OfferingID: o.ID})
	assert.ErrorIs(t, err, model.ErrInvalidState)
}

func TestCreateSelectionMissingOffering(t *testing.T) {
	f := newFixture()

	_, err := f.selections.Create(context.Background(), "student@example.com",
		model.CreateSelectionRequest{OfferingID: "11111111-1111-4111-8111-111111111111"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteSelectionOwnerOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	offering := approvedOffering(t, f, 10)
	sel := pendingSelection(t, f, "owner@example.com", offering.ID)

	err := f.selections.Delete(ctx, sel.ID, "intruder@example.com")
	assert.ErrorIs(t, err, model.ErrForbidden)

	// Still there for the owner, who may then remove it.
	selections, err := f.selections.ListForStudent(ctx, "owner@example.com")
	require.NoError(t, err)
	require.Len(t, selections, 1)

	require.NoError(t, f.selections.Delete(ctx, sel.ID, "owner@example.com"))

	selections, err = f.selections.ListForStudent(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Empty(t, selections)
}

func TestDeleteSelectionPaidIsImmutable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	offering := approvedOffering(t, f, 10)
	sel := pendingSelection(t, f, "student@example.com", offering.ID)

	_, err := f.payments.ConfirmPayment(ctx, "student@example.com", model.ConfirmPaymentRequest{
		SelectionID: sel.ID, OfferingID: offering.ID, ProviderChargeRef: "charge-1", Amount: 4900,
	})
	require.NoError(t, err)

	err = f.selections.Delete(ctx, sel.ID, "student@example.com")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestListSelectionsScopedToStudent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	offering := approvedOffering(t, f, 10)
	pendingSelection(t, f, "a@example.com", offering.ID)
	pendingSelection(t, f, "b@example.com", offering.ID)

	selections, err := f.selections.ListForStudent(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, selections, 1)
	assert.Equal(t, "a@example.com", selections[0].StudentEmail)
}
