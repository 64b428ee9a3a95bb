package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rhymove/enrollment-backend/internal/auth"
	"github.com/rhymove/enrollment-backend/internal/memory"
	"github.com/rhymove/enrollment-backend/internal/model"
	"github.com/rhymove/enrollment-backend/internal/payment"
)

// stubAuthorizer stands in for the external payment provider.
type stubAuthorizer struct {
	secret string
	err    error
	orders []payment.ChargeOrder
}

func (s *stubAuthorizer) AuthorizeCharge(_ context.Context, order payment.ChargeOrder) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.orders = append(s.orders, order)
	return s.secret, nil
}

// fixture wires every service against a shared in-memory store.
type fixture struct {
	store      *memory.Store
	authorizer *stubAuthorizer
	users      *UserService
	offerings  *OfferingService
	selections *SelectionService
	payments   *PaymentService
}

func newFixture() *fixture {
	store := memory.NewStore()
	authorizer := &stubAuthorizer{secret: "snap-token"}
	return &fixture{
		store:      store,
		authorizer: authorizer,
		users:      NewUserService(store.Users(), auth.NewTokenManager("test-secret", time.Hour)),
		offerings:  NewOfferingService(store.Offerings()),
		selections: NewSelectionService(store.Selections()),
		payments:   NewPaymentService(store.Payments(), store.Offerings(), authorizer),
	}
}

// approvedOffering seeds an approved offering with the given seat count.
func approvedOffering(t *testing.T, f *fixture, seats int) *model.Offering {
	t.Helper()
	o, err := f.offerings.Create(context.Background(), "instructor@example.com", model.CreateOfferingRequest{
		Title: "Salsa Basics",
		Price: 4900,
		Seats: seats,
	})
	require.NoError(t, err)
	o, err = f.offerings.SetStatus(context.Background(), o.ID, model.OfferingApproved)
	require.NoError(t, err)
	return o
}

// pendingSelection seeds a pending selection for the student on the offering.
func pendingSelection(t *testing.T, f *fixture, studentEmail, offeringID string) *model.Selection {
	t.Helper()
	sel, err := f.selections.Create(context.Background(), studentEmail, model.CreateSelectionRequest{OfferingID: offeringID})
	require.NoError(t, err)
	return sel
}
