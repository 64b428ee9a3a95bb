package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/rhymove/enrollment-backend/internal/auth"
	"github.com/rhymove/enrollment-backend/internal/model"
	"github.com/rhymove/enrollment-backend/internal/payment"
	"github.com/rhymove/enrollment-backend/internal/repository"
)

// PaymentService coordinates the two-phase payment flow: authorize a charge
// with the external provider, then apply the enrollment transition when the
// confirmation callback arrives. It holds no state of its own.
type PaymentService struct {
	payments   PaymentStore
	offerings  OfferingStore
	authorizer payment.ChargeAuthorizer
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(payments PaymentStore, offerings OfferingStore, authorizer payment.ChargeAuthorizer) *PaymentService {
	return &PaymentService{payments: payments, offerings: offerings, authorizer: authorizer}
}

// InitiateCharge asks the provider to authorize a charge for the caller and
// returns the order reference plus the provider's client secret. Nothing is
// persisted on this path: funds are only captured client-side, and the
// enrollment transition waits for ConfirmPayment.
func (s *PaymentService) InitiateCharge(ctx context.Context, caller auth.Identity, req model.InitiateChargeRequest) (*model.ChargeAuthorization, error) {
	offering, err := s.offerings.GetByID(ctx, req.OfferingID)
	if err != nil {
		return nil, err
	}
	if offering.Status != model.OfferingApproved {
		return nil, fmt.Errorf("offering %s is %s: %w", offering.ID, offering.Status, model.ErrInvalidState)
	}

	orderRef := uuid.New().String()
	secret, err := s.authorizer.AuthorizeCharge(ctx, payment.ChargeOrder{
		OrderRef:      orderRef,
		Amount:        req.Amount,
		CustomerEmail: caller.Email,
		CustomerName:  caller.Name,
		Description:   offering.Title,
	})
	if err != nil {
		return nil, err
	}
	return &model.ChargeAuthorization{OrderRef: orderRef, ClientSecret: secret}, nil
}

// ConfirmPayment applies the critical transition after a successful charge:
// record the payment, flip the selection to paid, and consume one seat — all
// atomically. Repeating a confirmation with the same provider charge
// reference returns the original record without re-applying any effect.
//
// The store call runs detached from the caller's cancellation: once a
// confirmation starts, a client disconnect must not be able to leave a
// payment recorded with seats unadjusted. The transition either commits in
// full or rolls back in full.
//
// A CapacityExceeded or InvalidState failure here means the external charge
// is already authorized but the enrollment cannot happen; the error is
// surfaced distinctly so the charge can be reconciled or refunded rather
// than silently retried.
func (s *PaymentService) ConfirmPayment(ctx context.Context, studentEmail string, req model.ConfirmPaymentRequest) (*model.PaymentRecord, error) {
	record, applied, err := s.payments.Confirm(context.WithoutCancel(ctx), repository.ConfirmParams{
		StudentEmail:      studentEmail,
		SelectionID:       req.SelectionID,
		OfferingID:        req.OfferingID,
		ProviderChargeRef: req.ProviderChargeRef,
		Amount:            req.Amount,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		log.Printf("duplicate payment confirmation for charge ref %s, returning existing record", req.ProviderChargeRef)
	}
	return record, nil
}

// ListForStudent returns the caller's payment history.
func (s *PaymentService) ListForStudent(ctx context.Context, email string) ([]model.PaymentRecord, error) {
	return s.payments.ListForStudent(ctx, email)
}
