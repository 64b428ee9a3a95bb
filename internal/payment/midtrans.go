package payment

import (
	"context"
	"fmt"
	"time"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/rhymove/enrollment-backend/internal/model"
)

// MidtransAuthorizer authorizes charges through the Midtrans Snap API. The
// Snap transaction token is the client-confirmable secret.
type MidtransAuthorizer struct {
	client  snap.Client
	timeout time.Duration
}

var _ ChargeAuthorizer = (*MidtransAuthorizer)(nil)

// NewMidtransAuthorizer constructs an authorizer against Sandbox or
// Production depending on useProduction.
func NewMidtransAuthorizer(serverKey string, useProduction bool, timeout time.Duration) *MidtransAuthorizer {
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	a := &MidtransAuthorizer{timeout: timeout}
	a.client.New(serverKey, env)
	return a
}

// AuthorizeCharge creates a Snap transaction for the order and returns its
// token. The call is the only network round trip in the payment flow and is
// bounded by the configured timeout.
func (a *MidtransAuthorizer) AuthorizeCharge(ctx context.Context, order ChargeOrder) (string, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.OrderRef,
			GrossAmt: order.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: order.CustomerName,
			Email: order.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    order.OrderRef,
				Price: order.Amount,
				Qty:   1,
				Name:  truncate(order.Description, 50),
			},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	// The snap client has no context-aware call, so run it on the side and
	// race it against the deadline.
	type result struct {
		token string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := a.client.CreateTransaction(req)
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{token: resp.Token}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", model.ErrProviderUnavailable, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%w: %v", model.ErrProviderUnavailable, res.err)
		}
		return res.token, nil
	}
}

// truncate shortens s to at most n runes. Cutting on rune boundaries keeps a
// multi-byte title valid UTF-8 after shortening.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
