// Package payment wraps the external payment-intent provider. This system
// never stores card data; it only asks the provider to authorize a charge and
// hands the resulting client secret back to the caller.
package payment

import "context"

// ChargeOrder describes the charge the provider should authorize.
type ChargeOrder struct {
	// OrderRef is generated by this system and doubles as the provider-side
	// order identifier.
	OrderRef      string
	Amount        int64
	CustomerEmail string
	CustomerName  string
	Description   string
}

// ChargeAuthorizer authorizes a charge with the external provider and returns
// an opaque client-confirmable secret. Implementations must respect ctx and
// return model.ErrProviderUnavailable (wrapped) on timeout or provider error;
// no store state may change on this path.
type ChargeAuthorizer interface {
	AuthorizeCharge(ctx context.Context, order ChargeOrder) (string, error)
}
