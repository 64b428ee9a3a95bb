// Package model defines the core domain types for the enrollment backend.
package model

import "time"

// Role is a user's resolved permission level.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// OfferingStatus is the approval state of an offering.
// pending→approved and pending→denied are the only transitions; both are terminal.
type OfferingStatus string

const (
	OfferingPending  OfferingStatus = "pending"
	OfferingApproved OfferingStatus = "approved"
	OfferingDenied   OfferingStatus = "denied"
)

// SelectionStatus is a selection's payment state. pending→paid is the only
// transition and paid is terminal.
type SelectionStatus string

const (
	SelectionPending SelectionStatus = "pending"
	SelectionPaid    SelectionStatus = "paid"
)

// User is an account keyed by email. Role defaults to student; a missing
// user record also resolves to student.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Offering is a schedulable course instance with capacity and approval status.
type Offering struct {
	ID              string         `json:"id"`
	InstructorEmail string         `json:"instructor_email"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Price           int64          `json:"price"`
	Status          OfferingStatus `json:"status"`
	AvailableSeats  int            `json:"available_seats"`
	EnrolledCount   int            `json:"enrolled_count"`
	Feedback        *Feedback      `json:"feedback,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Feedback is an admin note attached to an offering, typically on denial.
type Feedback struct {
	Text        string `json:"text"`
	AuthorEmail string `json:"author_email"`
}

// Selection is a student's claim on an offering prior to payment.
type Selection struct {
	ID           string          `json:"id"`
	StudentEmail string          `json:"student_email"`
	OfferingID   string          `json:"offering_id"`
	Status       SelectionStatus `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PaymentRecord is immutable proof that a selection was paid for.
// ProviderChargeRef is the idempotency key for confirmation callbacks.
type PaymentRecord struct {
	ID                string    `json:"id"`
	StudentEmail      string    `json:"student_email"`
	SelectionID       string    `json:"selection_id"`
	OfferingID        string    `json:"offering_id"`
	Amount            int64     `json:"amount"`
	ProviderChargeRef string    `json:"provider_charge_ref"`
	CreatedAt         time.Time `json:"created_at"`
}

// ─── Request payloads ─────────────────────────────────────────────────────────

// TokenRequest is the payload for issuing a session token.
type TokenRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"omitempty,max=120"`
}

// CreateUserRequest is the payload for first-sign-in user creation.
type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"omitempty,max=120"`
}

// SetRoleRequest is the payload for an admin role grant.
type SetRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=student instructor admin"`
}

// CreateOfferingRequest is the payload for an instructor submitting an offering.
type CreateOfferingRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Price       int64  `json:"price" validate:"gte=0"`
	Seats       int    `json:"seats" validate:"required,gt=0,lte=100000"`
}

// SetOfferingStatusRequest is the payload for an admin approve/deny decision.
type SetOfferingStatusRequest struct {
	Status OfferingStatus `json:"status" validate:"required,oneof=approved denied"`
}

// AttachFeedbackRequest is the payload for admin feedback on an offering.
type AttachFeedbackRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// CreateSelectionRequest is the payload for a student selecting an offering.
type CreateSelectionRequest struct {
	OfferingID string `json:"offering_id" validate:"required,uuid4"`
}

// InitiateChargeRequest asks the external provider to authorize a charge.
type InitiateChargeRequest struct {
	OfferingID string `json:"offering_id" validate:"required,uuid4"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
}

// ChargeAuthorization is the provider's answer to InitiateCharge: an order
// reference this system generated plus an opaque client-confirmable secret.
type ChargeAuthorization struct {
	OrderRef     string `json:"order_ref"`
	ClientSecret string `json:"client_secret"`
}

// ConfirmPaymentRequest is the confirmation callback payload after the client
// completed the charge with the provider.
type ConfirmPaymentRequest struct {
	SelectionID       string `json:"selection_id" validate:"required,uuid4"`
	OfferingID        string `json:"offering_id" validate:"required,uuid4"`
	ProviderChargeRef string `json:"provider_charge_ref" validate:"required,max=200"`
	Amount            int64  `json:"amount" validate:"required,gt=0"`
}

// ErrorResponse is the JSON error envelope every failure is returned in.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}
