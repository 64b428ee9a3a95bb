package handler

import (
	"net/http"

	"github.com/rhymove/enrollment-backend/internal/model"
)

// InitiateCharge handles POST /payments/intent
// Asks the external provider to authorize a charge for the caller and
// returns the client-confirmable secret. No store mutation happens here.
func (h *Handler) InitiateCharge(w http.ResponseWriter, r *http.Request) {
	id, err := h.gate.RequireAuthenticated(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req model.InitiateChargeRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	authz, err := h.payments.InitiateCharge(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authz)
}

// ConfirmPayment handles POST /payments/confirm
// The confirmation callback: records the payment, marks the selection paid,
// and consumes a seat, atomically and idempotently.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, err := h.gate.RequireAuthenticated(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req model.ConfirmPaymentRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	record, err := h.payments.ConfirmPayment(r.Context(), id.Email, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// ListPayments handles GET /payments
// Returns the caller's payment history.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := h.gate.RequireAuthenticated(r)
	if err != nil {
		respondError(w, err)
		return
	}

	records, err := h.payments.ListForStudent(r.Context(), id.Email)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(records))
}
