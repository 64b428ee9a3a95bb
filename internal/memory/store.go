// Package memory provides in-memory implementations of the stores with the
// same semantics as the postgres repositories. A single mutex serializes
// every operation, which makes the multi-entity payment transition trivially
// atomic. Used by the service tests and for datastore-free local runs.
package memory

import (
	"fmt"
	"sync"

	"github.com/rhymove/enrollment-backend/internal/model"
)

// Store holds every entity behind one lock. The per-entity views returned by
// Users, Offerings, Selections, and Payments all share it.
type Store struct {
	mu sync.Mutex

	users      map[string]model.User          // keyed by email
	offerings  map[string]model.Offering      // keyed by id
	selections map[string]model.Selection     // keyed by id
	payments   map[string]model.PaymentRecord // keyed by provider charge ref

	// insertion order for listing endpoints
	userOrder      []string
	offeringOrder  []string
	selectionOrder []string
	paymentOrder   []string
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]model.User),
		offerings:  make(map[string]model.Offering),
		selections: make(map[string]model.Selection),
		payments:   make(map[string]model.PaymentRecord),
	}
}

// Users returns the user-store view.
func (s *Store) Users() *Users { return &Users{s: s} }

// Offerings returns the offering-store view.
func (s *Store) Offerings() *Offerings { return &Offerings{s: s} }

// Selections returns the selection-store view.
func (s *Store) Selections() *Selections { return &Selections{s: s} }

// Payments returns the payment-store view.
func (s *Store) Payments() *Payments { return &Payments{s: s} }

func (s *Store) adjustSeatsLocked(id string, seatDelta, enrollDelta int) error {
	o, ok := s.offerings[id]
	if !ok {
		return model.ErrNotFound
	}
	if o.AvailableSeats+seatDelta < 0 || o.EnrolledCount+enrollDelta < 0 {
		return fmt.Errorf("offering %s: %w", id, model.ErrCapacityExceeded)
	}
	o.AvailableSeats += seatDelta
	o.EnrolledCount += enrollDelta
	s.offerings[id] = o
	return nil
}

func (s *Store) markSelectionPaidLocked(id string) error {
	sel, ok := s.selections[id]
	if !ok {
		return model.ErrNotFound
	}
	if sel.Status != model.SelectionPending {
		return fmt.Errorf("selection %s is not pending: %w", id, model.ErrInvalidTransition)
	}
	sel.Status = model.SelectionPaid
	s.selections[id] = sel
	return nil
}

func (s *Store) filterOfferingsLocked(keep func(model.Offering) bool) []model.Offering {
	var offerings []model.Offering
	for _, id := range s.offeringOrder {
		if o := s.offerings[id]; keep(o) {
			offerings = append(offerings, o)
		}
	}
	return offerings
}

func remove(order []string, key string) []string {
	for i, k := range order {
		if k == key {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
