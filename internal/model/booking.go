package model

import (
	"fmt"
	"time"
)

// BookingStatus is the state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingCompleted BookingStatus = "completed"
)

// bookingTransitions lists every legal move.  rejected and completed are
// terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:  {BookingAccepted, BookingRejected},
	BookingAccepted: {BookingCompleted},
}

// Valid reports whether s is one of the reachable states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingAccepted, BookingRejected, BookingCompleted:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s BookingStatus) Terminal() bool { return len(bookingTransitions[s]) == 0 }

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError describes an illegal move.
type TransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *TransitionError) Error() string {
	if e.To == BookingCompleted {
		return fmt.Sprintf("Cannot complete a job with status: %s", e.From)
	}
	return fmt.Sprintf("Cannot change booking status from %s to %s", e.From, e.To)
}

// CheckTransition returns a *TransitionError when from -> to is illegal.
func CheckTransition(from, to BookingStatus) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// PaymentMethod records how the customer intends to pay.  Online payments
// are recorded only; no gateway is involved.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
)

// Valid reports whether p is a known method.
func (p PaymentMethod) Valid() bool { return p == PaymentCash || p == PaymentOnline }

// Booking represents a customer's request for a service.  ProfessionalID
// is copied from the service when the booking is created and never
// follows later changes to the service.
//
// Fields:
//  ID             – primary key identifier.
//  CustomerID     – account that created the booking.
//  ServiceID      – booked service.
//  ProfessionalID – snapshot of the service owner at creation time.
//  ScheduledAt    – requested slot, strictly in the future at creation.
//  Address        – where the job takes place.
//  Phone          – customer contact phone (10 digits).
//  Description    – job description.
//  Status         – state machine position.
//  PaymentMethod  – cash or online.
//  IsRated        – set once, when the customer reviews the booking.
type Booking struct {
	ID             uint64        // bookings.id
	CustomerID     uint64        // bookings.customer_id
	ServiceID      uint64        // bookings.service_id
	ProfessionalID uint64        // bookings.professional_id
	ScheduledAt    time.Time     // bookings.scheduled_at
	Address        string        // bookings.address
	Phone          string        // bookings.phone
	Description    string        // bookings.description
	Status         BookingStatus // bookings.status
	PaymentMethod  PaymentMethod // bookings.payment_method
	IsRated        bool          // bookings.is_rated
	CreatedAt      time.Time     // bookings.created_at
	UpdatedAt      time.Time     // bookings.updated_at
}

// BookingRecord is a booking plus the joined fields needed by the list
// views.  Joined fields are nil when the referenced row no longer exists.
type BookingRecord struct {
	Booking
	ServiceName        *string
	ServiceDescription *string
	CustomerName       *string
	CustomerEmail      *string
	ProfessionalName   *string
	ProfessionalEmail  *string
}
