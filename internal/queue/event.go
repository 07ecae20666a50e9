// Package queue defines the lifecycle events exchanged over RabbitMQ, the
// publisher used by the API process and the consumer run by the audit
// worker.
package queue

import "time"

// Event types.  The type doubles as the AMQP message type header.
const (
	EventBookingCreated   = "booking.created"
	EventBookingAccepted  = "booking.accepted"
	EventBookingRejected  = "booking.rejected"
	EventBookingCompleted = "booking.completed"
	EventReviewSubmitted  = "review.submitted"
)

// LifecycleEvent is published after a booking or review write commits.
// It carries ids only; consumers that need names query the API.
type LifecycleEvent struct {
	Type           string    `json:"type"`
	BookingID      uint64    `json:"booking_id"`
	ServiceID      uint64    `json:"service_id"`
	CustomerID     uint64    `json:"customer_id"`
	ProfessionalID uint64    `json:"professional_id"`
	Status         string    `json:"status,omitempty"`
	ReviewID       uint64    `json:"review_id,omitempty"`
	Rating         int       `json:"rating,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
