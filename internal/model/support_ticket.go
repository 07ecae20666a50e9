package model

import "time"

// TicketStatus is the workflow position of a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketClosed     TicketStatus = "closed"
)

// SupportTicket is a help request raised by any account.
type SupportTicket struct {
	ID        uint64       // support_tickets.id
	AccountID uint64       // support_tickets.account_id
	Subject   string       // support_tickets.subject
	Status    TicketStatus // support_tickets.status
	CreatedAt time.Time    // support_tickets.created_at
}
