package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/local-services-marketplace/internal/model"
)

// TicketInput is the body of POST /support/tickets.
type TicketInput struct {
	Subject string `json:"subject" validate:"required,max=200"`
}

// SupportService lets any account raise and list support tickets.
type SupportService struct {
	tickets TicketStore
	log     zerolog.Logger
}

func NewSupportService(tickets TicketStore, log zerolog.Logger) *SupportService {
	return &SupportService{tickets: tickets, log: log.With().Str("component", "support").Logger()}
}

// Open raises a ticket in the open state.
func (s *SupportService) Open(ctx context.Context, actor model.Identity, in TicketInput) (*model.SupportTicket, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	t := &model.SupportTicket{AccountID: actor.AccountID, Subject: in.Subject, Status: model.TicketOpen}
	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, internal(s.log, "ticket.create", err)
	}
	return t, nil
}

// Mine lists the actor's tickets, newest first.
func (s *SupportService) Mine(ctx context.Context, actor model.Identity) ([]model.SupportTicket, error) {
	out, err := s.tickets.ListByAccount(ctx, actor.AccountID)
	if err != nil {
		return nil, internal(s.log, "ticket.list", err)
	}
	return out, nil
}
