package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/local-services-marketplace/internal/errs"
	"github.com/iliyamo/local-services-marketplace/internal/model"
	"github.com/iliyamo/local-services-marketplace/internal/queue"
	"github.com/iliyamo/local-services-marketplace/internal/repository"
)

// Accepted layouts for the date and time halves of a booking slot.
var slotLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05"}

// CreateBookingInput is the body of POST /bookings.
type CreateBookingInput struct {
	ServiceID     uint64 `json:"service_id" validate:"required"`
	Date          string `json:"date" validate:"required"`
	Time          string `json:"time" validate:"required"`
	Address       string `json:"address" validate:"required,max=500"`
	Phone         string `json:"phone" validate:"required,phone"`
	Description   string `json:"description" validate:"max=2000"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=cash online"`
}

// BookingView is a booking as one party sees it.  PhoneVisible is false
// when the customer's phone has been withheld from the professional.
type BookingView struct {
	model.BookingRecord
	Viewer       model.Role
	PhoneVisible bool
}

// BookingService runs the booking state machine.
type BookingService struct {
	bookings BookingStore
	services ServiceStore
	notify   notifier
	now      Clock
	loc      *time.Location
	log      zerolog.Logger
}

// NewBookingService builds a BookingService.  loc is the zone booking
// dates and times are read in; nil means UTC.  events may be nil.
func NewBookingService(bookings BookingStore, services ServiceStore, events EventPublisher, loc *time.Location, log zerolog.Logger, clock Clock) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	log = log.With().Str("component", "booking").Logger()
	return &BookingService{
		bookings: bookings,
		services: services,
		notify:   notifier{events: events, log: log},
		now:      clockOrNow(clock),
		loc:      loc,
		log:      log,
	}
}

// Create books a service for the acting customer.  The professional is
// copied from the service now and never follows later changes.
func (s *BookingService) Create(ctx context.Context, actor model.Identity, in CreateBookingInput) (*model.Booking, error) {
	if actor.IsProfessional() {
		return nil, errs.New(errs.KindForbidden, "Professionals are not allowed to book services.")
	}
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Description = strings.TrimSpace(in.Description)
	in.PaymentMethod = strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if err := validateInput(in); err != nil {
		return nil, err
	}

	at, ok := s.parseSlot(in.Date, in.Time)
	if !ok {
		return nil, invalidField("date", "date and time must be YYYY-MM-DD and HH:MM")
	}
	if !at.After(s.now()) {
		return nil, invalidField("date", "booking time must be in the future")
	}

	svc, err := s.services.GetByID(ctx, in.ServiceID)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.New(errs.KindNotFound, "Service not found.")
		}
		return nil, internal(s.log, "booking.service", err)
	}

	pay := model.PaymentMethod(in.PaymentMethod)
	if pay == "" {
		pay = model.PaymentCash
	}
	b := &model.Booking{
		CustomerID:     actor.AccountID,
		ServiceID:      svc.ID,
		ProfessionalID: svc.ProfessionalID,
		ScheduledAt:    at.UTC(),
		Address:        in.Address,
		Phone:          in.Phone,
		Description:    in.Description,
		Status:         model.BookingPending,
		PaymentMethod:  pay,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, internal(s.log, "booking.create", err)
	}
	s.log.Info().Uint64("booking_id", b.ID).Uint64("service_id", b.ServiceID).Msg("booking created")
	s.notify.publish(ctx, lifecycleEvent(queue.EventBookingCreated, b, s.now()))
	return b, nil
}

func (s *BookingService) parseSlot(date, clock string) (time.Time, bool) {
	for _, layout := range slotLayouts {
		if t, err := time.ParseInLocation(layout, date+"T"+clock, s.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Decide applies the professional's accept or reject decision.  Any other
// target status is invalid input.
func (s *BookingService) Decide(ctx context.Context, actor model.Identity, id uint64, status string) (*model.Booking, error) {
	to := model.BookingStatus(strings.ToLower(strings.TrimSpace(status)))
	if to != model.BookingAccepted && to != model.BookingRejected {
		return nil, invalidField("status", "must be one of: accepted rejected")
	}
	return s.transition(ctx, actor, id, to)
}

// Complete marks an accepted booking as done.
func (s *BookingService) Complete(ctx context.Context, actor model.Identity, id uint64) (*model.Booking, error) {
	return s.transition(ctx, actor, id, model.BookingCompleted)
}

// transition checks ownership and legality, then writes the new status
// conditioned on the status it read.  Losing a concurrent race surfaces
// as InvalidTransition, never as a silent no-op.
func (s *BookingService) transition(ctx context.Context, actor model.Identity, id uint64, to model.BookingStatus) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.New(errs.KindNotFound, "Booking not found")
		}
		return nil, internal(s.log, "booking.get", err)
	}
	if !actor.IsProfessional() || b.ProfessionalID != actor.AccountID {
		return nil, errs.New(errs.KindForbidden, "You are not authorized to update this booking")
	}
	from := b.Status
	if err := model.CheckTransition(from, to); err != nil {
		return nil, errs.New(errs.KindInvalidTransition, err.Error())
	}

	if err := s.bookings.Transition(ctx, id, from, to); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, s.staleTransition(ctx, id, to)
		}
		return nil, internal(s.log, "booking.transition", err)
	}
	b.Status = to
	b.UpdatedAt = s.now().UTC()
	s.log.Info().Uint64("booking_id", id).Str("from", string(from)).Str("to", string(to)).Msg("booking transitioned")
	s.notify.publish(ctx, lifecycleEvent(transitionEvent(to), b, s.now()))
	return b, nil
}

// staleTransition reports the status that won the race.
func (s *BookingService) staleTransition(ctx context.Context, id uint64, to model.BookingStatus) error {
	cur, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return errs.New(errs.KindInvalidTransition, "Booking status changed concurrently")
	}
	te := &model.TransitionError{From: cur.Status, To: to}
	return errs.New(errs.KindInvalidTransition, te.Error())
}

func transitionEvent(to model.BookingStatus) string {
	switch to {
	case model.BookingAccepted:
		return queue.EventBookingAccepted
	case model.BookingRejected:
		return queue.EventBookingRejected
	default:
		return queue.EventBookingCompleted
	}
}

func lifecycleEvent(typ string, b *model.Booking, at time.Time) queue.LifecycleEvent {
	return queue.LifecycleEvent{
		Type:           typ,
		BookingID:      b.ID,
		ServiceID:      b.ServiceID,
		CustomerID:     b.CustomerID,
		ProfessionalID: b.ProfessionalID,
		Status:         string(b.Status),
		OccurredAt:     at.UTC(),
	}
}

// List returns the actor's bookings: those addressed to them when they act
// as a professional, those they made otherwise.  Bookings whose service or
// professional no longer resolves are left out.  Latest slot first.
func (s *BookingService) List(ctx context.Context, actor model.Identity) ([]BookingView, error) {
	var (
		recs []model.BookingRecord
		err  error
	)
	if actor.IsProfessional() {
		recs, err = s.bookings.ListForProfessional(ctx, actor.AccountID)
	} else {
		recs, err = s.bookings.ListForCustomer(ctx, actor.AccountID)
	}
	if err != nil {
		return nil, internal(s.log, "booking.list", err)
	}

	out := make([]BookingView, 0, len(recs))
	for _, rec := range recs {
		if rec.ServiceName == nil || rec.ProfessionalName == nil {
			continue
		}
		out = append(out, viewFor(actor.Role, rec))
	}
	slices.SortStableFunc(out, func(a, b BookingView) int {
		if c := b.ScheduledAt.Compare(a.ScheduledAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

// Get returns one booking to either of its parties.
func (s *BookingService) Get(ctx context.Context, actor model.Identity, id uint64) (*BookingView, error) {
	rec, err := s.bookings.GetRecord(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.New(errs.KindNotFound, "Booking not found")
		}
		return nil, internal(s.log, "booking.record", err)
	}
	switch {
	case actor.IsProfessional() && rec.ProfessionalID == actor.AccountID:
		v := viewFor(model.RoleProfessional, *rec)
		return &v, nil
	case !actor.IsProfessional() && rec.CustomerID == actor.AccountID:
		v := viewFor(model.RoleCustomer, *rec)
		return &v, nil
	default:
		return nil, errs.New(errs.KindForbidden, "You are not authorized to view this booking")
	}
}

// viewFor applies the redaction rule: a professional sees the customer's
// phone only once the booking was accepted.
func viewFor(viewer model.Role, rec model.BookingRecord) BookingView {
	v := BookingView{BookingRecord: rec, Viewer: viewer, PhoneVisible: true}
	if viewer == model.RoleProfessional && !phoneRevealed(rec.Status) {
		v.Phone = ""
		v.PhoneVisible = false
	}
	return v
}

func phoneRevealed(st model.BookingStatus) bool {
	return st == model.BookingAccepted || st == model.BookingCompleted
}
