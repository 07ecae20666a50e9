// Package service implements the marketplace's business rules: identity,
// catalog, the booking state machine, reviews and support tickets.
//
// Services depend on the store interfaces below rather than on concrete
// repositories.  Every error they return is an *errs.Error.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/local-services-marketplace/internal/errs"
	"github.com/iliyamo/local-services-marketplace/internal/model"
	"github.com/iliyamo/local-services-marketplace/internal/queue"
	"github.com/iliyamo/local-services-marketplace/internal/repository"
)

// AccountStore persists accounts and professional profiles.
type AccountStore interface {
	Create(ctx context.Context, a *model.Account, p *model.ProfessionalProfile) error
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByName(ctx context.Context, name string, prefer model.Role) (*model.Account, error)
	GetByID(ctx context.Context, id uint64) (*model.Account, error)
	GetProfile(ctx context.Context, accountID uint64) (*model.ProfessionalProfile, error)
}

// ServiceStore persists the catalog.
type ServiceStore interface {
	Create(ctx context.Context, s *model.Service) error
	GetByID(ctx context.Context, id uint64) (*model.Service, error)
	Update(ctx context.Context, s *model.Service) error
	DeleteCascade(ctx context.Context, id, professionalID uint64) (int64, error)
	List(ctx context.Context, f model.ServiceFilter) ([]model.ServiceListing, error)
	ListByProfessional(ctx context.Context, professionalID uint64) ([]model.ServiceListing, error)
}

// BookingStore persists bookings.  Transition must be a compare-and-swap
// on the status column returning repository.ErrConflict when it loses.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	GetRecord(ctx context.Context, id uint64) (*model.BookingRecord, error)
	Transition(ctx context.Context, id uint64, from, to model.BookingStatus) error
	ListForCustomer(ctx context.Context, customerID uint64) ([]model.BookingRecord, error)
	ListForProfessional(ctx context.Context, professionalID uint64) ([]model.BookingRecord, error)
}

// ReviewStore persists reviews.  Submit must flag the booking and insert
// the review atomically.
type ReviewStore interface {
	Submit(ctx context.Context, r *model.Review) error
	ListByService(ctx context.Context, serviceID uint64) ([]model.ReviewRecord, error)
	ListByProfessional(ctx context.Context, professionalID uint64) ([]model.ReviewRecord, error)
}

// TicketStore persists support tickets.
type TicketStore interface {
	Create(ctx context.Context, t *model.SupportTicket) error
	ListByAccount(ctx context.Context, accountID uint64) ([]model.SupportTicket, error)
}

// EventPublisher receives lifecycle events after a write commits.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.LifecycleEvent) error
}

// Invalidator is told when public catalog data changed.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Clock returns the current time.
type Clock func() time.Time

func clockOrNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

const publishTimeout = 3 * time.Second

// notifier fans committed changes out to the event publisher and the
// cache invalidator.  Both are optional and their failures are logged,
// never returned: the write already succeeded.
type notifier struct {
	events EventPublisher
	inval  Invalidator
	log    zerolog.Logger
}

func (n notifier) publish(ctx context.Context, ev queue.LifecycleEvent) {
	if n.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := n.events.Publish(ctx, ev); err != nil {
		n.log.Warn().Err(err).Str("event", ev.Type).Uint64("booking_id", ev.BookingID).Msg("event not published")
	}
}

func (n notifier) invalidate(ctx context.Context) {
	if n.inval == nil {
		return
	}
	if err := n.inval.Bump(ctx); err != nil {
		n.log.Warn().Err(err).Msg("cache generation bump failed")
	}
}

// internal logs an unexpected store failure and hides it behind a generic
// message.
func internal(log zerolog.Logger, op string, err error) error {
	log.Error().Err(err).Str("op", op).Msg("store failure")
	return errs.Internal(err)
}

func isNotFound(err error) bool { return errors.Is(err, repository.ErrNotFound) }
