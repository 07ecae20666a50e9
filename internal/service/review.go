package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/local-services-marketplace/internal/errs"
	"github.com/iliyamo/local-services-marketplace/internal/model"
	"github.com/iliyamo/local-services-marketplace/internal/queue"
	"github.com/iliyamo/local-services-marketplace/internal/repository"
)

const msgAlreadyReviewed = "This booking has already been reviewed"

// SubmitReviewInput is the body of POST /reviews.
type SubmitReviewInput struct {
	BookingID uint64 `json:"booking_id" validate:"required"`
	Rating    int    `json:"rating" validate:"gte=1,lte=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// ServiceReviews is a service's rating summary and its reviews, newest
// first.
type ServiceReviews struct {
	ServiceID uint64
	Summary   model.RatingSummary
	Reviews   []model.ReviewRecord
}

// ReviewService attaches reviews to completed bookings.
type ReviewService struct {
	reviews  ReviewStore
	bookings BookingStore
	services ServiceStore
	notify   notifier
	now      Clock
	log      zerolog.Logger
}

// NewReviewService builds a ReviewService.  events and inval may be nil.
func NewReviewService(reviews ReviewStore, bookings BookingStore, services ServiceStore, events EventPublisher, inval Invalidator, log zerolog.Logger, clock Clock) *ReviewService {
	log = log.With().Str("component", "review").Logger()
	return &ReviewService{
		reviews:  reviews,
		bookings: bookings,
		services: services,
		notify:   notifier{events: events, inval: inval, log: log},
		now:      clockOrNow(clock),
		log:      log,
	}
}

// Submit records the customer's single review of a completed booking.
func (s *ReviewService) Submit(ctx context.Context, actor model.Identity, in SubmitReviewInput) (*model.Review, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.New(errs.KindNotFound, "Booking not found")
		}
		return nil, internal(s.log, "review.booking", err)
	}
	if actor.IsProfessional() || b.CustomerID != actor.AccountID {
		return nil, errs.New(errs.KindForbidden, "You can only review your own bookings")
	}
	if err := reviewable(b); err != nil {
		return nil, err
	}

	rv := &model.Review{
		CustomerID:     b.CustomerID,
		ProfessionalID: b.ProfessionalID,
		ServiceID:      b.ServiceID,
		BookingID:      b.ID,
		Rating:         in.Rating,
		Comment:        in.Comment,
	}
	if err := s.reviews.Submit(ctx, rv); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, errs.New(errs.KindAlreadyReviewed, msgAlreadyReviewed)
		case errors.Is(err, repository.ErrConflict):
			return nil, s.staleReview(ctx, b.ID)
		}
		return nil, internal(s.log, "review.submit", err)
	}

	s.log.Info().Uint64("review_id", rv.ID).Uint64("booking_id", rv.BookingID).Int("rating", rv.Rating).Msg("review submitted")
	s.notify.invalidate(ctx)
	b.IsRated = true
	ev := lifecycleEvent(queue.EventReviewSubmitted, b, s.now())
	ev.ReviewID = rv.ID
	ev.Rating = rv.Rating
	s.notify.publish(ctx, ev)
	return rv, nil
}

func reviewable(b *model.Booking) error {
	if b.Status != model.BookingCompleted {
		return errs.New(errs.KindInvalidTransition, fmt.Sprintf("Cannot review a booking with status: %s", b.Status))
	}
	if b.IsRated {
		return errs.New(errs.KindAlreadyReviewed, msgAlreadyReviewed)
	}
	return nil
}

// staleReview explains why the conditional flag update matched nothing.
func (s *ReviewService) staleReview(ctx context.Context, bookingID uint64) error {
	cur, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return errs.New(errs.KindAlreadyReviewed, msgAlreadyReviewed)
	}
	if err := reviewable(cur); err != nil {
		return err
	}
	return errs.New(errs.KindAlreadyReviewed, msgAlreadyReviewed)
}

// ForService returns the service's reviews and their summary.
func (s *ReviewService) ForService(ctx context.Context, serviceID uint64) (*ServiceReviews, error) {
	if _, err := s.services.GetByID(ctx, serviceID); err != nil {
		if isNotFound(err) {
			return nil, errs.New(errs.KindNotFound, "Service not found")
		}
		return nil, internal(s.log, "review.service", err)
	}
	list, err := s.reviews.ListByService(ctx, serviceID)
	if err != nil {
		return nil, internal(s.log, "review.list", err)
	}
	var sum model.RatingSummary
	for _, r := range list {
		sum = sum.Add(r.Rating)
	}
	return &ServiceReviews{ServiceID: serviceID, Summary: sum, Reviews: list}, nil
}
