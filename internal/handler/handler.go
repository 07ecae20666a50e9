// Package handler holds the echo handlers.  Handlers bind and shape
// requests and responses; every rule lives in the service layer and every
// failure is returned for middleware.ErrorHandler to render.
package handler

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-marketplace/internal/errs"
	"github.com/iliyamo/local-services-marketplace/internal/middleware"
	"github.com/iliyamo/local-services-marketplace/internal/model"
	"github.com/iliyamo/local-services-marketplace/internal/service"
)

// IdentityAPI is the part of service.IdentityService the handlers use.
type IdentityAPI interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.Account, error)
	Authenticate(ctx context.Context, in service.LoginInput, expected model.Role) (*service.Session, error)
	Resolve(ctx context.Context, accountID uint64) (model.Identity, error)
}

// CatalogAPI is the part of service.CatalogService the handlers use.
type CatalogAPI interface {
	CreateService(ctx context.Context, actor model.Identity, in service.ServiceInput) (*model.Service, error)
	UpdateService(ctx context.Context, actor model.Identity, id uint64, in service.ServiceInput) (*model.Service, error)
	DeleteService(ctx context.Context, actor model.Identity, id uint64) (int64, error)
	ListServices(ctx context.Context, f model.ServiceFilter) ([]model.ServiceListing, error)
	MyServices(ctx context.Context, actor model.Identity) ([]model.ServiceListing, error)
	ProfessionalProfile(ctx context.Context, id uint64) (*service.ProfessionalView, error)
}

// BookingAPI is the part of service.BookingService the handlers use.
type BookingAPI interface {
	Create(ctx context.Context, actor model.Identity, in service.CreateBookingInput) (*model.Booking, error)
	Decide(ctx context.Context, actor model.Identity, id uint64, status string) (*model.Booking, error)
	Complete(ctx context.Context, actor model.Identity, id uint64) (*model.Booking, error)
	List(ctx context.Context, actor model.Identity) ([]service.BookingView, error)
	Get(ctx context.Context, actor model.Identity, id uint64) (*service.BookingView, error)
}

// ReviewAPI is the part of service.ReviewService the handlers use.
type ReviewAPI interface {
	Submit(ctx context.Context, actor model.Identity, in service.SubmitReviewInput) (*model.Review, error)
	ForService(ctx context.Context, serviceID uint64) (*service.ServiceReviews, error)
}

// SupportAPI is the part of service.SupportService the handlers use.
type SupportAPI interface {
	Open(ctx context.Context, actor model.Identity, in service.TicketInput) (*model.SupportTicket, error)
	Mine(ctx context.Context, actor model.Identity) ([]model.SupportTicket, error)
}

// bind decodes the request body into v.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return errs.Wrap(errs.KindInvalidInput, "Invalid request body", err)
	}
	return nil
}

// actor returns the identity resolved by middleware.ResolveAccount.
func actor(c echo.Context) (model.Identity, error) {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return model.Identity{}, errs.New(errs.KindUnauthorized, "Missing bearer token")
	}
	return ident, nil
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		f := []errs.FieldError{{Field: name, Error: "must be a positive integer"}}
		return 0, errs.Validation("Invalid input: "+name+" must be a positive integer", f)
	}
	return id, nil
}
