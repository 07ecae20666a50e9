package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/local-services-marketplace/internal/errs"
	"github.com/iliyamo/local-services-marketplace/internal/model"
)

// ServiceInput is the body of service create and update.  Price is a
// pointer so a missing price can be told apart from a free service.
type ServiceInput struct {
	Name        string   `json:"name" validate:"required,max=150"`
	Description string   `json:"description" validate:"required,max=5000"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Categories  []string `json:"categories" validate:"omitempty,max=20,dive,required,max=50"`
}

// ProfessionalView is the public profile of a professional.
type ProfessionalView struct {
	Account  *model.Account
	Profile  *model.ProfessionalProfile
	Services []model.ServiceListing
	Reviews  []model.ReviewRecord
	Rating   model.RatingSummary
}

// CatalogService manages services and the public catalog views.
type CatalogService struct {
	services ServiceStore
	accounts AccountStore
	reviews  ReviewStore
	notify   notifier
	log      zerolog.Logger
}

// NewCatalogService builds a CatalogService.  inval may be nil.
func NewCatalogService(services ServiceStore, accounts AccountStore, reviews ReviewStore, inval Invalidator, log zerolog.Logger) *CatalogService {
	log = log.With().Str("component", "catalog").Logger()
	return &CatalogService{
		services: services,
		accounts: accounts,
		reviews:  reviews,
		notify:   notifier{inval: inval, log: log},
		log:      log,
	}
}

func (in *ServiceInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
}

// CreateService adds a service owned by the acting professional.
func (s *CatalogService) CreateService(ctx context.Context, actor model.Identity, in ServiceInput) (*model.Service, error) {
	if !actor.IsProfessional() {
		return nil, errs.New(errs.KindForbidden, "Only professionals can create services")
	}
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	svc := &model.Service{
		ProfessionalID: actor.AccountID,
		Name:           in.Name,
		Description:    in.Description,
		Price:          *in.Price,
		Categories:     normalizeCategories(in.Categories),
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, internal(s.log, "service.create", err)
	}
	s.notify.invalidate(ctx)
	return svc, nil
}

// UpdateService replaces name, description and price of a service the
// actor owns.  Categories are replaced only when provided.
func (s *CatalogService) UpdateService(ctx context.Context, actor model.Identity, id uint64, in ServiceInput) (*model.Service, error) {
	svc, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	svc.Name = in.Name
	svc.Description = in.Description
	svc.Price = *in.Price
	if in.Categories != nil {
		svc.Categories = normalizeCategories(in.Categories)
	}
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, internal(s.log, "service.update", err)
	}
	s.notify.invalidate(ctx)
	return svc, nil
}

// DeleteService removes a service the actor owns together with every
// booking that references it.  It returns the number of bookings removed.
func (s *CatalogService) DeleteService(ctx context.Context, actor model.Identity, id uint64) (int64, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return 0, err
	}
	removed, err := s.services.DeleteCascade(ctx, id, actor.AccountID)
	if err != nil {
		if isNotFound(err) {
			return 0, errs.New(errs.KindNotFound, "Service not found")
		}
		return 0, internal(s.log, "service.delete", err)
	}
	s.log.Info().Uint64("service_id", id).Int64("bookings_removed", removed).Msg("service deleted")
	s.notify.invalidate(ctx)
	return removed, nil
}

// owned loads a service and checks that the actor owns it.
func (s *CatalogService) owned(ctx context.Context, actor model.Identity, id uint64) (*model.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.New(errs.KindNotFound, "Service not found")
		}
		return nil, internal(s.log, "service.get", err)
	}
	if !actor.IsProfessional() || svc.ProfessionalID != actor.AccountID {
		return nil, errs.New(errs.KindForbidden, "You can only modify your own services")
	}
	return svc, nil
}

// ListServices returns the public catalog with rating summaries.
func (s *CatalogService) ListServices(ctx context.Context, f model.ServiceFilter) ([]model.ServiceListing, error) {
	f.Location = strings.TrimSpace(f.Location)
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	out, err := s.services.List(ctx, f)
	if err != nil {
		return nil, internal(s.log, "service.list", err)
	}
	return out, nil
}

// MyServices lists the acting professional's own services.
func (s *CatalogService) MyServices(ctx context.Context, actor model.Identity) ([]model.ServiceListing, error) {
	if !actor.IsProfessional() {
		return nil, errs.New(errs.KindForbidden, "Only professionals have services")
	}
	out, err := s.services.ListByProfessional(ctx, actor.AccountID)
	if err != nil {
		return nil, internal(s.log, "service.mine", err)
	}
	return out, nil
}

// ProfessionalProfile returns a professional's public profile with their
// services and reviews, newest first.
func (s *CatalogService) ProfessionalProfile(ctx context.Context, id uint64) (*ProfessionalView, error) {
	acc, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.New(errs.KindNotFound, "Professional not found")
		}
		return nil, internal(s.log, "professional.account", err)
	}
	profile, err := s.accounts.GetProfile(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.New(errs.KindNotFound, "Professional not found")
		}
		return nil, internal(s.log, "professional.profile", err)
	}
	services, err := s.services.ListByProfessional(ctx, id)
	if err != nil {
		return nil, internal(s.log, "professional.services", err)
	}
	reviews, err := s.reviews.ListByProfessional(ctx, id)
	if err != nil {
		return nil, internal(s.log, "professional.reviews", err)
	}
	var rating model.RatingSummary
	for _, r := range reviews {
		rating = rating.Add(r.Rating)
	}
	return &ProfessionalView{Account: acc, Profile: profile, Services: services, Reviews: reviews, Rating: rating}, nil
}
