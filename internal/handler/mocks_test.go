package handler

import (
	"context"

	"github.com/iliyamo/local-services-marketplace/internal/model"
	"github.com/iliyamo/local-services-marketplace/internal/service"
)

type mockIdentity struct {
	registerFn     func(ctx context.Context, in service.RegisterInput) (*model.Account, error)
	authenticateFn func(ctx context.Context, in service.LoginInput, expected model.Role) (*service.Session, error)
	resolveFn      func(ctx context.Context, id uint64) (model.Identity, error)
}

func (m *mockIdentity) Register(ctx context.Context, in service.RegisterInput) (*model.Account, error) {
	return m.registerFn(ctx, in)
}
func (m *mockIdentity) Authenticate(ctx context.Context, in service.LoginInput, expected model.Role) (*service.Session, error) {
	return m.authenticateFn(ctx, in, expected)
}
func (m *mockIdentity) Resolve(ctx context.Context, id uint64) (model.Identity, error) {
	return m.resolveFn(ctx, id)
}

type mockCatalog struct {
	createFn  func(ctx context.Context, actor model.Identity, in service.ServiceInput) (*model.Service, error)
	updateFn  func(ctx context.Context, actor model.Identity, id uint64, in service.ServiceInput) (*model.Service, error)
	deleteFn  func(ctx context.Context, actor model.Identity, id uint64) (int64, error)
	listFn    func(ctx context.Context, f model.ServiceFilter) ([]model.ServiceListing, error)
	mineFn    func(ctx context.Context, actor model.Identity) ([]model.ServiceListing, error)
	profileFn func(ctx context.Context, id uint64) (*service.ProfessionalView, error)
}

func (m *mockCatalog) CreateService(ctx context.Context, actor model.Identity, in service.ServiceInput) (*model.Service, error) {
	return m.createFn(ctx, actor, in)
}
func (m *mockCatalog) UpdateService(ctx context.Context, actor model.Identity, id uint64, in service.ServiceInput) (*model.Service, error) {
	return m.updateFn(ctx, actor, id, in)
}
func (m *mockCatalog) DeleteService(ctx context.Context, actor model.Identity, id uint64) (int64, error) {
	return m.deleteFn(ctx, actor, id)
}
func (m *mockCatalog) ListServices(ctx context.Context, f model.ServiceFilter) ([]model.ServiceListing, error) {
	return m.listFn(ctx, f)
}
func (m *mockCatalog) MyServices(ctx context.Context, actor model.Identity) ([]model.ServiceListing, error) {
	return m.mineFn(ctx, actor)
}
func (m *mockCatalog) ProfessionalProfile(ctx context.Context, id uint64) (*service.ProfessionalView, error) {
	return m.profileFn(ctx, id)
}

type mockBookings struct {
	createFn   func(ctx context.Context, actor model.Identity, in service.CreateBookingInput) (*model.Booking, error)
	decideFn   func(ctx context.Context, actor model.Identity, id uint64, status string) (*model.Booking, error)
	completeFn func(ctx context.Context, actor model.Identity, id uint64) (*model.Booking, error)
	listFn     func(ctx context.Context, actor model.Identity) ([]service.BookingView, error)
	getFn      func(ctx context.Context, actor model.Identity, id uint64) (*service.BookingView, error)
}

func (m *mockBookings) Create(ctx context.Context, actor model.Identity, in service.CreateBookingInput) (*model.Booking, error) {
	return m.createFn(ctx, actor, in)
}
func (m *mockBookings) Decide(ctx context.Context, actor model.Identity, id uint64, status string) (*model.Booking, error) {
	return m.decideFn(ctx, actor, id, status)
}
func (m *mockBookings) Complete(ctx context.Context, actor model.Identity, id uint64) (*model.Booking, error) {
	return m.completeFn(ctx, actor, id)
}
func (m *mockBookings) List(ctx context.Context, actor model.Identity) ([]service.BookingView, error) {
	return m.listFn(ctx, actor)
}
func (m *mockBookings) Get(ctx context.Context, actor model.Identity, id uint64) (*service.BookingView, error) {
	return m.getFn(ctx, actor, id)
}

type mockReviews struct {
	submitFn     func(ctx context.Context, actor model.Identity, in service.SubmitReviewInput) (*model.Review, error)
	forServiceFn func(ctx context.Context, id uint64) (*service.ServiceReviews, error)
}

func (m *mockReviews) Submit(ctx context.Context, actor model.Identity, in service.SubmitReviewInput) (*model.Review, error) {
	return m.submitFn(ctx, actor, in)
}
func (m *mockReviews) ForService(ctx context.Context, id uint64) (*service.ServiceReviews, error) {
	return m.forServiceFn(ctx, id)
}

type mockSupport struct {
	openFn func(ctx context.Context, actor model.Identity, in service.TicketInput) (*model.SupportTicket, error)
	mineFn func(ctx context.Context, actor model.Identity) ([]model.SupportTicket, error)
}

func (m *mockSupport) Open(ctx context.Context, actor model.Identity, in service.TicketInput) (*model.SupportTicket, error) {
	return m.openFn(ctx, actor, in)
}
func (m *mockSupport) Mine(ctx context.Context, actor model.Identity) ([]model.SupportTicket, error) {
	return m.mineFn(ctx, actor)
}
