package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/local-services-marketplace/internal/config"
	"github.com/iliyamo/local-services-marketplace/internal/model"
)

var testNow = time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type fixture struct {
	store    *memStore
	events   *recordingPublisher
	inval    *countingInvalidator
	identity *IdentityService
	catalog  *CatalogService
	bookings *BookingService
	reviews  *ReviewService
	support  *SupportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newMemStore()
	events := &recordingPublisher{}
	inval := &countingInvalidator{}
	log := zerolog.Nop()
	auth := config.AuthConfig{JWTSecret: "test-secret-0123456789", SessionTTL: time.Hour, BcryptCost: 4}
	return &fixture{
		store:    st,
		events:   events,
		inval:    inval,
		identity: NewIdentityService(st.Accounts(), auth, log, fixedClock),
		catalog:  NewCatalogService(st.Services(), st.Accounts(), st.Reviews(), inval, log),
		bookings: NewBookingService(st.Bookings(), st.Services(), events, time.UTC, log, fixedClock),
		reviews:  NewReviewService(st.Reviews(), st.Bookings(), st.Services(), events, inval, log, fixedClock),
		support:  NewSupportService(st.Tickets(), log),
	}
}

func (f *fixture) register(t *testing.T, in RegisterInput) model.Identity {
	t.Helper()
	acc, err := f.identity.Register(context.Background(), in)
	require.NoError(t, err)
	id, err := f.identity.Resolve(context.Background(), acc.ID)
	require.NoError(t, err)
	return id
}

func (f *fixture) customer(t *testing.T, name string) model.Identity {
	t.Helper()
	return f.register(t, RegisterInput{
		Role:     model.RoleCustomer,
		Name:     name,
		Email:    name + "@example.com",
		Password: "password123",
	})
}

func (f *fixture) professional(t *testing.T, name, location string, categories ...string) model.Identity {
	t.Helper()
	return f.register(t, RegisterInput{
		Role:       model.RoleProfessional,
		Name:       name,
		Email:      name + "@example.com",
		Password:   "password123",
		Phone:      "9123456780",
		Location:   location,
		Categories: categories,
	})
}

func (f *fixture) service(t *testing.T, pro model.Identity, name string, price float64, categories ...string) *model.Service {
	t.Helper()
	svc, err := f.catalog.CreateService(context.Background(), pro, ServiceInput{
		Name:        name,
		Description: name + " at your home",
		Price:       &price,
		Categories:  categories,
	})
	require.NoError(t, err)
	return svc
}

func bookingInput(serviceID uint64) CreateBookingInput {
	return CreateBookingInput{
		ServiceID:   serviceID,
		Date:        "2030-01-02",
		Time:        "09:30",
		Address:     "12 Lake Road",
		Phone:       "9876543210",
		Description: "kitchen sink leaking",
	}
}

func (f *fixture) book(t *testing.T, cust model.Identity, serviceID uint64) *model.Booking {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), cust, bookingInput(serviceID))
	require.NoError(t, err)
	return b
}

// completed walks a fresh booking to completed.
func (f *fixture) completed(t *testing.T, cust, pro model.Identity, serviceID uint64) *model.Booking {
	t.Helper()
	ctx := context.Background()
	b := f.book(t, cust, serviceID)
	_, err := f.bookings.Decide(ctx, pro, b.ID, "accepted")
	require.NoError(t, err)
	b, err = f.bookings.Complete(ctx, pro, b.ID)
	require.NoError(t, err)
	return b
}
