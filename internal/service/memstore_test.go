package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/local-services-marketplace/internal/model"
	"github.com/iliyamo/local-services-marketplace/internal/queue"
	"github.com/iliyamo/local-services-marketplace/internal/repository"
)

// memStore is an in-memory stand-in for the MySQL repositories.  It keeps
// the same contracts: unique email, compare-and-swap transitions, atomic
// review submission, inner joins for listings and left joins for
// booking records.
type memStore struct {
	mu       sync.Mutex
	nextID   uint64
	tick     time.Time
	accounts map[uint64]*model.Account
	profiles map[uint64]*model.ProfessionalProfile
	services map[uint64]*model.Service
	bookings map[uint64]*model.Booking
	reviews  map[uint64]*model.Review
	tickets  []model.SupportTicket
}

func newMemStore() *memStore {
	return &memStore{
		tick:     time.Date(2029, 12, 1, 0, 0, 0, 0, time.UTC),
		accounts: map[uint64]*model.Account{},
		profiles: map[uint64]*model.ProfessionalProfile{},
		services: map[uint64]*model.Service{},
		bookings: map[uint64]*model.Booking{},
		reviews:  map[uint64]*model.Review{},
	}
}

func (m *memStore) id() uint64 { m.nextID++; return m.nextID }

// stamp returns strictly increasing creation times.
func (m *memStore) stamp() time.Time { m.tick = m.tick.Add(time.Second); return m.tick }

func (m *memStore) Accounts() *memAccounts { return &memAccounts{m} }
func (m *memStore) Services() *memServices { return &memServices{m} }
func (m *memStore) Bookings() *memBookings { return &memBookings{m} }
func (m *memStore) Reviews() *memReviews   { return &memReviews{m} }
func (m *memStore) Tickets() *memTickets   { return &memTickets{m} }

func (m *memStore) bookingCountForService(serviceID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bookings {
		if b.ServiceID == serviceID {
			n++
		}
	}
	return n
}

func (m *memStore) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func (m *memStore) reviewCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reviews)
}

func (m *memStore) deleteAccount(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
	delete(m.profiles, id)
}

// ---- accounts ----

type memAccounts struct{ m *memStore }

func (a *memAccounts) Create(_ context.Context, acc *model.Account, p *model.ProfessionalProfile) error {
	m := a.m
	m.mu.Lock()
	defer m.mu.Unlock()
	acc.Email = strings.ToLower(strings.TrimSpace(acc.Email))
	for _, ex := range m.accounts {
		if ex.Email == acc.Email {
			return repository.ErrEmailExists
		}
	}
	acc.ID = m.id()
	acc.CreatedAt = m.stamp()
	acc.UpdatedAt = acc.CreatedAt
	cp := *acc
	m.accounts[acc.ID] = &cp
	if p != nil {
		p.AccountID = acc.ID
		p.CreatedAt = acc.CreatedAt
		pc := *p
		m.profiles[acc.ID] = &pc
	}
	return nil
}

func (a *memAccounts) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, acc := range a.m.accounts {
		if acc.Email == email {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (a *memAccounts) GetByName(_ context.Context, name string, prefer model.Role) (*model.Account, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	var best *model.Account
	for _, acc := range a.m.accounts {
		if acc.Name != name {
			continue
		}
		if best == nil {
			best = acc
			continue
		}
		accHit, bestHit := acc.Role == prefer, best.Role == prefer
		if (accHit && !bestHit) || (accHit == bestHit && acc.ID < best.ID) {
			best = acc
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (a *memAccounts) GetByID(_ context.Context, id uint64) (*model.Account, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	acc, ok := a.m.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (a *memAccounts) GetProfile(_ context.Context, id uint64) (*model.ProfessionalProfile, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	p, ok := a.m.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// ---- services ----

type memServices struct{ m *memStore }

func (s *memServices) Create(_ context.Context, svc *model.Service) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	svc.ID = m.id()
	svc.CreatedAt = m.stamp()
	svc.UpdatedAt = svc.CreatedAt
	cp := *svc
	m.services[svc.ID] = &cp
	return nil
}

func (s *memServices) GetByID(_ context.Context, id uint64) (*model.Service, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	svc, ok := s.m.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *svc
	return &cp, nil
}

func (s *memServices) Update(_ context.Context, svc *model.Service) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cur, ok := s.m.services[svc.ID]
	if !ok || cur.ProfessionalID != svc.ProfessionalID {
		return nil
	}
	svc.UpdatedAt = s.m.stamp()
	cp := *svc
	s.m.services[svc.ID] = &cp
	return nil
}

func (s *memServices) DeleteCascade(_ context.Context, id, professionalID uint64) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	svc, ok := s.m.services[id]
	if !ok || svc.ProfessionalID != professionalID {
		return 0, repository.ErrNotFound
	}
	var removed int64
	for bid, b := range s.m.bookings {
		if b.ServiceID == id {
			delete(s.m.bookings, bid)
			removed++
		}
	}
	delete(s.m.services, id)
	return removed, nil
}

func (s *memServices) List(_ context.Context, f model.ServiceFilter) ([]model.ServiceListing, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.listings(func(l model.ServiceListing, p *model.ProfessionalProfile) bool {
		if f.Location != "" && p.Location != f.Location {
			return false
		}
		if f.Category != "" && !slices.Contains(l.Categories, f.Category) && !slices.Contains(p.Categories, f.Category) {
			return false
		}
		return true
	}), nil
}

func (s *memServices) ListByProfessional(_ context.Context, professionalID uint64) ([]model.ServiceListing, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.listings(func(l model.ServiceListing, _ *model.ProfessionalProfile) bool {
		return l.ProfessionalID == professionalID
	}), nil
}

func (s *memServices) listings(keep func(model.ServiceListing, *model.ProfessionalProfile) bool) []model.ServiceListing {
	out := []model.ServiceListing{}
	for _, svc := range s.m.services {
		acc, okA := s.m.accounts[svc.ProfessionalID]
		p, okP := s.m.profiles[svc.ProfessionalID]
		if !okA || !okP {
			continue
		}
		l := model.ServiceListing{Service: *svc, ProfessionalName: acc.Name, ProfessionalLocation: p.Location}
		for _, r := range s.m.reviews {
			if r.ServiceID == svc.ID {
				l.Rating = l.Rating.Add(r.Rating)
			}
		}
		if keep(l, p) {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b model.ServiceListing) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID) - int(a.ID)
	})
	return out
}

// ---- bookings ----

type memBookings struct{ m *memStore }

func (s *memBookings) Create(_ context.Context, b *model.Booking) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.id()
	b.CreatedAt = m.stamp()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (s *memBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	b, ok := s.m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *memBookings) Transition(_ context.Context, id uint64, from, to model.BookingStatus) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	b, ok := s.m.bookings[id]
	if !ok || b.Status != from {
		return repository.ErrConflict
	}
	b.Status = to
	return nil
}

func (s *memBookings) GetRecord(_ context.Context, id uint64) (*model.BookingRecord, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	b, ok := s.m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec := s.record(b)
	return &rec, nil
}

func (s *memBookings) ListForCustomer(_ context.Context, id uint64) ([]model.BookingRecord, error) {
	return s.list(func(b *model.Booking) bool { return b.CustomerID == id }), nil
}

func (s *memBookings) ListForProfessional(_ context.Context, id uint64) ([]model.BookingRecord, error) {
	return s.list(func(b *model.Booking) bool { return b.ProfessionalID == id }), nil
}

func (s *memBookings) list(keep func(*model.Booking) bool) []model.BookingRecord {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []model.BookingRecord{}
	for _, b := range s.m.bookings {
		if keep(b) {
			out = append(out, s.record(b))
		}
	}
	// unordered on purpose: the service sorts
	return out
}

func (s *memBookings) record(b *model.Booking) model.BookingRecord {
	rec := model.BookingRecord{Booking: *b}
	if svc, ok := s.m.services[b.ServiceID]; ok {
		rec.ServiceName = ptr(svc.Name)
		rec.ServiceDescription = ptr(svc.Description)
	}
	if c, ok := s.m.accounts[b.CustomerID]; ok {
		rec.CustomerName = ptr(c.Name)
		rec.CustomerEmail = ptr(c.Email)
	}
	if p, ok := s.m.accounts[b.ProfessionalID]; ok {
		rec.ProfessionalName = ptr(p.Name)
		rec.ProfessionalEmail = ptr(p.Email)
	}
	return rec
}

func ptr(s string) *string { return &s }

// ---- reviews ----

type memReviews struct{ m *memStore }

func (s *memReviews) Submit(_ context.Context, r *model.Review) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[r.BookingID]
	if !ok || b.Status != model.BookingCompleted || b.IsRated {
		return repository.ErrConflict
	}
	for _, ex := range m.reviews {
		if ex.BookingID == r.BookingID {
			return repository.ErrDuplicate
		}
	}
	b.IsRated = true
	r.ID = m.id()
	r.CreatedAt = m.stamp()
	cp := *r
	m.reviews[r.ID] = &cp
	return nil
}

func (s *memReviews) ListByService(_ context.Context, id uint64) ([]model.ReviewRecord, error) {
	return s.list(func(r *model.Review) bool { return r.ServiceID == id }), nil
}

func (s *memReviews) ListByProfessional(_ context.Context, id uint64) ([]model.ReviewRecord, error) {
	return s.list(func(r *model.Review) bool { return r.ProfessionalID == id }), nil
}

func (s *memReviews) list(keep func(*model.Review) bool) []model.ReviewRecord {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []model.ReviewRecord{}
	for _, r := range s.m.reviews {
		if !keep(r) {
			continue
		}
		rec := model.ReviewRecord{Review: *r}
		if c, ok := s.m.accounts[r.CustomerID]; ok {
			rec.CustomerName = c.Name
		}
		if svc, ok := s.m.services[r.ServiceID]; ok {
			rec.ServiceName = ptr(svc.Name)
		}
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b model.ReviewRecord) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

// ---- tickets ----

type memTickets struct{ m *memStore }

func (s *memTickets) Create(_ context.Context, t *model.SupportTicket) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	t.ID = s.m.id()
	t.CreatedAt = s.m.stamp()
	s.m.tickets = append(s.m.tickets, *t)
	return nil
}

func (s *memTickets) ListByAccount(_ context.Context, id uint64) ([]model.SupportTicket, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []model.SupportTicket{}
	for i := len(s.m.tickets) - 1; i >= 0; i-- {
		if s.m.tickets[i].AccountID == id {
			out = append(out, s.m.tickets[i])
		}
	}
	return out, nil
}

// ---- collaborators ----

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.LifecycleEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.LifecycleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type countingInvalidator struct {
	mu    sync.Mutex
	bumps int
}

func (c *countingInvalidator) Bump(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bumps++
	return nil
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bumps
}
