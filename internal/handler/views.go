package handler

import (
	"time"

	"github.com/iliyamo/local-services-marketplace/internal/model"
	"github.com/iliyamo/local-services-marketplace/internal/service"
)

type accountView struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	Phone     *string    `json:"phone,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func newAccountView(a *model.Account) accountView {
	return accountView{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role, Phone: a.Phone, CreatedAt: a.CreatedAt}
}

type identityView struct {
	ID    uint64     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

type sessionView struct {
	Token          string     `json:"token"`
	ExpiresAt      time.Time  `json:"expires_at"`
	Name           string     `json:"name"`
	Role           model.Role `json:"role"`
	UserID         uint64     `json:"userId"`
	ProfessionalID *uint64    `json:"professionalId,omitempty"`
}

func newSessionView(s *service.Session) sessionView {
	v := sessionView{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		Name:      s.Account.Name,
		Role:      s.Role,
		UserID:    s.Account.ID,
	}
	if s.Role == model.RoleProfessional {
		id := s.Account.ID
		v.ProfessionalID = &id
	}
	return v
}

type ratingView struct {
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

func newRatingView(r model.RatingSummary) ratingView {
	return ratingView{AverageRating: r.Rounded(), ReviewCount: r.Count}
}

type serviceView struct {
	ID             uint64    `json:"id"`
	ProfessionalID uint64    `json:"professional_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Categories     []string  `json:"categories"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newServiceView(s *model.Service) serviceView {
	cats := s.Categories
	if cats == nil {
		cats = []string{}
	}
	return serviceView{
		ID:             s.ID,
		ProfessionalID: s.ProfessionalID,
		Name:           s.Name,
		Description:    s.Description,
		Price:          s.Price,
		Categories:     cats,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type listingView struct {
	serviceView
	ratingView
	ProfessionalName     string `json:"professional_name"`
	ProfessionalLocation string `json:"professional_location"`
}

func newListingViews(ls []model.ServiceListing) []listingView {
	out := make([]listingView, 0, len(ls))
	for i := range ls {
		out = append(out, listingView{
			serviceView:          newServiceView(&ls[i].Service),
			ratingView:           newRatingView(ls[i].Rating),
			ProfessionalName:     ls[i].ProfessionalName,
			ProfessionalLocation: ls[i].ProfessionalLocation,
		})
	}
	return out
}

// bookingView shows the counterpart of the viewer: the professional to a
// customer, the customer to a professional.
type bookingView struct {
	ID                 uint64              `json:"id"`
	ServiceID          uint64              `json:"service_id"`
	CustomerID         uint64              `json:"customer_id"`
	ProfessionalID     uint64              `json:"professional_id"`
	ScheduledAt        time.Time           `json:"scheduled_at"`
	Date               string              `json:"date"`
	Time               string              `json:"time"`
	Address            string              `json:"address"`
	Phone              *string             `json:"phone"`
	PhoneVisible       bool                `json:"phone_visible"`
	Description        string              `json:"description"`
	Status             model.BookingStatus `json:"status"`
	PaymentMethod      model.PaymentMethod `json:"payment_method"`
	IsRated            bool                `json:"is_rated"`
	ServiceName        *string             `json:"service_name,omitempty"`
	ServiceDescription *string             `json:"service_description,omitempty"`
	CustomerName       *string             `json:"customer_name,omitempty"`
	ProfessionalName   *string             `json:"professional_name,omitempty"`
	ProfessionalEmail  *string             `json:"professional_email,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func newBookingView(b *model.Booking, loc *time.Location) bookingView {
	local := b.ScheduledAt.In(loc)
	phone := b.Phone
	return bookingView{
		ID:             b.ID,
		ServiceID:      b.ServiceID,
		CustomerID:     b.CustomerID,
		ProfessionalID: b.ProfessionalID,
		ScheduledAt:    b.ScheduledAt,
		Date:           local.Format("2006-01-02"),
		Time:           local.Format("15:04"),
		Address:        b.Address,
		Phone:          &phone,
		PhoneVisible:   true,
		Description:    b.Description,
		Status:         b.Status,
		PaymentMethod:  b.PaymentMethod,
		IsRated:        b.IsRated,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func newBookingRecordView(v service.BookingView, loc *time.Location) bookingView {
	out := newBookingView(&v.Booking, loc)
	out.ServiceName = v.ServiceName
	out.ServiceDescription = v.ServiceDescription
	if !v.PhoneVisible {
		out.Phone = nil
		out.PhoneVisible = false
	}
	if v.Viewer == model.RoleProfessional {
		out.CustomerName = v.CustomerName
	} else {
		out.ProfessionalName = v.ProfessionalName
		out.ProfessionalEmail = v.ProfessionalEmail
	}
	return out
}

type reviewView struct {
	ID             uint64    `json:"id"`
	BookingID      uint64    `json:"booking_id"`
	ServiceID      uint64    `json:"service_id"`
	ProfessionalID uint64    `json:"professional_id"`
	CustomerID     uint64    `json:"customer_id"`
	CustomerName   string    `json:"customer_name,omitempty"`
	ServiceName    *string   `json:"service_name,omitempty"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
}

func newReviewView(r *model.Review) reviewView {
	return reviewView{
		ID:             r.ID,
		BookingID:      r.BookingID,
		ServiceID:      r.ServiceID,
		ProfessionalID: r.ProfessionalID,
		CustomerID:     r.CustomerID,
		Rating:         r.Rating,
		Comment:        r.Comment,
		CreatedAt:      r.CreatedAt,
	}
}

func newReviewViews(rs []model.ReviewRecord) []reviewView {
	out := make([]reviewView, 0, len(rs))
	for i := range rs {
		v := newReviewView(&rs[i].Review)
		v.CustomerName = rs[i].CustomerName
		v.ServiceName = rs[i].ServiceName
		out = append(out, v)
	}
	return out
}

type professionalView struct {
	ratingView
	ID         uint64        `json:"id"`
	Name       string        `json:"name"`
	Location   string        `json:"location"`
	Categories []string      `json:"categories"`
	IsVerified bool          `json:"is_verified"`
	JoinedAt   time.Time     `json:"joined_at"`
	Services   []listingView `json:"services"`
	Reviews    []reviewView  `json:"reviews"`
}

func newProfessionalView(p *service.ProfessionalView) professionalView {
	cats := p.Profile.Categories
	if cats == nil {
		cats = []string{}
	}
	return professionalView{
		ratingView: newRatingView(p.Rating),
		ID:         p.Account.ID,
		Name:       p.Account.Name,
		Location:   p.Profile.Location,
		Categories: cats,
		IsVerified: p.Profile.IsVerified,
		JoinedAt:   p.Account.CreatedAt,
		Services:   newListingViews(p.Services),
		Reviews:    newReviewViews(p.Reviews),
	}
}

type ticketView struct {
	ID        uint64             `json:"id"`
	Subject   string             `json:"subject"`
	Status    model.TicketStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

func newTicketView(t *model.SupportTicket) ticketView {
	return ticketView{ID: t.ID, Subject: t.Subject, Status: t.Status, CreatedAt: t.CreatedAt}
}
