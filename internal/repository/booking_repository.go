package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/local-services-marketplace/internal/model"
)

// BookingRepo persists bookings.  Status changes go through Transition,
// which only writes when the stored status still equals the expected one.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `b.id, b.customer_id, b.service_id, b.professional_id, b.scheduled_at, b.address,
       b.phone, b.description, b.status, b.payment_method, b.is_rated, b.created_at, b.updated_at`

// Create inserts b.  ID, timestamps and IsRated are read back from the row.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (customer_id, service_id, professional_id, scheduled_at, address, phone, description, status, payment_method)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		b.CustomerID, b.ServiceID, b.ProfessionalID, b.ScheduledAt.UTC(), b.Address,
		b.Phone, b.Description, string(b.Status), string(b.PaymentMethod))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT is_rated, created_at, updated_at FROM bookings WHERE id = ?`, b.ID).
		Scan(&b.IsRated, &b.CreatedAt, &b.UpdatedAt)
}

// GetByID returns the booking or ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	var b model.Booking
	err := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ?`, id).Scan(
		&b.ID, &b.CustomerID, &b.ServiceID, &b.ProfessionalID, &b.ScheduledAt, &b.Address,
		&b.Phone, &b.Description, &b.Status, &b.PaymentMethod, &b.IsRated, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Transition moves the booking from one status to another as a single
// compare-and-swap write.  ErrConflict means the stored status was not
// `from` at write time.
func (r *BookingRepo) Transition(ctx context.Context, id uint64, from, to model.BookingStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// recordQuery joins the counterpart rows with LEFT JOINs so a missing
// service or account shows up as NULL instead of dropping the row; the
// caller decides what to do with it.
const recordQuery = `SELECT ` + bookingColumns + `,
       s.name, s.description, c.name, c.email, pa.name, pa.email
FROM bookings b
LEFT JOIN services s ON s.id = b.service_id
LEFT JOIN accounts c ON c.id = b.customer_id
LEFT JOIN accounts pa ON pa.id = b.professional_id`

// GetRecord returns one booking with its joined fields, or ErrNotFound.
func (r *BookingRepo) GetRecord(ctx context.Context, id uint64) (*model.BookingRecord, error) {
	rows, err := r.db.QueryContext(ctx, recordQuery+"\nWHERE b.id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return &recs[0], nil
}

// ListForCustomer returns the customer's bookings, latest slot first.
func (r *BookingRepo) ListForCustomer(ctx context.Context, customerID uint64) ([]model.BookingRecord, error) {
	return r.list(ctx, "b.customer_id", customerID)
}

// ListForProfessional returns bookings addressed to the professional,
// latest slot first.
func (r *BookingRepo) ListForProfessional(ctx context.Context, professionalID uint64) ([]model.BookingRecord, error) {
	return r.list(ctx, "b.professional_id", professionalID)
}

func (r *BookingRepo) list(ctx context.Context, column string, id uint64) ([]model.BookingRecord, error) {
	q := recordQuery + "\nWHERE " + column + " = ?\nORDER BY b.scheduled_at DESC, b.id DESC"
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]model.BookingRecord, error) {
	out := []model.BookingRecord{}
	for rows.Next() {
		var rec model.BookingRecord
		var svcName, svcDesc, custName, custEmail, proName, proEmail sql.NullString
		if err := rows.Scan(
			&rec.ID, &rec.CustomerID, &rec.ServiceID, &rec.ProfessionalID, &rec.ScheduledAt, &rec.Address,
			&rec.Phone, &rec.Description, &rec.Status, &rec.PaymentMethod, &rec.IsRated, &rec.CreatedAt, &rec.UpdatedAt,
			&svcName, &svcDesc, &custName, &custEmail, &proName, &proEmail,
		); err != nil {
			return nil, err
		}
		rec.ServiceName = nullable(svcName)
		rec.ServiceDescription = nullable(svcDesc)
		rec.CustomerName = nullable(custName)
		rec.CustomerEmail = nullable(custEmail)
		rec.ProfessionalName = nullable(proName)
		rec.ProfessionalEmail = nullable(proEmail)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
