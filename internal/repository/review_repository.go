package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/local-services-marketplace/internal/model"
)

// ReviewRepo persists reviews.
type ReviewRepo struct{ db *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Submit flags the booking as rated and inserts the review in one
// transaction.  The flag update only matches a completed, unrated booking;
// when it matches nothing ErrConflict is returned and nothing is written.
// A unique violation on reviews.booking_id yields ErrDuplicate.
func (r *ReviewRepo) Submit(ctx context.Context, rv *model.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET is_rated = 1 WHERE id = ? AND status = ? AND is_rated = 0`,
		rv.BookingID, string(model.BookingCompleted))
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

	res, err = tx.ExecContext(ctx,
		`INSERT INTO reviews (customer_id, professional_id, service_id, booking_id, rating, comment) VALUES (?, ?, ?, ?, ?, ?)`,
		rv.CustomerID, rv.ProfessionalID, rv.ServiceID, rv.BookingID, rv.Rating, rv.Comment)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	if err := tx.QueryRowContext(ctx, `SELECT created_at FROM reviews WHERE id = ?`, rv.ID).Scan(&rv.CreatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const reviewQuery = `SELECT r.id, r.customer_id, r.professional_id, r.service_id, r.booking_id, r.rating, r.comment,
       r.created_at, COALESCE(a.name, ''), s.name
FROM reviews r
LEFT JOIN accounts a ON a.id = r.customer_id
LEFT JOIN services s ON s.id = r.service_id`

// ListByService returns the service's reviews, newest first.
func (r *ReviewRepo) ListByService(ctx context.Context, serviceID uint64) ([]model.ReviewRecord, error) {
	return r.list(ctx, reviewQuery+"\nWHERE r.service_id = ?\nORDER BY r.created_at DESC, r.id DESC", serviceID)
}

// ListByProfessional returns every review left for the professional,
// including reviews of services since deleted, newest first.
func (r *ReviewRepo) ListByProfessional(ctx context.Context, professionalID uint64) ([]model.ReviewRecord, error) {
	return r.list(ctx, reviewQuery+"\nWHERE r.professional_id = ?\nORDER BY r.created_at DESC, r.id DESC", professionalID)
}

func (r *ReviewRepo) list(ctx context.Context, q string, id uint64) ([]model.ReviewRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ReviewRecord{}
	for rows.Next() {
		var rec model.ReviewRecord
		var svcName sql.NullString
		if err := rows.Scan(
			&rec.ID, &rec.CustomerID, &rec.ProfessionalID, &rec.ServiceID, &rec.BookingID, &rec.Rating, &rec.Comment,
			&rec.CreatedAt, &rec.CustomerName, &svcName,
		); err != nil {
			return nil, err
		}
		rec.ServiceName = nullable(svcName)
		out = append(out, rec)
	}
	return out, rows.Err()
}
