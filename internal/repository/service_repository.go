package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/local-services-marketplace/internal/model"
)

// ServiceRepo persists the catalog.  Listings join the owning
// professional and fold the service's reviews into a count and a sum.
type ServiceRepo struct{ db *sql.DB }

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

const serviceColumns = `id, professional_id, name, description, price, categories, created_at, updated_at`

// Create inserts s and populates its ID and timestamps.
func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	cats, err := encodeCategories(s.Categories)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO services (professional_id, name, description, price, categories) VALUES (?, ?, ?, ?, ?)`,
		s.ProfessionalID, s.Name, s.Description, s.Price, cats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM services WHERE id = ?`, s.ID).
		Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns the service or ErrNotFound.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (*model.Service, error) {
	var s model.Service
	var cats []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = ?`, id).
		Scan(&s.ID, &s.ProfessionalID, &s.Name, &s.Description, &s.Price, &cats, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.Categories, err = decodeCategories(cats); err != nil {
		return nil, err
	}
	return &s, nil
}

// Update writes the mutable fields of s.  The owner is part of the WHERE
// clause so a write can never touch another professional's service.
func (r *ServiceRepo) Update(ctx context.Context, s *model.Service) error {
	cats, err := encodeCategories(s.Categories)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE services SET name = ?, description = ?, price = ?, categories = ? WHERE id = ? AND professional_id = ?`,
		s.Name, s.Description, s.Price, cats, s.ID, s.ProfessionalID)
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx,
		`SELECT updated_at FROM services WHERE id = ?`, s.ID).Scan(&s.UpdatedAt)
}

// DeleteCascade removes every booking referencing the service and then the
// service itself, in one transaction.  Reviews are kept.  It returns the
// number of bookings removed, or ErrNotFound when no service with this id
// is owned by professionalID.
func (r *ServiceRepo) DeleteCascade(ctx context.Context, id, professionalID uint64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE service_id = ?`, id)
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	res, err = tx.ExecContext(ctx, `DELETE FROM services WHERE id = ? AND professional_id = ?`, id, professionalID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return removed, nil
}

// listingQuery selects services whose owner still resolves to a
// professional.  The inner joins drop orphans.
const listingQuery = `SELECT s.id, s.professional_id, s.name, s.description, s.price, s.categories,
       s.created_at, s.updated_at, a.name, p.location,
       COALESCE(rv.cnt, 0), COALESCE(rv.total, 0)
FROM services s
JOIN accounts a ON a.id = s.professional_id
JOIN professional_profiles p ON p.account_id = s.professional_id
LEFT JOIN (SELECT service_id, COUNT(*) AS cnt, SUM(rating) AS total FROM reviews GROUP BY service_id) rv
       ON rv.service_id = s.id`

// List returns the catalog, newest first, narrowed by f.  A category
// matches when either the service or its professional lists it.
func (r *ServiceRepo) List(ctx context.Context, f model.ServiceFilter) ([]model.ServiceListing, error) {
	var where []string
	var args []any
	if loc := strings.TrimSpace(f.Location); loc != "" {
		where = append(where, "p.location = ?")
		args = append(args, loc)
	}
	if cat := strings.TrimSpace(f.Category); cat != "" {
		where = append(where, "(JSON_CONTAINS(s.categories, JSON_QUOTE(?)) OR JSON_CONTAINS(p.categories, JSON_QUOTE(?)))")
		args = append(args, cat, cat)
	}
	q := listingQuery
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, " AND ")
	}
	q += "\nORDER BY s.created_at DESC, s.id DESC"
	return r.queryListings(ctx, q, args...)
}

// ListByProfessional returns one professional's services, newest first.
func (r *ServiceRepo) ListByProfessional(ctx context.Context, professionalID uint64) ([]model.ServiceListing, error) {
	q := listingQuery + "\nWHERE s.professional_id = ?\nORDER BY s.created_at DESC, s.id DESC"
	return r.queryListings(ctx, q, professionalID)
}

func (r *ServiceRepo) queryListings(ctx context.Context, q string, args ...any) ([]model.ServiceListing, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ServiceListing{}
	for rows.Next() {
		var l model.ServiceListing
		var cats []byte
		if err := rows.Scan(
			&l.ID, &l.ProfessionalID, &l.Name, &l.Description, &l.Price, &cats,
			&l.CreatedAt, &l.UpdatedAt, &l.ProfessionalName, &l.ProfessionalLocation,
			&l.Rating.Count, &l.Rating.Sum,
		); err != nil {
			return nil, err
		}
		if l.Categories, err = decodeCategories(cats); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
