package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/local-services-marketplace/internal/model"
)

// SupportTicketRepo persists support tickets.
type SupportTicketRepo struct{ db *sql.DB }

func NewSupportTicketRepo(db *sql.DB) *SupportTicketRepo { return &SupportTicketRepo{db: db} }

// Create inserts t and reads back its id, status and creation time.
func (r *SupportTicketRepo) Create(ctx context.Context, t *model.SupportTicket) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO support_tickets (account_id, subject, status) VALUES (?, ?, ?)`,
		t.AccountID, t.Subject, string(t.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT status, created_at FROM support_tickets WHERE id = ?`, t.ID).
		Scan(&t.Status, &t.CreatedAt)
}

// ListByAccount returns the account's tickets, newest first.
func (r *SupportTicketRepo) ListByAccount(ctx context.Context, accountID uint64) ([]model.SupportTicket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, subject, status, created_at FROM support_tickets WHERE account_id = ? ORDER BY created_at DESC, id DESC`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SupportTicket{}
	for rows.Next() {
		var t model.SupportTicket
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Subject, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
