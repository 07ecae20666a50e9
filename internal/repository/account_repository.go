package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/local-services-marketplace/internal/model"
)

// AccountRepo persists accounts and professional profiles.
type AccountRepo struct{ db *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

const accountColumns = `id, name, email, password_hash, role, phone, created_at, updated_at`

// Create inserts the account and, for professionals, its profile row in a
// single transaction.  ID and timestamps are populated on success.  A
// duplicate email yields ErrEmailExists.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account, p *model.ProfessionalProfile) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))

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
		`INSERT INTO accounts (name, email, password_hash, role, phone) VALUES (?, ?, ?, ?, ?)`,
		a.Name, a.Email, a.PasswordHash, string(a.Role), a.Phone)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)

	if p != nil {
		cats, err := encodeCategories(p.Categories)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO professional_profiles (account_id, location, categories) VALUES (?, ?, ?)`,
			a.ID, p.Location, cats); err != nil {
			return err
		}
		p.AccountID = a.ID
	}

	// read back defaults
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM accounts WHERE id = ?`, a.ID).
		Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		return err
	}
	if p != nil {
		p.CreatedAt = a.CreatedAt
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ? LIMIT 1`, email)
}

// GetByName fetches an account with exactly this display name.  Names are
// not unique: an account holding prefer wins, then the lowest id.
func (r *AccountRepo) GetByName(ctx context.Context, name string, prefer model.Role) (*model.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE name = ? ORDER BY role = ? DESC, id LIMIT 1`, name, prefer)
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (*model.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ? LIMIT 1`, id)
}

func (r *AccountRepo) getOne(ctx context.Context, q string, args ...any) (*model.Account, error) {
	var a model.Account
	var phone sql.NullString
	err := r.db.QueryRowContext(ctx, q, args...).Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &phone, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if phone.Valid {
		p := phone.String
		a.Phone = &p
	}
	return &a, nil
}

// GetProfile returns the professional profile of accountID, or ErrNotFound
// when the account is not a professional.
func (r *AccountRepo) GetProfile(ctx context.Context, accountID uint64) (*model.ProfessionalProfile, error) {
	var p model.ProfessionalProfile
	var cats []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT account_id, location, categories, is_verified, created_at FROM professional_profiles WHERE account_id = ?`,
		accountID).Scan(&p.AccountID, &p.Location, &cats, &p.IsVerified, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.Categories, err = decodeCategories(cats); err != nil {
		return nil, err
	}
	return &p, nil
}
