package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/local-services-marketplace/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

var dupEntry = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

func TestAccountRepo_CreateProfessional(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepo(db)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO accounts")).
		WithArgs("Pat", "pat@example.com", "hash", "professional", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(q("INSERT INTO professional_profiles")).
		WithArgs(uint64(7), "560001", `["plumbing"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("SELECT created_at, updated_at FROM accounts WHERE id = ?")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	phone := "9876543210"
	a := &model.Account{Name: "Pat", Email: " Pat@Example.com ", PasswordHash: "hash", Role: model.RoleProfessional, Phone: &phone}
	p := &model.ProfessionalProfile{Location: "560001", Categories: []string{"plumbing"}}
	require.NoError(t, repo.Create(context.Background(), a, p))

	assert.Equal(t, uint64(7), a.ID)
	assert.Equal(t, "pat@example.com", a.Email)
	assert.Equal(t, uint64(7), p.AccountID)
	assert.Equal(t, now, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO accounts")).WillReturnError(dupEntry)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Account{Name: "A", Email: "a@b.co", Role: model.RoleCustomer}, nil)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepo(db)

	mock.ExpectQuery(q("FROM accounts WHERE email = ?")).
		WithArgs("x@y.zz").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "X@Y.zz")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByNamePrefersRole(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(q("FROM accounts WHERE name = ? ORDER BY role = ? DESC, id LIMIT 1")).
		WithArgs("Sam", "customer").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "phone", "created_at", "updated_at"}).
			AddRow(3, "Sam", "sam@x.io", "h", "customer", nil, now, now))

	a, err := repo.GetByName(context.Background(), "Sam", model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), a.ID)
	assert.Equal(t, model.RoleCustomer, a.Role)
	assert.Nil(t, a.Phone)
}

func TestAccountRepo_GetProfile(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(q("FROM professional_profiles WHERE account_id = ?")).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "location", "categories", "is_verified", "created_at"}).
			AddRow(4, "110001", []byte(`["cleaning","painting"]`), true, now))

	p, err := repo.GetProfile(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"cleaning", "painting"}, p.Categories)
	assert.True(t, p.IsVerified)

	mock.ExpectQuery(q("FROM professional_profiles WHERE account_id = ?")).
		WithArgs(uint64(5)).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetProfile(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingRepo_TransitionCompareAndSwap(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectExec(q("UPDATE bookings SET status = ? WHERE id = ? AND status = ?")).
		WithArgs("accepted", uint64(9), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Transition(context.Background(), 9, model.BookingPending, model.BookingAccepted))

	// the concurrent reject lost the race
	mock.ExpectExec(q("UPDATE bookings SET status = ? WHERE id = ? AND status = ?")).
		WithArgs("rejected", uint64(9), "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Transition(context.Background(), 9, model.BookingPending, model.BookingRejected)
	assert.ErrorIs(t, err, ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_ListForProfessionalKeepsNullJoins(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	slot := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)

	cols := []string{"id", "customer_id", "service_id", "professional_id", "scheduled_at", "address", "phone",
		"description", "status", "payment_method", "is_rated", "created_at", "updated_at",
		"s.name", "s.description", "c.name", "c.email", "pa.name", "pa.email"}
	mock.ExpectQuery(q("WHERE b.professional_id = ?")).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 10, 20, 2, slot, "addr", "9999999999", "fix sink", "pending", "cash", false, slot, slot,
				"Plumbing", "pipes", "Cus", "cus@x.io", "Pro", "pro@x.io").
			AddRow(2, 10, 21, 2, slot, "addr", "9999999999", "paint", "accepted", "online", false, slot, slot,
				nil, nil, "Cus", "cus@x.io", "Pro", "pro@x.io"))

	recs, err := repo.ListForProfessional(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, model.BookingPending, recs[0].Status)
	require.NotNil(t, recs[0].ServiceName)
	assert.Equal(t, "Plumbing", *recs[0].ServiceName)
	assert.Nil(t, recs[1].ServiceName)
	assert.Equal(t, model.PaymentOnline, recs[1].PaymentMethod)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRepo_DeleteCascade(t *testing.T) {
	db, mock := newMock(t)
	repo := NewServiceRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM bookings WHERE service_id = ?")).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(q("DELETE FROM services WHERE id = ? AND professional_id = ?")).
		WithArgs(uint64(5), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.DeleteCascade(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRepo_DeleteCascadeRollsBackWhenServiceMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewServiceRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM bookings WHERE service_id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM services WHERE id = ? AND professional_id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.DeleteCascade(context.Background(), 5, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRepo_ListFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewServiceRepo(db)
	now := time.Now().UTC()

	cols := []string{"id", "professional_id", "name", "description", "price", "categories", "created_at", "updated_at",
		"a.name", "p.location", "cnt", "total"}
	mock.ExpectQuery(q("WHERE p.location = ? AND (JSON_CONTAINS(s.categories, JSON_QUOTE(?))")).
		WithArgs("560001", "plumbing", "plumbing").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 2, "Fix", "pipes", "500.00", []byte(`["plumbing"]`), now, now, "Pro", "560001", 3, 12))

	out, err := repo.List(context.Background(), model.ServiceFilter{Location: "560001", Category: "plumbing"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 500.0, out[0].Price)
	assert.Equal(t, model.RatingSummary{Count: 3, Sum: 12}, out[0].Rating)
	assert.Equal(t, "Pro", out[0].ProfessionalName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepo_Submit(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReviewRepo(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE bookings SET is_rated = 1 WHERE id = ? AND status = ? AND is_rated = 0")).
		WithArgs(uint64(8), "completed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO reviews")).
		WithArgs(uint64(10), uint64(2), uint64(5), uint64(8), 5, "great").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectQuery(q("SELECT created_at FROM reviews WHERE id = ?")).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectCommit()

	rv := &model.Review{CustomerID: 10, ProfessionalID: 2, ServiceID: 5, BookingID: 8, Rating: 5, Comment: "great"}
	require.NoError(t, repo.Submit(context.Background(), rv))
	assert.Equal(t, uint64(4), rv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepo_SubmitAlreadyRated(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReviewRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE bookings SET is_rated = 1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Submit(context.Background(), &model.Review{BookingID: 8, Rating: 4})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepo_SubmitDuplicateRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReviewRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE bookings SET is_rated = 1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO reviews")).WillReturnError(dupEntry)
	mock.ExpectRollback()

	err := repo.Submit(context.Background(), &model.Review{BookingID: 8, Rating: 4})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSupportTicketRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSupportTicketRepo(db)
	now := time.Now().UTC()

	mock.ExpectExec(q("INSERT INTO support_tickets")).
		WithArgs(uint64(3), "Refund", "open").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(q("SELECT status, created_at FROM support_tickets WHERE id = ?")).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "created_at"}).AddRow("open", now))

	tk := &model.SupportTicket{AccountID: 3, Subject: "Refund", Status: model.TicketOpen}
	require.NoError(t, repo.Create(context.Background(), tk))
	assert.Equal(t, uint64(11), tk.ID)
	assert.Equal(t, model.TicketOpen, tk.Status)
}

func TestCategoriesRoundTrip(t *testing.T) {
	s, err := encodeCategories(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	out, err := decodeCategories(nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = decodeCategories([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, out)
}
