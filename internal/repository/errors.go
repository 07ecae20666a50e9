// Package repository implements MySQL persistence for accounts, services,
// bookings, reviews and support tickets over database/sql.  Repositories
// return the sentinel errors below so the service layer can tell the
// expected failures apart from infrastructure ones.
package repository

import (
	"encoding/json"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an account with the same email exists.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when a conditional write matched no row because
// the row's current state no longer satisfies the condition, e.g. a
// booking status that changed between read and write.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when an insert violates a unique key other than
// the account email.
var ErrDuplicate = errors.New("duplicate")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// encodeCategories renders a category list as a JSON array.  nil encodes
// as an empty array so JSON_CONTAINS never sees NULL.
func encodeCategories(cats []string) (string, error) {
	if len(cats) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(cats)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeCategories(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
