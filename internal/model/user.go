package model

import "time"

// Role names the two kinds of account.  It is fixed at registration.
type Role string

const (
	RoleCustomer     Role = "customer"
	RoleProfessional Role = "professional"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleCustomer || r == RoleProfessional }

// Account represents a row in the `accounts` table.  Email is unique
// across both roles.  The password is never stored, only its bcrypt
// verifier.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name; also usable as a login identifier.
//  Email        – unique, lower-cased address.
//  PasswordHash – bcrypt verifier.
//  Role         – customer or professional.
//  Phone        – 10 digit phone (required for professionals).
//  CreatedAt    – registration timestamp (the public "join date").
type Account struct {
	ID           uint64    // accounts.id
	Name         string    // accounts.name
	Email        string    // accounts.email
	PasswordHash string    // accounts.password_hash
	Role         Role      // accounts.role
	Phone        *string   // accounts.phone (nullable)
	CreatedAt    time.Time // accounts.created_at
	UpdatedAt    time.Time // accounts.updated_at
}

// ProfessionalProfile is the extended profile row that exists only for
// professionals.  Its presence, not a token claim, decides whether an
// account acts as a professional.
//
// Fields:
//  AccountID  – primary key, references accounts.id.
//  Location   – 6 digit pincode matched as an exact string.
//  Categories – service categories the professional works in.
//  IsVerified – set by operators, never by this API.
type ProfessionalProfile struct {
	AccountID  uint64    // professional_profiles.account_id
	Location   string    // professional_profiles.location
	Categories []string  // professional_profiles.categories (JSON)
	IsVerified bool      // professional_profiles.is_verified
	CreatedAt  time.Time // professional_profiles.created_at
}

// Identity is the acting account of a request after its role has been
// re-derived from current data.
type Identity struct {
	AccountID uint64
	Name      string
	Email     string
	Role      Role
}

// IsProfessional reports whether the identity acts as a professional.
func (i Identity) IsProfessional() bool { return i.Role == RoleProfessional }
