package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/local-services-marketplace/internal/config"
	"github.com/iliyamo/local-services-marketplace/internal/errs"
	"github.com/iliyamo/local-services-marketplace/internal/model"
	"github.com/iliyamo/local-services-marketplace/internal/repository"
	"github.com/iliyamo/local-services-marketplace/internal/utils"
)

// Messages shown to clients.  Role mismatches name the right login.
const (
	msgEmailRegistered        = "Email already registered"
	msgEmailIsProfessional    = "This email is registered as a Professional. Please use a different email."
	msgEmailIsCustomer        = "This email is registered as a Customer. Please use a different email."
	msgInvalidCredentials     = "Invalid credentials"
	msgUseProfessionalLogin   = "This is a professional account. Please use the Partner Login."
	msgNotProfessionalAccount = "Not a professional account"
)

// RegisterInput is the body of both registration endpoints.  Role is set
// by the endpoint, never by the client.
type RegisterInput struct {
	Role       model.Role `json:"-"`
	Name       string     `json:"name" validate:"required,max=100"`
	Email      string     `json:"email" validate:"required,max=255,basicemail"`
	Password   string     `json:"password" validate:"required,min=8,bcryptlen"`
	Phone      string     `json:"phone" validate:"omitempty,phone"`
	Location   string     `json:"location" validate:"omitempty,pincode"`
	Categories []string   `json:"categories" validate:"omitempty,max=20,dive,required,max=50"`
}

// LoginInput is the body of both login endpoints.  Identifier, Email and
// Name are alternatives; the first non-empty one is used.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   *model.Account
	Role      model.Role
}

// IdentityService registers accounts, authenticates them and resolves the
// acting identity of a request.
type IdentityService struct {
	accounts   AccountStore
	secret     string
	ttl        time.Duration
	bcryptCost int
	now        Clock
	log        zerolog.Logger
}

// NewIdentityService builds an IdentityService.  A nil clock uses time.Now.
func NewIdentityService(accounts AccountStore, cfg config.AuthConfig, log zerolog.Logger, clock Clock) *IdentityService {
	return &IdentityService{
		accounts:   accounts,
		secret:     cfg.JWTSecret,
		ttl:        cfg.SessionTTL,
		bcryptCost: cfg.BcryptCost,
		now:        clockOrNow(clock),
		log:        log.With().Str("component", "identity").Logger(),
	}
}

// Register creates an account.  It does not issue a session.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*model.Account, error) {
	if !in.Role.Valid() {
		return nil, errs.New(errs.KindInvalidInput, "Invalid role")
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Location = strings.TrimSpace(in.Location)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Role == model.RoleProfessional {
		if in.Phone == "" {
			return nil, invalidField("phone", "is required")
		}
		if in.Location == "" {
			return nil, invalidField("location", "is required")
		}
	}

	existing, err := s.accounts.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, duplicateEmail(existing.Role, in.Role)
	case !isNotFound(err):
		return nil, internal(s.log, "register.lookup", err)
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, internal(s.log, "register.hash", err)
	}
	acc := &model.Account{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if in.Phone != "" {
		phone := in.Phone
		acc.Phone = &phone
	}
	var profile *model.ProfessionalProfile
	if in.Role == model.RoleProfessional {
		profile = &model.ProfessionalProfile{Location: in.Location, Categories: normalizeCategories(in.Categories)}
	}

	if err := s.accounts.Create(ctx, acc, profile); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			// lost a race with a concurrent registration
			return nil, errs.New(errs.KindDuplicateEmail, msgEmailRegistered)
		}
		return nil, internal(s.log, "register.create", err)
	}
	s.log.Info().Uint64("account_id", acc.ID).Str("role", string(acc.Role)).Msg("account registered")
	return acc, nil
}

func duplicateEmail(holder, wanted model.Role) error {
	switch {
	case holder == wanted:
		return errs.New(errs.KindDuplicateEmail, msgEmailRegistered)
	case holder == model.RoleProfessional:
		return errs.New(errs.KindDuplicateEmail, msgEmailIsProfessional)
	default:
		return errs.New(errs.KindDuplicateEmail, msgEmailIsCustomer)
	}
}

// Authenticate checks credentials and issues a session when the account's
// current role matches expected.  Unknown identifiers and wrong passwords
// produce the same error.  The password is verified before the role so a
// wrong password never reveals which role an account has.
func (s *IdentityService) Authenticate(ctx context.Context, in LoginInput, expected model.Role) (*Session, error) {
	ident := firstNonEmpty(in.Identifier, in.Email, in.Name)
	if ident == "" || in.Password == "" {
		return nil, errs.New(errs.KindInvalidInput, "Email or name and password are required")
	}

	acc, err := s.lookup(ctx, ident, expected)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.New(errs.KindInvalidCredentials, msgInvalidCredentials)
		}
		return nil, internal(s.log, "authenticate.lookup", err)
	}
	if !utils.VerifyPassword(acc.PasswordHash, in.Password) {
		return nil, errs.New(errs.KindInvalidCredentials, msgInvalidCredentials)
	}

	role, err := s.roleOf(ctx, acc.ID)
	if err != nil {
		return nil, internal(s.log, "authenticate.role", err)
	}
	if role != expected {
		if expected == model.RoleCustomer {
			return nil, errs.New(errs.KindWrongRole, msgUseProfessionalLogin)
		}
		return nil, errs.New(errs.KindWrongRole, msgNotProfessionalAccount)
	}

	tok, err := utils.NewSessionToken(s.secret, acc.ID, string(role), s.ttl, s.now())
	if err != nil {
		return nil, internal(s.log, "authenticate.token", err)
	}
	return &Session{Token: tok.Token, ExpiresAt: tok.Exp, Account: acc, Role: role}, nil
}

// lookup tries the email first when the identifier looks like one and
// falls back to an exact name match, preferring an account of the role
// the endpoint logs in.
func (s *IdentityService) lookup(ctx context.Context, ident string, role model.Role) (*model.Account, error) {
	if strings.Contains(ident, "@") {
		acc, err := s.accounts.GetByEmail(ctx, strings.ToLower(ident))
		if err == nil || !isNotFound(err) {
			return acc, err
		}
	}
	return s.accounts.GetByName(ctx, ident, role)
}

// Resolve re-derives the acting identity of accountID from current data.
// A token for an account that no longer exists is unauthorized.
func (s *IdentityService) Resolve(ctx context.Context, accountID uint64) (model.Identity, error) {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return model.Identity{}, errs.New(errs.KindUnauthorized, "Account not found")
		}
		return model.Identity{}, internal(s.log, "resolve.account", err)
	}
	role, err := s.roleOf(ctx, acc.ID)
	if err != nil {
		return model.Identity{}, internal(s.log, "resolve.role", err)
	}
	return model.Identity{AccountID: acc.ID, Name: acc.Name, Email: acc.Email, Role: role}, nil
}

// roleOf decides the role from the existence of a professional profile.
func (s *IdentityService) roleOf(ctx context.Context, accountID uint64) (model.Role, error) {
	_, err := s.accounts.GetProfile(ctx, accountID)
	switch {
	case err == nil:
		return model.RoleProfessional, nil
	case isNotFound(err):
		return model.RoleCustomer, nil
	default:
		return "", err
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func normalizeCategories(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
