package middleware

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-marketplace/internal/errs"
	"github.com/iliyamo/local-services-marketplace/internal/model"
)

// IdentityKey holds the model.Identity resolved for the request.
const IdentityKey = "identity"

// Resolver re-derives an account's acting identity from current data.
type Resolver interface {
	Resolve(ctx context.Context, accountID uint64) (model.Identity, error)
}

// ResolveAccount loads the acting identity of the token's account on
// every request.  It must run after JWTAuth.
func ResolveAccount(r Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := UserID(c)
			if id == 0 {
				return errs.New(errs.KindUnauthorized, "Missing bearer token")
			}
			ident, err := r.Resolve(c.Request().Context(), id)
			if err != nil {
				return err
			}
			c.Set(IdentityKey, ident)
			return next(c)
		}
	}
}

// CurrentIdentity returns the identity stored by ResolveAccount.
func CurrentIdentity(c echo.Context) (model.Identity, bool) {
	ident, ok := c.Get(IdentityKey).(model.Identity)
	return ident, ok
}

// userKey identifies the caller in Redis keys: the account id when
// authenticated, "anon" otherwise.
func userKey(c echo.Context) string {
	if id := UserID(c); id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
