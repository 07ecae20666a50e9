package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-marketplace/internal/errs"
	"github.com/iliyamo/local-services-marketplace/internal/model"
)

// RequireRole rejects requests whose resolved identity has none of the
// given roles.  It must run after ResolveAccount; the token's role claim
// is never consulted.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := CurrentIdentity(c)
			if !ok {
				return errs.New(errs.KindUnauthorized, "Missing bearer token")
			}
			if !allowed[ident.Role] {
				return errs.New(errs.KindForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
