package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-marketplace/internal/errs"
	"github.com/iliyamo/local-services-marketplace/internal/utils"
)

// Context keys set by JWTAuth.
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// JWTAuth validates a Bearer session token and stores the account id
// (uint64) and the role claim in the echo context.  The role claim is
// informational only; ResolveAccount decides the acting role.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return errs.New(errs.KindUnauthorized, "Missing bearer token")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				return errs.Wrap(errs.KindUnauthorized, "Invalid or expired token", err)
			}
			id, err := claims.AccountID()
			if err != nil {
				return errs.Wrap(errs.KindUnauthorized, "Invalid or expired token", err)
			}

			c.Set(UserIDKey, id)
			c.Set(RoleKey, claims.Role)
			l := GetLogger(c).With().Uint64("user_id", id).Logger()
			c.Set(LoggerKey, &l)
			return next(c)
		}
	}
}

// UserID returns the authenticated account id, or 0 when JWTAuth did not
// run.
func UserID(c echo.Context) uint64 {
	id, _ := c.Get(UserIDKey).(uint64)
	return id
}
