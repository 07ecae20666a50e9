package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-marketplace/internal/middleware"
)

// RegisterAuth registers registration and login for both roles behind the
// token bucket, plus GET /me.
func RegisterAuth(e *echo.Echo, d Deps) {
	limit := middleware.NewTokenBucket(d.Cfg.RateLimit, d.Redis)

	e.POST("/register", d.Auth.Register, limit)
	e.POST("/login", d.Auth.Login, limit)
	e.POST("/professional/register", d.Auth.RegisterProfessional, limit)
	e.POST("/professional/login", d.Auth.LoginProfessional, limit)

	e.GET("/me", d.Auth.Me, authenticated(d)...)
}
