// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/local-services-marketplace/internal/cache"
	"github.com/iliyamo/local-services-marketplace/internal/config"
	"github.com/iliyamo/local-services-marketplace/internal/handler"
	"github.com/iliyamo/local-services-marketplace/internal/middleware"
)

// Deps is everything the HTTP surface needs.  Redis and Gen may be nil;
// rate limiting, caching and idempotency are then disabled.
type Deps struct {
	Cfg      config.Config
	Log      zerolog.Logger
	Redis    *redis.Client
	Gen      *cache.Generation
	DB       handler.Pinger
	Resolver middleware.Resolver

	Auth          *handler.AuthHandler
	Services      *handler.ServiceHandler
	Bookings      *handler.BookingHandler
	Reviews       *handler.ReviewHandler
	Professionals *handler.ProfessionalHandler
	Support       *handler.SupportHandler
}

// New builds the echo instance with global middleware and every route.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.ContextLogger(d.Log))
	e.Use(middleware.RequestLogger())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.CORS())

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, d)
	RegisterPublic(e, d)
	RegisterAccount(e, d)
	return e
}

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}

// authenticated is the chain in front of every route that needs an
// account: token check, then role resolution from current data.
func authenticated(d Deps) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(d.Cfg.Auth.JWTSecret),
		middleware.ResolveAccount(d.Resolver),
	}
}

func with(chain []echo.MiddlewareFunc, extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(chain)+len(extra))
	out = append(out, chain...)
	return append(out, extra...)
}
