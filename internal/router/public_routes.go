package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-marketplace/internal/middleware"
)

// RegisterPublic registers the guest-readable catalog.  Responses are
// cached under the cache generation, which every catalog or review write
// bumps.
func RegisterPublic(e *echo.Echo, d Deps) {
	cached := middleware.NewRedisCache(d.Cfg.Cache, d.Redis, d.Gen)

	e.GET("/services", d.Services.List, cached)
	e.GET("/reviews/service/:id", d.Reviews.ForService, cached)
	e.GET("/professionals/:id", d.Professionals.Profile, cached)
}
