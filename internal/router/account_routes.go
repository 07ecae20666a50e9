package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-marketplace/internal/middleware"
	"github.com/iliyamo/local-services-marketplace/internal/model"
)

// RegisterAccount registers the routes that act on behalf of an account.
// Ownership and role rules are enforced by the services.
func RegisterAccount(e *echo.Echo, d Deps) {
	auth := authenticated(d)

	e.GET("/services/my", d.Services.Mine, with(auth, middleware.RequireRole(model.RoleProfessional))...)
	e.POST("/services", d.Services.Create, auth...)
	e.PUT("/services/:id", d.Services.Update, auth...)
	e.DELETE("/services/:id", d.Services.Delete, auth...)

	e.POST("/bookings", d.Bookings.Create, with(auth, middleware.Idempotency(d.Cfg.Idempotency, d.Redis))...)
	e.GET("/bookings", d.Bookings.List, auth...)
	e.GET("/bookings/:id", d.Bookings.Get, auth...)
	e.PATCH("/bookings/:id/status", d.Bookings.UpdateStatus, auth...)
	e.PATCH("/bookings/:id/complete", d.Bookings.Complete, auth...)

	e.POST("/reviews", d.Reviews.Submit, auth...)

	e.POST("/support/tickets", d.Support.Open, auth...)
	e.GET("/support/tickets", d.Support.Mine, auth...)
}
