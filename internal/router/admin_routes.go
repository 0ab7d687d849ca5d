package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/ajbgithub/ticketmatch2-sub000/internal/handler"    // admin handlers
	"github.com/ajbgithub/ticketmatch2-sub000/internal/middleware" // JWT + role middlewares
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1.
// All routes require a valid JWT and ADMIN role.
func RegisterAdmin(e *echo.Echo, ev *handler.EventHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Events ----
	// NOTE: Listing and fetching events is handled by the public browse API.
	// Admins only manage the catalog itself.
	g.POST("/events", ev.Create)
}
