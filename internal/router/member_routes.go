package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ajbgithub/ticketmatch2-sub000/internal/handler"
	"github.com/ajbgithub/ticketmatch2-sub000/internal/middleware"
)

// RegisterMember registers member-scoped endpoints under /v1.  All routes
// require a valid JWT and the MEMBER or ADMIN role.  Members can submit and
// withdraw postings, mark them traded, view their personal match lists,
// manage their contact profile and post to the lounge chat.  The limit
// middleware throttles the write endpoints.
func RegisterMember(e *echo.Echo, p *handler.PostingHandler, prof *handler.ProfileHandler, chat *handler.ChatHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("MEMBER", "ADMIN"),
	)
	// Note: GET /v1/events, GET /v1/events/:id/postings and
	// GET /v1/events/:id/market are registered on the public router so that
	// guests can browse the market.  Member-specific endpoints begin here.

	// Submit (or replace) the caller's posting for an event and side.
	g.POST("/postings", p.Submit, limit)
	// Withdraw one of the caller's postings.
	g.DELETE("/postings/:id", p.Withdraw)
	// Mark one of the caller's postings as traded.  This removes the
	// posting and bumps the trade counter in one step.
	g.POST("/postings/:id/traded", p.MarkTraded, limit)
	// Every live posting the caller owns, across all events.
	g.GET("/my-postings", p.Mine)
	// Personalized match list for an event: counterpart postings ranked by
	// closeness, with agreed terms computed for each pair.
	g.GET("/events/:id/matches", p.Matches)

	// Contact profile endpoints.  Saving the profile re-stamps the contact
	// snapshot on all of the caller's live postings.
	g.GET("/me/profile", prof.Get)
	g.PUT("/me/profile", prof.Put)

	// Post a message to the lounge chat.  Requires a saved profile so the
	// message carries a display name.
	g.POST("/chat", chat.Post, limit)
}
