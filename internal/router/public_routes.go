package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ajbgithub/ticketmatch2-sub000/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  These routes expose the event catalog, the redacted order
// book, the market summary, the lounge chat history and the trade counter.
// No JWT or role middleware is applied; the optional cache middleware wraps
// the read-heavy aggregate endpoints so repeated polling stays cheap.
func RegisterPublic(e *echo.Echo, ev *handler.EventHandler, p *handler.PostingHandler, m *handler.MarketHandler, chat *handler.ChatHandler, cache echo.MiddlewareFunc) {
	// List all events, optionally filtered with ?q= on the label.
	e.GET("/v1/events", ev.List)
	// Event details by id.
	e.GET("/v1/events/:id", ev.Get)
	// Publicly view the order book for an event.  Contact details are
	// redacted by the handler so guests can gauge the market without
	// seeing who is behind each posting.
	e.GET("/v1/events/:id/postings", p.Book, cache)
	// Market summary: price distribution, supply/demand curve, clearing
	// percentage and spread.  Cached because it is recomputed from the
	// whole book on every request.
	e.GET("/v1/events/:id/market", m.Summary, cache)
	// Recent lounge chat messages, newest last.  Use ?limit= to bound the
	// window (default 50).
	e.GET("/v1/chat", chat.Recent)
	// Running total of completed trades across all events.
	e.GET("/v1/stats/trades", m.TradeStats)
}
