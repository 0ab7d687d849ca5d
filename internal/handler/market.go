package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/exchange"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/repository"
)

// MarketHandler serves the public-facing aggregation of an event's
// order book (histogram, supply/demand curve, clearing point) and the
// global trade statistics.  Both are read-only snapshot computations,
// so the routes sit behind the Redis response cache.
type MarketHandler struct {
    Exchange *exchange.Service
    Trades   *repository.TradeRepo
}

// NewMarketHandler constructs a MarketHandler and panics on nil deps.
func NewMarketHandler(svc *exchange.Service, trades *repository.TradeRepo) *MarketHandler {
    if svc == nil || trades == nil {
        panic("nil dependency passed to NewMarketHandler")
    }
    return &MarketHandler{Exchange: svc, Trades: trades}
}

// Summary handles GET /v1/events/:id/market.  Unknown events return
// the empty summary shape rather than a 404: the aggregation is a read
// and the charts render fine on zeroes.
func (h *MarketHandler) Summary(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    sum, err := h.Exchange.Summary(ctx, eventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "summary failed"})
    }
    return c.JSON(http.StatusOK, sum)
}

// TradeStats handles GET /v1/stats/trades: the process-wide count of
// tickets traded through the marketplace.
func (h *MarketHandler) TradeStats(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    total, err := h.Trades.TotalTraded(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"tickets_traded": total})
}
