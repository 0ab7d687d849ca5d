package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/exchange"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/market"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/queue"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/repository"
    publisher "github.com/ajbgithub/ticketmatch2-sub000/internal/service"
)

// PostingHandler exposes the posting lifecycle and the personal match
// list.  All methods assume JWT authentication and role validation
// have already run; they may still return 401 when the user id cannot
// be extracted from the context.
type PostingHandler struct {
    Exchange *exchange.Service
    Postings *repository.PostingRepo
    Events   *repository.EventRepo
}

// NewPostingHandler constructs a PostingHandler and panics if any
// dependency is nil.
func NewPostingHandler(svc *exchange.Service, postings *repository.PostingRepo, events *repository.EventRepo) *PostingHandler {
    if svc == nil || postings == nil || events == nil {
        panic("nil dependency passed to NewPostingHandler")
    }
    return &PostingHandler{Exchange: svc, Postings: postings, Events: events}
}

// ----- DTOs -----

type submitReq struct {
    EventID     uint64  `json:"event_id"`
    Side        string  `json:"side"` // BUYER | SELLER
    Percent     *uint8  `json:"percent,omitempty"`
    PriceCents  *uint32 `json:"price_cents,omitempty"`
    Description string  `json:"description,omitempty"`
    Tickets     uint32  `json:"tickets,omitempty"` // defaults to 1
}

// postingView is the JSON shape of a posting when shown to its owner
// or to a matched counterpart, contact snapshot included.
type postingView struct {
    ID            uint64  `json:"id"`
    UserID        uint64  `json:"user_id"`
    EventID       uint64  `json:"event_id"`
    Side          string  `json:"side"`
    Percent       *uint8  `json:"percent,omitempty"`
    PriceCents    *uint32 `json:"price_cents,omitempty"`
    Description   string  `json:"description,omitempty"`
    Tickets       uint32  `json:"tickets"`
    DisplayName   string  `json:"display_name"`
    Phone         string  `json:"phone"`
    Email         string  `json:"email"`
    PaymentHandle string  `json:"payment_handle"`
    CreatedAt     string  `json:"created_at"`
}

func toPostingView(p model.Posting) postingView {
    return postingView{
        ID:            p.ID,
        UserID:        p.UserID,
        EventID:       p.EventID,
        Side:          string(p.Side),
        Percent:       p.Percent,
        PriceCents:    p.PriceCents,
        Description:   p.Description,
        Tickets:       p.Tickets,
        DisplayName:   p.DisplayName,
        Phone:         p.Phone,
        Email:         p.Email,
        PaymentHandle: p.PaymentHandle,
        CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
    }
}

// matchView is one entry of the personal match list: the caller's
// posting, the counterpart with its contact snapshot (the whole point
// of a match is enabling off-platform contact), the agreed terms and
// the display price derived from the event's face value.
type matchView struct {
    Mine          postingView `json:"mine"`
    Counterpart   postingView `json:"counterpart"`
    AgreedPercent uint8       `json:"agreed_percent,omitempty"`
    AgreedCents   uint32      `json:"agreed_cents"`
    AgreedTickets uint32      `json:"agreed_tickets"`
}

// Submit handles POST /v1/postings.  A fresh posting returns 201; a
// replace-mode overwrite of the caller's previous posting under the
// same (event, side) key returns 200 so the UI can say "updated your
// previous post".
func (h *PostingHandler) Submit(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req submitReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Tickets == 0 {
        req.Tickets = 1 // current product policy posts single tickets
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    receipt, err := h.Exchange.Submit(ctx, userID, exchange.Draft{
        EventID:     req.EventID,
        Side:        model.Side(strings.ToUpper(strings.TrimSpace(req.Side))),
        Percent:     req.Percent,
        PriceCents:  req.PriceCents,
        Description: req.Description,
        Tickets:     req.Tickets,
    })
    if err != nil {
        return submitError(c, err)
    }
    status := http.StatusCreated
    if receipt.Outcome == exchange.OutcomeReplaced {
        status = http.StatusOK
    }
    return c.JSON(status, receipt)
}

// submitError maps lifecycle errors onto HTTP statuses.  Validation
// failures are 400, missing auth 401, unknown event 404.
func submitError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, exchange.ErrUnauthenticated):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
    case errors.Is(err, exchange.ErrUnknownEvent):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, exchange.ErrInvalidSide),
        errors.Is(err, exchange.ErrPercentRange),
        errors.Is(err, exchange.ErrPriceRequired),
        errors.Is(err, exchange.ErrTermsMismatch),
        errors.Is(err, exchange.ErrTickets),
        errors.Is(err, exchange.ErrProfileRequired):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submit failed"})
    }
}

// Mine handles GET /v1/my-postings: every live posting the caller owns.
func (h *PostingHandler) Mine(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rows, err := h.Postings.ListByUser(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]postingView, 0, len(rows))
    for _, p := range rows {
        out = append(out, toPostingView(p))
    }
    return c.JSON(http.StatusOK, echo.Map{"postings": out})
}

// Withdraw handles DELETE /v1/postings/:id.
func (h *PostingHandler) Withdraw(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid posting id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    switch err := h.Exchange.Withdraw(ctx, userID, id); {
    case err == nil:
        return c.NoContent(http.StatusNoContent)
    case errors.Is(err, exchange.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "posting not found"})
    case errors.Is(err, exchange.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "withdraw failed"})
    }
}

// MarkTraded handles POST /v1/postings/:id/traded.  The counter
// increment and the withdrawal are one atomic operation; a partial
// failure surfaces as 409 so the client can retry instead of silently
// losing a trade.  On success a trade.recorded event is published for
// downstream consumers; publish failures are logged, not surfaced.
func (h *PostingHandler) MarkTraded(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid posting id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    p, err := h.Exchange.MarkTraded(ctx, userID, id)
    switch {
    case err == nil:
    case errors.Is(err, exchange.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "posting not found"})
    case errors.Is(err, exchange.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, exchange.ErrTradeInconsistent):
        return c.JSON(http.StatusConflict, echo.Map{"error": "trade not recorded, please retry"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mark traded failed"})
    }

    _ = publisher.PublishTradeRecorded(ctx, queue.TradeRecordedEvent{
        PostingID: p.ID,
        UserID:    p.UserID,
        EventID:   p.EventID,
        Side:      string(p.Side),
        Tickets:   p.Tickets,
        TradedAt:  time.Now().UTC().Format(time.RFC3339),
    })
    return c.JSON(http.StatusOK, echo.Map{"traded": true, "tickets": p.Tickets})
}

// Matches handles GET /v1/events/:id/matches: the caller's personal
// match list, closest agreement first.  The optional ?limit= query
// caps matches per posting; the default is unbounded.
func (h *PostingHandler) Matches(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    eventID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    opts := market.Options{}
    if s := c.QueryParam("limit"); s != "" {
        n, err := strconv.Atoi(s)
        if err != nil || n < 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
        }
        opts.MaxPerPosting = n
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    matches, err := h.Exchange.Matches(ctx, userID, eventID, opts)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "match computation failed"})
    }

    // Convert agreed terms to a displayable cent amount.  Reads of an
    // unknown event fall through with no matches and no face value.
    var face uint32
    if ev, err := h.Events.GetEvent(ctx, eventID); err == nil && ev.FaceValueCents != nil {
        face = *ev.FaceValueCents
    }
    views := make([]matchView, 0, len(matches))
    for _, m := range matches {
        views = append(views, matchView{
            Mine:          toPostingView(m.Mine),
            Counterpart:   toPostingView(m.Counterpart),
            AgreedPercent: m.AgreedPercent,
            AgreedCents:   agreedCents(m, face),
            AgreedTickets: m.AgreedTickets,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"matches": views})
}

// agreedCents converts a match's agreed terms into cents: percent of
// face value for percentage events, the midpoint price otherwise.
func agreedCents(m market.Match, faceValueCents uint32) uint32 {
    if m.AgreedPriceCents != 0 {
        return m.AgreedPriceCents
    }
    return uint32((uint64(faceValueCents)*uint64(m.AgreedPercent) + 50) / 100)
}

// Book handles GET /v1/events/:id/postings: the public order book.
// Contact details stay private until two parties actually match, so
// the public rows carry only terms, side and timing.
func (h *PostingHandler) Book(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rows, err := h.Postings.ListByEvent(ctx, eventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    type bookRow struct {
        ID          uint64  `json:"id"`
        Side        string  `json:"side"`
        Percent     *uint8  `json:"percent,omitempty"`
        PriceCents  *uint32 `json:"price_cents,omitempty"`
        Description string  `json:"description,omitempty"`
        Tickets     uint32  `json:"tickets"`
        CreatedAt   string  `json:"created_at"`
    }
    out := make([]bookRow, 0, len(rows))
    for _, p := range rows {
        out = append(out, bookRow{
            ID:          p.ID,
            Side:        string(p.Side),
            Percent:     p.Percent,
            PriceCents:  p.PriceCents,
            Description: p.Description,
            Tickets:     p.Tickets,
            CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"postings": out})
}
