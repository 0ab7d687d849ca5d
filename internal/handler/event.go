package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/exchange"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/repository"
)

// EventHandler serves the public event catalog and the admin create
// endpoint used to stand up new events.
type EventHandler struct {
    Events *repository.EventRepo
}

// NewEventHandler constructs an EventHandler and panics on a nil repo.
func NewEventHandler(events *repository.EventRepo) *EventHandler {
    if events == nil {
        panic("nil repository passed to NewEventHandler")
    }
    return &EventHandler{Events: events}
}

type eventView struct {
    ID             uint64  `json:"id"`
    Label          string  `json:"label"`
    Type           string  `json:"type"`
    FaceValueCents *uint32 `json:"face_value_cents,omitempty"`
}

func toEventView(ev model.Event) eventView {
    return eventView{ID: ev.ID, Label: ev.Label, Type: string(ev.Type), FaceValueCents: ev.FaceValueCents}
}

// List handles GET /v1/events.  The optional ?q= parameter filters by
// a case-insensitive label substring.
func (h *EventHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rows, err := h.Events.List(ctx, c.QueryParam("q"))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]eventView, 0, len(rows))
    for _, ev := range rows {
        out = append(out, toEventView(ev))
    }
    return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ev, err := h.Events.GetEvent(ctx, id)
    if err != nil {
        if errors.Is(err, exchange.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, toEventView(ev))
}

// Create handles POST /v1/events (ADMIN only).  PERCENT events require
// a face value; MARKET events must not carry one.
func (h *EventHandler) Create(c echo.Context) error {
    var req struct {
        Label          string  `json:"label"`
        Type           string  `json:"type"`
        FaceValueCents *uint32 `json:"face_value_cents,omitempty"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Label = strings.TrimSpace(req.Label)
    if req.Label == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "label required"})
    }
    t := model.EventType(strings.ToUpper(strings.TrimSpace(req.Type)))
    if !t.Valid() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be PERCENT or MARKET"})
    }
    if t == model.EventPercent && (req.FaceValueCents == nil || *req.FaceValueCents == 0) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "face_value_cents required for PERCENT events"})
    }
    if t == model.EventMarket && req.FaceValueCents != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "face_value_cents not allowed for MARKET events"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ev := model.Event{Label: req.Label, Type: t, FaceValueCents: req.FaceValueCents}
    if err := h.Events.Create(ctx, &ev); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "an event with this label already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
    }
    return c.JSON(http.StatusCreated, toEventView(ev))
}
