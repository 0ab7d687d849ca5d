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

// ProfileHandler serves the caller's contact profile.  Saving the
// profile also re-syncs the contact snapshot on every live posting the
// user owns, which is the one sanctioned way snapshots change after
// submit.
type ProfileHandler struct {
    Exchange *exchange.Service
    Profiles *repository.ProfileRepo
}

// NewProfileHandler constructs a ProfileHandler and panics on nil deps.
func NewProfileHandler(svc *exchange.Service, profiles *repository.ProfileRepo) *ProfileHandler {
    if svc == nil || profiles == nil {
        panic("nil dependency passed to NewProfileHandler")
    }
    return &ProfileHandler{Exchange: svc, Profiles: profiles}
}

// Get handles GET /v1/me/profile.
func (h *ProfileHandler) Get(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    p, err := h.Profiles.GetProfile(ctx, userID)
    if err != nil {
        if errors.Is(err, exchange.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "no profile yet"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, p.Contact)
}

// Put handles PUT /v1/me/profile: saves the contact fields and
// rewrites the snapshot on all live postings.  The response reports
// how many postings were re-synced.
func (h *ProfileHandler) Put(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req model.Contact
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.DisplayName = strings.TrimSpace(req.DisplayName)
    if req.DisplayName == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "display_name required"})
    }
    // At least one way for a counterpart to reach the poster.
    if strings.TrimSpace(req.Phone) == "" && strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.PaymentHandle) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide a phone, email or payment handle"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    n, err := h.Exchange.SyncContacts(ctx, userID, req)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save profile failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"profile": req, "postings_synced": n})
}
