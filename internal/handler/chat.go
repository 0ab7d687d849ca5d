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
    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/repository"
)

// maxChatBody bounds one chat message; longer posts are rejected.
const maxChatBody = 500

// ChatHandler serves the public marketplace chat: anyone can read,
// authenticated members post under their profile display name.
type ChatHandler struct {
    Chat     *repository.ChatRepo
    Profiles *repository.ProfileRepo
}

// NewChatHandler constructs a ChatHandler and panics on nil deps.
func NewChatHandler(chat *repository.ChatRepo, profiles *repository.ProfileRepo) *ChatHandler {
    if chat == nil || profiles == nil {
        panic("nil dependency passed to NewChatHandler")
    }
    return &ChatHandler{Chat: chat, Profiles: profiles}
}

type chatView struct {
    ID          uint64 `json:"id"`
    DisplayName string `json:"display_name"`
    Body        string `json:"body"`
    CreatedAt   string `json:"created_at"`
}

// Recent handles GET /v1/chat.  The optional ?limit= parameter caps
// the window (default 50).
func (h *ChatHandler) Recent(c echo.Context) error {
    limit := 0
    if s := c.QueryParam("limit"); s != "" {
        n, err := strconv.Atoi(s)
        if err != nil || n < 1 || n > 200 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
        }
        limit = n
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rows, err := h.Chat.Recent(ctx, limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]chatView, 0, len(rows))
    for _, m := range rows {
        out = append(out, chatView{
            ID:          m.ID,
            DisplayName: m.DisplayName,
            Body:        m.Body,
            CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"messages": out})
}

// Post handles POST /v1/chat.  The sender's display name is
// snapshotted from their profile, so a profile is required to chat.
func (h *ChatHandler) Post(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req struct {
        Body string `json:"body"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Body = strings.TrimSpace(req.Body)
    if req.Body == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "message body required"})
    }
    if len(req.Body) > maxChatBody {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "message too long"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    prof, err := h.Profiles.GetProfile(ctx, userID)
    if err != nil {
        if errors.Is(err, exchange.ErrNotFound) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "a profile is required before chatting"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    msg := model.ChatMessage{UserID: userID, DisplayName: prof.DisplayName, Body: req.Body}
    if err := h.Chat.Append(ctx, &msg); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "post failed"})
    }
    return c.JSON(http.StatusCreated, chatView{
        ID:          msg.ID,
        DisplayName: msg.DisplayName,
        Body:        msg.Body,
        CreatedAt:   time.Now().UTC().Format(time.RFC3339),
    })
}
