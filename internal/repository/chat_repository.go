package repository

import (
    "context"
    "database/sql"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
)

// ChatRepo persists the public marketplace chat.  Messages are
// append-only; the display name is snapshotted at post time like the
// contact fields on postings.
type ChatRepo struct {
    db *sql.DB
}

// NewChatRepo constructs a ChatRepo with the given DB handle.
func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{db: db} }

// Append stores one message and populates its generated ID.
func (r *ChatRepo) Append(ctx context.Context, m *model.ChatMessage) error {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO chat_messages (user_id, display_name, body) VALUES (?, ?, ?)`,
        m.UserID, m.DisplayName, m.Body)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    m.ID = uint64(id)
    return nil
}

// Recent returns the latest messages in chronological order.  limit
// caps the window; zero or negative falls back to 50.
func (r *ChatRepo) Recent(ctx context.Context, limit int) ([]model.ChatMessage, error) {
    if limit <= 0 {
        limit = 50
    }
    const q = `SELECT id, user_id, display_name, body, created_at
               FROM chat_messages ORDER BY id DESC LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.ChatMessage, 0, limit)
    for rows.Next() {
        var m model.ChatMessage
        if err := rows.Scan(&m.ID, &m.UserID, &m.DisplayName, &m.Body, &m.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    // reverse into chronological order for display
    for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
        out[i], out[j] = out[j], out[i]
    }
    return out, nil
}
