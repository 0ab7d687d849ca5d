package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/exchange"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
)

// EventRepo is the MySQL implementation of exchange.EventCatalog plus
// the admin-side create/list operations the catalog endpoints use.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

var _ exchange.EventCatalog = (*EventRepo)(nil)

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
    var (
        ev   model.Event
        face sql.NullInt64
    )
    if err := row.Scan(&ev.ID, &ev.Label, &ev.Type, &face, &ev.CreatedAt); err != nil {
        return model.Event{}, err
    }
    if face.Valid {
        v := uint32(face.Int64)
        ev.FaceValueCents = &v
    }
    return ev, nil
}

// GetEvent returns one catalog entry or exchange.ErrNotFound.
func (r *EventRepo) GetEvent(ctx context.Context, id uint64) (model.Event, error) {
    const q = `SELECT id, label, type, face_value_cents, created_at FROM events WHERE id = ?`
    ev, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return model.Event{}, exchange.ErrNotFound
    }
    return ev, err
}

// List returns catalog entries, optionally filtered by a
// case-insensitive label substring, oldest first.
func (r *EventRepo) List(ctx context.Context, labelQuery string) ([]model.Event, error) {
    q := `SELECT id, label, type, face_value_cents, created_at FROM events`
    var args []any
    if s := strings.TrimSpace(labelQuery); s != "" {
        q += ` WHERE LOWER(label) LIKE ?`
        args = append(args, "%"+strings.ToLower(s)+"%")
    }
    q += ` ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Event, 0)
    for rows.Next() {
        ev, err := scanEvent(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, ev)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Create inserts a catalog entry and populates its generated ID.
// FaceValueCents must be set for PERCENT events and nil for MARKET
// events; the handler validates this before calling.  Labels are
// unique; a duplicate insert returns ErrConflict.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
    var face sql.NullInt64
    if ev.FaceValueCents != nil {
        face = sql.NullInt64{Int64: int64(*ev.FaceValueCents), Valid: true}
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO events (label, type, face_value_cents) VALUES (?, ?, ?)`,
        ev.Label, ev.Type, face)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrConflict
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    ev.ID = uint64(id)
    return nil
}
