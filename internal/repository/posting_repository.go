package repository

import (
    "context"
    "database/sql"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/exchange"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
)

// PostingRepo is the MySQL implementation of exchange.PostingStore.
// The postings table carries a UNIQUE KEY over (user_id, event_id,
// side), which is what enforces the replace-mode invariant: at most
// one live posting per key, with concurrent submits serialized by the
// database rather than by the application.
type PostingRepo struct {
    db *sql.DB
}

// NewPostingRepo returns a new PostingRepo bound to the given database.
func NewPostingRepo(db *sql.DB) *PostingRepo { return &PostingRepo{db: db} }

var _ exchange.PostingStore = (*PostingRepo)(nil)

// DB exposes the underlying handle so callers can open transactions
// spanning multiple repositories.
func (r *PostingRepo) DB() *sql.DB { return r.db }

const postingColumns = `id, user_id, event_id, side, percent, price_cents, description, tickets,
       display_name, phone, email, payment_handle, created_at, updated_at`

// scanPosting reads one postings row.  percent and price_cents are
// nullable because exactly one of them is set per event type.
func scanPosting(row interface{ Scan(...any) error }) (model.Posting, error) {
    var (
        p       model.Posting
        percent sql.NullInt16
        price   sql.NullInt64
        desc    sql.NullString
    )
    err := row.Scan(
        &p.ID, &p.UserID, &p.EventID, &p.Side, &percent, &price, &desc, &p.Tickets,
        &p.DisplayName, &p.Phone, &p.Email, &p.PaymentHandle, &p.CreatedAt, &p.UpdatedAt,
    )
    if err != nil {
        return model.Posting{}, err
    }
    if percent.Valid {
        v := uint8(percent.Int16)
        p.Percent = &v
    }
    if price.Valid {
        v := uint32(price.Int64)
        p.PriceCents = &v
    }
    if desc.Valid {
        p.Description = desc.String
    }
    return p, nil
}

// ListByEvent returns the full live book for one event in arrival
// order.  The ordering matters: the matching engine's stable sort
// breaks distance ties by this order.
func (r *PostingRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Posting, error) {
    const q = `SELECT ` + postingColumns + ` FROM postings WHERE event_id = ? ORDER BY created_at, id`
    return r.list(ctx, q, eventID)
}

// ListByUser returns every live posting owned by the user, across all
// events, newest first.
func (r *PostingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Posting, error) {
    const q = `SELECT ` + postingColumns + ` FROM postings WHERE user_id = ? ORDER BY created_at DESC, id DESC`
    return r.list(ctx, q, userID)
}

func (r *PostingRepo) list(ctx context.Context, query string, arg any) ([]model.Posting, error) {
    rows, err := r.db.QueryContext(ctx, query, arg)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Posting, 0)
    for rows.Next() {
        p, err := scanPosting(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// GetByID returns a single posting or exchange.ErrNotFound.
func (r *PostingRepo) GetByID(ctx context.Context, id uint64) (model.Posting, error) {
    const q = `SELECT ` + postingColumns + ` FROM postings WHERE id = ?`
    p, err := scanPosting(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return model.Posting{}, exchange.ErrNotFound
    }
    return p, err
}

// Upsert performs the replace-mode write.  MySQL reports RowsAffected
// of 1 for a fresh insert and 2 when ON DUPLICATE KEY UPDATE rewrote
// an existing row, which is how the created/replaced outcome is
// distinguished without a second query.  The original row id survives
// a replace; the contract only promises at most one live posting per
// key, not which id remains.
func (r *PostingRepo) Upsert(ctx context.Context, p model.Posting) (uint64, bool, error) {
    const q = `INSERT INTO postings
        (user_id, event_id, side, percent, price_cents, description, tickets,
         display_name, phone, email, payment_handle)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE
         percent = VALUES(percent),
         price_cents = VALUES(price_cents),
         description = VALUES(description),
         tickets = VALUES(tickets),
         display_name = VALUES(display_name),
         phone = VALUES(phone),
         email = VALUES(email),
         payment_handle = VALUES(payment_handle),
         id = LAST_INSERT_ID(id)`
    var percent sql.NullInt16
    if p.Percent != nil {
        percent = sql.NullInt16{Int16: int16(*p.Percent), Valid: true}
    }
    var price sql.NullInt64
    if p.PriceCents != nil {
        price = sql.NullInt64{Int64: int64(*p.PriceCents), Valid: true}
    }
    res, err := r.db.ExecContext(ctx, q,
        p.UserID, p.EventID, p.Side, percent, price, p.Description, p.Tickets,
        p.DisplayName, p.Phone, p.Email, p.PaymentHandle)
    if err != nil {
        return 0, false, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return 0, false, err
    }
    return uint64(id), n > 1, nil
}

// Delete removes a posting.  Missing rows are an error on this write
// path, unlike the read paths.
func (r *PostingRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM postings WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return exchange.ErrNotFound
    }
    return nil
}

// UpdateContacts rewrites the contact snapshot on every live posting
// owned by the user, keeping the snapshot design while reflecting
// profile edits.
func (r *PostingRepo) UpdateContacts(ctx context.Context, userID uint64, c model.Contact) (int64, error) {
    const q = `UPDATE postings
               SET display_name = ?, phone = ?, email = ?, payment_handle = ?
               WHERE user_id = ?`
    res, err := r.db.ExecContext(ctx, q, c.DisplayName, c.Phone, c.Email, c.PaymentHandle, userID)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
