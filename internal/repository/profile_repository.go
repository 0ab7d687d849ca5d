package repository

import (
    "context"
    "database/sql"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/exchange"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
)

// ProfileRepo is the MySQL implementation of exchange.ProfileStore.
// Profiles are keyed by user_id; SaveProfile is an upsert so a user's
// first profile edit creates the row.
type ProfileRepo struct {
    db *sql.DB
}

// NewProfileRepo constructs a ProfileRepo with the given DB handle.
func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

var _ exchange.ProfileStore = (*ProfileRepo)(nil)

// GetProfile returns the user's profile or exchange.ErrNotFound when
// the user has never filled one in.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID uint64) (model.Profile, error) {
    const q = `SELECT user_id, display_name, phone, email, payment_handle, updated_at
               FROM profiles WHERE user_id = ?`
    var p model.Profile
    err := r.db.QueryRowContext(ctx, q, userID).Scan(
        &p.UserID, &p.DisplayName, &p.Phone, &p.Email, &p.PaymentHandle, &p.UpdatedAt)
    if err == sql.ErrNoRows {
        return model.Profile{}, exchange.ErrNotFound
    }
    return p, err
}

// SaveProfile creates or rewrites the user's contact fields.
func (r *ProfileRepo) SaveProfile(ctx context.Context, userID uint64, c model.Contact) error {
    const q = `INSERT INTO profiles (user_id, display_name, phone, email, payment_handle)
               VALUES (?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE
                display_name = VALUES(display_name),
                phone = VALUES(phone),
                email = VALUES(email),
                payment_handle = VALUES(payment_handle)`
    _, err := r.db.ExecContext(ctx, q, userID, c.DisplayName, c.Phone, c.Email, c.PaymentHandle)
    return err
}
