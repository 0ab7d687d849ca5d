// Package exchange implements the posting lifecycle: validation,
// replace-mode submission, withdrawal, the mark-traded flow and
// profile-driven contact re-sync.  It talks to persistence through
// narrow store interfaces so the rules can be exercised against
// in-memory fakes; the production implementations live in the
// repository package.
package exchange

import (
    "context"
    "errors"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
)

// PostingStore is the posting persistence contract.  Upsert must
// enforce the replace-mode invariant: at most one live posting per
// (user, event, side) key, with the second write superseding the first
// atomically from the caller's point of view.
type PostingStore interface {
    ListByEvent(ctx context.Context, eventID uint64) ([]model.Posting, error)
    ListByUser(ctx context.Context, userID uint64) ([]model.Posting, error)
    GetByID(ctx context.Context, id uint64) (model.Posting, error)
    // Upsert inserts or replaces on the (user, event, side) key and
    // reports which branch occurred along with the surviving row id.
    Upsert(ctx context.Context, p model.Posting) (id uint64, replaced bool, err error)
    Delete(ctx context.Context, id uint64) error
    // UpdateContacts rewrites the contact snapshot on every live
    // posting owned by the user and returns how many rows changed.
    UpdateContacts(ctx context.Context, userID uint64, c model.Contact) (int64, error)
}

// ProfileStore provides the contact fields snapshotted onto postings.
type ProfileStore interface {
    GetProfile(ctx context.Context, userID uint64) (model.Profile, error)
    SaveProfile(ctx context.Context, userID uint64, c model.Contact) error
}

// EventCatalog resolves event ids to their type and face value.
type EventCatalog interface {
    GetEvent(ctx context.Context, id uint64) (model.Event, error)
}

// TradeLedger owns the global traded-tickets counter.  RecordAndWithdraw
// must increment the counter by the posting's ticket count and remove
// the posting as one atomic step; a partial outcome (counter moved but
// posting still live, or the reverse) must never be observable.
type TradeLedger interface {
    RecordAndWithdraw(ctx context.Context, p model.Posting) error
    TotalTraded(ctx context.Context) (uint64, error)
}

// ErrNotFound is the store-agnostic "row does not exist" sentinel the
// interfaces above return; the MySQL implementations translate
// sql.ErrNoRows into it.
var ErrNotFound = errors.New("not found")
