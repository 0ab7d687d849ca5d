package model

import "time"

// Side identifies which half of the book a posting sits on.  A user may
// hold one live posting per side per event; the two sides are
// independent of each other.
type Side string

const (
    // SideBuyer marks a posting as a buy intent.  For percentage
    // events the percent field is the buyer's ceiling.
    SideBuyer Side = "BUYER"
    // SideSeller marks a posting as a sell intent.  For percentage
    // events the percent field is the seller's floor.
    SideSeller Side = "SELLER"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool { return s == SideBuyer || s == SideSeller }

// Opposite returns the counter side, used when scanning the book for
// candidate matches.
func (s Side) Opposite() Side {
    if s == SideBuyer {
        return SideSeller
    }
    return SideBuyer
}

// Posting is a single buy or sell intent for one event, owned by one
// user.  Exactly one of Percent or PriceCents carries the terms,
// depending on the owning event's type: percentage events use Percent
// (fraction of face value, 0–100), market events use PriceCents (an
// explicit amount) plus a free-text description.
//
// Contact fields are a snapshot of the owner's profile taken at submit
// time, not a live reference.  Editing a profile re-syncs the snapshot
// on every live posting the user owns.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – owner of the posting; matching never pairs two
//                  postings with the same UserID.
//  EventID       – event the posting belongs to.
//  Side          – BUYER or SELLER; immutable after creation.
//  Percent       – ceiling/floor as a percent of face value (0–100),
//                  nil for market postings.
//  PriceCents    – explicit asking/offering price in cents, nil for
//                  percentage postings.
//  Description   – free text shown alongside market postings.
//  Tickets       – ticket count; the product currently pins this to 1
//                  but the schema allows more.
//  DisplayName   – contact snapshot: name shown to the counterpart.
//  Phone         – contact snapshot: SMS number.
//  Email         – contact snapshot: email address.
//  PaymentHandle – contact snapshot: Venmo or similar handle.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp (replace or contact sync).
type Posting struct {
    ID            uint64    // postings.id
    UserID        uint64    // postings.user_id
    EventID       uint64    // postings.event_id
    Side          Side      // postings.side
    Percent       *uint8    // postings.percent (nullable)
    PriceCents    *uint32   // postings.price_cents (nullable)
    Description   string    // postings.description
    Tickets       uint32    // postings.tickets
    DisplayName   string    // postings.display_name
    Phone         string    // postings.phone
    Email         string    // postings.email
    PaymentHandle string    // postings.payment_handle
    CreatedAt     time.Time // postings.created_at
    UpdatedAt     time.Time // postings.updated_at
}
