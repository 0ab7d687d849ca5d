package model

import "time"

// EventType selects which matching and aggregation rules apply to an
// event's postings.
type EventType string

const (
    // EventPercent events trade at a percent of a fixed face value;
    // buyers state a ceiling and sellers a floor.
    EventPercent EventType = "PERCENT"
    // EventMarket events trade at explicit prices with no ceiling or
    // floor semantics; any buyer/seller pair is compatible.
    EventMarket EventType = "MARKET"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool { return t == EventPercent || t == EventMarket }

// Event is one entry of the event catalog.  FaceValueCents is set only
// for PERCENT events and is used to convert an agreed percent into a
// currency amount for display.
//
// Fields:
//  ID             – primary key identifier.
//  Label          – human-readable name (e.g. "Homecoming Game").
//  Type           – PERCENT or MARKET.
//  FaceValueCents – face value of one ticket in cents (nil for MARKET).
//  CreatedAt      – creation timestamp.
type Event struct {
    ID             uint64    // events.id
    Label          string    // events.label
    Type           EventType // events.type
    FaceValueCents *uint32   // events.face_value_cents (nullable)
    CreatedAt      time.Time // events.created_at
}
