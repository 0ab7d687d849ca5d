// Package queue defines message payloads exchanged over the message broker.
package queue

// TradeRecordedEvent is published when a posting is marked traded.
// It carries enough information for downstream consumers to log or
// feed analytics without querying the primary database.  The contact
// snapshot is deliberately excluded: trades are public signals, the
// parties' details are not.
type TradeRecordedEvent struct {
    PostingID uint64 `json:"posting_id"`
    UserID    uint64 `json:"user_id"`
    EventID   uint64 `json:"event_id"`
    Side      string `json:"side"`
    Tickets   uint32 `json:"tickets"`
    TradedAt  string `json:"traded_at"`
}
