// Package market implements the matching engine and the order-book
// aggregation for one event.  Everything in this package is a pure
// function over an in-memory snapshot of postings: no I/O, no locks,
// safe to recompute on every store change notification.
package market

import (
    "sort"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
)

// Match pairs one of the requesting user's postings with a compatible
// counterpart and carries the derived terms of the trade.  For
// percentage events AgreedPercent holds the terms (always the seller's
// floor); for market events AgreedPriceCents holds the midpoint price.
type Match struct {
    Mine        model.Posting
    Counterpart model.Posting

    AgreedPercent    uint8
    AgreedPriceCents uint32
    AgreedTickets    uint32
}

// Distance is the gap between the two sides' stated terms, in percent
// points for percentage events and in cents for market events.  It is
// the ranking key: closer agreement sorts first.
func (m Match) Distance() int {
    if m.Mine.Percent != nil && m.Counterpart.Percent != nil {
        return absInt(int(*m.Mine.Percent) - int(*m.Counterpart.Percent))
    }
    if m.Mine.PriceCents != nil && m.Counterpart.PriceCents != nil {
        return absInt(int(*m.Mine.PriceCents) - int(*m.Counterpart.PriceCents))
    }
    return 0
}

// Options tunes the engine output without changing compatibility rules.
type Options struct {
    // MaxPerPosting caps how many counterparts are returned for each of
    // the caller's postings.  Zero means unbounded, which is the
    // default product behaviour.
    MaxPerPosting int
}

// ComputeMatches returns every compatible counterpart for each posting
// the given user holds in the given event, closest agreement first.
// Filtering is the engine's job: callers pass the full posting set and
// the engine partitions by event and by owner.  A posting never matches
// itself or another posting of the same owner.
func ComputeMatches(ownerID uint64, ev model.Event, postings []model.Posting, opts Options) []Match {
    var mine, others []model.Posting
    for _, p := range postings {
        if p.EventID != ev.ID {
            continue
        }
        if p.UserID == ownerID {
            mine = append(mine, p)
        } else {
            others = append(others, p)
        }
    }
    if len(mine) == 0 {
        return nil
    }

    out := make([]Match, 0, len(mine))
    for _, m := range mine {
        cands := compatible(ev.Type, m, others)
        // Stable sort keeps arrival order for equal distances.
        sort.SliceStable(cands, func(i, j int) bool {
            return cands[i].Distance() < cands[j].Distance()
        })
        if opts.MaxPerPosting > 0 && len(cands) > opts.MaxPerPosting {
            cands = cands[:opts.MaxPerPosting]
        }
        out = append(out, cands...)
    }
    return out
}

// compatible returns the matches m can form against the counter side of
// the book, with the agreed terms already derived.
func compatible(t model.EventType, m model.Posting, others []model.Posting) []Match {
    var cands []Match
    for _, o := range others {
        if o.Side != m.Side.Opposite() {
            continue
        }
        switch t {
        case model.EventPercent:
            if m.Percent == nil || o.Percent == nil {
                continue
            }
            buyer, seller := orient(m, o)
            // The buyer's ceiling must meet or exceed the seller's floor.
            if *buyer.Percent < *seller.Percent {
                continue
            }
            cands = append(cands, Match{
                Mine:        m,
                Counterpart: o,
                // min of ceiling and floor; compatibility already
                // guaranteed this is the seller's floor, so the buyer
                // never pays above their ceiling and the seller is
                // never upcharged past their ask.
                AgreedPercent: minU8(*m.Percent, *o.Percent),
                AgreedTickets: minU32(m.Tickets, o.Tickets),
            })
        case model.EventMarket:
            // Explicit-price events have no ceiling/floor semantics:
            // every opposite-side posting is a candidate.
            if m.PriceCents == nil || o.PriceCents == nil {
                continue
            }
            cands = append(cands, Match{
                Mine:             m,
                Counterpart:      o,
                AgreedPriceCents: midpointCents(*m.PriceCents, *o.PriceCents),
                AgreedTickets:    minU32(m.Tickets, o.Tickets),
            })
        }
    }
    return cands
}

// orient returns (buyer, seller) for a pair known to be on opposite sides.
func orient(a, b model.Posting) (model.Posting, model.Posting) {
    if a.Side == model.SideBuyer {
        return a, b
    }
    return b, a
}

// midpointCents averages two cent amounts, rounding a half cent up.
// Both sides stated willingness rather than a bound, so the agreed
// price splits the difference instead of taking a min.
func midpointCents(a, b uint32) uint32 {
    return (a + b + 1) / 2
}

// TierPolicy is a product-level visibility restriction layered on top
// of the engine's full output: subscription tiers may narrow matches to
// a tolerance band around the user's own terms and cap how many are
// shown.  It is a post-filter, not part of compatibility.
type TierPolicy struct {
    // Tolerance keeps only matches whose Distance is at most this many
    // percent points (or cents for market events).  Negative disables
    // the band.
    Tolerance int
    // MaxMatches caps the total matches shown.  Zero means unbounded.
    MaxMatches int
}

// Apply filters the engine output according to the tier.  The input
// order (closest first) is preserved.
func (tp TierPolicy) Apply(matches []Match) []Match {
    out := matches
    if tp.Tolerance >= 0 {
        out = out[:0:0]
        for _, m := range matches {
            if m.Distance() <= tp.Tolerance {
                out = append(out, m)
            }
        }
    }
    if tp.MaxMatches > 0 && len(out) > tp.MaxMatches {
        out = out[:tp.MaxMatches]
    }
    return out
}

func absInt(v int) int {
    if v < 0 {
        return -v
    }
    return v
}

func minU8(a, b uint8) uint8 {
    if a < b {
        return a
    }
    return b
}

func minU32(a, b uint32) uint32 {
    if a < b {
        return a
    }
    return b
}
