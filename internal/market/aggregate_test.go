package market

import (
    "testing"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
)

func book(eventID uint64, sellers, buyers []uint8) []model.Posting {
    var out []model.Posting
    id := uint64(1)
    user := uint64(100)
    for _, v := range sellers {
        out = append(out, model.Posting{ID: id, UserID: user, EventID: eventID, Side: model.SideSeller, Percent: pct(v), Tickets: 1})
        id++
        user++
    }
    for _, v := range buyers {
        out = append(out, model.Posting{ID: id, UserID: user, EventID: eventID, Side: model.SideBuyer, Percent: pct(v), Tickets: 1})
        id++
        user++
    }
    return out
}

func curveAt(s Summary, p uint8) CurvePoint { return s.Curve[int(p)] }

func TestDistributionBuckets(t *testing.T) {
    s := Summarize(1, book(1,
        []uint8{50, 55, 62, 95, 100},
        []uint8{49, 70, 79, 100, 100},
    ))
    if len(s.Distribution) != 6 {
        t.Fatalf("expected 6 buckets, got %d", len(s.Distribution))
    }

    byLabel := map[string]BucketCount{}
    for _, b := range s.Distribution {
        byLabel[b.Label] = b
    }

    if b := byLabel["50-59"]; b.Sellers != -2 || b.Buyers != 0 {
        t.Errorf("50-59 = %+v, want sellers -2 buyers 0", b)
    }
    if b := byLabel["60-69"]; b.Sellers != -1 {
        t.Errorf("60-69 = %+v, want sellers -1", b)
    }
    if b := byLabel["70-79"]; b.Buyers != 2 {
        t.Errorf("70-79 = %+v, want buyers 2", b)
    }
    if b := byLabel["90-99"]; b.Sellers != -1 {
        t.Errorf("90-99 = %+v, want sellers -1", b)
    }
    // percent=100 lands in the dedicated bucket, never in 90-99
    if b := byLabel["100"]; b.Sellers != -1 || b.Buyers != 2 {
        t.Errorf("100 = %+v, want sellers -1 buyers 2", b)
    }
    if b := byLabel["90-99"]; b.Buyers != 0 {
        t.Errorf("buyer at 100 leaked into 90-99: %+v", b)
    }
    // the sub-50 buyer is dropped entirely
    total := 0
    for _, b := range s.Distribution {
        total += b.Buyers
    }
    if total != 4 {
        t.Errorf("charted buyers = %d, want 4 (49 dropped)", total)
    }
}

func TestCurveCumulativeCounts(t *testing.T) {
    s := Summarize(1, book(1, []uint8{50, 55, 60}, []uint8{55, 60, 65}))

    if p := curveAt(s, 55); p.Supply != 2 || p.Demand != 3 || p.Matched != 2 {
        t.Errorf("p=55: %+v, want supply 2 demand 3 matched 2", p)
    }
    if p := curveAt(s, 60); p.Supply != 3 || p.Demand != 2 || p.Matched != 2 {
        t.Errorf("p=60: %+v, want supply 3 demand 2 matched 2", p)
    }
    if p := curveAt(s, 0); p.Supply != 0 || p.Demand != 3 {
        t.Errorf("p=0: %+v, want supply 0 demand 3", p)
    }
    if p := curveAt(s, 100); p.Supply != 3 || p.Demand != 0 {
        t.Errorf("p=100: %+v, want supply 3 demand 0", p)
    }
}

func TestClearingPrefersVolumeThenBalanceThenHigherPrice(t *testing.T) {
    // sellers 50/55/60 vs buyers 55/60/65: matched peaks at 2 for
    // p in [55,60]; balance is equal (|2-3|=1 at 55... ) — verify the
    // engine lands on the documented point deterministically.
    s := Summarize(1, book(1, []uint8{50, 55, 60}, []uint8{55, 60, 65}))

    // enumerate expectations at the candidate points
    if p := curveAt(s, 55); p.Matched != 2 {
        t.Fatalf("matched(55) = %d, want 2", p.Matched)
    }
    best := s.Clearing
    if best.Matched != 2 {
        t.Fatalf("clearing matched = %d, want 2", best.Matched)
    }
    // At p=56..59 supply=2 demand=2 (|Δ|=0); at 55 |Δ|=1, at 60 |Δ|=1.
    // Balance prefers the 56..59 plateau and the largest-p rule picks 59.
    if best.Percent != 59 {
        t.Errorf("clearing percent = %d, want 59", best.Percent)
    }
    // Matched sellers are 50 and 55 (avg 52.5); spread = 59 - 52.5.
    if best.Spread != 6.5 {
        t.Errorf("clearing spread = %v, want 6.5", best.Spread)
    }
}

func TestClearingDisjointBook(t *testing.T) {
    // Sellers asking above every buyer's ceiling: matched(p) = 0 on
    // the whole grid.  The balance tie-break then picks the plateau
    // where supply and demand are both zero (61–69 here) and the
    // largest-p rule resolves to its top.
    s := Summarize(1, book(1, []uint8{70, 80}, []uint8{50, 60}))
    for _, p := range s.Curve {
        if p.Matched != 0 {
            t.Fatalf("matched(%d) = %d, want 0", p.Percent, p.Matched)
        }
    }
    if s.Clearing.Percent != 69 {
        t.Errorf("clearing percent = %d, want 69", s.Clearing.Percent)
    }
    if s.Clearing.Spread != 0 {
        t.Errorf("spread = %v, want 0 with no matched volume", s.Clearing.Spread)
    }
}

func TestClearingLargestPriceTieBreak(t *testing.T) {
    // Empty book: matched and imbalance are identical everywhere, so
    // the final tie-break must resolve to the largest grid point.
    s := Summarize(1, nil)
    if s.Clearing.Percent != 100 {
        t.Errorf("empty-book clearing = %d, want 100", s.Clearing.Percent)
    }
    if s.Clearing.Matched != 0 || s.Clearing.Spread != 0 {
        t.Errorf("empty-book clearing = %+v", s.Clearing)
    }
}

func TestSpreadNeverNegative(t *testing.T) {
    // Single crossed pair: seller 80, buyer 80 clears at 80 with the
    // matched seller exactly at the clearing point.
    s := Summarize(1, book(1, []uint8{80}, []uint8{80}))
    if s.Clearing.Matched != 1 {
        t.Fatalf("matched = %d, want 1", s.Clearing.Matched)
    }
    if s.Clearing.Spread < 0 {
        t.Errorf("spread = %v, must not be negative", s.Clearing.Spread)
    }
}

func TestSummarizeIgnoresOtherEventsAndMarketRows(t *testing.T) {
    b := book(1, []uint8{60}, []uint8{70})
    stray := model.Posting{ID: 99, UserID: 999, EventID: 2, Side: model.SideSeller, Percent: pct(60), Tickets: 1}
    priced := model.Posting{ID: 98, UserID: 998, EventID: 1, Side: model.SideSeller, PriceCents: cents(1500), Tickets: 1}
    s := Summarize(1, append(b, stray, priced))
    if p := curveAt(s, 100); p.Supply != 1 {
        t.Errorf("supply(100) = %d, want 1 (stray rows must be ignored)", p.Supply)
    }
}
