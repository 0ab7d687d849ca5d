package market

import (
    "testing"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
)

func pct(v uint8) *uint8     { return &v }
func cents(v uint32) *uint32 { return &v }

var (
    pctEvent    = model.Event{ID: 1, Label: "Homecoming", Type: model.EventPercent, FaceValueCents: cents(5000)}
    marketEvent = model.Event{ID: 2, Label: "Spring Concert", Type: model.EventMarket}
)

func pctPosting(id, user uint64, side model.Side, percent uint8) model.Posting {
    return model.Posting{ID: id, UserID: user, EventID: pctEvent.ID, Side: side, Percent: pct(percent), Tickets: 1}
}

func marketPosting(id, user uint64, side model.Side, priceCents uint32) model.Posting {
    return model.Posting{ID: id, UserID: user, EventID: marketEvent.ID, Side: side, PriceCents: cents(priceCents), Tickets: 1}
}

func TestBuyerMatchesSellerAtOrBelowCeiling(t *testing.T) {
    book := []model.Posting{
        pctPosting(1, 10, model.SideBuyer, 80),
        pctPosting(2, 20, model.SideSeller, 70),
        pctPosting(3, 30, model.SideSeller, 80),
        pctPosting(4, 40, model.SideSeller, 90), // above ceiling, incompatible
    }
    ms := ComputeMatches(10, pctEvent, book, Options{})
    if len(ms) != 2 {
        t.Fatalf("expected 2 matches, got %d", len(ms))
    }
    for _, m := range ms {
        if *m.Counterpart.Percent > *m.Mine.Percent {
            t.Errorf("matched seller floor %d above buyer ceiling %d", *m.Counterpart.Percent, *m.Mine.Percent)
        }
    }
}

func TestSellerSideIsSymmetric(t *testing.T) {
    book := []model.Posting{
        pctPosting(1, 10, model.SideSeller, 70),
        pctPosting(2, 20, model.SideBuyer, 60), // below floor, incompatible
        pctPosting(3, 30, model.SideBuyer, 75),
    }
    ms := ComputeMatches(10, pctEvent, book, Options{})
    if len(ms) != 1 {
        t.Fatalf("expected 1 match, got %d", len(ms))
    }
    if ms[0].Counterpart.ID != 3 {
        t.Errorf("expected counterpart 3, got %d", ms[0].Counterpart.ID)
    }
}

func TestNoSelfOrSameOwnerMatch(t *testing.T) {
    // User 10 holds both sides of the same event; neither may pair
    // with the other even though the terms overlap.
    book := []model.Posting{
        pctPosting(1, 10, model.SideBuyer, 90),
        pctPosting(2, 10, model.SideSeller, 50),
        pctPosting(3, 20, model.SideSeller, 60),
    }
    ms := ComputeMatches(10, pctEvent, book, Options{})
    for _, m := range ms {
        if m.Mine.UserID == m.Counterpart.UserID {
            t.Fatalf("match pairs two postings of user %d", m.Mine.UserID)
        }
    }
    // The buyer should still see the other user's seller.
    if len(ms) != 1 || ms[0].Mine.ID != 1 || ms[0].Counterpart.ID != 3 {
        t.Fatalf("unexpected match set: %+v", ms)
    }
}

func TestAgreedPercentIsSellerFloor(t *testing.T) {
    book := []model.Posting{
        pctPosting(1, 10, model.SideBuyer, 95),
        pctPosting(2, 20, model.SideSeller, 70),
    }
    ms := ComputeMatches(10, pctEvent, book, Options{})
    if len(ms) != 1 {
        t.Fatalf("expected 1 match, got %d", len(ms))
    }
    if ms[0].AgreedPercent != 70 {
        t.Errorf("agreed percent = %d, want seller floor 70", ms[0].AgreedPercent)
    }
    if ms[0].AgreedPercent > *ms[0].Mine.Percent {
        t.Errorf("agreed percent %d exceeds buyer ceiling %d", ms[0].AgreedPercent, *ms[0].Mine.Percent)
    }
}

func TestRankingClosestAgreementFirst(t *testing.T) {
    book := []model.Posting{
        pctPosting(1, 10, model.SideBuyer, 80),
        pctPosting(2, 20, model.SideSeller, 55),
        pctPosting(3, 30, model.SideSeller, 78),
        pctPosting(4, 40, model.SideSeller, 70),
    }
    ms := ComputeMatches(10, pctEvent, book, Options{})
    want := []uint64{3, 4, 2} // distances 2, 10, 25
    if len(ms) != len(want) {
        t.Fatalf("expected %d matches, got %d", len(want), len(ms))
    }
    for i, id := range want {
        if ms[i].Counterpart.ID != id {
            t.Errorf("rank %d: counterpart = %d, want %d", i, ms[i].Counterpart.ID, id)
        }
    }
}

func TestRankingTieKeepsArrivalOrder(t *testing.T) {
    // Two sellers at the same distance from the buyer; the earlier
    // posting must come first (stable sort).
    book := []model.Posting{
        pctPosting(1, 10, model.SideBuyer, 80),
        pctPosting(2, 20, model.SideSeller, 75),
        pctPosting(3, 30, model.SideSeller, 75),
    }
    ms := ComputeMatches(10, pctEvent, book, Options{})
    if len(ms) != 2 {
        t.Fatalf("expected 2 matches, got %d", len(ms))
    }
    if ms[0].Counterpart.ID != 2 || ms[1].Counterpart.ID != 3 {
        t.Errorf("tie broken against arrival order: %d then %d", ms[0].Counterpart.ID, ms[1].Counterpart.ID)
    }
}

func TestMarketEventMatchesEveryOppositeSide(t *testing.T) {
    book := []model.Posting{
        marketPosting(1, 10, model.SideBuyer, 2000),
        marketPosting(2, 20, model.SideSeller, 9000), // far apart, still compatible
        marketPosting(3, 30, model.SideSeller, 2500),
        marketPosting(4, 40, model.SideBuyer, 2100), // same side, never a candidate
    }
    ms := ComputeMatches(10, marketEvent, book, Options{})
    if len(ms) != 2 {
        t.Fatalf("expected 2 matches, got %d", len(ms))
    }
    if ms[0].Counterpart.ID != 3 {
        t.Errorf("closest price should rank first, got counterpart %d", ms[0].Counterpart.ID)
    }
}

func TestMidpointRoundsHalfCentUp(t *testing.T) {
    // $100.00 and $101.00 average to $100.50 exactly.
    if got := midpointCents(10000, 10100); got != 10050 {
        t.Errorf("midpoint(10000, 10100) = %d, want 10050", got)
    }
    // Odd cent sums produce a half cent, which rounds up.
    if got := midpointCents(100, 101); got != 101 {
        t.Errorf("midpoint(100, 101) = %d, want 101", got)
    }
    if got := midpointCents(100, 100); got != 100 {
        t.Errorf("midpoint(100, 100) = %d, want 100", got)
    }
}

func TestEmptyAndNoCandidateCases(t *testing.T) {
    if ms := ComputeMatches(10, pctEvent, nil, Options{}); len(ms) != 0 {
        t.Errorf("empty book produced %d matches", len(ms))
    }
    // A posting with no compatible counterpart contributes zero
    // matches without being an error.
    book := []model.Posting{
        pctPosting(1, 10, model.SideBuyer, 50),
        pctPosting(2, 20, model.SideSeller, 99),
    }
    if ms := ComputeMatches(10, pctEvent, book, Options{}); len(ms) != 0 {
        t.Errorf("incompatible book produced %d matches", len(ms))
    }
}

func TestPostingsFromOtherEventsIgnored(t *testing.T) {
    other := pctPosting(2, 20, model.SideSeller, 50)
    other.EventID = 99
    book := []model.Posting{
        pctPosting(1, 10, model.SideBuyer, 90),
        other,
    }
    if ms := ComputeMatches(10, pctEvent, book, Options{}); len(ms) != 0 {
        t.Errorf("cross-event match produced: %d", len(ms))
    }
}

func TestMaxPerPostingCap(t *testing.T) {
    book := []model.Posting{
        pctPosting(1, 10, model.SideBuyer, 90),
        pctPosting(2, 20, model.SideSeller, 88),
        pctPosting(3, 30, model.SideSeller, 85),
        pctPosting(4, 40, model.SideSeller, 70),
    }
    ms := ComputeMatches(10, pctEvent, book, Options{MaxPerPosting: 2})
    if len(ms) != 2 {
        t.Fatalf("cap ignored: got %d matches", len(ms))
    }
    if ms[0].Counterpart.ID != 2 || ms[1].Counterpart.ID != 3 {
        t.Errorf("cap kept the wrong candidates: %d, %d", ms[0].Counterpart.ID, ms[1].Counterpart.ID)
    }
}

func TestTierPolicyPostFilter(t *testing.T) {
    book := []model.Posting{
        pctPosting(1, 10, model.SideBuyer, 90),
        pctPosting(2, 20, model.SideSeller, 88), // distance 2
        pctPosting(3, 30, model.SideSeller, 80), // distance 10
        pctPosting(4, 40, model.SideSeller, 60), // distance 30
    }
    full := ComputeMatches(10, pctEvent, book, Options{})
    if len(full) != 3 {
        t.Fatalf("expected 3 raw matches, got %d", len(full))
    }

    banded := TierPolicy{Tolerance: 10}.Apply(full)
    if len(banded) != 2 {
        t.Fatalf("tolerance band kept %d matches, want 2", len(banded))
    }

    capped := TierPolicy{Tolerance: -1, MaxMatches: 1}.Apply(full)
    if len(capped) != 1 || capped[0].Counterpart.ID != 2 {
        t.Fatalf("cap should keep only the closest match, got %+v", capped)
    }
}

func TestMultipleOwnPostingsMatchedIndependently(t *testing.T) {
    // A user holding both a buyer and a seller posting gets matches
    // for each against the rest of the book.
    book := []model.Posting{
        pctPosting(1, 10, model.SideBuyer, 85),
        pctPosting(2, 10, model.SideSeller, 70),
        pctPosting(3, 20, model.SideSeller, 80),
        pctPosting(4, 30, model.SideBuyer, 75),
    }
    ms := ComputeMatches(10, pctEvent, book, Options{})
    if len(ms) != 2 {
        t.Fatalf("expected 2 matches, got %d", len(ms))
    }
    if ms[0].Mine.ID != 1 || ms[0].Counterpart.ID != 3 {
        t.Errorf("buyer posting matched wrong: %+v", ms[0])
    }
    if ms[1].Mine.ID != 2 || ms[1].Counterpart.ID != 4 {
        t.Errorf("seller posting matched wrong: %+v", ms[1])
    }
}

func TestAgreedTicketsIsMin(t *testing.T) {
    buyer := pctPosting(1, 10, model.SideBuyer, 90)
    buyer.Tickets = 3
    seller := pctPosting(2, 20, model.SideSeller, 80)
    seller.Tickets = 2
    ms := ComputeMatches(10, pctEvent, []model.Posting{buyer, seller}, Options{})
    if len(ms) != 1 || ms[0].AgreedTickets != 2 {
        t.Fatalf("agreed tickets = %+v, want 2", ms)
    }
}
