package exchange

import (
    "context"
    "errors"
    "testing"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/market"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
)

// ---- in-memory fakes ----

type fakePostings struct {
    rows   map[uint64]model.Posting
    nextID uint64
}

func newFakePostings() *fakePostings {
    return &fakePostings{rows: map[uint64]model.Posting{}, nextID: 1}
}

func (f *fakePostings) ListByEvent(_ context.Context, eventID uint64) ([]model.Posting, error) {
    var out []model.Posting
    // iterate in id order for deterministic arrival ordering
    for id := uint64(1); id < f.nextID; id++ {
        if p, ok := f.rows[id]; ok && p.EventID == eventID {
            out = append(out, p)
        }
    }
    return out, nil
}

func (f *fakePostings) ListByUser(_ context.Context, userID uint64) ([]model.Posting, error) {
    var out []model.Posting
    for id := uint64(1); id < f.nextID; id++ {
        if p, ok := f.rows[id]; ok && p.UserID == userID {
            out = append(out, p)
        }
    }
    return out, nil
}

func (f *fakePostings) GetByID(_ context.Context, id uint64) (model.Posting, error) {
    p, ok := f.rows[id]
    if !ok {
        return model.Posting{}, ErrNotFound
    }
    return p, nil
}

func (f *fakePostings) Upsert(_ context.Context, p model.Posting) (uint64, bool, error) {
    for id, existing := range f.rows {
        if existing.UserID == p.UserID && existing.EventID == p.EventID && existing.Side == p.Side {
            p.ID = id
            f.rows[id] = p
            return id, true, nil
        }
    }
    p.ID = f.nextID
    f.nextID++
    f.rows[p.ID] = p
    return p.ID, false, nil
}

func (f *fakePostings) Delete(_ context.Context, id uint64) error {
    if _, ok := f.rows[id]; !ok {
        return ErrNotFound
    }
    delete(f.rows, id)
    return nil
}

func (f *fakePostings) UpdateContacts(_ context.Context, userID uint64, c model.Contact) (int64, error) {
    var n int64
    for id, p := range f.rows {
        if p.UserID != userID {
            continue
        }
        p.DisplayName, p.Phone, p.Email, p.PaymentHandle = c.DisplayName, c.Phone, c.Email, c.PaymentHandle
        f.rows[id] = p
        n++
    }
    return n, nil
}

type fakeProfiles struct{ rows map[uint64]model.Contact }

func (f *fakeProfiles) GetProfile(_ context.Context, userID uint64) (model.Profile, error) {
    c, ok := f.rows[userID]
    if !ok {
        return model.Profile{}, ErrNotFound
    }
    return model.Profile{UserID: userID, Contact: c}, nil
}

func (f *fakeProfiles) SaveProfile(_ context.Context, userID uint64, c model.Contact) error {
    f.rows[userID] = c
    return nil
}

type fakeEvents struct{ rows map[uint64]model.Event }

func (f *fakeEvents) GetEvent(_ context.Context, id uint64) (model.Event, error) {
    ev, ok := f.rows[id]
    if !ok {
        return model.Event{}, ErrNotFound
    }
    return ev, nil
}

// fakeLedger mimics the transactional MySQL ledger: on a simulated
// withdrawal failure the whole operation rolls back and the counter
// stays untouched.
type fakeLedger struct {
    postings     *fakePostings
    total        uint64
    failWithdraw bool
}

func (f *fakeLedger) RecordAndWithdraw(ctx context.Context, p model.Posting) error {
    if f.failWithdraw {
        return errors.New("simulated withdrawal failure")
    }
    if err := f.postings.Delete(ctx, p.ID); err != nil {
        return err
    }
    f.total += uint64(p.Tickets)
    return nil
}

func (f *fakeLedger) TotalTraded(_ context.Context) (uint64, error) { return f.total, nil }

// ---- fixtures ----

func pctPtr(v uint8) *uint8     { return &v }
func centsPtr(v uint32) *uint32 { return &v }

func newTestService() (*Service, *fakePostings, *fakeLedger) {
    postings := newFakePostings()
    ledger := &fakeLedger{postings: postings}
    svc := NewService(
        postings,
        &fakeProfiles{rows: map[uint64]model.Contact{
            7: {DisplayName: "Sam", Phone: "555-0101", Email: "sam@campus.edu", PaymentHandle: "@sam"},
            8: {DisplayName: "Alex", Phone: "555-0102", Email: "alex@campus.edu", PaymentHandle: "@alex"},
        }},
        &fakeEvents{rows: map[uint64]model.Event{
            1: {ID: 1, Label: "Homecoming", Type: model.EventPercent, FaceValueCents: centsPtr(5000)},
            2: {ID: 2, Label: "Spring Concert", Type: model.EventMarket},
        }},
        ledger,
    )
    return svc, postings, ledger
}

func pctDraft(eventID uint64, side model.Side, percent uint8) Draft {
    return Draft{EventID: eventID, Side: side, Percent: pctPtr(percent), Tickets: 1}
}

// ---- tests ----

func TestSubmitCreatesThenReplaces(t *testing.T) {
    svc, postings, _ := newTestService()
    ctx := context.Background()

    r1, err := svc.Submit(ctx, 7, pctDraft(1, model.SideBuyer, 80))
    if err != nil {
        t.Fatalf("first submit: %v", err)
    }
    if r1.Outcome != OutcomeCreated {
        t.Errorf("first submit outcome = %q, want created", r1.Outcome)
    }

    r2, err := svc.Submit(ctx, 7, pctDraft(1, model.SideBuyer, 65))
    if err != nil {
        t.Fatalf("second submit: %v", err)
    }
    if r2.Outcome != OutcomeReplaced {
        t.Errorf("second submit outcome = %q, want replaced", r2.Outcome)
    }

    rows, _ := postings.ListByUser(ctx, 7)
    if len(rows) != 1 {
        t.Fatalf("expected exactly one live posting, got %d", len(rows))
    }
    if *rows[0].Percent != 65 {
        t.Errorf("live posting percent = %d, want the latest value 65", *rows[0].Percent)
    }
}

func TestSubmitSidesAreIndependentKeys(t *testing.T) {
    svc, postings, _ := newTestService()
    ctx := context.Background()

    if _, err := svc.Submit(ctx, 7, pctDraft(1, model.SideBuyer, 80)); err != nil {
        t.Fatal(err)
    }
    r, err := svc.Submit(ctx, 7, pctDraft(1, model.SideSeller, 90))
    if err != nil {
        t.Fatal(err)
    }
    if r.Outcome != OutcomeCreated {
        t.Errorf("other side should not replace: outcome = %q", r.Outcome)
    }
    rows, _ := postings.ListByUser(ctx, 7)
    if len(rows) != 2 {
        t.Errorf("expected one live posting per side, got %d", len(rows))
    }
}

func TestSubmitSnapshotsContactFields(t *testing.T) {
    svc, postings, _ := newTestService()
    ctx := context.Background()

    r, err := svc.Submit(ctx, 7, pctDraft(1, model.SideSeller, 75))
    if err != nil {
        t.Fatal(err)
    }
    p, _ := postings.GetByID(ctx, r.PostingID)
    if p.DisplayName != "Sam" || p.PaymentHandle != "@sam" {
        t.Errorf("contact snapshot missing: %+v", p)
    }
}

func TestSubmitValidation(t *testing.T) {
    svc, _, _ := newTestService()
    ctx := context.Background()

    cases := []struct {
        name  string
        owner uint64
        draft Draft
        want  error
    }{
        {"unauthenticated", 0, pctDraft(1, model.SideBuyer, 80), ErrUnauthenticated},
        {"bad side", 7, Draft{EventID: 1, Side: "SCALPER", Percent: pctPtr(50), Tickets: 1}, ErrInvalidSide},
        {"zero tickets", 7, Draft{EventID: 1, Side: model.SideBuyer, Percent: pctPtr(50)}, ErrTickets},
        {"unknown event", 7, pctDraft(999, model.SideBuyer, 80), ErrUnknownEvent},
        {"percent out of range", 7, pctDraft(1, model.SideBuyer, 101), ErrPercentRange},
        {"price on percent event", 7, Draft{EventID: 1, Side: model.SideBuyer, PriceCents: centsPtr(100), Tickets: 1}, ErrTermsMismatch},
        {"percent on market event", 7, pctDraft(2, model.SideBuyer, 80), ErrTermsMismatch},
        {"zero price", 7, Draft{EventID: 2, Side: model.SideSeller, PriceCents: centsPtr(0), Tickets: 1}, ErrPriceRequired},
        {"no profile", 99, pctDraft(1, model.SideBuyer, 80), ErrProfileRequired},
    }
    for _, tc := range cases {
        if _, err := svc.Submit(ctx, tc.owner, tc.draft); !errors.Is(err, tc.want) {
            t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
        }
    }
}

func TestWithdrawOwnerChecks(t *testing.T) {
    svc, postings, _ := newTestService()
    ctx := context.Background()

    r, _ := svc.Submit(ctx, 7, pctDraft(1, model.SideBuyer, 80))

    if err := svc.Withdraw(ctx, 8, r.PostingID); !errors.Is(err, ErrForbidden) {
        t.Errorf("foreign withdraw err = %v, want ErrForbidden", err)
    }
    if err := svc.Withdraw(ctx, 7, r.PostingID); err != nil {
        t.Fatalf("owner withdraw: %v", err)
    }
    if err := svc.Withdraw(ctx, 7, r.PostingID); !errors.Is(err, ErrNotFound) {
        t.Errorf("second withdraw err = %v, want ErrNotFound (writes error on missing rows)", err)
    }
    if rows, _ := postings.ListByUser(ctx, 7); len(rows) != 0 {
        t.Errorf("posting still live after withdraw")
    }
}

func TestMarkTradedIncrementsCounterAndRemovesPosting(t *testing.T) {
    svc, postings, ledger := newTestService()
    ctx := context.Background()

    d := pctDraft(1, model.SideSeller, 70)
    d.Tickets = 2
    r, err := svc.Submit(ctx, 7, d)
    if err != nil {
        t.Fatal(err)
    }

    if _, err := svc.MarkTraded(ctx, 7, r.PostingID); err != nil {
        t.Fatalf("mark traded: %v", err)
    }
    if total, _ := ledger.TotalTraded(ctx); total != 2 {
        t.Errorf("trade counter = %d, want 2", total)
    }
    if rows, _ := postings.ListByEvent(ctx, 1); len(rows) != 0 {
        t.Errorf("posting still on the book after mark traded")
    }
}

func TestMarkTradedAtomicOnWithdrawFailure(t *testing.T) {
    svc, postings, ledger := newTestService()
    ctx := context.Background()

    r, _ := svc.Submit(ctx, 7, pctDraft(1, model.SideSeller, 70))
    ledger.failWithdraw = true

    _, err := svc.MarkTraded(ctx, 7, r.PostingID)
    if !errors.Is(err, ErrTradeInconsistent) {
        t.Fatalf("err = %v, want ErrTradeInconsistent", err)
    }
    // neither half of the compound operation may stick
    if total, _ := ledger.TotalTraded(ctx); total != 0 {
        t.Errorf("counter incremented without withdrawal: %d", total)
    }
    if _, err := postings.GetByID(ctx, r.PostingID); err != nil {
        t.Errorf("posting should still be live after the failed trade")
    }
}

func TestMarkTradedForbiddenForNonOwner(t *testing.T) {
    svc, _, _ := newTestService()
    ctx := context.Background()

    r, _ := svc.Submit(ctx, 7, pctDraft(1, model.SideSeller, 70))
    if _, err := svc.MarkTraded(ctx, 8, r.PostingID); !errors.Is(err, ErrForbidden) {
        t.Errorf("err = %v, want ErrForbidden", err)
    }
}

func TestSyncContactsRewritesLivePostings(t *testing.T) {
    svc, postings, _ := newTestService()
    ctx := context.Background()

    r1, _ := svc.Submit(ctx, 7, pctDraft(1, model.SideBuyer, 80))
    r2, _ := svc.Submit(ctx, 7, pctDraft(1, model.SideSeller, 95))
    other, _ := svc.Submit(ctx, 8, pctDraft(1, model.SideSeller, 60))

    n, err := svc.SyncContacts(ctx, 7, model.Contact{
        DisplayName: "Samantha", Phone: "555-9999", Email: "sam@campus.edu", PaymentHandle: "@samantha",
    })
    if err != nil {
        t.Fatal(err)
    }
    if n != 2 {
        t.Errorf("synced %d postings, want 2", n)
    }
    for _, id := range []uint64{r1.PostingID, r2.PostingID} {
        p, _ := postings.GetByID(ctx, id)
        if p.DisplayName != "Samantha" || p.PaymentHandle != "@samantha" {
            t.Errorf("posting %d contact not re-synced: %+v", id, p)
        }
    }
    // other users' snapshots stay put
    p, _ := postings.GetByID(ctx, other.PostingID)
    if p.DisplayName != "Alex" {
        t.Errorf("foreign posting contact mutated: %+v", p)
    }
}

func TestMatchesThroughService(t *testing.T) {
    svc, _, _ := newTestService()
    ctx := context.Background()

    if _, err := svc.Submit(ctx, 7, pctDraft(1, model.SideBuyer, 85)); err != nil {
        t.Fatal(err)
    }
    if _, err := svc.Submit(ctx, 8, pctDraft(1, model.SideSeller, 70)); err != nil {
        t.Fatal(err)
    }

    ms, err := svc.Matches(ctx, 7, 1, market.Options{})
    if err != nil {
        t.Fatal(err)
    }
    if len(ms) != 1 || ms[0].AgreedPercent != 70 {
        t.Fatalf("unexpected matches: %+v", ms)
    }

    // unknown event reads as empty, not as an error
    ms, err = svc.Matches(ctx, 7, 999, market.Options{})
    if err != nil || len(ms) != 0 {
        t.Errorf("unknown event: ms=%v err=%v, want empty and nil", ms, err)
    }
}

func TestSummaryThroughService(t *testing.T) {
    svc, _, _ := newTestService()
    ctx := context.Background()

    if _, err := svc.Submit(ctx, 7, pctDraft(1, model.SideSeller, 60)); err != nil {
        t.Fatal(err)
    }
    if _, err := svc.Submit(ctx, 8, pctDraft(1, model.SideBuyer, 70)); err != nil {
        t.Fatal(err)
    }

    sum, err := svc.Summary(ctx, 1)
    if err != nil {
        t.Fatal(err)
    }
    if sum.Curve[65].Matched != 1 {
        t.Errorf("matched(65) = %d, want 1", sum.Curve[65].Matched)
    }

    // unknown event yields the empty summary shape
    sum, err = svc.Summary(ctx, 999)
    if err != nil {
        t.Fatal(err)
    }
    if sum.Clearing.Matched != 0 {
        t.Errorf("empty summary matched = %d", sum.Clearing.Matched)
    }
}
