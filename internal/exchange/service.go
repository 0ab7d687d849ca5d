package exchange

import (
    "context"
    "errors"
    "fmt"
    "strings"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/market"
    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
)

// Validation and authorization sentinels.  Handlers translate these
// into 400/401/403/404 responses; anything else is a 500.
var (
    ErrUnauthenticated = errors.New("unauthenticated submit")
    ErrUnknownEvent    = errors.New("unknown event")
    ErrInvalidSide     = errors.New("side must be BUYER or SELLER")
    ErrPercentRange    = errors.New("percent must be between 0 and 100")
    ErrPriceRequired   = errors.New("price must be a positive amount")
    ErrTermsMismatch   = errors.New("posting terms do not match the event type")
    ErrTickets         = errors.New("tickets must be a positive count")
    ErrProfileRequired = errors.New("a profile with contact details is required before posting")
    ErrForbidden       = errors.New("posting belongs to another user")
    // ErrTradeInconsistent flags a mark-traded attempt whose
    // counter-increment and withdrawal could not both complete.  The
    // store rolls the pair back, so the caller may retry.
    ErrTradeInconsistent = errors.New("trade not recorded: counter and withdrawal did not both complete")
)

// Outcome reports which branch a replace-mode submit took.
type Outcome string

const (
    OutcomeCreated  Outcome = "created"
    OutcomeReplaced Outcome = "replaced"
)

// Receipt is what Submit hands back to the caller: the surviving
// posting id and whether the write created a fresh posting or
// superseded a previous one under the same key.
type Receipt struct {
    Outcome   Outcome `json:"outcome"`
    PostingID uint64  `json:"posting_id"`
}

// Draft is an unvalidated submit request.  Exactly one of Percent or
// PriceCents must be set, matching the target event's type.
type Draft struct {
    EventID     uint64
    Side        model.Side
    Percent     *uint8
    PriceCents  *uint32
    Description string
    Tickets     uint32
}

// Service wires the lifecycle rules to the stores.  All methods take a
// context and return value-level errors; nothing here retries.
type Service struct {
    Postings PostingStore
    Profiles ProfileStore
    Events   EventCatalog
    Trades   TradeLedger
}

// NewService constructs a Service and panics on nil dependencies.
func NewService(postings PostingStore, profiles ProfileStore, events EventCatalog, trades TradeLedger) *Service {
    if postings == nil || profiles == nil || events == nil || trades == nil {
        panic("nil store passed to exchange.NewService")
    }
    return &Service{Postings: postings, Profiles: profiles, Events: events, Trades: trades}
}

// Submit validates the draft, snapshots the owner's contact fields and
// performs the replace-mode upsert.  Validation failures reject the
// submit before any state is touched.
func (s *Service) Submit(ctx context.Context, ownerID uint64, d Draft) (Receipt, error) {
    if ownerID == 0 {
        return Receipt{}, ErrUnauthenticated
    }
    if !d.Side.Valid() {
        return Receipt{}, ErrInvalidSide
    }
    if d.Tickets == 0 {
        return Receipt{}, ErrTickets
    }

    ev, err := s.Events.GetEvent(ctx, d.EventID)
    if err != nil {
        if errors.Is(err, ErrNotFound) {
            return Receipt{}, ErrUnknownEvent
        }
        return Receipt{}, fmt.Errorf("load event: %w", err)
    }
    if err := validateTerms(ev.Type, d); err != nil {
        return Receipt{}, err
    }

    prof, err := s.Profiles.GetProfile(ctx, ownerID)
    if err != nil {
        if errors.Is(err, ErrNotFound) {
            return Receipt{}, ErrProfileRequired
        }
        return Receipt{}, fmt.Errorf("load profile: %w", err)
    }

    p := model.Posting{
        UserID:        ownerID,
        EventID:       d.EventID,
        Side:          d.Side,
        Percent:       d.Percent,
        PriceCents:    d.PriceCents,
        Description:   strings.TrimSpace(d.Description),
        Tickets:       d.Tickets,
        DisplayName:   prof.DisplayName,
        Phone:         prof.Phone,
        Email:         prof.Email,
        PaymentHandle: prof.PaymentHandle,
    }
    id, replaced, err := s.Postings.Upsert(ctx, p)
    if err != nil {
        return Receipt{}, fmt.Errorf("upsert posting: %w", err)
    }
    out := OutcomeCreated
    if replaced {
        out = OutcomeReplaced
    }
    return Receipt{Outcome: out, PostingID: id}, nil
}

// validateTerms checks the draft's terms against the event type: a
// percent ceiling/floor for PERCENT events, a positive explicit price
// for MARKET events.
func validateTerms(t model.EventType, d Draft) error {
    switch t {
    case model.EventPercent:
        if d.Percent == nil || d.PriceCents != nil {
            return ErrTermsMismatch
        }
        if *d.Percent > 100 {
            return ErrPercentRange
        }
    case model.EventMarket:
        if d.PriceCents == nil || d.Percent != nil {
            return ErrTermsMismatch
        }
        if *d.PriceCents == 0 {
            return ErrPriceRequired
        }
    default:
        return ErrUnknownEvent
    }
    return nil
}

// Withdraw deletes one of the caller's live postings.  Unlike read
// paths, a missing posting is an error here.
func (s *Service) Withdraw(ctx context.Context, ownerID, postingID uint64) error {
    p, err := s.Postings.GetByID(ctx, postingID)
    if err != nil {
        return err
    }
    if p.UserID != ownerID {
        return ErrForbidden
    }
    return s.Postings.Delete(ctx, postingID)
}

// MarkTraded records a consummated trade: the global counter grows by
// the posting's ticket count and the posting leaves the book, as one
// atomic operation.  The posting is returned so the caller can publish
// a trade event with its details.
func (s *Service) MarkTraded(ctx context.Context, ownerID, postingID uint64) (model.Posting, error) {
    p, err := s.Postings.GetByID(ctx, postingID)
    if err != nil {
        return model.Posting{}, err
    }
    if p.UserID != ownerID {
        return model.Posting{}, ErrForbidden
    }
    if err := s.Trades.RecordAndWithdraw(ctx, p); err != nil {
        return model.Posting{}, fmt.Errorf("%w: %v", ErrTradeInconsistent, err)
    }
    return p, nil
}

// SyncContacts saves the profile and rewrites the contact snapshot on
// every live posting the user owns, keeping displayed contact details
// current without turning the snapshot into a live reference.
func (s *Service) SyncContacts(ctx context.Context, ownerID uint64, c model.Contact) (int64, error) {
    if ownerID == 0 {
        return 0, ErrUnauthenticated
    }
    if err := s.Profiles.SaveProfile(ctx, ownerID, c); err != nil {
        return 0, fmt.Errorf("save profile: %w", err)
    }
    n, err := s.Postings.UpdateContacts(ctx, ownerID, c)
    if err != nil {
        return 0, fmt.Errorf("sync postings: %w", err)
    }
    return n, nil
}

// Matches runs the engine for one user over the event's current book.
// An unknown event is an empty result, not an error: this is a read.
func (s *Service) Matches(ctx context.Context, ownerID, eventID uint64, opts market.Options) ([]market.Match, error) {
    ev, err := s.Events.GetEvent(ctx, eventID)
    if err != nil {
        if errors.Is(err, ErrNotFound) {
            return nil, nil
        }
        return nil, err
    }
    postings, err := s.Postings.ListByEvent(ctx, eventID)
    if err != nil {
        return nil, err
    }
    return market.ComputeMatches(ownerID, ev, postings, opts), nil
}

// Summary aggregates the event's book into the public distribution and
// clearing curve.  Like Matches, a missing event yields an empty
// summary rather than an error.
func (s *Service) Summary(ctx context.Context, eventID uint64) (market.Summary, error) {
    if _, err := s.Events.GetEvent(ctx, eventID); err != nil {
        if errors.Is(err, ErrNotFound) {
            return market.Summarize(eventID, nil), nil
        }
        return market.Summary{}, err
    }
    postings, err := s.Postings.ListByEvent(ctx, eventID)
    if err != nil {
        return market.Summary{}, err
    }
    return market.Summarize(eventID, postings), nil
}
