package market

import (
    "sort"

    "github.com/ajbgithub/ticketmatch2-sub000/internal/model"
)

// gridMax is the top of the integer percent grid the supply/demand
// curve is evaluated on.
const gridMax = 100

// bucketFloors are the inclusive lower bounds of the histogram
// buckets.  Each bucket spans ten percent points except the last,
// which holds exactly 100.  Postings below 50 are not charted (they
// still match; they are just not considered chart-worthy).
var bucketFloors = [...]uint8{50, 60, 70, 80, 90}

// BucketCount is one histogram bar of the order-book distribution.
// Sellers are reported as a negative count and buyers as a positive
// one, matching the left/right bar convention of the market chart.
type BucketCount struct {
    Label   string `json:"label"`
    Sellers int    `json:"sellers"`
    Buyers  int    `json:"buyers"`
}

// CurvePoint is one evaluation of the cumulative supply/demand model:
// at price point Percent, Supply sellers are willing to sell (floor ≤
// p), Demand buyers are willing to buy (ceiling ≥ p), and Matched =
// min(Supply, Demand) trades could clear.
type CurvePoint struct {
    Percent uint8 `json:"percent"`
    Supply  int   `json:"supply"`
    Demand  int   `json:"demand"`
    Matched int   `json:"matched"`
}

// Clearing is the resolved clearing point of the book.  Spread is the
// per-unit gap between the clearing percent and the average floor of
// the matched sellers, never negative.
type Clearing struct {
    Percent uint8   `json:"percent"`
    Matched int     `json:"matched"`
    Spread  float64 `json:"spread"`
}

// Summary is the public-facing aggregation of one event's order book.
type Summary struct {
    EventID      uint64        `json:"event_id"`
    Distribution []BucketCount `json:"distribution"`
    Curve        []CurvePoint  `json:"curve"`
    Clearing     Clearing      `json:"clearing"`
}

// Summarize buckets the given event's percentage postings into a
// histogram and computes the cumulative supply/demand curve with its
// clearing point.  Postings for other events, and malformed rows with
// no percent, are ignored.  Like the matching engine this is a pure
// snapshot computation.
func Summarize(eventID uint64, postings []model.Posting) Summary {
    var sellerPcts, buyerPcts []uint8
    for _, p := range postings {
        if p.EventID != eventID || p.Percent == nil || *p.Percent > gridMax {
            continue
        }
        switch p.Side {
        case model.SideSeller:
            sellerPcts = append(sellerPcts, *p.Percent)
        case model.SideBuyer:
            buyerPcts = append(buyerPcts, *p.Percent)
        }
    }

    return Summary{
        EventID:      eventID,
        Distribution: distribution(sellerPcts, buyerPcts),
        Curve:        curve(sellerPcts, buyerPcts),
        Clearing:     clearing(sellerPcts, buyerPcts),
    }
}

// distribution counts both sides into the fixed buckets.  A percent of
// exactly 100 lands in the dedicated {100} bucket, never in [90,100).
func distribution(sellers, buyers []uint8) []BucketCount {
    out := make([]BucketCount, 0, len(bucketFloors)+1)
    for _, lo := range bucketFloors {
        hi := lo + 10
        out = append(out, BucketCount{
            Label:   bucketLabel(lo),
            Sellers: -countRange(sellers, lo, hi),
            Buyers:  countRange(buyers, lo, hi),
        })
    }
    out = append(out, BucketCount{
        Label:   "100",
        Sellers: -countExact(sellers, gridMax),
        Buyers:  countExact(buyers, gridMax),
    })
    return out
}

func bucketLabel(lo uint8) string {
    // e.g. "50-59"; the terminal {100} bucket is labelled separately.
    return itoa(int(lo)) + "-" + itoa(int(lo)+9)
}

// itoa avoids pulling strconv into the hot path for two-digit labels.
func itoa(n int) string {
    if n == 100 {
        return "100"
    }
    return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

func countRange(pcts []uint8, lo, hi uint8) int {
    n := 0
    for _, v := range pcts {
        if v >= lo && v < hi {
            n++
        }
    }
    return n
}

func countExact(pcts []uint8, v uint8) int {
    n := 0
    for _, p := range pcts {
        if p == v {
            n++
        }
    }
    return n
}

// curve evaluates supply(p), demand(p) and matched(p) over the full
// integer grid using prefix sums over per-percent counts.
func curve(sellers, buyers []uint8) []CurvePoint {
    var sellAt, buyAt [gridMax + 1]int
    for _, v := range sellers {
        sellAt[v]++
    }
    for _, v := range buyers {
        buyAt[v]++
    }

    out := make([]CurvePoint, gridMax+1)
    supply := 0
    for p := 0; p <= gridMax; p++ {
        supply += sellAt[p] // sellers with floor ≤ p
        out[p] = CurvePoint{Percent: uint8(p), Supply: supply}
    }
    demand := 0
    for p := gridMax; p >= 0; p-- {
        demand += buyAt[p] // buyers with ceiling ≥ p
        out[p].Demand = demand
        out[p].Matched = minInt(out[p].Supply, demand)
    }
    return out
}

// clearing picks p* by the three-level lexicographic rule: maximize
// matched volume, then minimize |supply − demand|, then take the
// largest p.  The order is a deliberate policy (volume, then balance,
// then seller-favorable pricing) and is relied on by the tests.
func clearing(sellers, buyers []uint8) Clearing {
    pts := curve(sellers, buyers)

    best := pts[0]
    bestImb := absInt(best.Supply - best.Demand)
    for _, pt := range pts[1:] {
        imb := absInt(pt.Supply - pt.Demand)
        switch {
        case pt.Matched > best.Matched:
        case pt.Matched == best.Matched && imb < bestImb:
        case pt.Matched == best.Matched && imb == bestImb:
            // equal on both criteria: the later (larger) p wins
        default:
            continue
        }
        best, bestImb = pt, imb
    }

    return Clearing{
        Percent: best.Percent,
        Matched: best.Matched,
        Spread:  spreadAt(sellers, best.Percent, best.Matched),
    }
}

// spreadAt averages the floors of the m cheapest sellers eligible at
// p* and returns how far below p* they sit.
func spreadAt(sellers []uint8, pstar uint8, m int) float64 {
    if m == 0 {
        return 0
    }
    eligible := make([]int, 0, len(sellers))
    for _, v := range sellers {
        if v <= pstar {
            eligible = append(eligible, int(v))
        }
    }
    sort.Ints(eligible)
    if m > len(eligible) {
        m = len(eligible)
    }
    sum := 0
    for _, v := range eligible[:m] {
        sum += v
    }
    avg := float64(sum) / float64(m)
    if s := float64(pstar) - avg; s > 0 {
        return s
    }
    return 0
}

func minInt(a, b int) int {
    if a < b {
        return a
    }
    return b
}
