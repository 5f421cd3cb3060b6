package timesheet

import (
    "sort"
    "time"
)

// Span is a bare [Start, End] pair used by the overlap merge.
type Span struct {
    Start time.Time
    End   time.Time
}

// MergeSpans collapses overlapping or touching spans into a disjoint
// set: sort by start, then sweep once extending the current span while
// the next one starts at or before its end. Output spans are pairwise
// non-overlapping and non-adjacent and cover exactly the union of the
// input.
func MergeSpans(spans []Span) []Span {
    if len(spans) == 0 { return nil }
    sorted := make([]Span, len(spans))
    copy(sorted, spans)
    sort.Slice(sorted, func(i, j int) bool {
        if sorted[i].Start.Equal(sorted[j].Start) { return sorted[i].End.Before(sorted[j].End) }
        return sorted[i].Start.Before(sorted[j].Start)
    })
    merged := make([]Span, 0, len(sorted))
    cur := sorted[0]
    for _, next := range sorted[1:] {
        if !next.Start.After(cur.End) {
            if next.End.After(cur.End) { cur.End = next.End }
            continue
        }
        merged = append(merged, cur)
        cur = next
    }
    return append(merged, cur)
}

// SumHours is the total duration of a span set in hours.
func SumHours(spans []Span) float64 {
    total := 0.0
    for _, s := range spans { total += s.End.Sub(s.Start).Hours() }
    return total
}
