package timesheet

import (
    "strings"
    "time"

    "github.com/nkabindemnqobi/timetracker/internal/domain"
)

// TrackedStatus is the status whose cumulative duration the timesheet
// measures.
const TrackedStatus = "In Progress"

// ExtractIntervals pairs entry/exit transitions into intervals with a
// single walk over the normalized sequence. Entering the tracked status
// opens an interval; any later status-field change closes it at that
// timestamp, even one that sets the same status again (which closes and
// immediately reopens — the tracker emits such records and the original
// behavior is kept). An interval still open at the end of input closes
// at now. An exit with nothing open is a no-op.
func ExtractIntervals(key string, typ domain.TypeCode, label, tracked string, changes []domain.StatusChange, now time.Time) []domain.StatusInterval {
    if tracked == "" { tracked = TrackedStatus }
    var out []domain.StatusInterval
    emit := func(start, end time.Time) {
        if end.Before(start) { end = start } // clock skew clamps to zero, never negative
        out = append(out, domain.StatusInterval{IssueKey: key, Start: start, End: end, Type: typ, Label: label})
    }
    tracking := false
    var openedAt time.Time
    for _, ch := range changes {
        if tracking {
            emit(openedAt, ch.At)
            tracking = false
        }
        if strings.EqualFold(strings.TrimSpace(ch.To), tracked) {
            tracking = true
            openedAt = ch.At
        }
    }
    if tracking { emit(openedAt, now) }
    return out
}
