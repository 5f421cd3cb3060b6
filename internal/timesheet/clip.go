package timesheet

import (
    "time"

    "github.com/nkabindemnqobi/timetracker/internal/domain"
)

// ClipToWorkdays maps an interval onto the work calendar: every touched
// calendar day contributes at most one slice, bounded by that day's work
// window and by the interval's own start and end. Slices without
// strictly positive duration are not emitted, so a zero-length interval
// yields nothing. The window applies to all seven weekdays; there is no
// separate weekend rule.
func ClipToWorkdays(iv domain.StatusInterval, cal domain.WorkCalendar) []domain.DaySlice {
    if !iv.End.After(iv.Start) { return nil }
    var out []domain.DaySlice
    for day := startOfDay(iv.Start); !day.After(iv.End); day = day.AddDate(0, 0, 1) {
        lo := cal.DayStart.On(day)
        hi := cal.DayEnd.On(day)
        if iv.Start.After(lo) { lo = iv.Start }
        if iv.End.Before(hi) { hi = iv.End }
        if !hi.After(lo) { continue }
        out = append(out, domain.DaySlice{
            Day:      domain.DayName(day),
            Date:     day,
            Start:    lo,
            End:      hi,
            Hours:    hi.Sub(lo).Hours(),
            Type:     iv.Type,
            IssueKey: iv.IssueKey,
            Label:    iv.Label,
        })
    }
    return out
}

func startOfDay(t time.Time) time.Time {
    return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
