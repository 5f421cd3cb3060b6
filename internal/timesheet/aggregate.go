package timesheet

import (
    "sort"

    "github.com/nkabindemnqobi/timetracker/internal/domain"
)

// IssueWork is one issue's extracted intervals, ready for aggregation.
type IssueWork struct {
    Issue     domain.Issue
    Type      domain.TypeCode
    Intervals []domain.StatusInterval
}

type dateBucket struct {
    day   string
    spans []Span
}

// Aggregate restricts every interval to the requested week, clips the
// survivors to the work calendar, and rolls the slices up into per-day,
// per-type, and grand totals. Per-issue totals sum that issue's own
// slices; daily and grand totals are computed from merged spans so time
// covered by several issues at once is counted exactly once. Issues and
// slices are emitted in sorted order, and totals are accumulated in a
// fixed order, so identical inputs produce identical output regardless
// of input ordering.
func Aggregate(project string, work []IssueWork, win domain.WeekWindow, cal domain.WorkCalendar) domain.WeeklyAggregate {
    winLo := win.Start
    winHi := win.EndExclusive()

    global := map[string]*dateBucket{}
    typed := map[domain.TypeCode]map[string]*dateBucket{}
    add := func(m map[string]*dateBucket, sl domain.DaySlice) {
        key := sl.Date.Format("2006-01-02")
        b := m[key]
        if b == nil {
            b = &dateBucket{day: sl.Day}
            m[key] = b
        }
        b.spans = append(b.spans, Span{Start: sl.Start, End: sl.End})
    }

    sheets := make([]domain.IssueSheet, 0, len(work))
    for _, w := range work {
        daily := make(map[string][]domain.DaySlice, len(domain.Days))
        for _, d := range domain.Days { daily[d] = []domain.DaySlice{} }
        total := 0.0
        for _, iv := range w.Intervals {
            c := iv
            if c.Start.Before(winLo) { c.Start = winLo }
            if c.End.After(winHi) { c.End = winHi }
            if !c.End.After(c.Start) { continue } // nothing of it inside the week
            for _, sl := range ClipToWorkdays(c, cal) {
                daily[sl.Day] = append(daily[sl.Day], sl)
                total += sl.Hours
                add(global, sl)
                tm := typed[sl.Type]
                if tm == nil {
                    tm = map[string]*dateBucket{}
                    typed[sl.Type] = tm
                }
                add(tm, sl)
            }
        }
        for _, d := range domain.Days {
            sls := daily[d]
            sort.Slice(sls, func(i, j int) bool { return sls[i].Start.Before(sls[j].Start) })
        }
        sheets = append(sheets, domain.IssueSheet{
            Key:        w.Issue.Key,
            Label:      w.Issue.Summary,
            Type:       w.Type,
            TotalHours: total,
            DailyHours: daily,
        })
    }
    sort.Slice(sheets, func(i, j int) bool { return sheets[i].Key < sheets[j].Key })

    dailyTotals := make(map[string]float64, len(domain.Days))
    for _, d := range domain.Days { dailyTotals[d] = 0 }
    for _, key := range bucketKeys(global) {
        b := global[key]
        dailyTotals[b.day] += SumHours(MergeSpans(b.spans))
    }

    typeTotals := map[domain.TypeCode]float64{}
    for code, byDate := range typed {
        t := 0.0
        for _, key := range bucketKeys(byDate) {
            t += SumHours(MergeSpans(byDate[key].spans))
        }
        typeTotals[code] = t
    }

    grand := 0.0
    for _, d := range domain.Days { grand += dailyTotals[d] }

    return domain.WeeklyAggregate{
        ProjectName: project,
        WeekStart:   win.StartDate(),
        WeekEnd:     win.EndDate(),
        Issues:      sheets,
        DailyTotals: dailyTotals,
        TypeTotals:  typeTotals,
        GrandTotal:  grand,
    }
}

func bucketKeys(m map[string]*dateBucket) []string {
    keys := make([]string, 0, len(m))
    for k := range m { keys = append(keys, k) }
    sort.Strings(keys)
    return keys
}
