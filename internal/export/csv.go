package export

import (
    "fmt"
    "strings"

    "github.com/nkabindemnqobi/timetracker/internal/domain"
)

var csvHeader = []string{"Project", "Type", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun", "Total Hours"}

// typeOrder fixes row order in the export grid.
var typeOrder = []domain.TypeCode{domain.TypeDev, domain.TypeBug, domain.TypeAna}

// Render builds the semicolon-separated export of one weekly aggregate:
// one row per type group, two-decimal day totals, and the merged type
// total in the last column. Day cells are plain sums of that type's
// slices; only the total column de-duplicates overlap.
func Render(agg domain.WeeklyAggregate) string {
    rows := [][]string{csvHeader}
    project := agg.ProjectName
    if project == "" { project = "Unknown Project" }

    dayType := map[string]map[domain.TypeCode]float64{}
    for _, d := range domain.Days { dayType[d] = map[domain.TypeCode]float64{} }
    for _, is := range agg.Issues {
        for _, d := range domain.Days {
            for _, sl := range is.DailyHours[d] {
                dayType[d][sl.Type] += sl.Hours
            }
        }
    }

    for _, code := range typeOrder {
        total, ok := agg.TypeTotals[code]
        if !ok { continue }
        row := []string{project, strings.ToUpper(string(code))}
        for _, d := range domain.Days {
            row = append(row, fmt.Sprintf("%.2f", dayType[d][code]))
        }
        row = append(row, fmt.Sprintf("%.2f", total))
        rows = append(rows, row)
    }

    var b strings.Builder
    for i, row := range rows {
        if i > 0 { b.WriteByte('\n') }
        for j, f := range row {
            if j > 0 { b.WriteByte(';') }
            b.WriteString(escapeField(f))
        }
    }
    return b.String()
}

// Filename names the export after the week it covers.
func Filename(agg domain.WeeklyAggregate) string {
    return fmt.Sprintf("timesheet_%s_%s.csv", agg.WeekStart, agg.WeekEnd)
}

func escapeField(f string) string {
    if strings.ContainsAny(f, ";\"\n") {
        return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
    }
    return f
}
