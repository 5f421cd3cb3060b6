package timesheet

import (
    "sort"

    "github.com/nkabindemnqobi/timetracker/internal/domain"
    "github.com/rs/zerolog"
)

// Normalize orders raw changelog entries by timestamp (stable for ties)
// and flattens them into status-field transitions. Entries without a
// usable timestamp are logged and dropped; a single bad record never
// fails the issue.
func Normalize(log zerolog.Logger, issueKey string, entries []domain.ChangelogEntry) []domain.StatusChange {
    if len(entries) == 0 { return nil }
    sorted := make([]domain.ChangelogEntry, len(entries))
    copy(sorted, entries)
    sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

    var out []domain.StatusChange
    for _, e := range sorted {
        if e.At.IsZero() {
            log.Warn().Str("issue", issueKey).Msg("changelog entry without timestamp, skipped")
            continue
        }
        for _, it := range e.Items {
            if it.Field != "status" { continue }
            out = append(out, domain.StatusChange{At: e.At, From: it.From, To: it.To})
        }
    }
    return out
}
