/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "fmt"
    "time"

    "github.com/nkabindemnqobi/timetracker/internal/domain"
)

// parseTime handles the timestamp layouts Jira emits, normalized to the
// configured local zone so work-window clipping sees local day bounds.
func parseTime(v any) *time.Time {
    s, _ := v.(string)
    if s == "" { return nil }
    layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000-0700", "2006-01-02T15:04:05-0700"}
    for _, l := range layouts {
        if t, err := time.Parse(l, s); err == nil {
            tt := t.In(time.Local)
            return &tt
        }
    }
    return nil
}

func toStrAny(v any) string {
    if v == nil { return "" }
    if s, ok := v.(string); ok { return s }
    return fmt.Sprintf("%v", v)
}

// parseIssuePage extracts the issues array of one search page.
func parseIssuePage(page map[string]any) []domain.Issue {
    arr, _ := page["issues"].([]any)
    out := make([]domain.Issue, 0, len(arr))
    for _, it := range arr {
        im, _ := it.(map[string]any)
        if im == nil { continue }
        key := toStrAny(im["key"])
        if key == "" { continue }
        fields, _ := im["fields"].(map[string]any)
        iss := domain.Issue{Key: key, Summary: toStrAny(fields["summary"])}
        if tp, ok := fields["issuetype"].(map[string]any); ok { iss.TypeName = toStrAny(tp["name"]) }
        if pj, ok := fields["project"].(map[string]any); ok { iss.ProjectName = toStrAny(pj["name"]) }
        if st, ok := fields["status"].(map[string]any); ok { iss.Status = toStrAny(st["name"]) }
        iss.Updated = parseTime(fields["updated"])
        out = append(out, iss)
    }
    return out
}

// parseChangelogPage extracts one changelog page; the v3 endpoint uses
// "values", expand-style responses use "histories".
func parseChangelogPage(page map[string]any) []domain.ChangelogEntry {
    vals, _ := page["values"].([]any)
    if vals == nil { vals, _ = page["histories"].([]any) }
    out := make([]domain.ChangelogEntry, 0, len(vals))
    for _, h0 := range vals {
        hv, _ := h0.(map[string]any)
        if hv == nil { continue }
        entry := domain.ChangelogEntry{}
        if at := parseTime(hv["created"]); at != nil { entry.At = *at }
        items, _ := hv["items"].([]any)
        for _, it0 := range items {
            itm, _ := it0.(map[string]any)
            if itm == nil { continue }
            entry.Items = append(entry.Items, domain.FieldChange{
                Field: toStrAny(itm["field"]),
                From:  toStrAny(itm["fromString"]),
                To:    toStrAny(itm["toString"]),
            })
        }
        out = append(out, entry)
    }
    return out
}

// pageNext computes the next startAt from response metadata, or -1 when
// the page set is exhausted.
func pageNext(page map[string]any, got int) int {
    total, _ := page["total"].(float64)
    startAt, _ := page["startAt"].(float64)
    maxResults, _ := page["maxResults"].(float64)
    if total <= 0 { return -1 }
    next := int(startAt) + int(maxResults)
    if maxResults <= 0 { next = int(startAt) + got }
    if next >= int(total) || got == 0 { return -1 }
    return next
}
