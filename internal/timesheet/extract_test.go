package timesheet

import (
    "testing"
    "time"

    "github.com/nkabindemnqobi/timetracker/internal/domain"
    "github.com/rs/zerolog"
)

// Week of Mon 2025-06-02 .. Sun 2025-06-08.
func ts(day, hour, min int) time.Time {
    return time.Date(2025, 6, day, hour, min, 0, 0, time.UTC)
}

func TestNormalize_SortsAndKeepsOnlyStatusItems(t *testing.T) {
    entries := []domain.ChangelogEntry{
        {At: ts(2, 14, 0), Items: []domain.FieldChange{{Field: "status", From: "In Progress", To: "Done"}}},
        {At: ts(2, 9, 0), Items: []domain.FieldChange{
            {Field: "assignee", From: "", To: "alice"},
            {Field: "status", From: "To Do", To: "In Progress"},
        }},
        {At: ts(2, 10, 0), Items: []domain.FieldChange{{Field: "Status", From: "x", To: "y"}}}, // wrong case, not a status item
    }
    got := Normalize(zerolog.Nop(), "PRJ-1", entries)
    if len(got) != 2 { t.Fatalf("expected 2 status changes, got %#v", got) }
    if !got[0].At.Equal(ts(2, 9, 0)) || got[0].To != "In Progress" {
        t.Fatalf("expected sorted order, got %#v", got)
    }
    if got[1].To != "Done" { t.Fatalf("unexpected second change: %#v", got[1]) }
}

func TestNormalize_DropsEntriesWithoutTimestamp(t *testing.T) {
    entries := []domain.ChangelogEntry{
        {Items: []domain.FieldChange{{Field: "status", To: "In Progress"}}},
        {At: ts(2, 9, 0), Items: []domain.FieldChange{{Field: "status", To: "In Progress"}}},
    }
    got := Normalize(zerolog.Nop(), "PRJ-1", entries)
    if len(got) != 1 { t.Fatalf("expected bad-timestamp entry dropped, got %#v", got) }
}

func TestNormalize_StableForIdenticalTimestamps(t *testing.T) {
    entries := []domain.ChangelogEntry{
        {At: ts(2, 9, 0), Items: []domain.FieldChange{{Field: "status", From: "To Do", To: "In Progress"}}},
        {At: ts(2, 9, 0), Items: []domain.FieldChange{{Field: "status", From: "In Progress", To: "Done"}}},
    }
    got := Normalize(zerolog.Nop(), "PRJ-1", entries)
    if len(got) != 2 || got[0].To != "In Progress" || got[1].To != "Done" {
        t.Fatalf("expected input order preserved for equal timestamps, got %#v", got)
    }
}

func TestExtractIntervals_SimpleEnterExit(t *testing.T) {
    changes := []domain.StatusChange{
        {At: ts(2, 9, 0), From: "To Do", To: "In Progress"},
        {At: ts(2, 14, 0), From: "In Progress", To: "Done"},
    }
    got := ExtractIntervals("PRJ-1", domain.TypeDev, "work", TrackedStatus, changes, ts(8, 0, 0))
    if len(got) != 1 { t.Fatalf("expected one interval, got %#v", got) }
    if !got[0].Start.Equal(ts(2, 9, 0)) || !got[0].End.Equal(ts(2, 14, 0)) {
        t.Fatalf("unexpected bounds: %#v", got[0])
    }
    if got[0].IssueKey != "PRJ-1" || got[0].Type != domain.TypeDev {
        t.Fatalf("issue fields not carried: %#v", got[0])
    }
}

func TestExtractIntervals_CaseAndWhitespaceInsensitiveMatch(t *testing.T) {
    changes := []domain.StatusChange{
        {At: ts(2, 9, 0), To: "  in progress "},
        {At: ts(2, 10, 0), To: "Done"},
    }
    got := ExtractIntervals("PRJ-1", domain.TypeDev, "", TrackedStatus, changes, ts(8, 0, 0))
    if len(got) != 1 { t.Fatalf("expected tracked status matched loosely, got %#v", got) }
}

func TestExtractIntervals_OpenIntervalClosesAtNow(t *testing.T) {
    now := ts(4, 14, 30)
    changes := []domain.StatusChange{{At: ts(4, 8, 0), To: "In Progress"}}
    got := ExtractIntervals("PRJ-1", domain.TypeDev, "", TrackedStatus, changes, now)
    if len(got) != 1 { t.Fatalf("expected one open interval, got %#v", got) }
    if !got[0].End.Equal(now) { t.Fatalf("open interval should end at now, got %v", got[0].End) }
}

func TestExtractIntervals_ClockSkewClampsToZeroLength(t *testing.T) {
    // Evaluation time before the interval opened: end clamps to start.
    now := ts(4, 7, 0)
    changes := []domain.StatusChange{{At: ts(4, 8, 0), To: "In Progress"}}
    got := ExtractIntervals("PRJ-1", domain.TypeDev, "", TrackedStatus, changes, now)
    if len(got) != 1 { t.Fatalf("expected one interval, got %#v", got) }
    if !got[0].End.Equal(got[0].Start) { t.Fatalf("expected zero-length clamp, got %#v", got[0]) }
}

// A change that sets the tracked status while it is already tracked
// closes the running interval and opens a new one at the same instant.
// The tracker emits such records and the behavior is kept on purpose.
func TestExtractIntervals_SameStatusResetClosesAndReopens(t *testing.T) {
    changes := []domain.StatusChange{
        {At: ts(2, 9, 0), To: "In Progress"},
        {At: ts(2, 11, 0), From: "In Progress", To: "In Progress"},
        {At: ts(2, 14, 0), To: "Done"},
    }
    got := ExtractIntervals("PRJ-1", domain.TypeDev, "", TrackedStatus, changes, ts(8, 0, 0))
    if len(got) != 2 { t.Fatalf("expected close/reopen to yield two intervals, got %#v", got) }
    if !got[0].End.Equal(ts(2, 11, 0)) || !got[1].Start.Equal(ts(2, 11, 0)) {
        t.Fatalf("intervals should meet at the reset: %#v", got)
    }
}

func TestExtractIntervals_ExitWithoutEntryIsNoop(t *testing.T) {
    changes := []domain.StatusChange{
        {At: ts(2, 9, 0), From: "In Progress", To: "Done"},
        {At: ts(2, 10, 0), From: "Done", To: "To Do"},
    }
    got := ExtractIntervals("PRJ-1", domain.TypeDev, "", TrackedStatus, changes, ts(8, 0, 0))
    if len(got) != 0 { t.Fatalf("expected no intervals, got %#v", got) }
}

func TestExtractIntervals_MultipleSessionsSameDay(t *testing.T) {
    changes := []domain.StatusChange{
        {At: ts(2, 9, 0), To: "In Progress"},
        {At: ts(2, 10, 0), To: "Blocked"},
        {At: ts(2, 13, 0), To: "In Progress"},
        {At: ts(2, 15, 0), To: "Done"},
    }
    got := ExtractIntervals("PRJ-1", domain.TypeDev, "", TrackedStatus, changes, ts(8, 0, 0))
    if len(got) != 2 { t.Fatalf("expected two sessions, got %#v", got) }
    if got[0].End.Sub(got[0].Start) != time.Hour { t.Fatalf("first session bounds: %#v", got[0]) }
    if got[1].End.Sub(got[1].Start) != 2*time.Hour { t.Fatalf("second session bounds: %#v", got[1]) }
}

func TestExtractIntervals_CustomTrackedStatus(t *testing.T) {
    changes := []domain.StatusChange{
        {At: ts(2, 9, 0), To: "Doing"},
        {At: ts(2, 12, 0), To: "Done"},
    }
    got := ExtractIntervals("PRJ-1", domain.TypeDev, "", "Doing", changes, ts(8, 0, 0))
    if len(got) != 1 { t.Fatalf("expected custom status tracked, got %#v", got) }
}
