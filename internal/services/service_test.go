package services

import (
    "context"
    "errors"
    "math"
    "strings"
    "testing"
    "time"

    "github.com/nkabindemnqobi/timetracker/internal/config"
    "github.com/nkabindemnqobi/timetracker/internal/domain"
    "github.com/rs/zerolog"
)

func testConfig() config.Config {
    return config.Config{
        TrackedStatus: "In Progress",
        Calendar:      domain.DefaultCalendar(),
        TypeMap:       domain.DefaultTypeTable(),
        WorkersJira:   2,
        OpenAITimeout: time.Second,
    }
}

func local(day, hour, min int) time.Time {
    return time.Date(2025, 6, day, hour, min, 0, 0, time.Local)
}

func testWeek() domain.WeekWindow {
    return domain.WeekWindow{Start: local(2, 0, 0), End: local(8, 0, 0)}
}

func issueJSON(key, summary, typeName, project string) map[string]any {
    return map[string]any{
        "key": key,
        "fields": map[string]any{
            "summary":   summary,
            "issuetype": map[string]any{"name": typeName},
            "project":   map[string]any{"name": project},
            "status":    map[string]any{"name": "Done"},
            "updated":   local(4, 12, 0).Format(time.RFC3339),
        },
    }
}

func historyJSON(at time.Time, field, from, to string) map[string]any {
    return map[string]any{
        "created": at.Format(time.RFC3339),
        "items": []any{
            map[string]any{"field": field, "fromString": from, "toString": to},
        },
    }
}

// stubJira serves canned search and changelog pages.
type stubJira struct {
    me           map[string]any
    meErr        error
    searchPages  []map[string]any
    searchErr    error
    searchCalls  int
    changelogs   map[string][]map[string]any // key -> pages
    changelogErr map[string]error
}

func (s *stubJira) Myself(ctx context.Context) (map[string]any, error) {
    return s.me, s.meErr
}

func (s *stubJira) Search(ctx context.Context, jql string, startAt, max int) (map[string]any, error) {
    if s.searchErr != nil { return nil, s.searchErr }
    page := s.searchPages[s.searchCalls]
    s.searchCalls++
    return page, nil
}

func (s *stubJira) Changelog(ctx context.Context, key string, startAt, max int) (map[string]any, error) {
    if err := s.changelogErr[key]; err != nil { return nil, err }
    pages := s.changelogs[key]
    idx := 0
    if startAt > 0 && len(pages) > 1 { idx = 1 }
    return pages[idx], nil
}

func newTestService(t *testing.T, now time.Time) *Service {
    t.Helper()
    s := New(testConfig(), zerolog.Nop(), nil)
    s.now = func() time.Time { return now }
    return s
}

func wantHours(t *testing.T, got, want float64) {
    t.Helper()
    if math.Abs(got-want) > 1e-9 { t.Fatalf("got %v hours, want %v", got, want) }
}

func TestValidateCredentials(t *testing.T) {
    svc := newTestService(t, local(8, 0, 0))
    jc := &stubJira{me: map[string]any{"emailAddress": "Alice@Example.com", "displayName": "Alice"}}

    name, err := svc.ValidateCredentials(context.Background(), jc, "alice@example.com")
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if name != "Alice" { t.Fatalf("got %q", name) }

    if _, err := svc.ValidateCredentials(context.Background(), jc, "bob@example.com"); err == nil {
        t.Fatalf("expected mismatch error")
    }

    jc.meErr = errors.New("401")
    if _, err := svc.ValidateCredentials(context.Background(), jc, "alice@example.com"); err == nil {
        t.Fatalf("expected transport error surfaced")
    }
}

func TestBuildTimesheet_EndToEnd(t *testing.T) {
    svc := newTestService(t, local(8, 0, 0))
    jc := &stubJira{
        searchPages: []map[string]any{{
            "issues":     []any{issueJSON("PRJ-1", "feature", "Story", "PRJ"), issueJSON("PRJ-2", "crash", "Bug", "PRJ")},
            "total":      float64(2),
            "startAt":    float64(0),
            "maxResults": float64(100),
        }},
        changelogs: map[string][]map[string]any{
            "PRJ-1": {{
                "values": []any{
                    historyJSON(local(2, 9, 0), "status", "To Do", "In Progress"),
                    historyJSON(local(2, 14, 0), "status", "In Progress", "Done"),
                },
                "total": float64(2), "startAt": float64(0), "maxResults": float64(100),
            }},
            "PRJ-2": {{
                "values": []any{
                    historyJSON(local(3, 9, 0), "status", "To Do", "In Progress"),
                    historyJSON(local(3, 12, 0), "status", "In Progress", "Done"),
                },
                "total": float64(2), "startAt": float64(0), "maxResults": float64(100),
            }},
        },
    }

    agg, err := svc.BuildTimesheet(context.Background(), jc, "alice@example.com", testWeek(), false)
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if agg.ProjectName != "PRJ" { t.Fatalf("project: %q", agg.ProjectName) }
    if len(agg.Issues) != 2 { t.Fatalf("issues: %#v", agg.Issues) }
    if agg.Issues[0].Key != "PRJ-1" || agg.Issues[1].Key != "PRJ-2" { t.Fatalf("issues not sorted: %#v", agg.Issues) }
    wantHours(t, agg.Issues[0].TotalHours, 5)
    wantHours(t, agg.Issues[1].TotalHours, 3)
    if agg.Issues[1].Type != domain.TypeBug { t.Fatalf("type mapping: %#v", agg.Issues[1]) }
    wantHours(t, agg.GrandTotal, 8)
    wantHours(t, agg.TypeTotals[domain.TypeDev], 5)
    wantHours(t, agg.TypeTotals[domain.TypeBug], 3)
}

func TestBuildTimesheet_SearchPagination(t *testing.T) {
    svc := newTestService(t, local(8, 0, 0))
    jc := &stubJira{
        searchPages: []map[string]any{
            {
                "issues":     []any{issueJSON("PRJ-1", "a", "Task", "PRJ")},
                "total":      float64(2),
                "startAt":    float64(0),
                "maxResults": float64(1),
            },
            {
                "issues":     []any{issueJSON("PRJ-2", "b", "Task", "PRJ")},
                "total":      float64(2),
                "startAt":    float64(1),
                "maxResults": float64(1),
            },
        },
        changelogs: map[string][]map[string]any{
            "PRJ-1": {{"values": []any{}, "total": float64(0)}},
            "PRJ-2": {{"values": []any{}, "total": float64(0)}},
        },
    }
    agg, err := svc.BuildTimesheet(context.Background(), jc, "alice@example.com", testWeek(), false)
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if jc.searchCalls != 2 { t.Fatalf("expected two search pages, got %d", jc.searchCalls) }
    if len(agg.Issues) != 2 { t.Fatalf("issues: %#v", agg.Issues) }
}

func TestBuildTimesheet_FailedChangelogContributesZero(t *testing.T) {
    svc := newTestService(t, local(8, 0, 0))
    jc := &stubJira{
        searchPages: []map[string]any{{
            "issues":     []any{issueJSON("PRJ-1", "ok", "Task", "PRJ"), issueJSON("PRJ-2", "broken", "Task", "PRJ")},
            "total":      float64(2),
            "startAt":    float64(0),
            "maxResults": float64(100),
        }},
        changelogs: map[string][]map[string]any{
            "PRJ-1": {{
                "values": []any{
                    historyJSON(local(2, 9, 0), "status", "To Do", "In Progress"),
                    historyJSON(local(2, 10, 0), "status", "In Progress", "Done"),
                },
                "total": float64(2), "startAt": float64(0), "maxResults": float64(100),
            }},
        },
        changelogErr: map[string]error{"PRJ-2": errors.New("boom")},
    }
    agg, err := svc.BuildTimesheet(context.Background(), jc, "alice@example.com", testWeek(), false)
    if err != nil { t.Fatalf("one bad issue must not fail the sheet: %v", err) }
    if len(agg.Issues) != 2 { t.Fatalf("issues: %#v", agg.Issues) }
    wantHours(t, agg.Issues[1].TotalHours, 0)
    wantHours(t, agg.GrandTotal, 1)
}

func TestBuildTimesheet_SearchErrorFailsRequest(t *testing.T) {
    svc := newTestService(t, local(8, 0, 0))
    jc := &stubJira{searchErr: errors.New("502")}
    if _, err := svc.BuildTimesheet(context.Background(), jc, "alice@example.com", testWeek(), false); err == nil {
        t.Fatalf("expected search failure surfaced")
    }
}

func TestBuildTimesheet_RejectsInvertedWindow(t *testing.T) {
    svc := newTestService(t, local(8, 0, 0))
    win := domain.WeekWindow{Start: local(8, 0, 0), End: local(2, 0, 0)}
    if _, err := svc.BuildTimesheet(context.Background(), &stubJira{}, "alice@example.com", win, false); err == nil {
        t.Fatalf("expected inverted window rejected")
    }
}

type fakeLLM struct {
    got  domain.WeeklyAggregate
    text string
    err  error
}

func (f *fakeLLM) Summarize(ctx context.Context, agg domain.WeeklyAggregate) (string, error) {
    f.got = agg
    return f.text, f.err
}

func TestBuildTimesheet_SummaryOptionalAndDegradable(t *testing.T) {
    cfg := testConfig()
    cfg.OpenAIKey = "sk-test"
    llm := &fakeLLM{text: "busy week"}
    svc := New(cfg, zerolog.Nop(), llm)
    svc.now = func() time.Time { return local(8, 0, 0) }
    jc := &stubJira{
        searchPages: []map[string]any{{
            "issues":     []any{issueJSON("PRJ-1", "see https://internal.example.com/x", "Task", "PRJ")},
            "total":      float64(1),
            "startAt":    float64(0),
            "maxResults": float64(100),
        }},
        changelogs: map[string][]map[string]any{
            "PRJ-1": {{"values": []any{}, "total": float64(0)}},
        },
    }

    agg, err := svc.BuildTimesheet(context.Background(), jc, "alice@example.com", testWeek(), true)
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if agg.Summary != "busy week" { t.Fatalf("summary not attached: %q", agg.Summary) }
    if strings.Contains(llm.got.Issues[0].Label, "https://") {
        t.Fatalf("label should be scrubbed before the LLM: %q", llm.got.Issues[0].Label)
    }
    if strings.Contains(agg.Issues[0].Label, "<url>") {
        t.Fatalf("caller-visible aggregate must keep the original label: %q", agg.Issues[0].Label)
    }

    llm.err = errors.New("llm down")
    jc.searchCalls = 0
    agg, err = svc.BuildTimesheet(context.Background(), jc, "alice@example.com", testWeek(), true)
    if err != nil { t.Fatalf("summary failure must not fail the sheet: %v", err) }
    if agg.Summary != "" { t.Fatalf("expected no summary on failure, got %q", agg.Summary) }
}
