/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "sync"
    "time"

    "github.com/nkabindemnqobi/timetracker/internal/config"
    "github.com/nkabindemnqobi/timetracker/internal/domain"
    "github.com/nkabindemnqobi/timetracker/internal/timesheet"
    "github.com/rs/zerolog"
)

type JiraClient interface {
    Myself(ctx context.Context) (map[string]any, error)
    Search(ctx context.Context, jql string, startAt, max int) (map[string]any, error)
    Changelog(ctx context.Context, key string, startAt, max int) (map[string]any, error)
}

type LLM interface {
    Summarize(ctx context.Context, agg domain.WeeklyAggregate) (string, error)
}

type Service struct {
    cfg config.Config
    log zerolog.Logger
    llm LLM
    now func() time.Time
}

func New(cfg config.Config, log zerolog.Logger, llm LLM) *Service {
    return &Service{cfg: cfg, log: log, llm: llm, now: time.Now}
}

// ValidateCredentials fetches /myself with the given client and checks
// the account matches the claimed email. Returns the display name.
func (s *Service) ValidateCredentials(ctx context.Context, jc JiraClient, email string) (string, error) {
    me, err := jc.Myself(ctx)
    if err != nil { return "", err }
    actual := toStrAny(me["emailAddress"])
    if !strings.EqualFold(strings.TrimSpace(actual), strings.TrimSpace(email)) {
        return "", fmt.Errorf("email does not match authenticated user")
    }
    return toStrAny(me["displayName"]), nil
}

// BuildTimesheet runs the full pipeline for one assignee and week:
// issue search, per-issue changelog fetch (bounded fan-out), interval
// extraction, calendar clipping, and weekly aggregation. Issues whose
// history cannot be fetched or parsed contribute zero hours; only a
// failed issue search fails the request.
func (s *Service) BuildTimesheet(ctx context.Context, jc JiraClient, assignee string, win domain.WeekWindow, withSummary bool) (domain.WeeklyAggregate, error) {
    if win.End.Before(win.Start) { return domain.WeeklyAggregate{}, errors.New("invalid week window: end before start") }
    issues, err := s.listAssignedIssues(ctx, jc, assignee, win)
    if err != nil { return domain.WeeklyAggregate{}, fmt.Errorf("issue search: %w", err) }
    s.log.Info().Str("assignee", assignee).Str("week", win.StartDate()+"_"+win.EndDate()).Int("issues", len(issues)).Msg("timesheet: issues fetched")

    now := s.now()
    work := make([]timesheet.IssueWork, len(issues))
    workerCount := s.cfg.WorkersJira
    if workerCount <= 0 { workerCount = 6 }
    if workerCount > len(issues) { workerCount = len(issues) }
    jobs := make(chan int)
    var wg sync.WaitGroup
    for w := 0; w < workerCount; w++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            for i := range jobs {
                work[i] = s.processIssue(ctx, jc, issues[i], now)
            }
        }()
    }
    for i := range issues { jobs <- i }
    close(jobs)
    wg.Wait()

    project := ""
    for _, iss := range issues {
        if iss.ProjectName != "" { project = iss.ProjectName; break }
    }
    agg := timesheet.Aggregate(project, work, win, s.cfg.Calendar)

    if withSummary && s.llm != nil && strings.TrimSpace(s.cfg.OpenAIKey) != "" {
        sctx, cancel := context.WithTimeout(ctx, s.cfg.OpenAITimeout)
        summary, err := s.llm.Summarize(sctx, redactAggregate(agg))
        cancel()
        if err != nil {
            s.log.Error().Err(err).Msg("timesheet: summary failed, continuing without")
        } else {
            agg.Summary = summary
        }
    }
    return agg, nil
}

// processIssue turns one issue's changelog into typed intervals. Any
// failure degrades to an empty interval set for that issue.
func (s *Service) processIssue(ctx context.Context, jc JiraClient, iss domain.Issue, now time.Time) timesheet.IssueWork {
    w := timesheet.IssueWork{Issue: iss, Type: s.cfg.TypeMap.Code(iss.TypeName)}
    entries, err := s.fetchChangelog(ctx, jc, iss.Key)
    if err != nil {
        s.log.Error().Err(err).Str("issue", iss.Key).Msg("changelog fetch failed, issue contributes zero hours")
        return w
    }
    changes := timesheet.Normalize(s.log, iss.Key, entries)
    w.Intervals = timesheet.ExtractIntervals(iss.Key, w.Type, iss.Summary, s.cfg.TrackedStatus, changes, now)
    return w
}

func (s *Service) listAssignedIssues(ctx context.Context, jc JiraClient, assignee string, win domain.WeekWindow) ([]domain.Issue, error) {
    jql := fmt.Sprintf("assignee = %q AND updated >= %q AND updated <= %q ORDER BY updated DESC",
        assignee, win.StartDate(), win.EndDate())
    var out []domain.Issue
    startAt := 0
    for {
        page, err := jc.Search(ctx, jql, startAt, 100)
        if err != nil { return nil, err }
        batch := parseIssuePage(page)
        out = append(out, batch...)
        next := pageNext(page, len(batch))
        if next < 0 { break }
        startAt = next
    }
    return out, nil
}

func (s *Service) fetchChangelog(ctx context.Context, jc JiraClient, key string) ([]domain.ChangelogEntry, error) {
    var out []domain.ChangelogEntry
    startAt := 0
    for {
        page, err := jc.Changelog(ctx, key, startAt, 100)
        if err != nil { return nil, err }
        batch := parseChangelogPage(page)
        out = append(out, batch...)
        next := pageNext(page, len(batch))
        if next < 0 { break }
        startAt = next
    }
    return out, nil
}
