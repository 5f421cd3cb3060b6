package jobs

import (
    "context"
    "fmt"
    "os"
    "path/filepath"
    "sync/atomic"
    "time"

    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog"

    "github.com/nkabindemnqobi/timetracker/internal/adapters/jira"
    "github.com/nkabindemnqobi/timetracker/internal/config"
    "github.com/nkabindemnqobi/timetracker/internal/domain"
    "github.com/nkabindemnqobi/timetracker/internal/export"
    "github.com/nkabindemnqobi/timetracker/internal/services"
)

type service interface {
    BuildTimesheet(ctx context.Context, jc services.JiraClient, assignee string, win domain.WeekWindow, withSummary bool) (domain.WeeklyAggregate, error)
}

type notifier interface {
    SendMessagePlain(ctx context.Context, chatID int64, text string) error
}

// Cron writes the current week's timesheet CSV for a configured
// assignee on a schedule, using the service-account credentials from
// config. Disabled unless EXPORT_CRON, EXPORT_DIR, EXPORT_ASSIGNEE and
// the JIRA_* credentials are all set.
type Cron struct {
    cfg     config.Config
    log     zerolog.Logger
    svc     service
    tg      notifier
    c       *cron.Cron
    running atomic.Bool
}

// Enabled reports whether the scheduled export is fully configured.
func Enabled(cfg config.Config) bool {
    creds := jira.Credentials{Domain: cfg.JiraDomain, Email: cfg.JiraEmail, APIToken: cfg.JiraToken}
    return cfg.ExportCron != "" && cfg.ExportDir != "" && cfg.ExportAssignee != "" && creds.Complete()
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service, tg notifier) *Cron {
    loc, _ := time.LoadLocation(cfg.TZ)
    c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
    cr := &Cron{cfg: cfg, log: log, svc: svc, tg: tg, c: c}
    _, _ = c.AddFunc(cfg.ExportCron, cr.export)
    return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) export() {
    // single in-process run at a time; there is no shared store to lock
    if !cr.running.CompareAndSwap(false, true) {
        cr.log.Info().Msg("cron: export already running")
        return
    }
    defer cr.running.Store(false)
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
    defer cancel()

    creds := jira.Credentials{Domain: cr.cfg.JiraDomain, Email: cr.cfg.JiraEmail, APIToken: cr.cfg.JiraToken}
    jc := jira.NewClient(creds, cr.cfg.JiraBaseURL, cr.cfg.HTTPTimeout, cr.log)
    win := CurrentWeek(time.Now())
    cr.log.Info().Str("assignee", cr.cfg.ExportAssignee).Str("week", win.StartDate()+"_"+win.EndDate()).Msg("cron: weekly export")

    agg, err := cr.svc.BuildTimesheet(ctx, jc, cr.cfg.ExportAssignee, win, false)
    if err != nil {
        cr.log.Error().Err(err).Msg("cron: export failed")
        return
    }
    path := filepath.Join(cr.cfg.ExportDir, export.Filename(agg))
    if err := os.WriteFile(path, []byte(export.Render(agg)), 0o644); err != nil {
        cr.log.Error().Err(err).Str("path", path).Msg("cron: write failed")
        return
    }
    cr.log.Info().Str("path", path).Float64("hours", agg.GrandTotal).Msg("cron: export written")

    if cr.tg != nil {
        text := fmt.Sprintf("Timesheet %s..%s for %s: %.2fh across %d issues",
            win.StartDate(), win.EndDate(), cr.cfg.ExportAssignee, agg.GrandTotal, len(agg.Issues))
        for _, chat := range cr.cfg.TelegramChatIDs {
            if err := cr.tg.SendMessagePlain(ctx, chat, text); err != nil {
                cr.log.Error().Err(err).Int64("chat", chat).Msg("cron: telegram send failed")
            }
        }
    }
}

// CurrentWeek is the Monday..Sunday window containing t.
func CurrentWeek(t time.Time) domain.WeekWindow {
    weekday := int(t.Weekday())
    if weekday == 0 { weekday = 7 }
    day := t.AddDate(0, 0, -(weekday - 1))
    start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
    return domain.WeekWindow{Start: start, End: start.AddDate(0, 0, 6)}
}
