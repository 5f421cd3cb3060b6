/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"

    "github.com/nkabindemnqobi/timetracker/internal/adapters/jira"
    "github.com/nkabindemnqobi/timetracker/internal/config"
    "github.com/nkabindemnqobi/timetracker/internal/domain"
    "github.com/nkabindemnqobi/timetracker/internal/export"
    "github.com/nkabindemnqobi/timetracker/internal/services"
)

type service interface {
    ValidateCredentials(ctx context.Context, jc services.JiraClient, email string) (string, error)
    BuildTimesheet(ctx context.Context, jc services.JiraClient, assignee string, win domain.WeekWindow, withSummary bool) (domain.WeeklyAggregate, error)
}

// clientFor builds a Jira client for one request's credentials; swapped
// out in tests.
type clientFor func(creds jira.Credentials) services.JiraClient

type Handlers struct {
    cfg    config.Config
    log    zerolog.Logger
    svc    service
    client clientFor
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service) *Handlers {
    return &Handlers{
        cfg: cfg,
        log: log,
        svc: svc,
        client: func(creds jira.Credentials) services.JiraClient {
            return jira.NewClient(creds, cfg.JiraBaseURL, cfg.HTTPTimeout, log)
        },
    }
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) AuthValidate(c *gin.Context) {
    var creds jira.Credentials
    if err := c.ShouldBindJSON(&creds); err != nil || !creds.Complete() {
        c.JSON(http.StatusBadRequest, gin.H{"error": "domain, email, and apiToken are required"})
        return
    }
    name, err := h.svc.ValidateCredentials(c.Request.Context(), h.client(creds), creds.Email)
    if err != nil {
        h.log.Warn().Err(err).Str("email", creds.Email).Msg("auth validate failed")
        c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed: " + err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"success": true, "user": gin.H{"name": name, "email": creds.Email}})
}

func (h *Handlers) Timesheet(c *gin.Context) {
    agg, ok := h.buildWeek(c)
    if !ok { return }
    c.JSON(http.StatusOK, agg)
}

func (h *Handlers) TimesheetCSV(c *gin.Context) {
    agg, ok := h.buildWeek(c)
    if !ok { return }
    c.Header("Content-Disposition", `attachment; filename="`+export.Filename(agg)+`"`)
    c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(export.Render(agg)))
}

func (h *Handlers) buildWeek(c *gin.Context) (domain.WeeklyAggregate, bool) {
    creds := jira.Credentials{
        Domain:   c.Query("domain"),
        Email:    c.Query("email"),
        APIToken: c.Query("apiToken"),
    }
    if !creds.Complete() {
        c.JSON(http.StatusBadRequest, gin.H{"error": "domain, email, and apiToken are required"})
        return domain.WeeklyAggregate{}, false
    }
    win, err := domain.ParseWeek(c.Param("week"), time.Local)
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return domain.WeeklyAggregate{}, false
    }
    withSummary := false
    switch strings.ToLower(c.Query("summary")) {
    case "1", "true", "yes": withSummary = true
    }
    agg, err := h.svc.BuildTimesheet(c.Request.Context(), h.client(creds), creds.Email, win, withSummary)
    if err != nil {
        h.log.Error().Err(err).Str("week", c.Param("week")).Msg("timesheet build failed")
        c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch timesheet: " + err.Error()})
        return domain.WeeklyAggregate{}, false
    }
    return agg, true
}
