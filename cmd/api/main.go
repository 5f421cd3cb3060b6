/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "os"
    "os/signal"
    "syscall"

    "github.com/nkabindemnqobi/timetracker/internal/adapters/openai"
    "github.com/nkabindemnqobi/timetracker/internal/adapters/telegram"
    "github.com/nkabindemnqobi/timetracker/internal/config"
    httpapi "github.com/nkabindemnqobi/timetracker/internal/http"
    "github.com/nkabindemnqobi/timetracker/internal/jobs"
    "github.com/nkabindemnqobi/timetracker/internal/logger"
    "github.com/nkabindemnqobi/timetracker/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)

    // Adapters
    llm := openai.NewClient(cfg, log)
    tg := telegram.NewClient(cfg, log)

    // Services
    svc := services.New(cfg, log, llm)

    // HTTP server (Gin)
    router := httpapi.NewRouter(cfg, log, svc)

    // Optional scheduled weekly export
    if jobs.Enabled(cfg) {
        cr := jobs.NewCron(cfg, log, svc, tg)
        cr.Start()
        defer cr.Stop()
        log.Info().Str("spec", cfg.ExportCron).Str("dir", cfg.ExportDir).Msg("weekly export scheduled")
    }

    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()
    log.Info().Str("addr", cfg.HTTPAddr).Msg("timetracker api listening")

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }
}
