package logger

import (
    "io"
    "os"
    "time"

    "github.com/nkabindemnqobi/timetracker/internal/config"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
    "gopkg.in/natefinch/lumberjack.v2"
)

func New(cfg config.Config) zerolog.Logger {
    var out io.Writer = os.Stdout
    if cfg.LogFile != "" {
        rotated := &lumberjack.Logger{Filename: cfg.LogFile, MaxSize: 50, MaxBackups: 5, MaxAge: 28}
        out = io.MultiWriter(os.Stdout, rotated)
    }
    if cfg.AppEnv == "dev" {
        output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
        logger := zerolog.New(output).With().Timestamp().Logger()
        log.Logger = logger
        return logger
    }
    zerolog.TimeFieldFormat = time.RFC3339
    logger := zerolog.New(out).With().Timestamp().Logger()
    log.Logger = logger
    return logger
}
