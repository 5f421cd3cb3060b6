/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "encoding/json"
    "log"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/joho/godotenv"
    "github.com/nkabindemnqobi/timetracker/internal/domain"
)

type Config struct {
    AppEnv   string
    TZ       string
    HTTPAddr string
    LogFile  string

    // Optional service-account credentials for the scheduled export.
    // Interactive requests carry their own credentials instead.
    JiraDomain  string
    JiraEmail   string
    JiraToken   string
    JiraBaseURL string // overrides the <domain>.atlassian.net convention when set

    TrackedStatus string
    Calendar      domain.WorkCalendar
    TypeMap       domain.TypeTable
    TypeMapFile   string

    OpenAIKey     string
    OpenAIModel   string
    OpenAITimeout time.Duration

    TelegramToken   string
    TelegramChatIDs []int64

    ExportCron     string
    ExportDir      string
    ExportAssignee string

    HTTPTimeout time.Duration
    WorkersJira int
}

func getenv(key, def string) string {
    v := os.Getenv(key)
    if v == "" { return def }
    return v
}

func atoi(key string, def int) int {
    v := os.Getenv(key)
    if v == "" { return def }
    i, err := strconv.Atoi(v)
    if err != nil { return def }
    return i
}

func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil { return def }
    return d
}

func parseInt64s(csv string) []int64 {
    if csv == "" { return nil }
    parts := strings.Split(csv, ",")
    out := make([]int64, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p == "" { continue }
        n, err := strconv.ParseInt(p, 10, 64)
        if err == nil { out = append(out, n) }
    }
    return out
}

func clock(key string, def domain.ClockTime) domain.ClockTime {
    v := os.Getenv(key)
    if v == "" { return def }
    c, err := domain.ParseClock(v)
    if err != nil {
        log.Printf("warning: %s=%q invalid, using %s: %v", key, v, def, err)
        return def
    }
    return c
}

func Load() Config {
    _ = godotenv.Load()

    cfg := Config{
        AppEnv:   getenv("APP_ENV", "dev"),
        TZ:       getenv("APP_TZ", "UTC"),
        HTTPAddr: getenv("HTTP_ADDR", ":3001"),
        LogFile:  getenv("LOG_FILE", ""),

        JiraDomain:  getenv("JIRA_DOMAIN", ""),
        JiraEmail:   getenv("JIRA_EMAIL", ""),
        JiraToken:   getenv("JIRA_API_TOKEN", ""),
        JiraBaseURL: getenv("JIRA_BASE_URL", ""),

        TrackedStatus: getenv("TRACKED_STATUS", "In Progress"),
        Calendar: domain.WorkCalendar{
            DayStart: clock("WORKDAY_START", domain.ClockTime{Hour: 8}),
            DayEnd:   clock("WORKDAY_END", domain.ClockTime{Hour: 17}),
        },
        TypeMapFile: getenv("ISSUE_TYPE_MAP_FILE", ""),

        OpenAIKey:     getenv("OPENAI_API_KEY", ""),
        OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4.1-mini"),
        OpenAITimeout: dur("OPENAI_TIMEOUT", 20*time.Second),

        TelegramToken:   getenv("TELEGRAM_BOT_TOKEN", ""),
        TelegramChatIDs: parseInt64s(getenv("TELEGRAM_CHAT_IDS", "")),

        ExportCron:     getenv("EXPORT_CRON", ""),
        ExportDir:      getenv("EXPORT_DIR", ""),
        ExportAssignee: getenv("EXPORT_ASSIGNEE", ""),

        HTTPTimeout: dur("HTTP_TIMEOUT", 15*time.Second),
        WorkersJira: atoi("WORKERS_JIRA", 6),
    }

    // set global timezone if available
    if loc, err := time.LoadLocation(cfg.TZ); err == nil {
        time.Local = loc
    } else {
        log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
    }

    // Issue-type classification: static defaults, optionally overlaid
    // from a JSON file (name -> dev|bug|ana)
    cfg.TypeMap = domain.DefaultTypeTable()
    if cfg.TypeMapFile != "" {
        if data, err := os.ReadFile(cfg.TypeMapFile); err == nil {
            m := map[string]string{}
            if err := json.Unmarshal(data, &m); err == nil {
                for name, code := range m {
                    n := strings.TrimSpace(name)
                    switch domain.TypeCode(code) {
                    case domain.TypeDev, domain.TypeBug, domain.TypeAna:
                        if n != "" { cfg.TypeMap[n] = domain.TypeCode(code) }
                    default:
                        log.Printf("warning: type map %s: unknown code %q for %q", cfg.TypeMapFile, code, name)
                    }
                }
            } else {
                log.Printf("warning: cannot parse type map %s: %v", cfg.TypeMapFile, err)
            }
        } else {
            log.Printf("warning: cannot read type map %s: %v", cfg.TypeMapFile, err)
        }
    }
    return cfg
}
