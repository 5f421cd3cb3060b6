package openai

import (
    "context"
    "encoding/json"
    "errors"
    "strings"

    openai "github.com/openai/openai-go/v2"
    "github.com/openai/openai-go/v2/option"
    "github.com/openai/openai-go/v2/shared"
    "github.com/rs/zerolog"

    "github.com/nkabindemnqobi/timetracker/internal/config"
    "github.com/nkabindemnqobi/timetracker/internal/domain"
)

type Client struct {
    key   string
    model string
    cli   openai.Client
    log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    model := cfg.OpenAIModel
    if strings.TrimSpace(model) == "" { model = "gpt-4.1-mini" }
    cli := openai.NewClient(option.WithAPIKey(cfg.OpenAIKey))
    return &Client{key: cfg.OpenAIKey, model: model, cli: cli, log: log}
}

// Summarize turns the aggregated week into a short narrative. The text
// is attached verbatim to the aggregate and has no effect on the
// numeric totals.
func (c *Client) Summarize(ctx context.Context, agg domain.WeeklyAggregate) (string, error) {
    if strings.TrimSpace(c.key) == "" { return "", errors.New("openai: missing key") }
    c.log.Info().Str("model", c.model).Msg("openai Summarize call")
    payload := map[string]any{
        "project":     agg.ProjectName,
        "week":        agg.WeekStart + ".." + agg.WeekEnd,
        "dailyTotals": agg.DailyTotals,
        "typeTotals":  agg.TypeTotals,
        "grandTotal":  agg.GrandTotal,
    }
    issues := make([]map[string]any, 0, len(agg.Issues))
    for _, is := range agg.Issues {
        issues = append(issues, map[string]any{"key": is.Key, "label": is.Label, "type": is.Type, "hours": is.TotalHours})
    }
    payload["issues"] = issues
    userContent := ""
    if b, err := json.Marshal(payload); err == nil { userContent = string(b) }
    params := openai.ChatCompletionNewParams{
        Model: shared.ChatModel(c.model),
        Messages: []openai.ChatCompletionMessageParamUnion{
            openai.SystemMessage("You are a timesheet assistant. Given weekly per-day and per-type hour totals derived from Jira status history, write a short plain-text narrative of how the week was spent. Do not invent numbers; only restate the ones given."),
            openai.UserMessage(userContent),
        },
    }
    resp, err := c.cli.Chat.Completions.New(ctx, params)
    if err != nil { return "", err }
    if len(resp.Choices) == 0 { return "", errors.New("openai: no choices") }
    return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
