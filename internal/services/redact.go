package services

import (
    "regexp"
    "strings"

    "github.com/nkabindemnqobi/timetracker/internal/domain"
)

var (
    emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+`)
    urlRe   = regexp.MustCompile(`https?://[^\s]+`)
    tokenRe = regexp.MustCompile(`(?i)\b(?:token|secret|password|apikey|api_key|bearer)[:=\s]+[A-Za-z0-9\-\._~+/]{8,}\b`)
)

func scrub(s string) string {
    s = strings.ReplaceAll(s, "\r\n", "\n")
    s = emailRe.ReplaceAllString(s, "<email>")
    s = urlRe.ReplaceAllString(s, "<url>")
    s = tokenRe.ReplaceAllString(s, "<secret>")
    return s
}

// redactAggregate copies the aggregate with issue summaries scrubbed of
// obvious PII/secrets before the payload leaves for the LLM. The
// numeric fields are passed through untouched.
func redactAggregate(agg domain.WeeklyAggregate) domain.WeeklyAggregate {
    red := agg
    red.Issues = make([]domain.IssueSheet, len(agg.Issues))
    copy(red.Issues, agg.Issues)
    for i := range red.Issues {
        red.Issues[i].Label = scrub(red.Issues[i].Label)
    }
    return red
}
