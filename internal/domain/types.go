package domain

import (
    "fmt"
    "strings"
    "time"
)

// FieldChange is one changed field inside a changelog entry.
type FieldChange struct {
    Field string
    From  string
    To    string
}

// ChangelogEntry is one audit record from Jira; several field changes
// can share a single timestamp.
type ChangelogEntry struct {
    At    time.Time
    Items []FieldChange
}

// StatusChange is a normalized status-field transition for one issue.
type StatusChange struct {
    At   time.Time
    From string
    To   string
}

// StatusInterval is a contiguous span an issue spent in the tracked status.
// Never mutated after creation.
type StatusInterval struct {
    IssueKey string
    Start    time.Time
    End      time.Time
    Type     TypeCode
    Label    string
}

// DaySlice is the portion of an interval that falls inside one calendar
// day's work window.
type DaySlice struct {
    Day      string    `json:"day"`
    Date     time.Time `json:"date"`
    Start    time.Time `json:"start"`
    End      time.Time `json:"end"`
    Hours    float64   `json:"hours"`
    Type     TypeCode  `json:"type"`
    IssueKey string    `json:"issueKey"`
    Label    string    `json:"label"`
}

// IssueSheet is the per-issue view inside a WeeklyAggregate.
type IssueSheet struct {
    Key        string                `json:"key"`
    Label      string                `json:"label"`
    Type       TypeCode              `json:"type"`
    TotalHours float64               `json:"totalHours"`
    DailyHours map[string][]DaySlice `json:"dailyHours"`
}

// WeeklyAggregate is the computed timesheet for one week. GrandTotal is
// the merged union of work time across all issues; concurrent intervals
// on different issues are counted once, so it is not the sum of the
// per-issue totals.
type WeeklyAggregate struct {
    ProjectName string               `json:"projectName"`
    WeekStart   string               `json:"weekStart"`
    WeekEnd     string               `json:"weekEnd"`
    Issues      []IssueSheet         `json:"issues"`
    DailyTotals map[string]float64   `json:"dailyTotals"`
    TypeTotals  map[TypeCode]float64 `json:"typeTotals"`
    GrandTotal  float64              `json:"grandTotal"`
    Summary     string               `json:"summary,omitempty"`
}

// Issue is the subset of Jira issue fields the timesheet needs.
type Issue struct {
    Key         string
    Summary     string
    TypeName    string
    ProjectName string
    Status      string
    Updated     *time.Time
}

// TypeCode is the closed set of timesheet categories an issue type maps to.
type TypeCode string

const (
    TypeDev TypeCode = "dev"
    TypeBug TypeCode = "bug"
    TypeAna TypeCode = "ana"
)

var defaultTypeMap = map[string]TypeCode{
    "Story":          TypeDev,
    "Task":           TypeDev,
    "Sub-task":       TypeDev,
    "Epic":           TypeDev,
    "Bug":            TypeBug,
    "Analysis":       TypeAna,
    "Research":       TypeAna,
    "Investigation":  TypeAna,
    "Spike":          TypeAna,
    "Technical Debt": TypeDev,
    "Improvement":    TypeDev,
    "New Feature":    TypeDev,
    "Enhancement":    TypeDev,
}

// TypeTable maps tracker issue-type names to TypeCodes. Unknown names
// fall back to dev.
type TypeTable map[string]TypeCode

func DefaultTypeTable() TypeTable {
    out := make(TypeTable, len(defaultTypeMap))
    for k, v := range defaultTypeMap { out[k] = v }
    return out
}

func (t TypeTable) Code(issueTypeName string) TypeCode {
    if c, ok := t[strings.TrimSpace(issueTypeName)]; ok { return c }
    return TypeDev
}

// ClockTime is a time of day without a date.
type ClockTime struct {
    Hour   int
    Minute int
}

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// On anchors the clock time to the date (year/month/day) of t.
func (c ClockTime) On(t time.Time) time.Time {
    return time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, 0, 0, t.Location())
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (ClockTime, error) {
    var h, m int
    if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
        return ClockTime{}, fmt.Errorf("clock %q: %w", s, err)
    }
    if h < 0 || h > 23 || m < 0 || m > 59 { return ClockTime{}, fmt.Errorf("clock %q: out of range", s) }
    return ClockTime{Hour: h, Minute: m}, nil
}

// WorkCalendar is the daily billable window, applied to all seven
// weekdays. Weekend work counts whenever it falls inside the window.
type WorkCalendar struct {
    DayStart ClockTime
    DayEnd   ClockTime
}

func DefaultCalendar() WorkCalendar {
    return WorkCalendar{DayStart: ClockTime{Hour: 8}, DayEnd: ClockTime{Hour: 17}}
}

// WeekWindow is the requested week; End is inclusive through end of day.
type WeekWindow struct {
    Start time.Time
    End   time.Time
}

// EndExclusive is the first instant after the window.
func (w WeekWindow) EndExclusive() time.Time { return w.End.AddDate(0, 0, 1) }

func (w WeekWindow) StartDate() string { return w.Start.Format("2006-01-02") }
func (w WeekWindow) EndDate() string   { return w.End.Format("2006-01-02") }

// ParseWeek parses the "YYYY-MM-DD_YYYY-MM-DD" week selector. A window
// whose end precedes its start is rejected up front.
func ParseWeek(s string, loc *time.Location) (WeekWindow, error) {
    parts := strings.SplitN(strings.TrimSpace(s), "_", 2)
    if len(parts) != 2 { return WeekWindow{}, fmt.Errorf("week %q: want start_end", s) }
    start, err := time.ParseInLocation("2006-01-02", parts[0], loc)
    if err != nil { return WeekWindow{}, fmt.Errorf("week start %q: %w", parts[0], err) }
    end, err := time.ParseInLocation("2006-01-02", parts[1], loc)
    if err != nil { return WeekWindow{}, fmt.Errorf("week end %q: %w", parts[1], err) }
    if end.Before(start) { return WeekWindow{}, fmt.Errorf("week %q: end before start", s) }
    return WeekWindow{Start: start, End: end}, nil
}

// Days lists the weekday column names in grid order.
var Days = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayName is the three-letter column name for a date.
func DayName(t time.Time) string { return t.Weekday().String()[:3] }
