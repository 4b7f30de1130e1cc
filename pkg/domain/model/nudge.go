package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

// NAPlaceholder is rendered for missing nudge fields so the metrics
// string always has the same shape regardless of source completeness.
const NAPlaceholder = "N/A"

// dateLayout is the textual form for date range boundaries in metrics
const dateLayout = "2006-01-02"

// NudgeFact is the canonical, generation-ready representation of one
// nudge. It is built fresh per request from one of two source shapes
// (NudgeRecord or NudgeRow) and never persisted.
type NudgeFact struct {
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	Metrics      string `json:"metrics"`
}

// NudgeRecord is the nested shape returned by the external nudge data
// provider. Only the fields consumed by canonicalization are mapped.
type NudgeRecord struct {
	Config NudgeConfig `json:"config"`
}

// NudgeConfig holds the provider's nudge configuration payload
type NudgeConfig struct {
	Message        string     `json:"message"`
	MetaData       string     `json:"metaData"`
	Threshold      *float64   `json:"threshold"`
	Metric         string     `json:"metric"`
	Unit           string     `json:"unit"`
	Operator       string     `json:"operator"`
	DateRange      *DateRange `json:"dateRange"`
	PriorDateRange *DateRange `json:"priorDateRange"`
}

// DateRange is a from/to pair in the provider's payload
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Fact converts the provider shape into the canonical NudgeFact
func (r NudgeRecord) Fact() NudgeFact {
	title := r.Config.Message
	if title == "" {
		title = "No Title"
	}
	instructions := r.Config.MetaData
	if instructions == "" {
		instructions = "No Instructions"
	}

	threshold := NAPlaceholder
	if r.Config.Threshold != nil {
		threshold = strconv.FormatFloat(*r.Config.Threshold, 'f', -1, 64)
	}

	return NudgeFact{
		Title:        title,
		Instructions: instructions,
		Metrics: formatMetrics(
			threshold,
			rangeFrom(r.Config.DateRange), rangeTo(r.Config.DateRange),
			rangeFrom(r.Config.PriorDateRange), rangeTo(r.Config.PriorDateRange),
			orNA(r.Config.Metric),
			orNA(r.Config.Unit),
			orNA(r.Config.Operator),
		),
	}
}

// NudgeRow is the flat relational shape of a nudge as stored by the
// repository. It mirrors the nudges table of the upstream system.
type NudgeRow struct {
	ID                 int64
	EmployeeID         types.EmployeeID
	NudgeType          string
	Title              string
	Message            string
	Instructions       string
	MetricName         string
	MetricValue        *float64
	Threshold          *float64
	Operator           string
	Unit               string
	DateRangeFrom      *time.Time
	DateRangeTo        *time.Time
	PriorDateRangeFrom *time.Time
	PriorDateRangeTo   *time.Time
	Status             string
	CreatedAt          time.Time
}

// Fact converts the relational shape into the canonical NudgeFact.
// The output fields are identical to those produced from NudgeRecord
// so the prompt composer has a single code path.
func (r NudgeRow) Fact() NudgeFact {
	title := r.Title
	if title == "" {
		title = "No Title"
	}
	instructions := r.Instructions
	if instructions == "" {
		instructions = "No Instructions"
	}

	threshold := NAPlaceholder
	if r.Threshold != nil {
		threshold = strconv.FormatFloat(*r.Threshold, 'f', -1, 64)
	}

	return NudgeFact{
		Title:        title,
		Instructions: instructions,
		Metrics: formatMetrics(
			threshold,
			formatDate(r.DateRangeFrom), formatDate(r.DateRangeTo),
			formatDate(r.PriorDateRangeFrom), formatDate(r.PriorDateRangeTo),
			orNA(r.MetricName),
			orNA(r.Unit),
			orNA(r.Operator),
		),
	}
}

// Facts converts a slice of provider records in order
func Facts(records []NudgeRecord) []NudgeFact {
	facts := make([]NudgeFact, len(records))
	for i, r := range records {
		facts[i] = r.Fact()
	}
	return facts
}

// RowFacts converts a slice of relational rows in order
func RowFacts(rows []*NudgeRow) []NudgeFact {
	facts := make([]NudgeFact, len(rows))
	for i, r := range rows {
		facts[i] = r.Fact()
	}
	return facts
}

func formatMetrics(threshold, from, to, priorFrom, priorTo, metric, unit, operator string) string {
	return fmt.Sprintf(
		"Threshold: %s, Date Range: %s to %s, Prior Date Range: %s to %s, Metric: %s, Unit: %s, Operator: %s",
		threshold, from, to, priorFrom, priorTo, metric, unit, operator,
	)
}

func orNA(s string) string {
	if s == "" {
		return NAPlaceholder
	}
	return s
}

func rangeFrom(r *DateRange) string {
	if r == nil || r.From == "" {
		return NAPlaceholder
	}
	return r.From
}

func rangeTo(r *DateRange) string {
	if r == nil || r.To == "" {
		return NAPlaceholder
	}
	return r.To
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NAPlaceholder
	}
	return t.Format(dateLayout)
}
