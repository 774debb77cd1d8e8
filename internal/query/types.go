package query

import (
	"encoding/json"
	"fmt"
	"time"
)

// TargetType is the output shape requested for a target.
type TargetType int

const (
	// Timeseries renders a target as [value, epochMillis] datapoints.
	Timeseries TargetType = iota

	// Table renders a target as rows of the merged table result.
	Table
)

// String returns the wire name of the target type.
func (t TargetType) String() string {
	switch t {
	case Timeseries:
		return "timeseries"
	case Table:
		return "table"
	default:
		return fmt.Sprintf("TargetType(%d)", int(t))
	}
}

// ParseTargetType resolves a wire name. "timeserie" is the spelling sent by
// the SimpleJSON datasource; an empty name means timeseries.
func ParseTargetType(s string) (TargetType, error) {
	switch s {
	case "", "timeserie", "timeseries":
		return Timeseries, nil
	case "table":
		return Table, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidTargetType, s)
	}
}

// MarshalJSON encodes the type as its wire name.
func (t TargetType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a wire name, rejecting unknown types.
func (t *TargetType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timeseries
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTargetType, data)
	}

	parsed, err := ParseTargetType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Target is one requested series.
type Target struct {
	Target string     `json:"target"`
	RefID  string     `json:"refId,omitempty"`
	Type   TargetType `json:"type"`
}

// Range is the inclusive time window of a request.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Request is a dashboard query.
type Request struct {
	Targets []Target `json:"targets"`
	Range   Range    `json:"range"`

	// MaxDataPoints caps the rows read per target. Zero or negative means no cap.
	MaxDataPoints int `json:"maxDataPoints"`
}

// Validate checks the request range.
func (r Request) Validate() error {
	if r.Range.To.Before(r.Range.From) {
		return fmt.Errorf("%w: from %s, to %s", ErrInvalidRange,
			r.Range.From.Format(time.RFC3339), r.Range.To.Format(time.RFC3339))
	}
	return nil
}

// Result is one entry of a query response: a *TimeseriesResult or a *TableResult.
type Result interface {
	resultType() TargetType
}

// TimeseriesResult holds one target's rows as [value, epochMillis] pairs.
type TimeseriesResult struct {
	Target     string       `json:"target"`
	Datapoints [][2]float64 `json:"datapoints"`
}

func (*TimeseriesResult) resultType() TargetType { return Timeseries }

// Column describes one column of a table result.
type Column struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// TableResult holds the rows of every table target, in target order.
// Each row is [target, value, epochMillis].
type TableResult struct {
	Type    string   `json:"type"`
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func (*TableResult) resultType() TargetType { return Table }

// tableColumns is the fixed schema of every table result.
var tableColumns = []Column{
	{Text: "Target", Type: "string"},
	{Text: "Value", Type: "number"},
	{Text: "Time", Type: "time"},
}

func newTableResult() *TableResult {
	columns := make([]Column, len(tableColumns))
	copy(columns, tableColumns)
	return &TableResult{Type: "table", Columns: columns, Rows: make([][]any, 0)}
}

// epochMillis converts a timestamp to milliseconds since the Unix epoch.
func epochMillis(t time.Time) float64 {
	return float64(t.UnixMilli())
}
