package source

import (
	"net/http"
	"time"
)

// Format is how a fetched response body is turned into a number.
type Format string

// Supported payload formats.
const (
	FormatJSON       Format = "json"
	FormatText       Format = "text"
	FormatPrometheus Format = "prometheus"
)

// DefaultValuePath selects the value of a JSON body when none is configured.
const DefaultValuePath = "$.value"

// Definition is one configured source. It is immutable once the registry
// has been built.
type Definition struct {
	// Name is unique across the registry and doubles as the measurement name.
	Name string

	Fetch  FetchConfig
	Active bool

	// PollInterval must be positive for the source to be scheduled.
	PollInterval time.Duration

	Retention Retention
}

// FetchConfig is the descriptor consumed by the fetcher.
type FetchConfig struct {
	Method   string
	URL      string
	Headers  map[string]string
	Body     string
	Username string
	Password string

	Format    Format
	ValuePath string
	Metric    string

	// Timeout bounds one fetch. Zero means no timeout.
	Timeout time.Duration
}

// Retention is the pruning policy for a source's samples.
type Retention struct {
	Active        bool
	Age           time.Duration
	CheckInterval time.Duration
}

// Schedulable reports whether the source takes part in fetch scheduling.
func (d Definition) Schedulable() bool {
	return d.Active && d.PollInterval > 0
}

// Prunable reports whether the source's samples are pruned.
func (d Definition) Prunable() bool {
	return d.Schedulable() && d.Retention.Active && d.Retention.Age > 0
}

// defaultMethod is used when a fetch config leaves the method empty.
const defaultMethod = http.MethodGet
