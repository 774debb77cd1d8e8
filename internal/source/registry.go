package source

import (
	"fmt"
	"maps"
	"net/url"
	"strings"
	"time"

	"github.com/m-adamski/timeseries-data-provider/internal/infrastructure/config"
)

// Registry holds the validated source definitions in configuration order.
//
// A Registry never changes after construction, so all methods are safe for
// concurrent use without locking.
type Registry struct {
	defs   []Definition
	byName map[string]int
}

// NewRegistry validates defs and builds a registry preserving their order.
//
// Method, format and value path defaults are filled in. Inactive entries are
// kept (so they can be reported) but their fetch settings are not checked.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		defs:   make([]Definition, 0, len(defs)),
		byName: make(map[string]int, len(defs)),
	}

	for i, d := range defs {
		if err := normalise(&d); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, exists := r.byName[d.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, d.Name)
		}
		d.Fetch.Headers = maps.Clone(d.Fetch.Headers)
		r.byName[d.Name] = len(r.defs)
		r.defs = append(r.defs, d)
	}

	return r, nil
}

// FromConfig converts the sources section of the configuration into a Registry.
func FromConfig(entries []config.SourceConfig) (*Registry, error) {
	defs := make([]Definition, 0, len(entries))
	for _, e := range entries {
		defs = append(defs, Definition{
			Name:         e.Name,
			Active:       e.Active,
			PollInterval: time.Duration(e.PollIntervalSeconds) * time.Second,
			Fetch: FetchConfig{
				Method:    e.Fetch.Method,
				URL:       e.Fetch.URL,
				Headers:   e.Fetch.Headers,
				Body:      e.Fetch.Body,
				Username:  e.Fetch.Auth.Username,
				Password:  e.Fetch.Auth.Password,
				Format:    Format(strings.ToLower(e.Fetch.Format)),
				ValuePath: e.Fetch.ValuePath,
				Metric:    e.Fetch.Metric,
				Timeout:   time.Duration(e.Fetch.TimeoutSeconds) * time.Second,
			},
			Retention: Retention{
				Active:        e.Retention.Active,
				Age:           time.Duration(e.Retention.AgeSeconds) * time.Second,
				CheckInterval: time.Duration(e.Retention.CheckIntervalSeconds) * time.Second,
			},
		})
	}
	return NewRegistry(defs)
}

// normalise fills defaults into d and validates it.
func normalise(d *Definition) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if d.PollInterval < 0 {
		return fmt.Errorf("%w: %q: poll interval must not be negative", ErrInvalidDefinition, d.Name)
	}
	if d.Retention.Age < 0 || d.Retention.CheckInterval < 0 {
		return fmt.Errorf("%w: %q: retention values must not be negative", ErrInvalidDefinition, d.Name)
	}
	if d.Fetch.Timeout < 0 {
		return fmt.Errorf("%w: %q: fetch timeout must not be negative", ErrInvalidDefinition, d.Name)
	}

	if d.Fetch.Method == "" {
		d.Fetch.Method = defaultMethod
	}
	d.Fetch.Method = strings.ToUpper(d.Fetch.Method)
	if d.Fetch.Format == "" {
		d.Fetch.Format = FormatJSON
	}
	if d.Fetch.Format == FormatJSON && d.Fetch.ValuePath == "" {
		d.Fetch.ValuePath = DefaultValuePath
	}

	if !d.Schedulable() {
		return nil
	}

	u, err := url.Parse(d.Fetch.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q: fetch url %q is not an absolute URL", ErrInvalidDefinition, d.Name, d.Fetch.URL)
	}

	switch d.Fetch.Format {
	case FormatJSON, FormatText:
	case FormatPrometheus:
		if d.Fetch.Metric == "" {
			return fmt.Errorf("%w: %q: prometheus format requires a metric name", ErrInvalidDefinition, d.Name)
		}
	default:
		return fmt.Errorf("%w: %q: unknown fetch format %q", ErrInvalidDefinition, d.Name, d.Fetch.Format)
	}

	if d.Prunable() && d.Retention.CheckInterval <= 0 {
		return fmt.Errorf("%w: %q: retention check interval must be positive when retention is active", ErrInvalidDefinition, d.Name)
	}

	return nil
}

// All returns every definition in configuration order.
func (r *Registry) All() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Len returns the number of definitions, active or not.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Lookup returns the definition with the given name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// LookupActive returns the definition with the given name only if it is active.
func (r *Registry) LookupActive(name string) (Definition, bool) {
	d, ok := r.Lookup(name)
	if !ok || !d.Active {
		return Definition{}, false
	}
	return d, true
}

// ActiveNames returns the names of all active sources in configuration order.
func (r *Registry) ActiveNames() []string {
	names := make([]string, 0, len(r.defs))
	for _, d := range r.defs {
		if d.Active {
			names = append(names, d.Name)
		}
	}
	return names
}

// Schedulable returns the definitions that take part in fetch scheduling.
func (r *Registry) Schedulable() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		if d.Schedulable() {
			out = append(out, d)
		}
	}
	return out
}
