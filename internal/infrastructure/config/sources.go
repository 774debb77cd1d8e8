package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SourceConfig is one entry of the ordered sources list.
//
// YAML accepts the original key names as aliases: "interval" for
// poll_interval_seconds and "config" for fetch. When active is omitted the
// source is treated as active.
type SourceConfig struct {
	Name                string          `yaml:"name"`
	Active              bool            `yaml:"active"`
	PollIntervalSeconds int             `yaml:"poll_interval_seconds"`
	Fetch               FetchConfig     `yaml:"fetch"`
	Retention           RetentionConfig `yaml:"retention"`
}

// FetchConfig describes the outbound read performed for a source.
type FetchConfig struct {
	Method  string            `yaml:"method"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
	Body    string            `yaml:"body"`
	Auth    FetchAuthConfig   `yaml:"auth"`

	// Format is how the response body is read: json (default), text or prometheus.
	Format string `yaml:"format"`

	// ValuePath is a JSONPath expression selecting the value in a json body.
	// Default: "$.value"
	ValuePath string `yaml:"value_path,omitempty"`

	// Metric is the metric family name read from a prometheus body.
	Metric string `yaml:"metric,omitempty"`

	// TimeoutSeconds bounds one fetch. 0 means no timeout.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// FetchAuthConfig contains optional HTTP basic credentials for a source.
type FetchAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// RetentionConfig is the per-source pruning policy. All values are seconds.
type RetentionConfig struct {
	Active               bool  `yaml:"active"`
	AgeSeconds           int64 `yaml:"age_seconds"`
	CheckIntervalSeconds int64 `yaml:"check_interval_seconds"`
}

// rawSourceConfig mirrors SourceConfig with the alias keys kept apart.
type rawSourceConfig struct {
	Name                string          `yaml:"name"`
	Active              *bool           `yaml:"active"`
	PollIntervalSeconds int             `yaml:"poll_interval_seconds"`
	Interval            int             `yaml:"interval"`
	Fetch               *FetchConfig    `yaml:"fetch"`
	LegacyFetch         *FetchConfig    `yaml:"config"`
	Retention           RetentionConfig `yaml:"retention"`
}

// UnmarshalYAML resolves the alias keys into the canonical fields.
func (s *SourceConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw rawSourceConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.PollIntervalSeconds != 0 && raw.Interval != 0 && raw.PollIntervalSeconds != raw.Interval {
		return fmt.Errorf("source %q: poll_interval_seconds and interval disagree", raw.Name)
	}
	if raw.Fetch != nil && raw.LegacyFetch != nil {
		return fmt.Errorf("source %q: set either fetch or config, not both", raw.Name)
	}

	*s = SourceConfig{
		Name:                raw.Name,
		Active:              raw.Active == nil || *raw.Active,
		PollIntervalSeconds: raw.PollIntervalSeconds,
		Retention:           raw.Retention,
	}
	if s.PollIntervalSeconds == 0 {
		s.PollIntervalSeconds = raw.Interval
	}
	switch {
	case raw.Fetch != nil:
		s.Fetch = *raw.Fetch
	case raw.LegacyFetch != nil:
		s.Fetch = *raw.LegacyFetch
	}

	return nil
}
