package fetch

import (
	"errors"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/m-adamski/timeseries-data-provider/internal/source"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		want    float64
		wantErr bool
	}{
		{"default path", "", `{"value": 3.5}`, 3.5, false},
		{"nested path", "$.data.load[1]", `{"data": {"load": [0.1, 0.7, 0.9]}}`, 0.7, false},
		{"bare number", "$.value", `42`, 42, false},
		{"numeric string", "$.value", `{"value": " 17.25 "}`, 17.25, false},
		{"integer", "$.count", `{"count": 12}`, 12, false},
		{"missing", "$.value", `{"other": 1}`, 0, true},
		{"not a number", "$.value", `{"value": true}`, 0, true},
		{"object value", "$.value", `{"value": {"x": 1}}`, 0, true},
		{"invalid json", "$.value", `{"value":`, 0, true},
		{"invalid path", "$[", `{"value": 1}`, 0, true},
		{"string not numeric", "$.value", `{"value": "high"}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(source.FetchConfig{Format: source.FormatJSON, ValuePath: tt.path}, []byte(tt.body))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("Extract() error = %v, want ErrMalformedResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		body    string
		want    float64
		wantErr bool
	}{
		{"12.5\n", 12.5, false},
		{"  -3 ", -3, false},
		{"1e3", 1000, false},
		{"NaN", 0, true},
		{"+Inf", 0, true},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := Extract(source.FetchConfig{Format: source.FormatText}, []byte(tt.body))
		if (err != nil) != tt.wantErr {
			t.Errorf("Extract(%q) error = %v, wantErr %v", tt.body, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Extract(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}

const exposition = `# HELP http_requests_total Requests served.
# TYPE http_requests_total counter
http_requests_total{code="200"} 1027
http_requests_total{code="500"} 3
# HELP node_load1 1m load average.
# TYPE node_load1 gauge
node_load1 0.42
# TYPE rpc_duration_seconds summary
rpc_duration_seconds{quantile="0.5"} 0.05
rpc_duration_seconds_sum 17
rpc_duration_seconds_count 100
plain_value 7
`

func TestExtractPrometheus(t *testing.T) {
	tests := []struct {
		metric  string
		want    float64
		wantErr bool
	}{
		{"http_requests_total", 1030, false},
		{"node_load1", 0.42, false},
		{"plain_value", 7, false},
		{"rpc_duration_seconds", 0, true},
		{"missing_metric", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			got, err := Extract(source.FetchConfig{Format: source.FormatPrometheus, Metric: tt.metric}, []byte(exposition))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("Extract() error = %v, want ErrMalformedResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractPrometheusInvalid(t *testing.T) {
	_, err := Extract(source.FetchConfig{Format: source.FormatPrometheus, Metric: "x"}, []byte("x{ 1\n"))
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Extract() error = %v, want ErrMalformedResponse", err)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	_, err := Extract(source.FetchConfig{Format: "xml"}, []byte("<v>1</v>"))
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Extract() error = %v, want ErrMalformedResponse", err)
	}
}

func TestFamilyValue(t *testing.T) {
	gauge := func(v float64) *dto.Metric {
		return &dto.Metric{Gauge: &dto.Gauge{Value: &v}}
	}
	name := "temperature"
	gaugeType := dto.MetricType_GAUGE
	histType := dto.MetricType_HISTOGRAM

	family := &dto.MetricFamily{Name: &name, Type: &gaugeType, Metric: []*dto.Metric{gauge(20), gauge(1.5)}}
	got, err := familyValue(family)
	if err != nil {
		t.Fatalf("familyValue() error = %v", err)
	}
	if got != 21.5 {
		t.Errorf("familyValue() = %v, want 21.5", got)
	}

	count := uint64(4)
	family = &dto.MetricFamily{
		Name:   &name,
		Type:   &histType,
		Metric: []*dto.Metric{{Histogram: &dto.Histogram{SampleCount: &count}}},
	}
	if _, err := familyValue(family); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("familyValue(histogram) error = %v, want ErrMalformedResponse", err)
	}
}
