package fetch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/theory/jsonpath"

	"github.com/m-adamski/timeseries-data-provider/internal/source"
)

// extractJSON decodes body and selects the value at path.
func extractJSON(body []byte, path string) (float64, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return 0, fmt.Errorf("%w: invalid JSON: %w", ErrMalformedResponse, err)
	}

	// A bare number body needs no selector.
	if n, ok := doc.(json.Number); ok {
		return numberValue(n)
	}

	if path == "" {
		path = source.DefaultValuePath
	}
	p, err := jsonpath.Parse(path)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid value path %q: %w", ErrMalformedResponse, path, err)
	}

	nodes := p.Select(doc)
	if len(nodes) == 0 {
		return 0, fmt.Errorf("%w: no value at %s", ErrMalformedResponse, path)
	}

	switch v := nodes[0].(type) {
	case json.Number:
		return numberValue(v)
	case float64:
		return finite(v)
	case string:
		return parseNumber(v)
	default:
		return 0, fmt.Errorf("%w: value at %s is %T, not a number", ErrMalformedResponse, path, v)
	}
}

// extractText parses the trimmed body as a number.
func extractText(body []byte) (float64, error) {
	return parseNumber(string(body))
}

// extractPrometheus sums every series of the named metric family.
func extractPrometheus(body []byte, metric string) (float64, error) {
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid exposition format: %w", ErrMalformedResponse, err)
	}

	family, ok := families[metric]
	if !ok || len(family.GetMetric()) == 0 {
		return 0, fmt.Errorf("%w: metric %q not found", ErrMalformedResponse, metric)
	}

	return familyValue(family)
}

// familyValue sums the samples of a counter, gauge or untyped family.
func familyValue(family *dto.MetricFamily) (float64, error) {
	var sum float64
	for _, m := range family.GetMetric() {
		switch {
		case m.Gauge != nil:
			sum += m.GetGauge().GetValue()
		case m.Counter != nil:
			sum += m.GetCounter().GetValue()
		case m.Untyped != nil:
			sum += m.GetUntyped().GetValue()
		default:
			return 0, fmt.Errorf("%w: metric %q is %s, want counter, gauge or untyped",
				ErrMalformedResponse, family.GetName(), family.GetType())
		}
	}

	return finite(sum)
}

func numberValue(n json.Number) (float64, error) {
	v, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return finite(v)
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformedResponse, strings.TrimSpace(s))
	}
	return finite(v)
}

// finite rejects NaN and infinities, which no store backend accepts.
func finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: value %v is not finite", ErrMalformedResponse, v)
	}
	return v, nil
}
