package influxdb

import (
	"fmt"
	"strings"
	"time"

	"github.com/m-adamski/timeseries-data-provider/internal/series"
)

// fluxEscaper escapes characters that terminate or alter a Flux string literal.
var fluxEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "${", `\${`)

// buildRangeQuery renders the Flux query for a range filter.
//
// Flux range() excludes stop, so stop is moved one nanosecond past To to keep
// the upper bound inclusive.
func buildRangeQuery(bucket string, f series.RangeFilter) string {
	var b strings.Builder

	fmt.Fprintf(&b, "from(bucket: \"%s\")\n", fluxEscaper.Replace(bucket))
	fmt.Fprintf(&b, "  |> range(start: %s, stop: %s)\n",
		fluxTime(f.From), fluxTime(f.To.Add(time.Nanosecond)))
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r._measurement == \"%s\" and r._field == \"%s\")\n",
		fluxEscaper.Replace(f.Measurement), valueField)
	b.WriteString("  |> sort(columns: [\"_time\"])")
	if f.Limit > 0 {
		fmt.Fprintf(&b, "\n  |> limit(n: %d)", f.Limit)
	}

	return b.String()
}

// deletePredicate renders the delete API predicate for one measurement.
func deletePredicate(measurement string) string {
	return fmt.Sprintf(`_measurement="%s"`, strings.ReplaceAll(measurement, `"`, `\"`))
}

func fluxTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
