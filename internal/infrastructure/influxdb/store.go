package influxdb

import (
	"context"
	"fmt"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"

	"github.com/m-adamski/timeseries-data-provider/internal/series"
)

// valueField is the single field every sample is stored under.
const valueField = "value"

var _ series.Store = (*Client)(nil)

// EnsureDatabase creates the configured bucket when it does not exist yet.
//
// A positive retention_seconds becomes the bucket's expiry rule; per-source
// pruning runs independently of it.
func (c *Client) EnsureDatabase(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	buckets := c.client.BucketsAPI()
	if b, err := buckets.FindBucketByName(ctx, c.cfg.Bucket); err == nil && b != nil {
		return nil
	}

	org, err := c.client.OrganizationsAPI().FindOrganizationByName(ctx, c.cfg.Org)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrOrgNotFound, c.cfg.Org, err)
	}

	var rules []domain.RetentionRule
	if c.cfg.RetentionSeconds > 0 {
		rules = append(rules, domain.RetentionRule{EverySeconds: c.cfg.RetentionSeconds})
	}

	if _, err := buckets.CreateBucketWithName(ctx, org, c.cfg.Bucket, rules...); err != nil {
		return fmt.Errorf("creating bucket %q: %w", c.cfg.Bucket, err)
	}
	return nil
}

// Write stores one sample as a point with a single value field.
func (c *Client) Write(ctx context.Context, s series.Sample) error {
	if s.Measurement == "" {
		return series.ErrEmptyMeasurement
	}
	if !c.IsConnected() {
		return fmt.Errorf("%w: %w", series.ErrStoreWrite, ErrNotConnected)
	}

	point := write.NewPoint(
		s.Measurement,
		nil,
		map[string]interface{}{valueField: s.Value},
		s.Timestamp,
	)

	if err := c.writeAPI.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("%w: %w", series.ErrStoreWrite, err)
	}
	return nil
}

// Query runs a Flux range query and returns rows oldest first.
func (c *Client) Query(ctx context.Context, f series.RangeFilter) ([]series.Row, error) {
	if f.Measurement == "" {
		return nil, series.ErrEmptyMeasurement
	}
	if !c.IsConnected() {
		return nil, fmt.Errorf("%w: %w", series.ErrStoreQuery, ErrNotConnected)
	}

	result, err := c.queryAPI.Query(ctx, buildRangeQuery(c.cfg.Bucket, f))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", series.ErrStoreQuery, err)
	}
	defer result.Close()

	rows := make([]series.Row, 0)
	for result.Next() {
		record := result.Record()
		value, ok := toFloat(record.Value())
		if !ok {
			continue
		}
		rows = append(rows, series.Row{Value: value, Time: record.Time().UTC()})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", series.ErrStoreQuery, err)
	}

	return rows, nil
}

// Delete removes points of measurement strictly older than cutoff.
func (c *Client) Delete(ctx context.Context, measurement string, cutoff time.Time) error {
	if measurement == "" {
		return series.ErrEmptyMeasurement
	}
	if !c.IsConnected() {
		return fmt.Errorf("%w: %w", series.ErrStoreDelete, ErrNotConnected)
	}

	// The delete API treats stop as inclusive.
	start, stop := time.Unix(0, 0).UTC(), cutoff.UTC().Add(-time.Nanosecond)
	if !stop.After(start) {
		return nil
	}

	err := c.client.DeleteAPI().DeleteWithName(ctx, c.cfg.Org, c.cfg.Bucket, start, stop, deletePredicate(measurement))
	if err != nil {
		return fmt.Errorf("%w: %w", series.ErrStoreDelete, err)
	}
	return nil
}

// toFloat converts a Flux record value to float64.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
