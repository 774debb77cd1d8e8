package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/m-adamski/timeseries-data-provider/internal/series"
	"github.com/m-adamski/timeseries-data-provider/internal/source"
)

// Querier is the part of series.Store the translator needs.
type Querier interface {
	Query(ctx context.Context, f series.RangeFilter) ([]series.Row, error)
}

// Resolver looks up active sources by name.
type Resolver interface {
	LookupActive(name string) (source.Definition, bool)
}

// Translator maps dashboard queries onto store range queries.
type Translator struct {
	store   Querier
	sources Resolver
}

// NewTranslator creates a Translator reading from store and resolving
// targets against sources.
func NewTranslator(store Querier, sources Resolver) *Translator {
	return &Translator{store: store, sources: sources}
}

// resolved is a target that names an active source.
type resolved struct {
	target Target
	rows   []series.Row
}

// Query runs one range query per resolvable target and reshapes the rows.
//
// Timeseries results come first in target order, followed by at most one
// table result. Any store failure fails the whole request.
func (t *Translator) Query(ctx context.Context, req Request) ([]Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	targets := make([]*resolved, 0, len(req.Targets))
	for _, tgt := range req.Targets {
		if _, ok := t.sources.LookupActive(tgt.Target); !ok {
			continue
		}
		targets = append(targets, &resolved{target: tgt})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range targets {
		g.Go(func() error {
			rows, err := t.store.Query(gctx, series.RangeFilter{
				Measurement: r.target.Target,
				From:        req.Range.From,
				To:          req.Range.To,
				Limit:       req.MaxDataPoints,
			})
			if err != nil {
				return fmt.Errorf("querying %q: %w", r.target.Target, err)
			}
			r.rows = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reshape(targets), nil
}

// reshape builds the response from resolved targets in request order.
func reshape(targets []*resolved) []Result {
	results := make([]Result, 0, len(targets)+1)
	table := newTableResult()

	for _, r := range targets {
		switch r.target.Type {
		case Table:
			for _, row := range r.rows {
				table.Rows = append(table.Rows, []any{r.target.Target, row.Value, epochMillis(row.Time)})
			}
		default:
			ts := &TimeseriesResult{
				Target:     r.target.Target,
				Datapoints: make([][2]float64, 0, len(r.rows)),
			}
			for _, row := range r.rows {
				ts.Datapoints = append(ts.Datapoints, [2]float64{row.Value, epochMillis(row.Time)})
			}
			results = append(results, ts)
		}
	}

	if len(table.Rows) > 0 {
		results = append(results, table)
	}
	return results
}
