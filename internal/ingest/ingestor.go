package ingest

import (
	"context"
	"time"

	"github.com/m-adamski/timeseries-data-provider/internal/series"
)

// Writer is the part of series.Store the ingestor needs.
type Writer interface {
	Write(ctx context.Context, s series.Sample) error
}

// Publisher forwards stored samples to subscribers.
type Publisher interface {
	PublishSample(ctx context.Context, s series.Sample) error
}

// Ingestor writes fetched values to the store.
type Ingestor struct {
	store     Writer
	publisher Publisher
	logger    Logger
}

// NewIngestor creates an Ingestor writing to store.
func NewIngestor(store Writer) *Ingestor {
	return &Ingestor{store: store, logger: noopLogger{}}
}

// SetLogger sets the logger for the ingestor.
func (i *Ingestor) SetLogger(logger Logger) {
	i.logger = logger
}

// SetPublisher enables publishing of every stored sample.
func (i *Ingestor) SetPublisher(p Publisher) {
	i.publisher = p
}

// Ingest stores value for source at the given time.
func (i *Ingestor) Ingest(ctx context.Context, source string, value float64, at time.Time) error {
	sample := series.Sample{
		Measurement: source,
		Value:       value,
		Timestamp:   at,
	}

	if err := i.store.Write(ctx, sample); err != nil {
		i.logger.Error("storing sample failed", "source", source, "error", err)
		return err
	}
	i.logger.Debug("sample stored", "source", source, "value", value)

	if i.publisher != nil {
		if err := i.publisher.PublishSample(ctx, sample); err != nil {
			i.logger.Warn("publishing sample failed", "source", source, "error", err)
		}
	}

	return nil
}
