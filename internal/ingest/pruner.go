package ingest

import (
	"context"
	"time"
)

// Deleter is the part of series.Store the pruner needs.
type Deleter interface {
	Delete(ctx context.Context, measurement string, cutoff time.Time) error
}

// Pruner removes samples that fell out of a source's retention window.
type Pruner struct {
	store  Deleter
	logger Logger
}

// NewPruner creates a Pruner deleting from store.
func NewPruner(store Deleter) *Pruner {
	return &Pruner{store: store, logger: noopLogger{}}
}

// SetLogger sets the logger for the pruner.
func (p *Pruner) SetLogger(logger Logger) {
	p.logger = logger
}

// Prune deletes every sample of source older than cutoff.
func (p *Pruner) Prune(ctx context.Context, source string, cutoff time.Time) error {
	if err := p.store.Delete(ctx, source, cutoff); err != nil {
		p.logger.Error("pruning samples failed", "source", source, "cutoff", cutoff, "error", err)
		return err
	}
	p.logger.Debug("samples pruned", "source", source, "cutoff", cutoff)
	return nil
}
