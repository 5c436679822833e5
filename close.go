package skyindex

import (
	"context"
	"errors"

	"github.com/hupe1980/skyindex/model"
)

// Orchestrator holds a baseline and an optimized engine built from the same
// dataset and dispatches identical queries to both.
type Orchestrator struct {
	opts    options
	engines [2]*Engine
	closed  bool
}

// Engine returns the engine of prototype p, or nil for an unknown prototype.
func (o *Orchestrator) Engine(p Prototype) *Engine {
	i, ok := p.slot()
	if !ok {
		return nil
	}
	return o.engines[i]
}

// Reports returns the build reports in build order.
func (o *Orchestrator) Reports() []BuildReport {
	out := make([]BuildReport, 0, len(o.engines))
	for _, e := range o.engines {
		if e != nil {
			out = append(out, e.report)
		}
	}
	return out
}

// Book adds r to both engines through capacity admission. When both engines
// accept or reject alike, the optimized engine's error is returned. Otherwise
// the engines no longer hold the same data and Book returns a
// *DivergenceError wrapping ErrDiverged and both outcomes.
func (o *Orchestrator) Book(ctx context.Context, r model.Reservation) error {
	if o.closed {
		return ErrClosed
	}
	baseErr := o.Engine(Baseline).Book(ctx, r)
	optErr := o.Engine(Optimized).Book(ctx, r)
	if !sameError(baseErr, optErr) {
		return &DivergenceError{Baseline: baseErr, Optimized: optErr}
	}
	return optErr
}

// Close releases both engines.
// After Close, every node allocated by Build has been freed exactly once.
// Calling Close again is a no-op.
func (o *Orchestrator) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true

	var errs []error
	for _, e := range o.engines {
		if e != nil {
			errs = append(errs, e.Close())
		}
	}
	return errors.Join(errs...)
}
