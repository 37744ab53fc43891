package sweep

import (
	"context"
	"fmt"
)

// SweepClass deletes every item of one resource class through the executor,
// BatchSize items at a time.
func SweepClass[T Deletable](ctx context.Context, e *Executor, class string, items []T, op DeleteFunc[T], opts ...BatchOption) error {
	ce := e.forClass(class)
	return ProcessInBatches(ctx, items, ce.cfg.BatchSize, func(ctx context.Context, item T) error {
		return ExecuteWithRetry(ctx, ce, item, op)
	}, opts...)
}

// Phase is one resource class of a sweep. List is only called once all
// previous phases have completed.
type Phase[T Deletable] struct {
	Class  string
	List   func(ctx context.Context) ([]T, error)
	Delete DeleteFunc[T]
	// Completed, when set, is called after every item of the class is deleted.
	Completed func(PhaseReport)
}

// PhaseReport summarises a completed phase.
type PhaseReport struct {
	Class string
	Count int
}

// RunPhases executes phases strictly one after another and stops at the first
// phase that fails. Reports are returned for the phases that completed, so the
// failing phase is phases[len(reports)]. Delete errors are returned unchanged.
func RunPhases[T Deletable](ctx context.Context, e *Executor, phases ...Phase[T]) ([]PhaseReport, error) {
	reports := make([]PhaseReport, 0, len(phases))

	for _, ph := range phases {
		items, err := ph.List(ctx)
		if err != nil {
			return reports, fmt.Errorf("listing %s: %w", ph.Class, err)
		}

		if err := SweepClass(ctx, e, ph.Class, items, ph.Delete); err != nil {
			return reports, err
		}
		report := PhaseReport{Class: ph.Class, Count: len(items)}
		if ph.Completed != nil {
			ph.Completed(report)
		}
		reports = append(reports, report)
	}
	return reports, nil
}
