package sweep

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"k8s.io/apimachinery/pkg/util/wait"
)

// Deletable is anything the sweep can delete. The display name is only used
// for progress reporting.
type Deletable interface {
	DisplayName() string
}

// DeleteFunc performs one remote deletion and returns once the provider
// reports it as complete, not merely accepted.
type DeleteFunc[T Deletable] func(ctx context.Context, item T) Result

// Executor carries the configuration and collaborators used by ExecuteWithRetry.
// It is immutable after construction and may be shared between goroutines.
type Executor struct {
	cfg      Config
	clock    clockwork.Clock
	observer Observer
	class    string
}

// Option customises an Executor.
type Option func(*Executor)

// WithObserver routes retry events to o.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithClock replaces the wall clock used for backoff waits.
func WithClock(c clockwork.Clock) Option {
	return func(e *Executor) {
		if c != nil {
			e.clock = c
		}
	}
}

// NewExecutor validates cfg and builds an Executor.
func NewExecutor(cfg Config, opts ...Option) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep configuration: %w", err)
	}

	e := &Executor{
		cfg:      cfg,
		clock:    clockwork.NewRealClock(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the executor configuration.
func (e *Executor) Config() Config {
	return e.cfg
}

// forClass returns a copy of the executor whose events carry the class label.
func (e *Executor) forClass(class string) *Executor {
	c := *e
	c.class = class
	return &c
}

func (e *Executor) emit(ev Event) {
	ev.Class = e.class
	e.observer.Observe(ev)
}

// backoff yields InitialDelay, 2*InitialDelay, 4*InitialDelay, ... with no
// jitter and no ceiling.
func (e *Executor) backoff() *wait.Backoff {
	return &wait.Backoff{
		Duration: e.cfg.InitialDelay,
		Factor:   2,
		Steps:    e.cfg.MaxRetries,
	}
}

// ExecuteWithRetry deletes item with op, absorbing rate limit rejections.
//
// A RateLimited result consumes one attempt from the budget. Once MaxRetries
// attempts have been rate limited the triggering error is returned wrapped
// with ErrRetriesExhausted; otherwise the executor waits and tries again with
// a doubled delay. A Failed result is returned unchanged without any retry.
//
// Only context cancellation interrupts a wait.
func ExecuteWithRetry[T Deletable](ctx context.Context, e *Executor, item T, op DeleteFunc[T]) error {
	name := item.DisplayName()
	backoff := e.backoff()

	for attempt := 1; ; attempt++ {
		e.emit(Event{Kind: AttemptStarted, Item: name, Attempt: attempt})

		res := op(ctx, item).normalize()
		switch res.Outcome {
		case Succeeded:
			e.emit(Event{Kind: AttemptSucceeded, Item: name, Attempt: attempt})
			return nil

		case Failed:
			e.emit(Event{Kind: AttemptFailed, Item: name, Attempt: attempt, Err: res.Err})
			return res.Err
		}

		if attempt >= e.cfg.MaxRetries {
			e.emit(Event{Kind: RetriesExhausted, Item: name, Attempt: attempt, Err: res.Err})
			return fmt.Errorf("%s: %w after %d attempts: %w", name, ErrRetriesExhausted, attempt, res.Err)
		}

		delay := backoff.Step()
		e.emit(Event{Kind: AttemptRateLimited, Item: name, Attempt: attempt, Delay: delay, Err: res.Err})

		select {
		case <-e.clock.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s: cancelled while waiting to retry: %w", name, ctx.Err())
		}
	}
}
