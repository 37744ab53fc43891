package sweep

import (
	"log/slog"
	"time"
)

// EventKind identifies a step of the per-item retry state machine.
type EventKind int

const (
	AttemptStarted EventKind = iota
	AttemptSucceeded
	AttemptRateLimited
	RetriesExhausted
	AttemptFailed
)

func (k EventKind) String() string {
	switch k {
	case AttemptStarted:
		return "attempt_started"
	case AttemptSucceeded:
		return "succeeded"
	case AttemptRateLimited:
		return "rate_limited"
	case RetriesExhausted:
		return "exhausted"
	case AttemptFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is emitted by ExecuteWithRetry. Events are advisory; nothing in the
// retry decision depends on how they are handled.
type Event struct {
	Kind    EventKind
	Class   string
	Item    string
	Attempt int
	// Delay is set for AttemptRateLimited and holds the wait before the next attempt.
	Delay time.Duration
	Err   error
}

// Observer receives retry events. Implementations must be safe for concurrent use.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// Observers fans every event out to each non-nil observer in order.
func Observers(observers ...Observer) Observer {
	var m multiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

type logObserver struct {
	logger *slog.Logger
}

// LogObserver writes progress messages for every attempt, retry and outcome.
func LogObserver(logger *slog.Logger) Observer {
	return logObserver{logger: logger}
}

func (l logObserver) Observe(e Event) {
	log := l.logger.With("class", e.Class, "resource", e.Item, "attempt", e.Attempt)

	switch e.Kind {
	case AttemptStarted:
		log.Info("Removing resource")
	case AttemptSucceeded:
		log.Info("Removed resource")
	case AttemptRateLimited:
		log.Warn("Rate limit hit while deleting resource, retrying",
			"retry_in", e.Delay, "error", e.Err)
	case RetriesExhausted:
		log.Error("Failed to delete resource, rate limit retries exhausted", "error", e.Err)
	case AttemptFailed:
		log.Error("Failed to delete resource", "error", e.Err)
	}
}

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
