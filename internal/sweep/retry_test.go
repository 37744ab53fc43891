package sweep

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

type fakeResource struct {
	name string
}

func (f fakeResource) DisplayName() string { return f.name }

// eventRecorder collects events from concurrent attempts.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []time.Duration
	for _, e := range r.events {
		if e.Kind == AttemptRateLimited {
			out = append(out, e.Delay)
		}
	}
	return out
}

func (r *eventRecorder) count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func newTestExecutor(t *testing.T, cfg Config) (*Executor, *clockwork.FakeClock, *eventRecorder) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	rec := &eventRecorder{}
	exec, err := NewExecutor(cfg, WithClock(clock), WithObserver(rec))
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}
	return exec, clock, rec
}

// advanceThrough waits for the executor to block on its backoff timer and then
// moves the fake clock forward by exactly each expected delay.
func advanceThrough(t *testing.T, clock *clockwork.FakeClock, delays []time.Duration) {
	t.Helper()
	for i, d := range delays {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := clock.BlockUntilContext(ctx, 1)
		cancel()
		if err != nil {
			t.Fatalf("executor never waited before retry %d: %v", i+1, err)
		}
		clock.Advance(d)
	}
}

func TestExecuteWithRetry_AlwaysRateLimited(t *testing.T) {
	cfg := Config{MaxRetries: 5, InitialDelay: 2 * time.Second, BatchSize: 1}
	exec, clock, rec := newTestExecutor(t, cfg)

	throttle := errors.New("429 too many requests")
	attempts := 0
	op := func(_ context.Context, _ fakeResource) Result {
		attempts++
		return Throttled(throttle)
	}

	done := make(chan error, 1)
	go func() {
		done <- ExecuteWithRetry(context.Background(), exec, fakeResource{name: "web-1"}, op)
	}()

	wantDelays := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
	advanceThrough(t, clock, wantDelays)

	var err error
	select {
	case err = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ExecuteWithRetry did not return")
	}

	if attempts != 5 {
		t.Errorf("attempts = %d, want 5", attempts)
	}
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Errorf("error = %v, want ErrRetriesExhausted", err)
	}
	if !errors.Is(err, throttle) {
		t.Errorf("error = %v, want it to wrap the rate limit error", err)
	}

	got := rec.delays()
	if len(got) != len(wantDelays) {
		t.Fatalf("observed %d delays, want %d", len(got), len(wantDelays))
	}
	for i := range wantDelays {
		if got[i] != wantDelays[i] {
			t.Errorf("delay before attempt %d = %s, want %s", i+2, got[i], wantDelays[i])
		}
	}
	if n := rec.count(RetriesExhausted); n != 1 {
		t.Errorf("exhausted events = %d, want 1", n)
	}
}

func TestExecuteWithRetry_BackoffGrowth(t *testing.T) {
	tests := []struct {
		name         string
		maxRetries   int
		initialDelay time.Duration
	}{
		{name: "Two Attempts", maxRetries: 2, initialDelay: time.Second},
		{name: "Default Budget", maxRetries: 5, initialDelay: 2 * time.Second},
		{name: "Long Budget", maxRetries: 8, initialDelay: 100 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, clock, rec := newTestExecutor(t, Config{
				MaxRetries:   tt.maxRetries,
				InitialDelay: tt.initialDelay,
				BatchSize:    1,
			})

			op := func(_ context.Context, _ fakeResource) Result { return Throttled(nil) }

			done := make(chan error, 1)
			go func() {
				done <- ExecuteWithRetry(context.Background(), exec, fakeResource{name: "plan"}, op)
			}()

			var want []time.Duration
			for k := 1; k < tt.maxRetries; k++ {
				want = append(want, tt.initialDelay*time.Duration(1<<(k-1)))
			}
			advanceThrough(t, clock, want)

			if err := <-done; !errors.Is(err, ErrRateLimited) {
				t.Errorf("error = %v, want ErrRateLimited", err)
			}

			got := rec.delays()
			for i := range want {
				if i >= len(got) || got[i] != want[i] {
					t.Fatalf("delays = %v, want %v", got, want)
				}
			}
		})
	}
}

func TestExecuteWithRetry_NonRetryableError(t *testing.T) {
	exec, _, rec := newTestExecutor(t, DefaultConfig())

	forbidden := errors.New("403 forbidden")
	attempts := 0
	op := func(_ context.Context, _ fakeResource) Result {
		attempts++
		return Failure(forbidden)
	}

	err := ExecuteWithRetry(context.Background(), exec, fakeResource{name: "web-1"}, op)
	if err != forbidden {
		t.Errorf("error = %v, want the provider error unchanged", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if n := rec.count(AttemptRateLimited); n != 0 {
		t.Errorf("rate limited events = %d, want 0", n)
	}
}

func TestExecuteWithRetry_SuccessAfterOneRateLimit(t *testing.T) {
	exec, clock, rec := newTestExecutor(t, DefaultConfig())

	attempts := 0
	op := func(_ context.Context, _ fakeResource) Result {
		attempts++
		if attempts == 1 {
			return Throttled(nil)
		}
		return Success()
	}

	done := make(chan error, 1)
	go func() {
		done <- ExecuteWithRetry(context.Background(), exec, fakeResource{name: "web-1"}, op)
	}()
	advanceThrough(t, clock, []time.Duration{2 * time.Second})

	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if got := rec.delays(); len(got) != 1 {
		t.Errorf("delays = %v, want exactly one", got)
	}
	if n := rec.count(AttemptSucceeded); n != 1 {
		t.Errorf("succeeded events = %d, want 1", n)
	}
}

func TestExecuteWithRetry_FirstAttemptSuccess(t *testing.T) {
	exec, _, rec := newTestExecutor(t, DefaultConfig())

	attempts := 0
	op := func(_ context.Context, _ fakeResource) Result {
		attempts++
		return Success()
	}

	if err := ExecuteWithRetry(context.Background(), exec, fakeResource{name: "web-1"}, op); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if n := rec.count(AttemptStarted); n != 1 {
		t.Errorf("attempt events = %d, want 1", n)
	}
}

func TestExecuteWithRetry_CancelledDuringBackoff(t *testing.T) {
	exec, clock, _ := newTestExecutor(t, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := 0
	op := func(_ context.Context, _ fakeResource) Result {
		attempts++
		return Throttled(nil)
	}

	done := make(chan error, 1)
	go func() {
		done <- ExecuteWithRetry(ctx, exec, fakeResource{name: "web-1"}, op)
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	if err := clock.BlockUntilContext(waitCtx, 1); err != nil {
		t.Fatalf("executor never waited: %v", err)
	}
	cancel()

	err := <-done
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestNewExecutor_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "Zero Retries", cfg: Config{MaxRetries: 0, InitialDelay: time.Second, BatchSize: 4}},
		{name: "Negative Delay", cfg: Config{MaxRetries: 5, InitialDelay: -time.Second, BatchSize: 4}},
		{name: "Zero Batch Size", cfg: Config{MaxRetries: 5, InitialDelay: time.Second, BatchSize: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewExecutor(tt.cfg); err == nil {
				t.Errorf("NewExecutor(%+v) expected error", tt.cfg)
			}
		})
	}
}

func TestConfig_WorstCaseDelay(t *testing.T) {
	cfg := DefaultConfig()
	if got, want := cfg.WorstCaseDelay(), 30*time.Second; got != want {
		t.Errorf("WorstCaseDelay() = %s, want %s", got, want)
	}
}

func TestClassify(t *testing.T) {
	throttle := errors.New("throttled")
	isThrottle := func(err error) bool { return errors.Is(err, throttle) }

	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{name: "nil error", err: nil, want: Succeeded},
		{name: "rate limited", err: throttle, want: RateLimited},
		{name: "other error", err: errors.New("conflict"), want: Failed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err, isThrottle); got.Outcome != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got.Outcome, tt.want)
			}
		})
	}
}
