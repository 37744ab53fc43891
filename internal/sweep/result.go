package sweep

import "errors"

var (
	// ErrRateLimited is used when a delete reports throttling without a provider error.
	ErrRateLimited = errors.New("rate limited by provider")
	// ErrDeleteFailed is used when a delete reports failure without a provider error.
	ErrDeleteFailed = errors.New("delete failed")
	// ErrRetriesExhausted marks a delete that stayed rate limited for the whole retry budget.
	ErrRetriesExhausted = errors.New("rate limit retries exhausted")
)

// Outcome is the discriminant of a single delete attempt.
type Outcome int

const (
	Succeeded Outcome = iota
	RateLimited
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case RateLimited:
		return "rate_limited"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is returned by a DeleteFunc for every attempt. Only a RateLimited
// outcome is retried by ExecuteWithRetry.
type Result struct {
	Outcome Outcome
	Err     error
}

// Success reports a delete the provider has confirmed as complete.
func Success() Result {
	return Result{Outcome: Succeeded}
}

// Throttled reports a delete rejected because of the provider's request rate limit.
func Throttled(err error) Result {
	if err == nil {
		err = ErrRateLimited
	}
	return Result{Outcome: RateLimited, Err: err}
}

// Failure reports a delete that must not be retried.
func Failure(err error) Result {
	if err == nil {
		err = ErrDeleteFailed
	}
	return Result{Outcome: Failed, Err: err}
}

// Classify turns a provider error into a Result. A nil error is a success,
// errors matched by isRateLimited are throttled and everything else is terminal.
func Classify(err error, isRateLimited func(error) bool) Result {
	if err == nil {
		return Success()
	}
	if isRateLimited != nil && isRateLimited(err) {
		return Throttled(err)
	}
	return Failure(err)
}

// normalize guarantees a non-nil error for non-success outcomes.
func (r Result) normalize() Result {
	switch r.Outcome {
	case Succeeded:
		return Result{Outcome: Succeeded}
	case RateLimited:
		return Throttled(r.Err)
	default:
		return Failure(r.Err)
	}
}
