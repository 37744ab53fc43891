package openstack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"slices"
	"time"

	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/cloud"
	"github.com/gophercloud/gophercloud/v2"
)

// errDeleteFailed is returned when the provider reports that a delete failed.
var errDeleteFailed = errors.New("delete failed")

// responseCode extracts the HTTP status of a gophercloud error, or 0.
func responseCode(err error) int {
	var gopherErrors gophercloud.ErrUnexpectedResponseCode
	if errors.As(err, &gopherErrors) {
		return gopherErrors.Actual
	}
	return 0
}

// isRateLimited reports whether the API rejected the request with 429 Too Many Requests.
func isRateLimited(err error) bool {
	return responseCode(err) == http.StatusTooManyRequests
}

// isNotFound reports whether the resource no longer exists.
func isNotFound(err error) bool {
	return responseCode(err) == http.StatusNotFound
}

// isRetryable determines if an error is transient and warrants a retry.
// It specifically checks for standard HTTP 429/5xx codes from Gophercloud
// and assumes other unknown network errors are also retryable.
func isRetryable(err error) bool {
	switch code := responseCode(err); code {
	case 0:
		// Not an HTTP error (DNS failure, connection reset): assume transient.
		return true
	case http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// ExecuteAction wraps a function with retry logic, including exponential backoff,
// jitter, and context timeouts. It is used for discovery and authentication
// calls, which are safe to repeat.
//
// opName is used for logging and debugging purposes.
// operation is the function to execute; it must accept a context to support cancellation.
func ExecuteAction(ctx context.Context, cfg cloud.RetryConfig, opName string, operation func(ctx context.Context) error) error {
	if cfg.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.OperationTimeout)
		defer cancel()
	}

	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%s timed out before attempt %d: %w", opName, attempt+1, ctx.Err())
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt == cfg.MaxRetries {
			break
		}

		slog.Warn("Transient error detected, scheduling retry",
			"operation", opName,
			"attempt", attempt+1,
			"max_retries", cfg.MaxRetries,
			"error", lastErr)

		// BaseDelay * 2^attempt plus up to 50% jitter, capped at MaxDelay.
		backoff := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
		var jitter time.Duration
		if half := int64(backoff) / 2; half > 0 {
			jitter = time.Duration(rand.Int63n(half))
		}
		sleepDuration := time.Duration(backoff) + jitter
		if cfg.MaxDelay > 0 {
			sleepDuration = min(sleepDuration, cfg.MaxDelay)
		}

		select {
		case <-time.After(sleepDuration):
			continue
		case <-ctx.Done():
			return fmt.Errorf("%s context cancelled during backoff: %w", opName, ctx.Err())
		}
	}

	return fmt.Errorf("%s failed after %d retries: %w", opName, cfg.MaxRetries, lastErr)
}

// waitUntilGone polls get until the resource reports 404. get returns the
// resource's current status; reaching one of the failed statuses ends the wait
// with errDeleteFailed.
func waitUntilGone(ctx context.Context, get func(ctx context.Context) (string, error), failed ...string) error {
	return gophercloud.WaitFor(ctx, func(ctx context.Context) (bool, error) {
		status, err := get(ctx)
		if err != nil {
			if isNotFound(err) {
				return true, nil
			}
			return false, err
		}
		if slices.Contains(failed, status) {
			return false, fmt.Errorf("%w: status %s", errDeleteFailed, status)
		}
		return false, nil
	})
}
