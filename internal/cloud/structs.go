package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/sweep"
)

// RetryConfig defines the parameters for the exponential backoff and retry mechanism
// used around discovery and authentication calls. Deletes are retried by the sweep
// executor instead.
type RetryConfig struct {
	// MaxRetries is the maximum number of additional attempts after the initial failure.
	// For example, if MaxRetries is 3, the operation runs at most 4 times (1 initial + 3 retries).
	MaxRetries int

	// BaseDelay is the initial wait time before the first retry.
	// This duration increases exponentially with each attempt (BaseDelay * 2^attempt).
	BaseDelay time.Duration

	// MaxDelay is the hard limit for the sleep duration between retries.
	MaxDelay time.Duration

	// OperationTimeout is the total time limit for the entire operation, including all retries.
	OperationTimeout time.Duration
}

// ResourceClass groups resources that are deleted together. Classes are swept in
// the order returned by SweepOrder.
type ResourceClass string

const (
	// ClassInstance covers compute instances (servers).
	ClassInstance ResourceClass = "instance"
	// ClassCapacity covers the capacity allocations backing the instances (volumes).
	ClassCapacity ResourceClass = "capacity"
)

// SweepOrder lists the classes in the order they must be retired.
func SweepOrder() []ResourceClass {
	return []ResourceClass{ClassInstance, ClassCapacity}
}

// Plural returns the human readable name used in progress messages.
func (c ResourceClass) Plural() string {
	switch c {
	case ClassInstance:
		return "compute instances"
	case ClassCapacity:
		return "capacity allocations"
	default:
		return string(c)
	}
}

// Resource is an opaque, provider assigned handle for something that can be deleted.
type Resource struct {
	ID    string
	Name  string
	Class ResourceClass
	Group string
}

// DisplayName implements sweep.Deletable.
func (r Resource) DisplayName() string {
	if r.Name == "" {
		return r.ID
	}
	return fmt.Sprintf("%s (%s)", r.Name, r.ID)
}

// Provider is the resource management collaborator a sweep runs against.
// Authentication must already be established when a Provider is handed out.
type Provider interface {
	// Name returns the identifier for this provider (e.g. "openstack").
	Name() string

	// ListResources enumerates the resources of class belonging to group.
	// It returns an empty slice when nothing matches.
	ListResources(ctx context.Context, class ResourceClass, group string) ([]Resource, error)

	// DeleteResource removes r and blocks until the provider reports the deletion
	// as complete. Throttling is reported as a sweep.RateLimited result.
	DeleteResource(ctx context.Context, r Resource) sweep.Result
}
