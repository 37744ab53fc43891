package hetzner

import (
	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// IsRateLimited checks if an error indicates rate limiting.
func IsRateLimited(err error) bool {
	return err != nil && hcloud.IsError(err, hcloud.ErrorCodeRateLimitExceeded)
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return err != nil && hcloud.IsError(err, hcloud.ErrorCodeNotFound)
}
