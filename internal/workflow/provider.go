package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/cloud"
	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/cloud/hetzner"
	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/cloud/openstack"
)

// newProvider builds and authenticates the provider selected by opts.
func newProvider(ctx context.Context, opts Options, logger *slog.Logger) (cloud.Provider, error) {
	switch opts.Provider {
	case ProviderOpenStack:
		// Retries here only cover authentication and listing; deletes go
		// through the sweep executor.
		ostk := &openstack.Client{
			ProfileName: opts.CloudProfile,
			MetadataKey: opts.GroupKey,
			RetryConfig: cloud.RetryConfig{
				MaxRetries:       3,
				BaseDelay:        2 * time.Second,
				MaxDelay:         10 * time.Second,
				OperationTimeout: 30 * time.Second,
			},
		}

		logger.Debug("Attempting to connect to OpenStack", "profile", opts.CloudProfile)
		if err := ostk.NewClient(ctx); err != nil {
			return nil, fmt.Errorf("client initialization failed: %w", err)
		}
		logger.Debug("OpenStack connection established successfully")
		return ostk, nil

	case ProviderHetzner:
		hc := hetzner.NewClient(opts.HCloudToken)
		if opts.GroupKey != "" {
			hc.LabelKey = opts.GroupKey
		}
		return hc, nil
	}

	return nil, fmt.Errorf("unknown provider %q", opts.Provider)
}
