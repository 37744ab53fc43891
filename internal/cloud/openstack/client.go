package openstack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/cloud"
	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack"
	"github.com/gophercloud/utils/v2/openstack/clientconfig"
)

// DefaultMetadataKey is the server and volume metadata key holding the resource group name.
const DefaultMetadataKey = "resource_group"

// Client manages the connection and service clients for OpenStack interactions.
// It wraps standard gophercloud clients with retry logic and profile management.
type Client struct {
	// ProfileName corresponds to the entry in clouds.yaml
	ProfileName string
	// RetryConfig defines the behavior for transient errors while authenticating and listing.
	RetryConfig cloud.RetryConfig
	// MetadataKey is the metadata key used to tag resource group membership.
	MetadataKey string

	// Internal service clients
	ComputeClient      *gophercloud.ServiceClient
	BlockStorageClient *gophercloud.ServiceClient
}

// executeWithRetry is a helper to run any operation using the client's retry configuration.
func (c *Client) executeWithRetry(ctx context.Context, opName string, operation func(ctx context.Context) error) error {
	return ExecuteAction(ctx, c.RetryConfig, opName, operation)
}

func (c *Client) metadataKey() string {
	if c.MetadataKey == "" {
		return DefaultMetadataKey
	}
	return c.MetadataKey
}

// NewClient initializes the OpenStack provider and the Compute (Nova) and
// Block Storage (Cinder) service clients.
// It attempts to authenticate using the configured ProfileName with retry logic.
func (c *Client) NewClient(ctx context.Context) error {
	slog.Debug("Initializing OpenStack client", "profile", c.ProfileName)

	var provider *gophercloud.ProviderClient

	authenticateOperation := func(ctx context.Context) error {
		opts := &clientconfig.ClientOpts{
			Cloud: c.ProfileName,
		}

		p, err := clientconfig.AuthenticatedClient(ctx, opts)
		if err != nil {
			return err
		}

		provider = p
		return nil
	}

	// 1. Establish Connection & Authentication
	if err := c.executeWithRetry(ctx, "OpenStack Authentication", authenticateOperation); err != nil {
		return fmt.Errorf("authentication failed for profile '%s': %w", c.ProfileName, err)
	}

	cloudConfig, err := clientconfig.GetCloudFromYAML(&clientconfig.ClientOpts{Cloud: c.ProfileName})
	if err != nil {
		return fmt.Errorf("failed to parse cloud config: %w", err)
	}

	var availability gophercloud.Availability
	switch cloudConfig.EndpointType {
	case "internal":
		availability = gophercloud.AvailabilityInternal
	case "admin":
		availability = gophercloud.AvailabilityAdmin
	default:
		availability = gophercloud.AvailabilityPublic
	}

	endpointOpts := gophercloud.EndpointOpts{
		Availability: availability,
		Region:       cloudConfig.RegionName,
	}

	// 2. Initialize Compute (Nova) Client
	compute, err := openstack.NewComputeV2(provider, endpointOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize Compute v2 client: %w", err)
	}

	// 3. Initialize Block Storage (Cinder) Client
	blockStorage, err := openstack.NewBlockStorageV3(provider, endpointOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize Block Storage v3 client: %w", err)
	}

	c.ComputeClient = compute
	c.BlockStorageClient = blockStorage

	return nil
}
