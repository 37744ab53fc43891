package hetzner

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// DefaultLabelKey is the label holding the resource group name.
const DefaultLabelKey = "resource-group"

// Client wraps the Hetzner Cloud API client for resource group sweeps.
type Client struct {
	// LabelKey is the label used to tag resource group membership.
	LabelKey string

	hc *hcloud.Client
}

// NewClient creates a Client authenticated with token. Extra hcloud options are
// applied after the token, which lets tests override the endpoint.
//
// hcloud-go's own request retries are disabled: every rate limit rejection is
// reported straight back so the sweep executor owns the retry budget and delays.
func NewClient(token string, opts ...hcloud.ClientOption) *Client {
	opts = append([]hcloud.ClientOption{
		hcloud.WithToken(token),
		hcloud.WithApplication("groupsweep", ""),
		hcloud.WithRetryOpts(hcloud.RetryOpts{MaxRetries: 0}),
	}, opts...)

	return &Client{
		LabelKey: DefaultLabelKey,
		hc:       hcloud.NewClient(opts...),
	}
}

// labelSelector builds the selector matching members of group.
func (c *Client) labelSelector(group string) string {
	key := c.LabelKey
	if key == "" {
		key = DefaultLabelKey
	}
	return fmt.Sprintf("%s=%s", key, group)
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hetzner resource id %q: %w", id, err)
	}
	return n, nil
}

// ListGroupServers returns the servers labelled as members of group.
func (c *Client) ListGroupServers(ctx context.Context, group string) ([]*hcloud.Server, error) {
	return c.hc.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: c.labelSelector(group)},
	})
}

// ListGroupVolumes returns the volumes labelled as members of group.
func (c *Client) ListGroupVolumes(ctx context.Context, group string) ([]*hcloud.Volume, error) {
	return c.hc.Volume.AllWithOpts(ctx, hcloud.VolumeListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: c.labelSelector(group)},
	})
}

// DeleteServer deletes a server and waits for the delete action to finish.
// A server that is already gone counts as deleted.
func (c *Client) DeleteServer(ctx context.Context, id string) error {
	serverID, err := parseID(id)
	if err != nil {
		return err
	}

	result, _, err := c.hc.Server.DeleteWithResult(ctx, &hcloud.Server{ID: serverID})
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	if result != nil && result.Action != nil {
		if err := c.hc.Action.WaitFor(ctx, result.Action); err != nil {
			return fmt.Errorf("failed waiting for server %d to be deleted: %w", serverID, err)
		}
	}
	return nil
}

// DeleteVolume deletes a volume. The API removes volumes synchronously.
func (c *Client) DeleteVolume(ctx context.Context, id string) error {
	volumeID, err := parseID(id)
	if err != nil {
		return err
	}

	if _, err := c.hc.Volume.Delete(ctx, &hcloud.Volume{ID: volumeID}); err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	return nil
}
