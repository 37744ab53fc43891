package openstack

import (
	"context"
	"fmt"

	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/servers"
)

// ListGroupServers returns every server whose metadata tags it as a member of group.
//
// Nova cannot filter on arbitrary metadata, so the full server list of the
// project is fetched and filtered client side.
func (c *Client) ListGroupServers(ctx context.Context, group string) ([]servers.Server, error) {
	var groupServers []servers.Server

	listOperation := func(innerCtx context.Context) error {
		pages, err := servers.List(c.ComputeClient, servers.ListOpts{}).AllPages(innerCtx)
		if err != nil {
			return err
		}

		all, err := servers.ExtractServers(pages)
		if err != nil {
			return err
		}

		groupServers = groupServers[:0]
		for _, s := range all {
			if s.Metadata[c.metadataKey()] == group {
				groupServers = append(groupServers, s)
			}
		}
		return nil
	}

	if err := c.executeWithRetry(ctx, "ListGroupServers", listOperation); err != nil {
		return nil, err
	}
	return groupServers, nil
}

// DeleteServer removes a server and blocks until Nova no longer knows about it.
//
// Behavior:
//   - Idempotent: a server that is already gone counts as deleted, so a retried
//     delete after a throttled status poll succeeds.
//   - Synchronous Wait: the server is polled until the API answers 404, so the
//     capacity it uses is released before the caller moves on. A server that
//     lands in ERROR instead fails the delete.
//   - No internal retry: errors (including 429) are returned to the sweep executor.
func (c *Client) DeleteServer(ctx context.Context, serverID string) error {
	err := servers.Delete(ctx, c.ComputeClient, serverID).ExtractErr()
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	err = waitUntilGone(ctx, func(ctx context.Context) (string, error) {
		s, err := servers.Get(ctx, c.ComputeClient, serverID).Extract()
		if err != nil {
			return "", err
		}
		return s.Status, nil
	}, "ERROR")
	if err != nil {
		return fmt.Errorf("failed waiting for server %s to be deleted: %w", serverID, err)
	}
	return nil
}
