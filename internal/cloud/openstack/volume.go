package openstack

import (
	"context"
	"fmt"

	"github.com/gophercloud/gophercloud/v2/openstack/blockstorage/v3/volumes"
)

// ListGroupVolumes returns every volume whose metadata tags it as a member of group.
// Cinder filters on metadata server side.
func (c *Client) ListGroupVolumes(ctx context.Context, group string) ([]volumes.Volume, error) {
	var groupVolumes []volumes.Volume

	listOperation := func(innerCtx context.Context) error {
		opts := volumes.ListOpts{
			Metadata: map[string]string{c.metadataKey(): group},
		}

		pages, err := volumes.List(c.BlockStorageClient, opts).AllPages(innerCtx)
		if err != nil {
			return err
		}

		vols, err := volumes.ExtractVolumes(pages)
		if err != nil {
			return err
		}

		groupVolumes = vols
		return nil
	}

	if err := c.executeWithRetry(ctx, "ListGroupVolumes", listOperation); err != nil {
		return nil, err
	}
	return groupVolumes, nil
}

// DeleteVolume removes a volume together with its snapshots (cascade) and
// blocks until Cinder no longer reports it.
// A volume that is already gone counts as deleted; one stuck in error_deleting
// or error fails the delete.
func (c *Client) DeleteVolume(ctx context.Context, volumeID string) error {
	err := volumes.Delete(ctx, c.BlockStorageClient, volumeID, volumes.DeleteOpts{Cascade: true}).ExtractErr()
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	err = waitUntilGone(ctx, func(ctx context.Context) (string, error) {
		v, err := volumes.Get(ctx, c.BlockStorageClient, volumeID).Extract()
		if err != nil {
			return "", err
		}
		return v.Status, nil
	}, "error_deleting", "error")
	if err != nil {
		return fmt.Errorf("failed waiting for volume %s to be deleted: %w", volumeID, err)
	}
	return nil
}
