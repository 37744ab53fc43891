package hetzner

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/cloud"
	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/sweep"
)

// Name returns the identifier for this provider.
func (c *Client) Name() string {
	return "hetzner"
}

// ListResources maps servers to the instance class and volumes to the capacity class.
func (c *Client) ListResources(ctx context.Context, class cloud.ResourceClass, group string) ([]cloud.Resource, error) {
	var resources []cloud.Resource

	switch class {
	case cloud.ClassInstance:
		servers, err := c.ListGroupServers(ctx, group)
		if err != nil {
			return nil, fmt.Errorf("listing servers: %w", err)
		}
		for _, s := range servers {
			resources = append(resources, cloud.Resource{
				ID: strconv.FormatInt(s.ID, 10), Name: s.Name, Class: class, Group: group,
			})
		}

	case cloud.ClassCapacity:
		volumes, err := c.ListGroupVolumes(ctx, group)
		if err != nil {
			return nil, fmt.Errorf("listing volumes: %w", err)
		}
		for _, v := range volumes {
			resources = append(resources, cloud.Resource{
				ID: strconv.FormatInt(v.ID, 10), Name: v.Name, Class: class, Group: group,
			})
		}

	default:
		return nil, fmt.Errorf("unsupported resource class %q", class)
	}

	return resources, nil
}

// DeleteResource deletes r and classifies the outcome for the sweep executor.
func (c *Client) DeleteResource(ctx context.Context, r cloud.Resource) sweep.Result {
	var err error
	switch r.Class {
	case cloud.ClassInstance:
		err = c.DeleteServer(ctx, r.ID)
	case cloud.ClassCapacity:
		err = c.DeleteVolume(ctx, r.ID)
	default:
		err = fmt.Errorf("unsupported resource class %q", r.Class)
	}
	return sweep.Classify(err, IsRateLimited)
}
