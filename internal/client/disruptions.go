package client

import (
	"context"

	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
)

// Disruptions implements mbt.DisruptionsService.Disruptions.
func (c *Client) Disruptions(ctx context.Context, params mbt.DisruptionsParams) (*mbt.Disruptions, error) {
	return call[mbt.Disruptions](ctx, c, params)
}

// Diversions implements mbt.DisruptionsService.Diversions.
func (c *Client) Diversions(ctx context.Context, params mbt.DiversionsParams) (*mbt.Diversions, error) {
	return call[mbt.Diversions](ctx, c, params)
}

// DiversionPoints implements mbt.DisruptionsService.DiversionPoints.
func (c *Client) DiversionPoints(ctx context.Context, params mbt.DiversionPointsParams) (*mbt.DiversionPoints, error) {
	return call[mbt.DiversionPoints](ctx, c, params)
}
