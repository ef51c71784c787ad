package client

import (
	"context"

	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
)

// TopoID implements mbt.TopologyService.TopoID.
func (c *Client) TopoID(ctx context.Context, params mbt.TopoIDParams) (*mbt.TopoID, error) {
	return call[mbt.TopoID](ctx, c, params)
}

// Services implements mbt.TopologyService.Services.
func (c *Client) Services(ctx context.Context, params mbt.ServicesParams) (*mbt.Services, error) {
	return call[mbt.Services](ctx, c, params)
}

// ServicePoints implements mbt.TopologyService.ServicePoints.
func (c *Client) ServicePoints(ctx context.Context, params mbt.ServicePointsParams) (*mbt.ServicePoints, error) {
	return call[mbt.ServicePoints](ctx, c, params)
}

// Destinations implements mbt.TopologyService.Destinations.
func (c *Client) Destinations(ctx context.Context, params mbt.DestinationsParams) (*mbt.Destinations, error) {
	return call[mbt.Destinations](ctx, c, params)
}

// BusStops implements mbt.TopologyService.BusStops.
func (c *Client) BusStops(ctx context.Context, params mbt.BusStopsParams) (*mbt.BusStops, error) {
	return call[mbt.BusStops](ctx, c, params)
}
