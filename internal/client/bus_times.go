package client

import (
	"context"

	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
)

// BusTimes implements mbt.BusTimesService.BusTimes.
func (c *Client) BusTimes(ctx context.Context, params mbt.BusTimesParams) (*mbt.BusTimes, error) {
	return call[mbt.BusTimes](ctx, c, params)
}

// JourneyTimes implements mbt.BusTimesService.JourneyTimes.
func (c *Client) JourneyTimes(ctx context.Context, params mbt.JourneyTimesParams) (*mbt.JourneyTimes, error) {
	return call[mbt.JourneyTimes](ctx, c, params)
}
