// Package mbtclient provides the primary entry point for constructing a
// My Bus Tracker client that implements the mbt.Client interface.
//
// It layers configuration and the default HTTP transport on top of the
// operations and types defined in the mbt package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//	  "time"
//
//	  "github.com/fivetwenty-io/mybustracker/pkg/mbt"
//	  "github.com/fivetwenty-io/mybustracker/pkg/mbtclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Minimal: a developer key and the public endpoint.
//	  cli, err := mbtclient.NewWithKey("my-developer-key")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with a timeout and opt-in retries:
//	  cli, err = mbtclient.New(&mbt.Config{
//	    APIKey:      mbt.NewAPIKey("my-developer-key"),
//	    HTTPTimeout: 10 * time.Second,
//	    RetryMax:    2,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  stops, err := cli.BusStops(ctx, mbt.BusStopsParams{Operator: mbt.OperatorLothianBuses})
//	  if err != nil { log.Fatal(err) }
//	  log.Printf("%d stops", len(stops.BusStops))
//	}
//
// Custom transport
//
// Set Config.Transport to any mbt.Transport to replace the HTTP layer, for
// instance to route requests through a proxy or to answer from fixtures in
// tests. HTTPTimeout, Debug, UserAgent and the Retry fields are then ignored.
package mbtclient
