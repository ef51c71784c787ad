// Package mbt provides types, interfaces, and helpers for working with the
// City of Edinburgh My Bus Tracker web service.
//
// # Overview
//
// The mbt package defines the request parameters (one type per remote
// operation), the decoded response records, the error taxonomy, and the
// Client interface. A concrete implementation of the Client is provided by
// the mbtclient package, which wires configuration and the HTTP transport.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/mybustracker/pkg/mbt"
//	  "github.com/fivetwenty-io/mybustracker/pkg/mbtclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := mbtclient.NewWithKey("my-developer-key")
//	  if err != nil { log.Fatal(err) }
//
//	  times, err := cli.BusTimes(ctx, mbt.BusTimesParams{
//	    Timetables: []mbt.Timetable{{StopID: "36232087", ServiceReference: "22", DestinationReference: "2"}},
//	    Departures: 4,
//	  })
//	  if err != nil { log.Fatal(err) }
//	  _ = times
//	}
//
// # Errors
//
// Every failed call returns an *Error. Use errors.Is with the sentinels
// (ErrInvalidParameter, ErrTransportFailure, ErrAuthenticationFailure,
// ErrRemoteError, ErrDecodeError) or the IsX helpers to branch on the kind.
// Invalid parameters are reported before anything is sent.
//
// # Concurrency
//
// A Client holds no mutable state after construction and is safe for
// concurrent use. Each call blocks for one round trip; run calls in
// goroutines to overlap them and cancel them through the context.
package mbt
