// Package gtfsrt converts My Bus Tracker records into GTFS-Realtime feeds.
package gtfsrt

import (
	"fmt"
	"strings"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/fivetwenty-io/mybustracker/internal/constants"
	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
	"google.golang.org/protobuf/proto"
)

// AgencyID is the agency reported for Lothian Buses services.
const AgencyID = "LB"

// Builder turns records into feed messages.
type Builder struct {
	// Location resolves the remote's "HH:MM" departure times. Defaults to Europe/London.
	Location *time.Location
	// Now is the feed clock. Defaults to time.Now.
	Now func() time.Time
}

// NewBuilder returns a Builder using Europe/London, or UTC when the zone database is missing.
func NewBuilder() *Builder {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		loc = time.UTC
	}

	return &Builder{Location: loc, Now: time.Now}
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}

	return b.Now()
}

func (b *Builder) location() *time.Location {
	if b.Location == nil {
		return time.UTC
	}

	return b.Location
}

func (b *Builder) header(now time.Time) *gtfsrtpb.FeedHeader {
	return &gtfsrtpb.FeedHeader{
		GtfsRealtimeVersion: proto.String(constants.GTFSRealtimeVersion),
		Incrementality:      gtfsrtpb.FeedHeader_FULL_DATASET.Enum(),
		Timestamp:           proto.Uint64(uint64(now.Unix())),
	}
}

// TripUpdates builds one TripUpdate entity per predicted departure.
func (b *Builder) TripUpdates(times *mbt.BusTimes) *gtfsrtpb.FeedMessage {
	now := b.now()
	feed := &gtfsrtpb.FeedMessage{Header: b.header(now)}

	if times == nil {
		return feed
	}

	for _, bt := range times.BusTimes {
		for i, td := range bt.Times {
			update := &gtfsrtpb.TripUpdate{
				Trip: &gtfsrtpb.TripDescriptor{
					TripId:  proto.String(td.JourneyID),
					RouteId: proto.String(bt.ServiceReference),
				},
				StopTimeUpdate: []*gtfsrtpb.TripUpdate_StopTimeUpdate{{
					StopId: proto.String(bt.StopID),
					Departure: &gtfsrtpb.TripUpdate_StopTimeEvent{
						Time: proto.Int64(b.departure(now, td).Unix()),
					},
				}},
			}

			if td.BusID != nil && *td.BusID != "" {
				update.Vehicle = &gtfsrtpb.VehicleDescriptor{Id: proto.String(*td.BusID)}
			}

			feed.Entity = append(feed.Entity, &gtfsrtpb.FeedEntity{
				Id:         proto.String(fmt.Sprintf("%s:%s:%d", bt.StopID, td.JourneyID, i)),
				TripUpdate: update,
			})
		}
	}

	return feed
}

// departure resolves the departure instant from the day offset and clock time,
// falling back to now plus the predicted minutes.
func (b *Builder) departure(now time.Time, td mbt.TimeData) time.Time {
	clock, err := mbt.ParseClockTime(td.Time)
	if err != nil {
		return now.Add(time.Duration(td.Minutes) * time.Minute)
	}

	local := now.In(b.location())

	return time.Date(local.Year(), local.Month(), local.Day()+td.Day,
		clock.Hour, clock.Minute, 0, 0, b.location())
}

// Alerts builds one Alert entity per disruption.
func (b *Builder) Alerts(disruptions *mbt.Disruptions) *gtfsrtpb.FeedMessage {
	now := b.now()
	feed := &gtfsrtpb.FeedMessage{Header: b.header(now)}

	if disruptions == nil {
		return feed
	}

	for i, d := range disruptions.Disruptions {
		alert := &gtfsrtpb.Alert{
			InformedEntity:  informedEntities(d),
			HeaderText:      translated(headerText(d)),
			DescriptionText: translated(d.Message),
		}

		if d.ValidUntil != nil {
			alert.ActivePeriod = []*gtfsrtpb.TimeRange{{End: proto.Uint64(uint64(d.ValidUntil.Unix()))}}
		}

		id := d.ID
		if id == "" {
			id = fmt.Sprintf("disruption:%d", i)
		}

		feed.Entity = append(feed.Entity, &gtfsrtpb.FeedEntity{
			Id:    proto.String(id),
			Alert: alert,
		})
	}

	return feed
}

func informedEntities(d mbt.Disruption) []*gtfsrtpb.EntitySelector {
	var selectors []*gtfsrtpb.EntitySelector

	for _, target := range d.Targets {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}

		switch d.Type {
		case mbt.DisruptionTypeService:
			selectors = append(selectors, &gtfsrtpb.EntitySelector{RouteId: proto.String(target)})
		case mbt.DisruptionTypeBusStop:
			selectors = append(selectors, &gtfsrtpb.EntitySelector{StopId: proto.String(target)})
		case mbt.DisruptionTypeAll, mbt.DisruptionTypeNetwork:
		}
	}

	if len(selectors) == 0 {
		selectors = append(selectors, &gtfsrtpb.EntitySelector{AgencyId: proto.String(AgencyID)})
	}

	return selectors
}

func headerText(d mbt.Disruption) string {
	return fmt.Sprintf("%s disruption (%s)", d.Type, d.Level)
}

func translated(text string) *gtfsrtpb.TranslatedString {
	return &gtfsrtpb.TranslatedString{
		Translation: []*gtfsrtpb.TranslatedString_Translation{{
			Text:     proto.String(text),
			Language: proto.String("en"),
		}},
	}
}

// Marshal encodes a feed in the GTFS-Realtime wire format.
func Marshal(feed *gtfsrtpb.FeedMessage) ([]byte, error) {
	data, err := proto.Marshal(feed)
	if err != nil {
		return nil, fmt.Errorf("marshalling gtfs-realtime feed: %w", err)
	}

	return data, nil
}
