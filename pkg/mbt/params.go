package mbt

import (
	"net/url"
	"strconv"
)

// Remote function names.
const (
	FunctionTopoID          = "getTopoId"
	FunctionServices        = "getServices"
	FunctionServicePoints   = "getServicePoints"
	FunctionDestinations    = "getDests"
	FunctionBusStops        = "getBusStops"
	FunctionDisruptions     = "getDisruptions"
	FunctionDiversions      = "getDiversions"
	FunctionDiversionPoints = "getDiversionPoints"
	FunctionBusTimes        = "getBusTimes"
	FunctionJourneyTimes    = "getJourneyTimes"
)

// Params is the request of a single remote operation.
//
// The set of implementations is closed: every type lives in this package.
// The `param` struct tags name the wire parameter a field maps to and are used
// when reporting invalid parameters.
type Params interface {
	// Function returns the remote function name.
	Function() string
	// Query returns the operation parameters, excluding key and function.
	Query() url.Values
	sealed()
}

// TopoIDParams requests getTopoId.
type TopoIDParams struct {
	Operator Operator `param:"operatorId" validate:"omitempty,oneof=LB 0"`
}

func (p TopoIDParams) Function() string { return FunctionTopoID }
func (p TopoIDParams) Query() url.Values {
	return url.Values{"operatorId": {p.Operator.WireValue()}}
}
func (TopoIDParams) sealed() {}

// ServicesParams requests getServices.
type ServicesParams struct {
	Operator Operator `param:"operatorId" validate:"omitempty,oneof=LB 0"`
}

func (p ServicesParams) Function() string { return FunctionServices }
func (p ServicesParams) Query() url.Values {
	return url.Values{"operatorId": {p.Operator.WireValue()}}
}
func (ServicesParams) sealed() {}

// ServicePointsParams requests getServicePoints.
type ServicePointsParams struct {
	ServiceReference string   `param:"ref"        validate:"notblank"`
	Operator         Operator `param:"operatorId" validate:"omitempty,oneof=LB 0"`
}

func (p ServicePointsParams) Function() string { return FunctionServicePoints }
func (p ServicePointsParams) Query() url.Values {
	return url.Values{
		"operatorId": {p.Operator.WireValue()},
		"ref":        {p.ServiceReference},
	}
}
func (ServicePointsParams) sealed() {}

// DestinationsParams requests getDests.
type DestinationsParams struct {
	Operator Operator `param:"operatorId" validate:"omitempty,oneof=LB 0"`
}

func (p DestinationsParams) Function() string { return FunctionDestinations }
func (p DestinationsParams) Query() url.Values {
	return url.Values{"operatorId": {p.Operator.WireValue()}}
}
func (DestinationsParams) sealed() {}

// BusStopsParams requests getBusStops.
type BusStopsParams struct {
	Operator Operator `param:"operatorId" validate:"omitempty,oneof=LB 0"`
}

func (p BusStopsParams) Function() string { return FunctionBusStops }
func (p BusStopsParams) Query() url.Values {
	return url.Values{"operatorId": {p.Operator.WireValue()}}
}
func (BusStopsParams) sealed() {}

// DisruptionsParams requests getDisruptions. The zero Type selects all disruptions.
type DisruptionsParams struct {
	Type     DisruptionType `param:"type"       validate:"min=0,max=3"`
	Operator Operator       `param:"operatorId" validate:"omitempty,oneof=LB 0"`
}

func (p DisruptionsParams) Function() string { return FunctionDisruptions }
func (p DisruptionsParams) Query() url.Values {
	return url.Values{
		"operatorId": {p.Operator.WireValue()},
		"type":       {strconv.Itoa(int(p.Type))},
	}
}
func (DisruptionsParams) sealed() {}

// DiversionsParams requests getDiversions.
type DiversionsParams struct {
	// ServiceReference restricts the result to one service. Empty means all services.
	ServiceReference string `param:"refService"`
	// DayOffset is the number of days from today, 0 to 3.
	DayOffset int      `param:"day"        validate:"min=0,max=3"`
	Operator  Operator `param:"operatorId" validate:"omitempty,oneof=LB 0"`
}

func (p DiversionsParams) Function() string { return FunctionDiversions }
func (p DiversionsParams) Query() url.Values {
	ref := p.ServiceReference
	if ref == "" {
		ref = "0"
	}

	return url.Values{
		"day":        {strconv.Itoa(p.DayOffset)},
		"operatorId": {p.Operator.WireValue()},
		"refService": {ref},
	}
}
func (DiversionsParams) sealed() {}

// DiversionPointsParams requests getDiversionPoints.
type DiversionPointsParams struct {
	DiversionID string   `param:"diversionId" validate:"notblank"`
	Operator    Operator `param:"operatorId"  validate:"omitempty,oneof=LB 0"`
}

func (p DiversionPointsParams) Function() string { return FunctionDiversionPoints }
func (p DiversionPointsParams) Query() url.Values {
	return url.Values{
		"diversionId": {p.DiversionID},
		"operatorId":  {p.Operator.WireValue()},
	}
}
func (DiversionPointsParams) sealed() {}

// Timetable selects the departures of one service towards one destination at one stop.
type Timetable struct {
	StopID               string `param:"stopId"     validate:"notblank"`
	ServiceReference     string `param:"refService" validate:"notblank"`
	DestinationReference string `param:"refDest"    validate:"notblank"`
}

// BusTimesParams requests getBusTimes.
type BusTimesParams struct {
	// Timetables holds between one and five timetables.
	Timetables []Timetable `param:"timetables" validate:"min=1,max=5,dive"`
	// Departures per timetable, at most 10. Zero leaves the remote default (2).
	Departures int `param:"nb"   validate:"min=0,max=10"`
	// DayOffset is the number of days from today, 0 to 3.
	DayOffset int `param:"day"  validate:"min=0,max=3"`
	// Time is the departure time, sent as "HH:MM". Empty means now.
	Time string `param:"time" validate:"omitempty,datetime=15:04"`
}

func (p BusTimesParams) Function() string { return FunctionBusTimes }
func (p BusTimesParams) Query() url.Values {
	values := url.Values{}

	for i, tt := range p.Timetables {
		n := strconv.Itoa(i + 1)
		values.Set("stopId"+n, tt.StopID)
		values.Set("refService"+n, tt.ServiceReference)
		values.Set("refDest"+n, tt.DestinationReference)
	}

	if p.Departures > 0 {
		values.Set("nb", strconv.Itoa(p.Departures))
	}

	values.Set("day", strconv.Itoa(p.DayOffset))

	if p.Time != "" {
		values.Set("time", p.Time)

		if clock, err := ParseClockTime(p.Time); err == nil {
			values.Set("time", clock.String())
		}
	}

	return values
}
func (BusTimesParams) sealed() {}

// JourneyIdentifier names a journey either by journey ID or by bus fleet number.
// Exactly one of the two is set.
type JourneyIdentifier struct {
	JourneyID string `param:"journeyId"`
	BusID     string `param:"busId"`
}

// ByJourneyID identifies a journey by its journey ID.
func ByJourneyID(id string) JourneyIdentifier {
	return JourneyIdentifier{JourneyID: id}
}

// ByBusID identifies a journey by the fleet number of the bus running it.
func ByBusID(id string) JourneyIdentifier {
	return JourneyIdentifier{BusID: id}
}

// JourneyTimeMode selects which stops getJourneyTimes returns.
type JourneyTimeMode int

const (
	// JourneyTimeModeAll returns every stop of the journey.
	JourneyTimeModeAll JourneyTimeMode = 0
	// JourneyTimeModeNextReference returns stops up to the next reference stop.
	JourneyTimeModeNextReference JourneyTimeMode = 1
)

// JourneyTimesParams requests getJourneyTimes.
//
// StopID is optional for a bus ID but required for a journey ID.
type JourneyTimesParams struct {
	StopID    string            `param:"stopId"`
	Journey   JourneyIdentifier `param:"journey"`
	Operator  Operator          `param:"operator" validate:"omitempty,oneof=LB 0"`
	DayOffset int               `param:"day"      validate:"min=0,max=3"`
	Mode      JourneyTimeMode   `param:"mode"     validate:"min=0,max=1"`
}

func (p JourneyTimesParams) Function() string { return FunctionJourneyTimes }
func (p JourneyTimesParams) Query() url.Values {
	values := url.Values{}

	if p.StopID != "" {
		values.Set("stopId", p.StopID)
	}

	if p.Journey.JourneyID != "" {
		values.Set("journeyId", p.Journey.JourneyID)
	} else {
		values.Set("busId", p.Journey.BusID)
	}

	values.Set("operator", p.Operator.WireValue())
	values.Set("day", strconv.Itoa(p.DayOffset))
	values.Set("mode", strconv.Itoa(int(p.Mode)))

	return values
}
func (JourneyTimesParams) sealed() {}
