package mbt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrUnknownOperator        = errors.New("unknown operator")
	ErrUnknownReliability     = errors.New("unknown reliability")
	ErrUnknownStopType        = errors.New("unknown stop type")
	ErrUnknownDirection       = errors.New("unknown direction")
	ErrUnknownDisruptionType  = errors.New("unknown disruption type")
	ErrUnknownDisruptionLevel = errors.New("unknown disruption level")
	ErrInvalidClockTime       = errors.New("invalid clock time")
)

// Operator identifies a bus operator.
type Operator string

const (
	// OperatorAll selects every operator. It is the zero-value default of request parameters.
	OperatorAll Operator = "0"
	// OperatorLothianBuses selects Lothian Buses.
	OperatorLothianBuses Operator = "LB"
)

// WireValue returns the value sent to the remote.
func (o Operator) WireValue() string {
	if o == "" {
		return string(OperatorAll)
	}

	return string(o)
}

// UnmarshalJSON accepts "LB", "0" and "ALL".
func (o *Operator) UnmarshalJSON(data []byte) error {
	var s string

	err := json.Unmarshal(data, &s)
	if err != nil {
		return fmt.Errorf("operator: %w", err)
	}

	switch s {
	case "LB":
		*o = OperatorLothianBuses
	case "0", "ALL":
		*o = OperatorAll
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperator, s)
	}

	return nil
}

// Reliability describes the source of a predicted time.
type Reliability string

const (
	ReliabilityDelayed                     Reliability = "B"
	ReliabilityDelocated                   Reliability = "D"
	ReliabilityRealTimeNotLowFloorEquipped Reliability = "F"
	ReliabilityRealTimeLowFloorEquipped    Reliability = "H"
	ReliabilityImmobilized                 Reliability = "I"
	ReliabilityNeutralized                 Reliability = "N"
	ReliabilityRadioFault                  Reliability = "R"
	ReliabilityEstimated                   Reliability = "T"
	ReliabilityDiverted                    Reliability = "V"
)

var reliabilityNames = map[Reliability]string{
	ReliabilityDelayed:                     "delayed",
	ReliabilityDelocated:                   "delocated",
	ReliabilityRealTimeNotLowFloorEquipped: "real time, not low floor",
	ReliabilityRealTimeLowFloorEquipped:    "real time, low floor",
	ReliabilityImmobilized:                 "immobilized",
	ReliabilityNeutralized:                 "neutralized",
	ReliabilityRadioFault:                  "radio fault",
	ReliabilityEstimated:                   "estimated",
	ReliabilityDiverted:                    "diverted",
}

// IsRealTime reports whether the prediction comes from a tracked vehicle.
func (r Reliability) IsRealTime() bool {
	return r == ReliabilityRealTimeLowFloorEquipped || r == ReliabilityRealTimeNotLowFloorEquipped
}

// Description returns a human readable label.
func (r Reliability) Description() string {
	if name, ok := reliabilityNames[r]; ok {
		return name
	}

	return string(r)
}

// UnmarshalJSON rejects unknown reliability codes.
func (r *Reliability) UnmarshalJSON(data []byte) error {
	s, err := unmarshalCode(data, "reliability")
	if err != nil {
		return err
	}

	if _, ok := reliabilityNames[Reliability(s)]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownReliability, s)
	}

	*r = Reliability(s)

	return nil
}

// StopType describes the role of a stop on a journey.
type StopType string

const (
	StopTypeTerminus  StopType = "D"
	StopTypeNormal    StopType = "N"
	StopTypePartRoute StopType = "P"
	StopTypeReference StopType = "R"
)

// UnmarshalJSON rejects unknown stop types.
func (s *StopType) UnmarshalJSON(data []byte) error {
	code, err := unmarshalCode(data, "stop type")
	if err != nil {
		return err
	}

	switch StopType(code) {
	case StopTypeTerminus, StopTypeNormal, StopTypePartRoute, StopTypeReference:
		*s = StopType(code)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStopType, code)
	}

	return nil
}

// Direction of a destination relative to the city centre.
type Direction string

const (
	DirectionInbound  Direction = "A"
	DirectionOutbound Direction = "R"
)

// UnmarshalJSON rejects unknown directions.
func (d *Direction) UnmarshalJSON(data []byte) error {
	code, err := unmarshalCode(data, "direction")
	if err != nil {
		return err
	}

	switch Direction(code) {
	case DirectionInbound, DirectionOutbound:
		*d = Direction(code)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDirection, code)
	}

	return nil
}

// DisruptionType selects or describes the scope of a disruption.
type DisruptionType int

const (
	DisruptionTypeAll     DisruptionType = 0
	DisruptionTypeNetwork DisruptionType = 1
	DisruptionTypeService DisruptionType = 2
	DisruptionTypeBusStop DisruptionType = 3
)

// String returns the scope name.
func (t DisruptionType) String() string {
	switch t {
	case DisruptionTypeAll:
		return "all"
	case DisruptionTypeNetwork:
		return "network"
	case DisruptionTypeService:
		return "service"
	case DisruptionTypeBusStop:
		return "bus stop"
	default:
		return strconv.Itoa(int(t))
	}
}

// UnmarshalJSON rejects unknown disruption types.
func (t *DisruptionType) UnmarshalJSON(data []byte) error {
	var i int

	err := json.Unmarshal(data, &i)
	if err != nil {
		return fmt.Errorf("disruption type: %w", err)
	}

	if i < int(DisruptionTypeAll) || i > int(DisruptionTypeBusStop) {
		return fmt.Errorf("%w: %d", ErrUnknownDisruptionType, i)
	}

	*t = DisruptionType(i)

	return nil
}

// DisruptionLevel is the severity of a disruption.
type DisruptionLevel int

const (
	DisruptionLevelInformative DisruptionLevel = 1
	DisruptionLevelMinor       DisruptionLevel = 2
	DisruptionLevelMajor       DisruptionLevel = 3
)

// String returns the severity name.
func (l DisruptionLevel) String() string {
	switch l {
	case DisruptionLevelInformative:
		return "informative"
	case DisruptionLevelMinor:
		return "minor"
	case DisruptionLevelMajor:
		return "major"
	default:
		return strconv.Itoa(int(l))
	}
}

// UnmarshalJSON rejects unknown levels.
func (l *DisruptionLevel) UnmarshalJSON(data []byte) error {
	var i int

	err := json.Unmarshal(data, &i)
	if err != nil {
		return fmt.Errorf("disruption level: %w", err)
	}

	if i < int(DisruptionLevelInformative) || i > int(DisruptionLevelMajor) {
		return fmt.Errorf("%w: %d", ErrUnknownDisruptionLevel, i)
	}

	*l = DisruptionLevel(i)

	return nil
}

// ClockTime is a wall clock time of day in "HH:MM" form.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}

	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String formats the time as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MarshalJSON encodes the time as "HH:MM".
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes "HH:MM".
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string

	err := json.Unmarshal(data, &s)
	if err != nil {
		return fmt.Errorf("clock time: %w", err)
	}

	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// MarshalYAML encodes the time as "HH:MM".
func (c ClockTime) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

func unmarshalCode(data []byte, what string) (string, error) {
	var s string

	err := json.Unmarshal(data, &s)
	if err != nil {
		return "", fmt.Errorf("%s: %w", what, err)
	}

	return s, nil
}

// TopoID represents the getTopoId response.
type TopoID struct {
	TopoID   string   `json:"topoId"     yaml:"topo_id"     validate:"required"`
	Operator Operator `json:"operatorId" yaml:"operator_id"`
}

// Services represents the getServices response.
type Services struct {
	Services []Service `json:"services" yaml:"services" validate:"required"`
}

// Service represents a bus service.
type Service struct {
	Reference    string   `json:"ref"        yaml:"ref"`
	Operator     Operator `json:"operatorId" yaml:"operator_id"`
	Mnemonic     string   `json:"mnemo"      yaml:"mnemo"`
	Name         string   `json:"name"       yaml:"name"`
	Destinations []string `json:"dests"      yaml:"dests"`
}

// ServicePoints represents the getServicePoints response.
type ServicePoints struct {
	ServiceReference string         `json:"ref"           yaml:"ref"            validate:"required"`
	Operator         Operator       `json:"operatorId"    yaml:"operator_id"`
	Points           []ServicePoint `json:"servicePoints" yaml:"service_points" validate:"required"`
}

// ServicePoint is one point of a service route.
type ServicePoint struct {
	Chainage  int     `json:"chainage" yaml:"chainage"`
	Order     int     `json:"order"    yaml:"order"`
	Latitude  float64 `json:"x"        yaml:"latitude"`
	Longitude float64 `json:"y"        yaml:"longitude"`
}

// Destinations represents the getDests response.
type Destinations struct {
	Destinations []Destination `json:"dests" yaml:"dests" validate:"required"`
}

// Destination represents a service destination.
type Destination struct {
	Reference string    `json:"ref"        yaml:"ref"`
	Operator  Operator  `json:"operatorId" yaml:"operator_id"`
	Name      string    `json:"name"       yaml:"name"`
	Direction Direction `json:"direction"  yaml:"direction"`
	Service   string    `json:"service"    yaml:"service"`
}

// BusStops represents the getBusStops response.
type BusStops struct {
	BusStops []BusStop `json:"busStops" yaml:"bus_stops" validate:"required"`
}

// BusStop represents a bus stop.
type BusStop struct {
	Operator     Operator `json:"operatorId" yaml:"operator_id"`
	StopID       string   `json:"stopId"     yaml:"stop_id"`
	Name         string   `json:"name"       yaml:"name"`
	Latitude     float64  `json:"x"          yaml:"latitude"`
	Longitude    float64  `json:"y"          yaml:"longitude"`
	Orientation  int      `json:"cap"        yaml:"orientation"`
	Services     []string `json:"services"   yaml:"services"`
	Destinations []string `json:"dests"      yaml:"dests"`
}

// Disruptions represents the getDisruptions response.
type Disruptions struct {
	Disruptions []Disruption `json:"disruptions" yaml:"disruptions" validate:"required"`
}

// Disruption represents an ongoing disruption.
type Disruption struct {
	ID         string          `json:"id"                   yaml:"id"`
	Operator   Operator        `json:"operatorId"           yaml:"operator_id"`
	Level      DisruptionLevel `json:"level"                yaml:"level"`
	Type       DisruptionType  `json:"type"                 yaml:"type"`
	Targets    []string        `json:"targets"              yaml:"targets"`
	ValidUntil *time.Time      `json:"validUntil,omitempty" yaml:"valid_until,omitempty"`
	Message    string          `json:"message"              yaml:"message"`
}

// Diversions represents the getDiversions response.
type Diversions struct {
	Diversions []Diversion `json:"diversions" yaml:"diversions" validate:"required"`
}

// Diversion represents a service diversion.
type Diversion struct {
	Reference         string             `json:"ref"               yaml:"ref"`
	DiversionID       string             `json:"diversionId"       yaml:"diversion_id"`
	Operator          Operator           `json:"operatorId"        yaml:"operator_id"`
	ServiceReference  string             `json:"refService"        yaml:"ref_service"`
	StartStopID       string             `json:"startStopId"       yaml:"start_stop_id"`
	StartStopName     string             `json:"startStopName"     yaml:"start_stop_name"`
	StartDate         time.Time          `json:"startDate"         yaml:"start_date"`
	EndStopID         string             `json:"endStopId"         yaml:"end_stop_id"`
	EndStopName       string             `json:"endStopName"       yaml:"end_stop_name"`
	EndDate           time.Time          `json:"endDate"           yaml:"end_date"`
	Days              string             `json:"days"              yaml:"days"`
	Length            int                `json:"length"            yaml:"length"`
	TimeShift         int                `json:"timeShift"         yaml:"time_shift"`
	CancelledBusStops []CancelledBusStop `json:"cancelledBusStops" yaml:"cancelled_bus_stops"`
	TemporaryBusStops []TemporaryBusStop `json:"temporaryBusStops" yaml:"temporary_bus_stops"`
}

// CancelledBusStop is a stop not served during a diversion.
type CancelledBusStop struct {
	StopID           string `json:"stopId"           yaml:"stop_id"`
	StopName         string `json:"stopName"         yaml:"stop_name"`
	ReplacedStopID   string `json:"replacedStopId"   yaml:"replaced_stop_id"`
	ReplacedStopName string `json:"replacedStopName" yaml:"replaced_stop_name"`
}

// TemporaryBusStop is a stop added during a diversion.
type TemporaryBusStop struct {
	StopID     string `json:"stopId"   yaml:"stop_id"`
	StopName   string `json:"stopName" yaml:"stop_name"`
	StopNumber int    `json:"num"      yaml:"num"`
	StopType   string `json:"type"     yaml:"type"`
}

// DiversionPoints represents the getDiversionPoints response.
type DiversionPoints struct {
	Points []DiversionPoint `json:"diversionPoints" yaml:"diversion_points" validate:"required"`
}

// DiversionPoint is one point of a diversion route.
type DiversionPoint struct {
	Order     int     `json:"order" yaml:"order"`
	Latitude  float64 `json:"x"     yaml:"latitude"`
	Longitude float64 `json:"y"     yaml:"longitude"`
}

// BusTimes represents the getBusTimes response.
type BusTimes struct {
	BusTimes []BusTime `json:"busTimes" yaml:"bus_times" validate:"required"`
}

// BusTime holds the predicted departures of one service at one stop.
type BusTime struct {
	Operator             Operator   `json:"operatorId"         yaml:"operator_id"`
	StopID               string     `json:"stopId"             yaml:"stop_id"`
	StopName             string     `json:"stopName"           yaml:"stop_name"`
	ServiceReference     string     `json:"refService"         yaml:"ref_service"`
	ServiceMnemonic      string     `json:"mnemoService"       yaml:"mnemo_service"`
	ServiceName          string     `json:"nameService"        yaml:"name_service"`
	DestinationReference *string    `json:"refDest,omitempty"  yaml:"ref_dest,omitempty"`
	DestinationName      *string    `json:"nameDest,omitempty" yaml:"name_dest,omitempty"`
	Times                []TimeData `json:"timeDatas"          yaml:"time_datas"`
	GlobalDisruption     bool       `json:"globalDisruption"   yaml:"global_disruption"`
	ServiceDisruption    bool       `json:"serviceDisruption"  yaml:"service_disruption"`
	BusStopDisruption    bool       `json:"busStopDisruption"  yaml:"bus_stop_disruption"`
	ServiceDiversion     bool       `json:"serviceDiversion"   yaml:"service_diversion"`
}

// TimeData is a single predicted departure.
type TimeData struct {
	// Day is the offset in days from today.
	Day         int         `json:"day"             yaml:"day"`
	Time        string      `json:"time"            yaml:"time"`
	Minutes     int         `json:"minutes"         yaml:"minutes"`
	Reliability Reliability `json:"reliability"     yaml:"reliability"`
	StopType    StopType    `json:"type"            yaml:"type"`
	Terminus    string      `json:"terminus"        yaml:"terminus"`
	JourneyID   string      `json:"journeyId"       yaml:"journey_id"`
	BusID       *string     `json:"busId,omitempty" yaml:"bus_id,omitempty"`
}

// JourneyTimes represents the getJourneyTimes response.
type JourneyTimes struct {
	JourneyTimes []JourneyTime `json:"journeyTimes" yaml:"journey_times" validate:"required"`
}

// JourneyTime describes a journey and its predicted stop times.
type JourneyTime struct {
	JourneyID            string            `json:"journeyId"         yaml:"journey_id"`
	BusID                *string           `json:"busId,omitempty"   yaml:"bus_id,omitempty"`
	Operator             Operator          `json:"operatorId"        yaml:"operator_id"`
	ServiceReference     string            `json:"refService"        yaml:"ref_service"`
	ServiceMnemonic      string            `json:"mnemoService"      yaml:"mnemo_service"`
	ServiceName          string            `json:"nameService"       yaml:"name_service"`
	DestinationReference string            `json:"refDest"           yaml:"ref_dest"`
	DestinationName      string            `json:"nameDest"          yaml:"name_dest"`
	Times                []JourneyTimeData `json:"journeyTimeDatas"  yaml:"journey_time_datas"`
	GlobalDisruption     bool              `json:"globalDisruption"  yaml:"global_disruption"`
	ServiceDisruption    bool              `json:"serviceDisruption" yaml:"service_disruption"`
	ServiceDiversion     bool              `json:"serviceDiversion"  yaml:"service_diversion"`
}

// JourneyTimeData is the predicted time of a journey at one stop.
type JourneyTimeData struct {
	Order       int         `json:"order"             yaml:"order"`
	StopID      string      `json:"stopId"            yaml:"stop_id"`
	StopName    string      `json:"stopName"          yaml:"stop_name"`
	Day         int         `json:"day"               yaml:"day"`
	Time        ClockTime   `json:"time"              yaml:"time"`
	Minutes     int         `json:"minutes"           yaml:"minutes"`
	Reliability Reliability `json:"reliability"       yaml:"reliability"`
	StopType    string      `json:"type"              yaml:"type"`
	Disruption  bool        `json:"busStopDisruption" yaml:"bus_stop_disruption"`
}

// Record is the closed set of decoded responses, one per remote operation.
type Record interface {
	TopoID | Services | ServicePoints | Destinations | BusStops |
		Disruptions | Diversions | DiversionPoints | BusTimes | JourneyTimes
}
