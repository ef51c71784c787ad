package mbt

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired   = errors.New("config is required")
	ErrAPIKeyRequired   = errors.New("API key is required")
	ErrInvalidEndpoint  = errors.New("invalid API endpoint")
	ErrNoHostInEndpoint = errors.New("no host specified in endpoint")
)

// TopologyService groups the operations of the Topological web service.
type TopologyService interface {
	// TopoID returns the identifier of the topology version currently in use.
	// The remote regenerates it at most once a day.
	TopoID(ctx context.Context, params TopoIDParams) (*TopoID, error)
	Services(ctx context.Context, params ServicesParams) (*Services, error)
	// ServicePoints returns the route of a service for plotting on a map.
	ServicePoints(ctx context.Context, params ServicePointsParams) (*ServicePoints, error)
	Destinations(ctx context.Context, params DestinationsParams) (*Destinations, error)
	BusStops(ctx context.Context, params BusStopsParams) (*BusStops, error)
}

// DisruptionsService groups the operations of the Disruptions web service.
type DisruptionsService interface {
	Disruptions(ctx context.Context, params DisruptionsParams) (*Disruptions, error)
	Diversions(ctx context.Context, params DiversionsParams) (*Diversions, error)
	DiversionPoints(ctx context.Context, params DiversionPointsParams) (*DiversionPoints, error)
}

// BusTimesService groups the operations of the Bus Times web service.
type BusTimesService interface {
	// BusTimes returns predicted departures for up to five stop/service/destination timetables.
	BusTimes(ctx context.Context, params BusTimesParams) (*BusTimes, error)
	// JourneyTimes returns the predicted passing times of a single journey.
	JourneyTimes(ctx context.Context, params JourneyTimesParams) (*JourneyTimes, error)
}

// Client is the full My Bus Tracker surface: one method per remote operation.
//
// Every call performs at most one outbound request and returns either a record
// or an *Error, never both.
type Client interface {
	TopologyService
	DisruptionsService
	BusTimesService
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// WireRequest is a fully built request ready to be sent by a Transport.
type WireRequest struct {
	Method string
	URL    string
	Header http.Header
	// Function is the remote function name, kept for logging and metrics.
	Function string
}

// WireResponse is the raw result of a Transport exchange.
type WireResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs the network exchange for a single request.
//
// Implementations return an error only when no response was obtained
// (connection refused, DNS, TLS, timeout, cancellation). Non-2xx responses are
// returned as a WireResponse and classified by the client.
type Transport interface {
	Do(ctx context.Context, req *WireRequest) (*WireResponse, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *WireRequest) (*WireResponse, error)

// Do implements Transport.
func (f TransportFunc) Do(ctx context.Context, req *WireRequest) (*WireResponse, error) {
	return f(ctx, req)
}

// Metrics receives one observation per client call.
type Metrics interface {
	Observe(function string, outcome string, duration time.Duration)
}

// Config represents client configuration for building a Client.
//
// # Authentication
//
// APIKey is the developer key issued by the City of Edinburgh. It is never
// sent as-is: each request carries an access token derived from the key and
// the current UTC hour (see APIKey.AccessToken).
//
// # Transport
//
// When Transport is nil, mbtclient.New builds the default HTTP transport from
// HTTPTimeout, UserAgent, Debug and the Retry* fields. A custom Transport
// replaces all of those.
type Config struct {
	// Required fields
	APIKey APIKey

	// Endpoint: base URL of the web service. Defaults to DefaultEndpoint. Any
	// query parameters (such as module=json) are kept on every request.
	Endpoint string

	// Optional configurations
	// Transport: injected network exchange; nil selects the default HTTP transport.
	Transport Transport
	// HTTPTimeout: per-request timeout of the default HTTP transport. Zero means
	// no timeout beyond the caller's context.
	HTTPTimeout time.Duration
	// RetryMax: opt-in retries of the default HTTP transport for connection
	// errors, 429 and 5xx. Zero (the default) sends exactly one request.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Clock: source of the current time for access token derivation. Defaults to time.Now.
	Clock func() time.Time
	// Metrics: optional per-call observer.
	Metrics Metrics
}
