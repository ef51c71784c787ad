package constants

import "time"

// Version of the client, reported in the User-Agent header.
const Version = "0.3.0"

// Remote service.
const (
	// DefaultEndpoint is the JSON module of the My Bus Tracker web service.
	DefaultEndpoint = "http://ws.mybustracker.co.uk/?module=json"

	// AccessTokenTimeLayout formats the UTC hour mixed into the access token (YYYYMMDDHH).
	AccessTokenTimeLayout = "2006010215"

	// DefaultUserAgent identifies the client to the remote.
	DefaultUserAgent = "mybustracker-go/" + Version

	// QueryParamKey carries the access token.
	QueryParamKey = "key"

	// QueryParamFunction carries the remote function name.
	QueryParamFunction = "function"
)

// Request limits enforced before any request is sent.
const (
	// MaxTimetables is the maximum number of timetables in one getBusTimes call.
	MaxTimetables = 5

	// MaxDepartures is the maximum number of departures per timetable.
	MaxDepartures = 10

	// MaxDayOffset is the furthest day, counted from today, the remote answers for.
	MaxDayOffset = 3

	// DefaultDepartures is what the remote returns when nb is omitted.
	DefaultDepartures = 2
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the timeout the CLI applies to each request.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRetryWaitMin is the minimum backoff of opt-in retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum backoff of opt-in retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Format constants.
const (
	// FormatTable for tabular output.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatCBOR for CBOR payloads.
	FormatCBOR = "cbor"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// Publishing.
const (
	// DefaultNATSURL is the NATS server used by publish when none is configured.
	DefaultNATSURL = "nats://127.0.0.1:4222"

	// DefaultSubjectPrefix prefixes the subject bus times are published on.
	DefaultSubjectPrefix = "mybustracker.bustimes"

	// DefaultPublishInterval is the polling interval of publish --interval.
	DefaultPublishInterval = 30 * time.Second

	// MinPublishInterval keeps polling within the remote's tolerance.
	MinPublishInterval = 10 * time.Second
)

// GTFS-Realtime export.
const (
	// GTFSRealtimeVersion is written to every feed header.
	GTFSRealtimeVersion = "2.0"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// MessageDisplayLength truncates disruption messages in tables.
	MessageDisplayLength = 60
)
