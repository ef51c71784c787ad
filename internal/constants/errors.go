package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIKeyConfigured = errors.New("no API key configured, use 'mybustracker config set-key' to add one")
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrNotATerminal       = errors.New("standard input is not a terminal, pass the key as an argument or set MBT_API_KEY")
)

// Validation errors.
var (
	ErrInvalidOperator   = errors.New("operator must be LB or 0")
	ErrInvalidTimetable  = errors.New("timetable must be STOP:SERVICE:DESTINATION")
	ErrInvalidMode       = errors.New("mode must be all or next")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)
