package mbt

import (
	"crypto/md5" // #nosec G501 -- the remote mandates MD5 for access tokens
	"encoding/hex"
	"strings"
	"time"

	"github.com/fivetwenty-io/mybustracker/internal/constants"
)

// DefaultEndpoint is the JSON module of the My Bus Tracker web service.
const DefaultEndpoint = constants.DefaultEndpoint

const redacted = "[REDACTED]"

// APIKey holds a developer API key.
//
// The raw key is never sent to the remote and never rendered by fmt, %#v or
// JSON encoding. Use AccessToken to obtain the credential for a request.
type APIKey struct {
	raw string
}

// NewAPIKey wraps a raw developer key. Surrounding whitespace is trimmed.
func NewAPIKey(raw string) APIKey {
	return APIKey{raw: strings.TrimSpace(raw)}
}

// IsZero reports whether no key was provided.
func (k APIKey) IsZero() bool {
	return k.raw == ""
}

// AccessToken derives the key valid for the clock hour containing now: the
// lowercase hex MD5 of the raw key followed by the UTC time as YYYYMMDDHH.
func (k APIKey) AccessToken(now time.Time) string {
	sum := md5.Sum([]byte(k.raw + now.UTC().Format(constants.AccessTokenTimeLayout))) // #nosec G401

	return hex.EncodeToString(sum[:])
}

// String implements fmt.Stringer without exposing the key.
func (k APIKey) String() string {
	if k.IsZero() {
		return ""
	}

	return redacted
}

// GoString implements fmt.GoStringer without exposing the key.
func (k APIKey) GoString() string {
	return "mbt.APIKey{" + k.String() + "}"
}

// MarshalJSON renders the key redacted.
func (k APIKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// MarshalYAML renders the key redacted.
func (k APIKey) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}
