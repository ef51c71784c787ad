package mbt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed call.
type ErrorKind int

const (
	// KindInvalidParameter: caller input failed local validation; nothing was sent.
	KindInvalidParameter ErrorKind = iota + 1
	// KindTransportFailure: no response was obtained from the remote.
	KindTransportFailure
	// KindAuthenticationFailure: the remote rejected the API key.
	KindAuthenticationFailure
	// KindRemoteError: the remote reported an application-level error.
	KindRemoteError
	// KindDecodeError: the response did not match the expected shape.
	KindDecodeError
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidParameter:
		return "InvalidParameter"
	case KindTransportFailure:
		return "TransportFailure"
	case KindAuthenticationFailure:
		return "AuthenticationFailure"
	case KindRemoteError:
		return "RemoteError"
	case KindDecodeError:
		return "DecodeError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Sentinels matching each kind with errors.Is.
var (
	ErrInvalidParameter      = &Error{Kind: KindInvalidParameter}
	ErrTransportFailure      = &Error{Kind: KindTransportFailure}
	ErrAuthenticationFailure = &Error{Kind: KindAuthenticationFailure}
	ErrRemoteError           = &Error{Kind: KindRemoteError}
	ErrDecodeError           = &Error{Kind: KindDecodeError}
)

// Remote fault codes that identify a rejected key.
const (
	FaultCodeInvalidAppKey = "INVALID_APP_KEY"
	FaultCodeInvalidKey    = "INVALID_KEY"
)

// Error is the normalized failure of a client call.
type Error struct {
	Kind ErrorKind `json:"kind"              yaml:"kind"`
	// Op is the remote function the call targeted.
	Op string `json:"op,omitempty"      yaml:"op,omitempty"`
	// Field names the offending parameter for KindInvalidParameter.
	Field string `json:"field,omitempty"   yaml:"field,omitempty"`
	// Code and Message are preserved verbatim from the remote.
	Code    string `json:"code,omitempty"    yaml:"code,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	// Shape describes what the decoder expected for KindDecodeError.
	Shape string `json:"shape,omitempty"   yaml:"shape,omitempty"`
	// StatusCode is the HTTP status when a response was received.
	StatusCode int   `json:"status,omitempty"  yaml:"status,omitempty"`
	Err        error `json:"-"                 yaml:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("mybustracker")

	if e.Op != "" {
		b.WriteString(" " + e.Op)
	}

	b.WriteString(": " + e.Kind.String())

	switch e.Kind {
	case KindInvalidParameter:
		if e.Field != "" {
			b.WriteString(" " + e.Field)
		}
	case KindAuthenticationFailure, KindRemoteError:
		if e.Code != "" {
			fmt.Fprintf(&b, " %s", e.Code)
		}

		if e.Message != "" {
			fmt.Fprintf(&b, " (%s)", e.Message)
		}
	case KindDecodeError:
		if e.Shape != "" {
			b.WriteString(" expected " + e.Shape)
		}
	case KindTransportFailure:
	}

	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	} else if e.Kind == KindInvalidParameter && e.Message != "" {
		b.WriteString(": " + e.Message)
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind, so errors.Is(err, ErrRemoteError) holds for
// every remote error regardless of its code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Op == "" && t.Code == "" && t.Field == "" && t.Err == nil && t.Kind == e.Kind
}

// AsError extracts the *Error from an error chain.
func AsError(err error) (*Error, bool) {
	apiErr := &Error{}
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsInvalidParameter checks if the error is a local validation error.
func IsInvalidParameter(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

// IsTransportFailure checks if the error is a transport failure.
func IsTransportFailure(err error) bool {
	return errors.Is(err, ErrTransportFailure)
}

// IsAuthenticationFailure checks if the remote rejected the API key.
func IsAuthenticationFailure(err error) bool {
	return errors.Is(err, ErrAuthenticationFailure)
}

// IsRemoteError checks if the remote reported an application error.
func IsRemoteError(err error) bool {
	return errors.Is(err, ErrRemoteError)
}

// IsDecodeError checks if the response could not be decoded.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecodeError)
}

// IsAuthFaultCode reports whether a remote fault code means the key was rejected.
func IsAuthFaultCode(code string) bool {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case FaultCodeInvalidAppKey, FaultCodeInvalidKey:
		return true
	default:
		return false
	}
}
