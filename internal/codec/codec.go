// Package codec turns request parameters into wire requests and wire
// responses into records or typed errors. It performs no I/O.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/mybustracker/internal/constants"
	"github.com/fivetwenty-io/mybustracker/internal/validation"
	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
)

var (
	errEmptyBody   = errors.New("empty response body")
	errNilResponse = errors.New("no response")
)

var validate = validation.New()

// fault is the body the remote sends when it rejects a call.
type fault struct {
	FaultCode   *string `json:"faultcode"`
	FaultString string  `json:"faultstring"`
}

// Encode builds the GET request for params. The endpoint's own query
// parameters are kept; key, function and the operation parameters are added.
// Query keys are sorted, so the same inputs always produce the same URL.
func Encode(endpoint *url.URL, token string, params mbt.Params) *mbt.WireRequest {
	u := *endpoint

	query := u.Query()
	query.Set(constants.QueryParamKey, token)
	query.Set(constants.QueryParamFunction, params.Function())

	for name, values := range params.Query() {
		query[name] = values
	}

	u.RawQuery = query.Encode()

	return &mbt.WireRequest{
		Method:   http.MethodGet,
		URL:      u.String(),
		Header:   http.Header{"Accept": {"application/json"}},
		Function: params.Function(),
	}
}

// Decode classifies resp and, on success, decodes it into the record T.
// It never returns both a record and an error, and never neither.
func Decode[T mbt.Record](resp *mbt.WireResponse) (*T, error) {
	op, shape := describe[T]()

	if resp == nil {
		return nil, &mbt.Error{Kind: mbt.KindDecodeError, Op: op, Shape: shape, Err: errNilResponse}
	}

	if f, ok := parseFault(resp.Body); ok {
		kind := mbt.KindRemoteError
		if mbt.IsAuthFaultCode(*f.FaultCode) || isAuthStatus(resp.StatusCode) {
			kind = mbt.KindAuthenticationFailure
		}

		return nil, &mbt.Error{
			Kind:       kind,
			Op:         op,
			Code:       *f.FaultCode,
			Message:    f.FaultString,
			StatusCode: resp.StatusCode,
		}
	}

	if isAuthStatus(resp.StatusCode) {
		return nil, &mbt.Error{
			Kind:       mbt.KindAuthenticationFailure,
			Op:         op,
			Code:       "HTTP_" + strconv.Itoa(resp.StatusCode),
			Message:    statusMessage(resp),
			StatusCode: resp.StatusCode,
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &mbt.Error{
			Kind:       mbt.KindRemoteError,
			Op:         op,
			Code:       "HTTP_" + strconv.Itoa(resp.StatusCode),
			Message:    statusMessage(resp),
			StatusCode: resp.StatusCode,
		}
	}

	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil, decodeError(op, shape, resp.StatusCode, errEmptyBody)
	}

	var record T

	err := json.Unmarshal(resp.Body, &record)
	if err != nil {
		return nil, decodeError(op, shape, resp.StatusCode, err)
	}

	err = validate.Struct(record)
	if err != nil {
		return nil, decodeError(op, shape, resp.StatusCode, err)
	}

	return &record, nil
}

func decodeError(op, shape string, status int, err error) *mbt.Error {
	return &mbt.Error{Kind: mbt.KindDecodeError, Op: op, Shape: shape, StatusCode: status, Err: err}
}

func parseFault(body []byte) (*fault, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var f fault

	err := json.Unmarshal(trimmed, &f)
	if err != nil || f.FaultCode == nil {
		return nil, false
	}

	return &f, true
}

func isAuthStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func statusMessage(resp *mbt.WireResponse) string {
	const maxBody = 256

	body := strings.TrimSpace(string(resp.Body))
	if body == "" {
		return http.StatusText(resp.StatusCode)
	}

	if len(body) > maxBody {
		body = body[:maxBody]
	}

	return body
}

// describe returns the remote function and the expected body shape of T.
func describe[T mbt.Record]() (string, string) {
	switch any(new(T)).(type) {
	case *mbt.TopoID:
		return mbt.FunctionTopoID, "object with topoId string"
	case *mbt.Services:
		return mbt.FunctionServices, "object with services array"
	case *mbt.ServicePoints:
		return mbt.FunctionServicePoints, "object with ref string and servicePoints array"
	case *mbt.Destinations:
		return mbt.FunctionDestinations, "object with dests array"
	case *mbt.BusStops:
		return mbt.FunctionBusStops, "object with busStops array"
	case *mbt.Disruptions:
		return mbt.FunctionDisruptions, "object with disruptions array"
	case *mbt.Diversions:
		return mbt.FunctionDiversions, "object with diversions array"
	case *mbt.DiversionPoints:
		return mbt.FunctionDiversionPoints, "object with diversionPoints array"
	case *mbt.BusTimes:
		return mbt.FunctionBusTimes, "object with busTimes array"
	case *mbt.JourneyTimes:
		return mbt.FunctionJourneyTimes, "object with journeyTimes array"
	default:
		return "", "record"
	}
}
