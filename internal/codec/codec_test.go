package codec_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/fivetwenty-io/mybustracker/internal/codec"
	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)

	return u
}

func TestEncode(t *testing.T) {
	t.Parallel()

	endpoint := mustParse(t, mbt.DefaultEndpoint)

	req := codec.Encode(endpoint, "0123abcd", mbt.ServicePointsParams{ServiceReference: "22", Operator: mbt.OperatorLothianBuses})

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "getServicePoints", req.Function)
	assert.Equal(t, "application/json", req.Header.Get("Accept"))

	u := mustParse(t, req.URL)
	assert.Equal(t, "ws.mybustracker.co.uk", u.Host)

	query := u.Query()
	assert.Equal(t, "json", query.Get("module"))
	assert.Equal(t, "0123abcd", query.Get("key"))
	assert.Equal(t, "getServicePoints", query.Get("function"))
	assert.Equal(t, "22", query.Get("ref"))
	assert.Equal(t, "LB", query.Get("operatorId"))

	assert.Equal(t, "json", endpoint.Query().Get("module"))
	assert.Empty(t, endpoint.Query().Get("key"), "endpoint must not be mutated")
}

func TestEncode_Deterministic(t *testing.T) {
	t.Parallel()

	endpoint := mustParse(t, "https://example.com/api?module=json")
	params := mbt.BusTimesParams{
		Timetables: []mbt.Timetable{
			{StopID: "36232087", ServiceReference: "22", DestinationReference: "2"},
			{StopID: "36232088", ServiceReference: "5", DestinationReference: "9"},
		},
		Departures: 3,
	}

	first := codec.Encode(endpoint, "tok", params)
	second := codec.Encode(endpoint, "tok", params)

	assert.Equal(t, first.URL, second.URL)
	assert.Equal(t,
		"https://example.com/api?day=0&function=getBusTimes&key=tok&module=json&nb=3"+
			"&refDest1=2&refDest2=9&refService1=22&refService2=5&stopId1=36232087&stopId2=36232088",
		first.URL)
}

func TestDecode_Success(t *testing.T) {
	t.Parallel()

	resp := &mbt.WireResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"topoId":"f3a1c0","operatorId":"LB"}`),
	}

	topo, err := codec.Decode[mbt.TopoID](resp)
	require.NoError(t, err)
	require.NotNil(t, topo)
	assert.Equal(t, "f3a1c0", topo.TopoID)
	assert.Equal(t, mbt.OperatorLothianBuses, topo.Operator)
}

func TestDecode_EmptyArrayIsValid(t *testing.T) {
	t.Parallel()

	resp := &mbt.WireResponse{StatusCode: http.StatusOK, Body: []byte(`{"disruptions":[]}`)}

	disruptions, err := codec.Decode[mbt.Disruptions](resp)
	require.NoError(t, err)
	assert.Empty(t, disruptions.Disruptions)
}

func TestDecode_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    *mbt.WireResponse
		kind    mbt.ErrorKind
		code    string
		message string
	}{
		{
			name: "nil response",
			resp: nil,
			kind: mbt.KindDecodeError,
		},
		{
			name: "empty body",
			resp: &mbt.WireResponse{StatusCode: http.StatusOK},
			kind: mbt.KindDecodeError,
		},
		{
			name: "truncated body",
			resp: &mbt.WireResponse{StatusCode: http.StatusOK, Body: []byte(`{"busStops":[{"stopId":"1"`)},
			kind: mbt.KindDecodeError,
		},
		{
			name: "not json",
			resp: &mbt.WireResponse{StatusCode: http.StatusOK, Body: []byte(`<html>maintenance</html>`)},
			kind: mbt.KindDecodeError,
		},
		{
			name: "wrong shape",
			resp: &mbt.WireResponse{StatusCode: http.StatusOK, Body: []byte(`[1,2,3]`)},
			kind: mbt.KindDecodeError,
		},
		{
			name: "missing envelope key",
			resp: &mbt.WireResponse{StatusCode: http.StatusOK, Body: []byte(`{"services":[]}`)},
			kind: mbt.KindDecodeError,
		},
		{
			name: "unknown enumeration value",
			resp: &mbt.WireResponse{StatusCode: http.StatusOK, Body: []byte(
				`{"busStops":[{"operatorId":"XX","stopId":"1","name":"a","x":1,"y":2,"cap":0,"services":[],"dests":[]}]}`)},
			kind: mbt.KindDecodeError,
		},
		{
			name:    "invalid key fault",
			resp:    &mbt.WireResponse{StatusCode: http.StatusOK, Body: []byte(`{"faultcode":"INVALID_KEY","faultstring":"Key is invalid"}`)},
			kind:    mbt.KindAuthenticationFailure,
			code:    "INVALID_KEY",
			message: "Key is invalid",
		},
		{
			name:    "invalid app key fault",
			resp:    &mbt.WireResponse{StatusCode: http.StatusOK, Body: []byte(`{"faultcode":"INVALID_APP_KEY","faultstring":"Unknown application"}`)},
			kind:    mbt.KindAuthenticationFailure,
			code:    "INVALID_APP_KEY",
			message: "Unknown application",
		},
		{
			name:    "remote fault kept verbatim",
			resp:    &mbt.WireResponse{StatusCode: http.StatusOK, Body: []byte(`{"faultcode":"SYSTEM_ERROR","faultstring":"Système indisponible"}`)},
			kind:    mbt.KindRemoteError,
			code:    "SYSTEM_ERROR",
			message: "Système indisponible",
		},
		{
			name:    "unauthorized status",
			resp:    &mbt.WireResponse{StatusCode: http.StatusUnauthorized},
			kind:    mbt.KindAuthenticationFailure,
			code:    "HTTP_401",
			message: "Unauthorized",
		},
		{
			name:    "server error status",
			resp:    &mbt.WireResponse{StatusCode: http.StatusBadGateway, Body: []byte("upstream down")},
			kind:    mbt.KindRemoteError,
			code:    "HTTP_502",
			message: "upstream down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stops, err := codec.Decode[mbt.BusStops](tt.resp)

			require.Error(t, err)
			assert.Nil(t, stops)

			apiErr, ok := mbt.AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, "getBusStops", apiErr.Op)

			if tt.code != "" {
				assert.Equal(t, tt.code, apiErr.Code)
				assert.Equal(t, tt.message, apiErr.Message)
			}

			if tt.kind == mbt.KindDecodeError {
				assert.Equal(t, "object with busStops array", apiErr.Shape)
			}
		})
	}
}

func TestDecode_EveryRecordRequiresItsEnvelope(t *testing.T) {
	t.Parallel()

	empty := &mbt.WireResponse{StatusCode: http.StatusOK, Body: []byte(`{}`)}

	checks := map[string]func() error{
		"topo id":          func() error { _, err := codec.Decode[mbt.TopoID](empty); return err },
		"services":         func() error { _, err := codec.Decode[mbt.Services](empty); return err },
		"service points":   func() error { _, err := codec.Decode[mbt.ServicePoints](empty); return err },
		"destinations":     func() error { _, err := codec.Decode[mbt.Destinations](empty); return err },
		"bus stops":        func() error { _, err := codec.Decode[mbt.BusStops](empty); return err },
		"disruptions":      func() error { _, err := codec.Decode[mbt.Disruptions](empty); return err },
		"diversions":       func() error { _, err := codec.Decode[mbt.Diversions](empty); return err },
		"diversion points": func() error { _, err := codec.Decode[mbt.DiversionPoints](empty); return err },
		"bus times":        func() error { _, err := codec.Decode[mbt.BusTimes](empty); return err },
		"journey times":    func() error { _, err := codec.Decode[mbt.JourneyTimes](empty); return err },
	}

	for name, check := range checks {
		err := check()
		assert.True(t, mbt.IsDecodeError(err), name)
	}
}
