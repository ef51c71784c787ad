package mbtclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
	"github.com/fivetwenty-io/mybustracker/pkg/mbtclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("creates client with key", func(t *testing.T) {
		t.Parallel()

		client, err := mbtclient.NewWithKey("developer-key")
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		client, err := mbtclient.New(nil)
		require.ErrorIs(t, err, mbt.ErrConfigRequired)
		assert.Nil(t, client)
	})

	t.Run("requires key", func(t *testing.T) {
		t.Parallel()

		client, err := mbtclient.NewWithKey("")
		require.ErrorIs(t, err, mbt.ErrAPIKeyRequired)
		assert.Nil(t, client)
	})

	t.Run("does not modify config", func(t *testing.T) {
		t.Parallel()

		config := &mbt.Config{APIKey: mbt.NewAPIKey("developer-key"), Endpoint: "ws.example.com/?module=json"}

		_, err := mbtclient.New(config)
		require.NoError(t, err)
		assert.Equal(t, "ws.example.com/?module=json", config.Endpoint)
		assert.Nil(t, config.Transport)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "", expected: mbt.DefaultEndpoint},
		{input: "  ", expected: mbt.DefaultEndpoint},
		{input: "ws.mybustracker.co.uk/?module=json", expected: "http://ws.mybustracker.co.uk/?module=json"},
		{input: "https://proxy.example.com/mbt?module=json", expected: "https://proxy.example.com/mbt?module=json"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, mbtclient.NormalizeEndpoint(tt.input))
		})
	}
}

func TestNewWithEndpoint_EndToEnd(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		query := request.URL.Query()
		assert.Equal(t, "json", query.Get("module"))
		assert.Equal(t, "getDests", query.Get("function"))
		assert.Len(t, query.Get("key"), 32)

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"dests":[{"ref":"2","operatorId":"LB","name":"Gyle Centre","direction":"A","service":"22"}]}`))
	}))
	defer server.Close()

	client, err := mbtclient.NewWithEndpoint("developer-key", server.URL+"/?module=json")
	require.NoError(t, err)

	dests, err := client.Destinations(context.Background(), mbt.DestinationsParams{})
	require.NoError(t, err)
	require.Len(t, dests.Destinations, 1)
	assert.Equal(t, mbt.DirectionInbound, dests.Destinations[0].Direction)
}

func TestNewWithTransport(t *testing.T) {
	t.Parallel()

	calls := 0
	transport := mbt.TransportFunc(func(_ context.Context, req *mbt.WireRequest) (*mbt.WireResponse, error) {
		calls++

		return &mbt.WireResponse{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"faultcode":"INVALID_APP_KEY","faultstring":"Unknown key"}`),
		}, nil
	})

	client, err := mbtclient.NewWithTransport("revoked-key", transport)
	require.NoError(t, err)

	_, err = client.TopoID(context.Background(), mbt.TopoIDParams{})
	require.ErrorIs(t, err, mbt.ErrAuthenticationFailure)
	assert.Equal(t, 1, calls)
}
