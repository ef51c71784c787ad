package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
	"github.com/stretchr/testify/require"
)

// Test static errors.
var (
	ErrTestConnectionRefused = errors.New("dial tcp 127.0.0.1:80: connect: connection refused")
)

// fixedNow is the clock of every test client: 2024-03-15 09:30 UTC.
var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

// fakeTransport returns a canned response and records every request.
type fakeTransport struct {
	mu       sync.Mutex
	requests []*mbt.WireRequest
	status   int
	body     string
	err      error
}

func (f *fakeTransport) Do(_ context.Context, req *mbt.WireRequest) (*mbt.WireResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)

	if f.err != nil {
		return nil, f.err
	}

	status := f.status
	if status == 0 {
		status = http.StatusOK
	}

	return &mbt.WireResponse{StatusCode: status, Body: []byte(f.body)}, nil
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}

func (f *fakeTransport) lastRequest() *mbt.WireRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.requests) == 0 {
		return nil
	}

	return f.requests[len(f.requests)-1]
}

// NewTestClient creates a client over transport with a fixed clock.
func NewTestClient(t *testing.T, transport mbt.Transport) *Client {
	t.Helper()

	client, err := New(&mbt.Config{
		APIKey:    mbt.NewAPIKey("ABCDEF"),
		Transport: transport,
		Clock:     func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	return client
}

// MockLogger records log calls.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

// mockMetrics records observations.
type mockMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *mockMetrics) Observe(function, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.outcomes = append(m.outcomes, function+":"+outcome)
}

// stop36232087Body is a getBusTimes answer for one stop with three departures.
const stop36232087Body = `{
  "busTimes": [
    {
      "operatorId": "LB",
      "stopId": "36232087",
      "stopName": "Princes Street",
      "refService": "22",
      "mnemoService": "22",
      "nameService": "Ocean Terminal - Gyle Centre",
      "refDest": "2",
      "nameDest": "Gyle Centre",
      "timeDatas": [
        {"day": 0, "time": "09:33", "minutes": 3, "reliability": "H", "type": "N", "terminus": "36232926", "journeyId": "4207", "busId": "688"},
        {"day": 0, "time": "09:41", "minutes": 11, "reliability": "F", "type": "N", "terminus": "36232926", "journeyId": "4208", "busId": "702"},
        {"day": 0, "time": "09:52", "minutes": 22, "reliability": "T", "type": "N", "terminus": "36232926", "journeyId": "4209"}
      ],
      "globalDisruption": false,
      "serviceDisruption": false,
      "busStopDisruption": false,
      "serviceDiversion": false
    }
  ]
}`
