package commands

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/fivetwenty-io/mybustracker/internal/constants"
	"github.com/fivetwenty-io/mybustracker/internal/metrics"
	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

func TestCommandShapes(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewTopoIDCommand(), "topo-id", []string{"operator"}},
		{NewServicesCommand(), "services", []string{"operator"}},
		{NewServicePointsCommand(), "service-points SERVICE_REF", []string{"operator"}},
		{NewDestinationsCommand(), "destinations", []string{"operator"}},
		{NewBusStopsCommand(), "stops", []string{"operator", "service"}},
		{NewDisruptionsCommand(), "disruptions", []string{"operator", "type"}},
		{NewDiversionsCommand(), "diversions", []string{"operator", "service", "day"}},
		{NewDiversionPointsCommand(), "diversion-points DIVERSION_ID", []string{"operator"}},
		{NewBusTimesCommand(), "bus-times", []string{"timetable", "departures", "day", "time"}},
		{NewJourneyTimesCommand(), "journey-times", []string{"stop", "journey-id", "bus-id", "operator", "day", "mode"}},
		{NewPublishCommand(), "publish", []string{"timetable", "nats-url", "subject-prefix", "format", "interval", "once", "metrics-addr"}},
		{NewVersionCommand("1.0.0", "abc", "today"), "version", nil},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short)
			assert.NotEmpty(t, tt.cmd.Long)
			assert.NotNil(t, tt.cmd.RunE)
			assert.NotNil(t, tt.cmd.Args)

			for _, name := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(name), "Flag %s should exist", name)
			}
		})
	}
}

func TestCommandGroups(t *testing.T) {
	config := NewConfigCommand()
	assert.Equal(t, "config", config.Use)

	var names []string
	for _, sub := range config.Commands() {
		names = append(names, sub.Name())
	}

	assert.ElementsMatch(t, []string{"show", "set", "set-key"}, names)

	export := NewExportCommand()
	require.Len(t, export.Commands(), 1)
	assert.Equal(t, "gtfsrt", export.Commands()[0].Name())

	timetable := NewBusTimesCommand().Flags().Lookup("timetable")
	assert.Equal(t, "t", timetable.Shorthand)

	interval := NewPublishCommand().Flags().Lookup("interval")
	assert.Equal(t, "30s", interval.DefValue)
}

func TestParseTimetable(t *testing.T) {
	tt, err := parseTimetable("36232087:22:2")
	require.NoError(t, err)
	assert.Equal(t, mbt.Timetable{StopID: "36232087", ServiceReference: "22", DestinationReference: "2"}, tt)

	for _, bad := range []string{"", "36232087", "36232087:22", "36232087::2", "a:b:c:d"} {
		_, err := parseTimetable(bad)
		require.ErrorIs(t, err, constants.ErrInvalidTimetable, bad)
	}
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in   string
		want mbt.Operator
	}{
		{"", ""},
		{"LB", mbt.OperatorLothianBuses},
		{"lb", mbt.OperatorLothianBuses},
		{"0", mbt.OperatorAll},
		{"all", mbt.OperatorAll},
	}

	for _, tt := range tests {
		got, err := parseOperator(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := parseOperator("FIRST")
	require.ErrorIs(t, err, constants.ErrInvalidOperator)
}

func TestParseMode(t *testing.T) {
	mode, err := parseMode("next")
	require.NoError(t, err)
	assert.Equal(t, mbt.JourneyTimeModeNextReference, mode)

	mode, err = parseMode("")
	require.NoError(t, err)
	assert.Equal(t, mbt.JourneyTimeModeAll, mode)

	_, err = parseMode("some")
	require.ErrorIs(t, err, constants.ErrInvalidMode)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestBusTimesCommand_JSON(t *testing.T) {
	api := newFakeAPI(t)
	useConfig(t, api, constants.FormatJSON)

	out, err := runCommand(t, NewBusTimesCommand(), "-t", "36232087:22:2", "-n", "3")
	require.NoError(t, err)

	var times mbt.BusTimes
	require.NoError(t, json.Unmarshal([]byte(out), &times))
	require.Len(t, times.BusTimes, 1)
	require.Len(t, times.BusTimes[0].Times, 3)
	assert.Equal(t, "4207", times.BusTimes[0].Times[0].JourneyID)
	assert.Equal(t, int32(1), api.hits.Load())
}

func TestBusTimesCommand_Table(t *testing.T) {
	api := newFakeAPI(t)
	useConfig(t, api, constants.FormatTable)

	out, err := runCommand(t, NewBusTimesCommand(), "-t", "36232087:22:2")
	require.NoError(t, err)
	assert.Contains(t, out, "Princes Street")
	assert.Contains(t, out, "Gyle Centre")
	assert.Contains(t, out, "real time, low floor")
	assert.Contains(t, out, "service")
}

func TestBusTimesCommand_InvalidTimetable(t *testing.T) {
	api := newFakeAPI(t)
	useConfig(t, api, constants.FormatJSON)

	_, err := runCommand(t, NewBusTimesCommand(), "-t", "36232087:22")
	require.ErrorIs(t, err, constants.ErrInvalidTimetable)

	_, err = runCommand(t, NewBusTimesCommand())
	require.Error(t, err)
	assert.True(t, mbt.IsInvalidParameter(err))

	assert.Zero(t, api.hits.Load())
}

func TestBusTimesCommand_CancelledContext(t *testing.T) {
	api := newFakeAPI(t)
	useConfig(t, api, constants.FormatJSON)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewBusTimesCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"-t", "36232087:22:2"})

	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.True(t, mbt.IsTransportFailure(err))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, api.hits.Load())
}

func TestServicesCommand_YAML(t *testing.T) {
	api := newFakeAPI(t)
	useConfig(t, api, constants.FormatYAML)

	out, err := runCommand(t, NewServicesCommand(), "--operator", "LB")
	require.NoError(t, err)

	var services map[string][]map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &services))
	require.Len(t, services["services"], 1)
	assert.Equal(t, "Ocean Terminal - Gyle Centre", services["services"][0]["name"])
}

func TestCommand_RemoteErrors(t *testing.T) {
	api := newFakeAPI(t)
	useConfig(t, api, constants.FormatJSON)

	_, err := runCommand(t, NewDestinationsCommand())
	require.Error(t, err)
	assert.True(t, mbt.IsRemoteError(err))

	_, err = runCommand(t, NewServicesCommand(), "--operator", "FIRST")
	require.ErrorIs(t, err, constants.ErrInvalidOperator)
}

func TestCommand_NoAPIKey(t *testing.T) {
	useConfig(t, nil, constants.FormatJSON)

	_, err := runCommand(t, NewTopoIDCommand())
	require.ErrorIs(t, err, constants.ErrNoAPIKeyConfigured)
}

func TestJourneyTimesCommand_JourneyFlags(t *testing.T) {
	api := newFakeAPI(t)
	useConfig(t, api, constants.FormatJSON)

	_, err := runCommand(t, NewJourneyTimesCommand(), "--journey-id", "4207", "--bus-id", "688")
	require.Error(t, err)

	_, err = runCommand(t, NewJourneyTimesCommand(), "--stop", "36232087")
	require.Error(t, err)

	_, err = runCommand(t, NewJourneyTimesCommand(), "--journey-id", "4207")
	require.Error(t, err)
	assert.True(t, mbt.IsInvalidParameter(err))

	assert.Zero(t, api.hits.Load())
}

func TestExportGTFSRTCommand(t *testing.T) {
	api := newFakeAPI(t)
	useConfig(t, api, constants.FormatTable)

	out := filepath.Join(t.TempDir(), "trip-updates.pb")

	_, err := runCommand(t, NewExportCommand(), "gtfsrt", "-t", "36232087:22:2", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var feed gtfsrtpb.FeedMessage
	require.NoError(t, proto.Unmarshal(data, &feed))
	require.Len(t, feed.GetEntity(), 3)
	assert.Equal(t, "4207", feed.GetEntity()[0].GetTripUpdate().GetTrip().GetTripId())
}

func TestExportGTFSRTCommand_AlertsJSON(t *testing.T) {
	api := newFakeAPI(t)
	useConfig(t, api, constants.FormatTable)

	stdout, err := runCommand(t, NewExportCommand(), "gtfsrt", "--alerts", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Roadworks on Leith Walk")
	assert.Contains(t, stdout, "routeId")
	assert.Contains(t, stdout, "informedEntity")
}

func TestVersionCommand(t *testing.T) {
	useConfig(t, nil, constants.FormatJSON)

	out, err := runCommand(t, NewVersionCommand("1.2.3", "abc123", "2024-03-15"))
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, constants.Version, info["client_version"])
}

func TestConfigCommands(t *testing.T) {
	configFile := useConfig(t, nil, constants.FormatTable)

	_, err := runCommand(t, NewConfigCommand(), "set", "nats.url", "nats://bus.example.com:4222")
	require.NoError(t, err)

	_, err = runCommand(t, NewConfigCommand(), "set-key", "ABCDEF")
	require.NoError(t, err)

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)

	var saved Config
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, "ABCDEF", saved.APIKey)
	assert.Equal(t, "nats://bus.example.com:4222", saved.NATS.URL)

	info, err := os.Stat(configFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())

	_, err = runCommand(t, NewConfigCommand(), "set", "colour", "blue")
	require.ErrorIs(t, err, constants.ErrUnknownConfigKey)

	_, err = runCommand(t, NewConfigCommand(), "set", "output", "xml")
	require.ErrorIs(t, err, constants.ErrInvalidConfig)

	out, err := runCommand(t, NewConfigCommand(), "show")
	require.NoError(t, err)
	assert.Contains(t, out, constants.MaskedSecret)
	assert.NotContains(t, out, "ABCDEF")
}

func TestConfigSet_Timeout(t *testing.T) {
	configFile := useConfig(t, nil, constants.FormatTable)

	_, err := runCommand(t, NewConfigCommand(), "set", "timeout", "1m30s")
	require.NoError(t, err)

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)

	var saved Config
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, 90*time.Second, saved.Timeout)

	_, err = runCommand(t, NewConfigCommand(), "set", "timeout", "soon")
	require.ErrorIs(t, err, constants.ErrInvalidConfig)
}

func TestMetricsRouter(t *testing.T) {
	collector := metrics.New()
	collector.Observe("getBusTimes", "success", 50*time.Millisecond)

	server := httptest.NewServer(metricsRouter(collector))
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "mybustracker_calls_total")

	resp, err = http.Post(server.URL+"/metrics", "text/plain", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
