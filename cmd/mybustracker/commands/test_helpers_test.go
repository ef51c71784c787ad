package commands

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var accessTokenPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

const busTimesBody = `{
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
      "serviceDisruption": true,
      "busStopDisruption": false,
      "serviceDiversion": false
    }
  ]
}`

const disruptionsBody = `{
  "disruptions": [
    {"id": "d1", "operatorId": "LB", "level": 3, "type": 2, "targets": ["22"], "validUntil": "2024-03-20T18:00:00Z", "message": "Roadworks on Leith Walk"}
  ]
}`

const servicesBody = `{
  "services": [
    {"ref": "22", "operatorId": "LB", "mnemo": "22", "name": "Ocean Terminal - Gyle Centre", "dests": ["2", "9"]}
  ]
}`

// fakeAPI serves canned answers keyed by the function parameter.
type fakeAPI struct {
	server *httptest.Server
	hits   atomic.Int32
	bodies map[string]string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{bodies: map[string]string{
		"getBusTimes":    busTimesBody,
		"getDisruptions": disruptionsBody,
		"getServices":    servicesBody,
	}}

	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.hits.Add(1)

		query := r.URL.Query()
		if !accessTokenPattern.MatchString(query.Get("key")) || query.Get("module") != "json" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"faultcode": "INVALID_APP_KEY", "faultstring": "bad key"}`))

			return
		}

		body, ok := api.bodies[query.Get("function")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(api.server.Close)

	return api
}

// useConfig points viper at the fake API with a temporary config file.
func useConfig(t *testing.T, api *fakeAPI, output string) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	configFile := filepath.Join(t.TempDir(), "config.yml")
	viper.SetConfigFile(configFile)
	viper.Set("output", output)
	viper.Set("log.outputs", []string{filepath.Join(t.TempDir(), "mbt.log")})

	if api != nil {
		viper.Set("api_key", "ABCDEF")
		viper.Set("endpoint", api.server.URL+"/?module=json")
	}

	return configFile
}

// runCommand executes cmd with args and returns what it wrote to stdout.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}
