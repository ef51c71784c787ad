package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/mybustracker/internal/constants"
	"github.com/fivetwenty-io/mybustracker/internal/observability"
	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
	"github.com/fivetwenty-io/mybustracker/pkg/mbtclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// session is a configured client plus the logger backing it.
type session struct {
	config *Config
	client mbt.Client
	logger *zap.Logger
}

// newSession loads the configuration and builds a client. metrics may be nil.
func newSession(metrics mbt.Metrics) (*session, error) {
	config := loadConfig()

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	if strings.TrimSpace(config.APIKey) == "" {
		return nil, constants.ErrNoAPIKeyConfigured
	}

	logConfig := effectiveLogConfig(config)

	logger, err := observability.SetupLogger(logConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	clientConfig := &mbt.Config{
		APIKey:      mbt.NewAPIKey(config.APIKey),
		Endpoint:    config.Endpoint,
		HTTPTimeout: config.Timeout,
		RetryMax:    config.RetryMax,
		Debug:       strings.EqualFold(logConfig.Level, "debug"),
		Logger:      observability.NewLogger(logger),
		Metrics:     metrics,
	}

	client, err := mbtclient.New(clientConfig)
	if err != nil {
		_ = logger.Sync()

		return nil, err
	}

	return &session{config: config, client: client, logger: logger}, nil
}

func (s *session) Close() {
	_ = s.logger.Sync()
}

// signalContext derives from parent and is also cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// writeOutput renders v in the configured output format. table fills a table
// for the default format.
func writeOutput(w io.Writer, v interface{}, table func(*tablewriter.Table)) error {
	switch format := viper.GetString("output"); format {
	case constants.FormatJSON:
		return encodeJSON(w, v)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(v)
	case constants.FormatTable, "":
		t := tablewriter.NewWriter(w)
		table(t)

		if err := t.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, format)
	}
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}

func valueOrNA(value string) string {
	return valueOr(value, constants.NotAvailable)
}

func stringOrNA(value *string) string {
	if value == nil {
		return constants.NotAvailable
	}

	return valueOrNA(*value)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n-3]) + "..."
}

// parseOperator accepts LB, 0 and ALL (any case). Empty means all operators.
func parseOperator(s string) (mbt.Operator, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case string(mbt.OperatorLothianBuses):
		return mbt.OperatorLothianBuses, nil
	case string(mbt.OperatorAll), "ALL":
		return mbt.OperatorAll, nil
	default:
		return "", fmt.Errorf("%w: %q", constants.ErrInvalidOperator, s)
	}
}

// parseTimetable parses STOP:SERVICE:DESTINATION.
func parseTimetable(s string) (mbt.Timetable, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return mbt.Timetable{}, fmt.Errorf("%w: %q", constants.ErrInvalidTimetable, s)
	}

	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return mbt.Timetable{}, fmt.Errorf("%w: %q", constants.ErrInvalidTimetable, s)
		}
	}

	return mbt.Timetable{StopID: parts[0], ServiceReference: parts[1], DestinationReference: parts[2]}, nil
}

func parseTimetables(values []string) ([]mbt.Timetable, error) {
	timetables := make([]mbt.Timetable, 0, len(values))

	for _, v := range values {
		tt, err := parseTimetable(v)
		if err != nil {
			return nil, err
		}

		timetables = append(timetables, tt)
	}

	return timetables, nil
}
