package mbtclient

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/mybustracker/internal/client"
	"github.com/fivetwenty-io/mybustracker/internal/constants"
	mbthttp "github.com/fivetwenty-io/mybustracker/internal/http"
	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
)

// New creates a My Bus Tracker client. The caller's config is not modified.
func New(config *mbt.Config) (mbt.Client, error) {
	if config == nil {
		return nil, mbt.ErrConfigRequired
	}

	if config.APIKey.IsZero() {
		return nil, mbt.ErrAPIKeyRequired
	}

	cfg := *config
	cfg.Endpoint = NormalizeEndpoint(cfg.Endpoint)

	if cfg.Transport == nil {
		cfg.Transport = mbthttp.NewClient(createHTTPClientOptions(&cfg)...)
	}

	c, err := client.New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithKey creates a client for the default endpoint.
func NewWithKey(apiKey string) (mbt.Client, error) {
	return New(&mbt.Config{APIKey: mbt.NewAPIKey(apiKey)})
}

// NewWithEndpoint creates a client for a specific endpoint, such as a test double of the service.
func NewWithEndpoint(apiKey, endpoint string) (mbt.Client, error) {
	return New(&mbt.Config{APIKey: mbt.NewAPIKey(apiKey), Endpoint: endpoint})
}

// NewWithTransport creates a client that sends every request through transport.
func NewWithTransport(apiKey string, transport mbt.Transport) (mbt.Client, error) {
	return New(&mbt.Config{APIKey: mbt.NewAPIKey(apiKey), Transport: transport})
}

// NormalizeEndpoint fills in the default endpoint and a missing scheme.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return constants.DefaultEndpoint
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		// The public service is only served over plain HTTP.
		endpoint = "http://" + endpoint
	}

	return endpoint
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *mbt.Config) []mbthttp.Option {
	var httpOpts []mbthttp.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, mbthttp.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, mbthttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, mbthttp.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, mbthttp.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, mbthttp.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// loggerAdapter adapts mbt.Logger to http.Logger.
type loggerAdapter struct {
	logger mbt.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
