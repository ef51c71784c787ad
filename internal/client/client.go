package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/mybustracker/internal/codec"
	"github.com/fivetwenty-io/mybustracker/internal/constants"
	mbthttp "github.com/fivetwenty-io/mybustracker/internal/http"
	"github.com/fivetwenty-io/mybustracker/internal/validation"
	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Static errors for err113 compliance.
var (
	ErrTransportRequired = errors.New("transport is required")
)

const (
	outcomeSuccess  = "success"
	headerRequestID = "X-Request-Id"
)

// Client implements the mbt.Client interface.
//
// All fields are set by New and only read afterwards.
type Client struct {
	transport mbt.Transport
	endpoint  *url.URL
	apiKey    mbt.APIKey
	clock     func() time.Time
	validate  *validator.Validate
	logger    mbt.Logger
	metrics   mbt.Metrics
}

var _ mbt.Client = (*Client)(nil)

// New creates a client from config. config.Transport must be set; the
// mbtclient package fills it with the default HTTP transport.
func New(config *mbt.Config) (*Client, error) {
	if config == nil {
		return nil, mbt.ErrConfigRequired
	}

	if config.APIKey.IsZero() {
		return nil, mbt.ErrAPIKeyRequired
	}

	if config.Transport == nil {
		return nil, ErrTransportRequired
	}

	endpoint, err := ParseEndpoint(config.Endpoint)
	if err != nil {
		return nil, err
	}

	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Client{
		transport: config.Transport,
		endpoint:  endpoint,
		apiKey:    config.APIKey,
		clock:     clock,
		validate:  validation.New(),
		logger:    config.Logger,
		metrics:   config.Metrics,
	}, nil
}

// ParseEndpoint validates an endpoint URL. Empty selects the default endpoint.
func ParseEndpoint(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = constants.DefaultEndpoint
	}

	endpoint, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mbt.ErrInvalidEndpoint, err)
	}

	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", mbt.ErrInvalidEndpoint, endpoint.Scheme)
	}

	if endpoint.Host == "" {
		return nil, mbt.ErrNoHostInEndpoint
	}

	return endpoint, nil
}

// Endpoint returns the endpoint requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// call runs one operation: validate, encode, one transport exchange, decode.
// It returns exactly one of the record and an *mbt.Error.
func call[T mbt.Record](ctx context.Context, c *Client, params mbt.Params) (*T, error) {
	function := params.Function()
	requestID := uuid.NewString()
	start := time.Now()

	err := validation.Params(c.validate, params)
	if err != nil {
		c.observe(function, requestID, start, err)

		return nil, err
	}

	req := codec.Encode(c.endpoint, c.apiKey.AccessToken(c.clock()), params)
	req.Header.Set(headerRequestID, requestID)

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		transportErr := &mbt.Error{Kind: mbt.KindTransportFailure, Op: function, Err: mbthttp.RedactError(err, req.URL)}
		c.observe(function, requestID, start, transportErr)

		return nil, transportErr
	}

	record, err := codec.Decode[T](resp)
	c.observe(function, requestID, start, err)

	if err != nil {
		return nil, err
	}

	return record, nil
}

func (c *Client) observe(function, requestID string, start time.Time, err error) {
	duration := time.Since(start)

	outcome := outcomeSuccess
	if err != nil {
		outcome = "error"
		if apiErr, ok := mbt.AsError(err); ok {
			outcome = apiErr.Kind.String()
		}
	}

	if c.metrics != nil {
		c.metrics.Observe(function, outcome, duration)
	}

	if c.logger == nil {
		return
	}

	fields := map[string]interface{}{
		"function":   function,
		"request_id": requestID,
		"outcome":    outcome,
		"duration":   duration.String(),
	}

	if err != nil {
		fields["error"] = err.Error()
		c.logger.Warn("My Bus Tracker call failed", fields)

		return
	}

	c.logger.Debug("My Bus Tracker call completed", fields)
}
