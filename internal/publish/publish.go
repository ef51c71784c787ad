// Package publish polls bus times and publishes them to NATS subjects.
package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/mybustracker/internal/encoding"
	"github.com/fivetwenty-io/mybustracker/internal/gtfsrt"
	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
	"github.com/nats-io/nats.go"
)

// Static errors for err113 compliance.
var (
	ErrClientRequired    = errors.New("client is required")
	ErrConnRequired      = errors.New("NATS connection is required")
	ErrCodecRequired     = errors.New("codec is required")
	ErrIntervalTooShort  = errors.New("interval is too short")
	ErrNothingToPublish  = errors.New("no timetables to publish")
	ErrEmptySubjectToken = errors.New("empty subject token")
)

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	PublishMsg(msg *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

// Counter records published messages per subject.
type Counter interface {
	Published(subject string)
}

// Config configures a Publisher.
type Config struct {
	Client        mbt.BusTimesService
	Conn          Conn
	Codec         encoding.Codec
	Params        mbt.BusTimesParams
	SubjectPrefix string
	Logger        mbt.Logger
	Counter       Counter
	MinInterval   time.Duration
	// Feed builds the payload of protobuf messages. Defaults to gtfsrt.NewBuilder().
	Feed *gtfsrt.Builder
}

// Publisher fetches bus times and publishes one message per stop and service.
// With the protobuf codec each message is a GTFS-Realtime TripUpdate feed,
// otherwise it is the BusTime record itself.
type Publisher struct {
	config Config
	feed   *gtfsrt.Builder
}

// New checks the configuration and returns a Publisher.
func New(config Config) (*Publisher, error) {
	switch {
	case config.Client == nil:
		return nil, ErrClientRequired
	case config.Conn == nil:
		return nil, ErrConnRequired
	case config.Codec == nil:
		return nil, ErrCodecRequired
	case len(config.Params.Timetables) == 0:
		return nil, ErrNothingToPublish
	}

	p := &Publisher{config: config}

	if config.Codec.Name() == encoding.FormatProto {
		p.feed = config.Feed
		if p.feed == nil {
			p.feed = gtfsrt.NewBuilder()
		}
	}

	return p, nil
}

func (p *Publisher) payload(bt mbt.BusTime) any {
	if p.feed == nil {
		return bt
	}

	return p.feed.TripUpdates(&mbt.BusTimes{BusTimes: []mbt.BusTime{bt}})
}

// Subject returns the subject a BusTime is published on:
// <prefix>.<stop>.<service>.
func Subject(prefix string, bt mbt.BusTime) (string, error) {
	stop := subjectToken(bt.StopID)
	service := subjectToken(bt.ServiceReference)

	if stop == "" || service == "" {
		return "", fmt.Errorf("%w: stop %q service %q", ErrEmptySubjectToken, bt.StopID, bt.ServiceReference)
	}

	return strings.TrimSuffix(prefix, ".") + "." + stop + "." + service, nil
}

func subjectToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}

		return r
	}, strings.TrimSpace(s))
}

// PublishOnce fetches bus times once and publishes them. It returns the number
// of messages published.
func (p *Publisher) PublishOnce(ctx context.Context) (int, error) {
	times, err := p.config.Client.BusTimes(ctx, p.config.Params)
	if err != nil {
		return 0, fmt.Errorf("fetching bus times: %w", err)
	}

	published := 0

	for _, bt := range times.BusTimes {
		subject, err := Subject(p.config.SubjectPrefix, bt)
		if err != nil {
			return published, err
		}

		data, err := p.config.Codec.Marshal(p.payload(bt))
		if err != nil {
			return published, fmt.Errorf("encoding %s: %w", subject, err)
		}

		msg := nats.NewMsg(subject)
		msg.Data = data
		msg.Header.Set("Content-Type", p.config.Codec.ContentType())

		if err := p.config.Conn.PublishMsg(msg); err != nil {
			return published, fmt.Errorf("publishing %s: %w", subject, err)
		}

		published++

		if p.config.Counter != nil {
			p.config.Counter.Published(subject)
		}
	}

	if err := p.config.Conn.FlushWithContext(ctx); err != nil {
		return published, fmt.Errorf("flushing NATS connection: %w", err)
	}

	return published, nil
}

// Run publishes immediately and then every interval until ctx is done.
// A failed round is logged and the next one is attempted.
func (p *Publisher) Run(ctx context.Context, interval time.Duration) error {
	if interval < p.config.MinInterval {
		return fmt.Errorf("%w: %s < %s", ErrIntervalTooShort, interval, p.config.MinInterval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		p.round(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Publisher) round(ctx context.Context) {
	n, err := p.PublishOnce(ctx)
	if p.config.Logger == nil {
		return
	}

	if err != nil {
		if ctx.Err() != nil {
			return
		}

		p.config.Logger.Warn("publish round failed", map[string]interface{}{
			"published": n,
			"error":     err.Error(),
		})

		return
	}

	p.config.Logger.Info("published bus times", map[string]interface{}{
		"published": n,
		"prefix":    p.config.SubjectPrefix,
	})
}
