package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fivetwenty-io/mybustracker/internal/constants"
	"github.com/fivetwenty-io/mybustracker/internal/encoding"
	"github.com/fivetwenty-io/mybustracker/internal/metrics"
	"github.com/fivetwenty-io/mybustracker/internal/observability"
	"github.com/fivetwenty-io/mybustracker/internal/publish"
	"github.com/gorilla/mux"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

const metricsShutdownTimeout = 5 * time.Second

// NewPublishCommand creates the publish command.
func NewPublishCommand() *cobra.Command {
	var (
		flags         busTimesFlags
		natsURL       string
		subjectPrefix string
		format        string
		interval      time.Duration
		once          bool
		metricsAddr   string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish bus times to NATS",
		Long: `Poll bus times and publish one message per stop and service on
<prefix>.<stop>.<service>. Messages are the bus times encoded as JSON, YAML
or CBOR. With --format proto each message is a GTFS-Realtime TripUpdate feed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params()
			if err != nil {
				return err
			}

			if len(params.Timetables) == 0 {
				return publish.ErrNothingToPublish
			}

			registry, err := encoding.NewRegistry()
			if err != nil {
				return err
			}

			codec, err := registry.Get(format)
			if err != nil {
				return err
			}

			collector := metrics.New()

			s, err := newSession(collector)
			if err != nil {
				return err
			}
			defer s.Close()

			if natsURL == "" {
				natsURL = s.config.NATS.URL
			}

			if subjectPrefix == "" {
				subjectPrefix = s.config.NATS.SubjectPrefix
			}

			conn, err := nats.Connect(natsURL, nats.Name("mybustracker"), nats.MaxReconnects(-1))
			if err != nil {
				return fmt.Errorf("failed to connect to NATS at %s: %w", natsURL, err)
			}
			defer conn.Close()

			publisher, err := publish.New(publish.Config{
				Client:        s.client,
				Conn:          conn,
				Codec:         codec,
				Params:        params,
				SubjectPrefix: subjectPrefix,
				Logger:        observability.NewLogger(s.logger),
				Counter:       collector,
				MinInterval:   constants.MinPublishInterval,
			})
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			if once {
				n, err := publisher.PublishOnce(ctx)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Published %d messages\n", n)

				return nil
			}

			if metricsAddr != "" {
				server := &http.Server{Addr: metricsAddr, Handler: metricsRouter(collector), ReadHeaderTimeout: 5 * time.Second}

				go func() {
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						s.logger.Sugar().Warnw("metrics server stopped", "error", err)
					}
				}()

				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
					defer cancel()

					_ = server.Shutdown(shutdownCtx)
				}()
			}

			return publisher.Run(ctx, interval)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server URL (default from config, "+constants.DefaultNATSURL+")")
	cmd.Flags().StringVar(&subjectPrefix, "subject-prefix", "", "subject prefix (default from config, "+constants.DefaultSubjectPrefix+")")
	cmd.Flags().StringVar(&format, "format", constants.FormatJSON, "message encoding (json, yaml, cbor, proto)")
	cmd.Flags().DurationVar(&interval, "interval", constants.DefaultPublishInterval, "polling interval")
	cmd.Flags().BoolVar(&once, "once", false, "publish a single round and exit")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	return cmd
}

func metricsRouter(collector *metrics.Collector) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", collector.Handler()).Methods(http.MethodGet)

	return router
}
