package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/mybustracker/internal/constants"
	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const dateTimeLayout = "2006-01-02 15:04"

// NewDisruptionsCommand creates the disruptions command.
func NewDisruptionsCommand() *cobra.Command {
	var (
		operator       string
		disruptionType int
	)

	cmd := &cobra.Command{
		Use:   "disruptions",
		Short: "List current disruptions",
		Long: `List current disruptions.

--type selects the scope: 0 all, 1 network, 2 service, 3 bus stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := parseOperator(operator)
			if err != nil {
				return err
			}

			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			disruptions, err := s.client.Disruptions(ctx, mbt.DisruptionsParams{
				Type:     mbt.DisruptionType(disruptionType),
				Operator: op,
			})
			if err != nil {
				return fmt.Errorf("failed to list disruptions: %w", err)
			}

			return writeOutput(cmd.OutOrStdout(), disruptions, func(table *tablewriter.Table) {
				table.Header("ID", "Level", "Type", "Targets", "Valid Until", "Message")

				for _, d := range disruptions.Disruptions {
					validUntil := constants.NotAvailable
					if d.ValidUntil != nil {
						validUntil = d.ValidUntil.Format(dateTimeLayout)
					}

					_ = table.Append(d.ID, d.Level.String(), d.Type.String(), strings.Join(d.Targets, ", "),
						validUntil, truncate(d.Message, constants.MessageDisplayLength))
				}
			})
		},
	}

	addOperatorFlag(cmd, &operator)
	cmd.Flags().IntVar(&disruptionType, "type", 0, "disruption scope (0 all, 1 network, 2 service, 3 bus stop)")

	return cmd
}

// NewDiversionsCommand creates the diversions command.
func NewDiversionsCommand() *cobra.Command {
	var (
		operator string
		service  string
		day      int
	)

	cmd := &cobra.Command{
		Use:   "diversions",
		Short: "List service diversions",
		Long:  "List diversions for every service, or for one service with --service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := parseOperator(operator)
			if err != nil {
				return err
			}

			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			diversions, err := s.client.Diversions(ctx, mbt.DiversionsParams{
				ServiceReference: service,
				DayOffset:        day,
				Operator:         op,
			})
			if err != nil {
				return fmt.Errorf("failed to list diversions: %w", err)
			}

			return writeOutput(cmd.OutOrStdout(), diversions, func(table *tablewriter.Table) {
				table.Header("Diversion ID", "Service", "From", "To", "Start", "End", "Cancelled", "Temporary")

				for _, d := range diversions.Diversions {
					_ = table.Append(d.DiversionID, d.ServiceReference, d.StartStopName, d.EndStopName,
						d.StartDate.Format(dateTimeLayout), d.EndDate.Format(dateTimeLayout),
						strconv.Itoa(len(d.CancelledBusStops)), strconv.Itoa(len(d.TemporaryBusStops)))
				}
			})
		},
	}

	addOperatorFlag(cmd, &operator)
	cmd.Flags().StringVar(&service, "service", "", "service reference (default all services)")
	cmd.Flags().IntVar(&day, "day", 0, "day offset from today (0-3)")

	return cmd
}

// NewDiversionPointsCommand creates the diversion-points command.
func NewDiversionPointsCommand() *cobra.Command {
	var operator string

	cmd := &cobra.Command{
		Use:   "diversion-points DIVERSION_ID",
		Short: "List the route points of a diversion",
		Long:  "List the ordered points of a diversion route for plotting on a map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := parseOperator(operator)
			if err != nil {
				return err
			}

			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			points, err := s.client.DiversionPoints(ctx, mbt.DiversionPointsParams{
				DiversionID: args[0],
				Operator:    op,
			})
			if err != nil {
				return fmt.Errorf("failed to get diversion points: %w", err)
			}

			return writeOutput(cmd.OutOrStdout(), points, func(table *tablewriter.Table) {
				table.Header("Order", "Latitude", "Longitude")

				for _, p := range points.Points {
					_ = table.Append(strconv.Itoa(p.Order), formatCoord(p.Latitude), formatCoord(p.Longitude))
				}
			})
		},
	}

	addOperatorFlag(cmd, &operator)

	return cmd
}
