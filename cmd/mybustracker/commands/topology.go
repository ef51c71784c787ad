package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/mybustracker/pkg/mbt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func addOperatorFlag(cmd *cobra.Command, operator *string) {
	cmd.Flags().StringVar(operator, "operator", "", "operator code (LB, or 0/ALL for every operator)")
}

// NewTopoIDCommand creates the topo-id command.
func NewTopoIDCommand() *cobra.Command {
	var operator string

	cmd := &cobra.Command{
		Use:   "topo-id",
		Short: "Show the current topology ID",
		Long:  "Display the identifier of the network topology currently in use. It changes at most once a day.",
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

			topo, err := s.client.TopoID(ctx, mbt.TopoIDParams{Operator: op})
			if err != nil {
				return fmt.Errorf("failed to get topology ID: %w", err)
			}

			return writeOutput(cmd.OutOrStdout(), topo, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Topology ID", topo.TopoID)
				_ = table.Append("Operator", valueOrNA(string(topo.Operator)))
			})
		},
	}

	addOperatorFlag(cmd, &operator)

	return cmd
}

// NewServicesCommand creates the services command.
func NewServicesCommand() *cobra.Command {
	var operator string

	cmd := &cobra.Command{
		Use:     "services",
		Aliases: []string{"svc"},
		Short:   "List bus services",
		Long:    "List every bus service with its mnemonic and destinations",
		Args:    cobra.NoArgs,
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

			services, err := s.client.Services(ctx, mbt.ServicesParams{Operator: op})
			if err != nil {
				return fmt.Errorf("failed to list services: %w", err)
			}

			return writeOutput(cmd.OutOrStdout(), services, func(table *tablewriter.Table) {
				table.Header("Ref", "Mnemonic", "Name", "Operator", "Destinations")

				for _, svc := range services.Services {
					_ = table.Append(svc.Reference, svc.Mnemonic, svc.Name, string(svc.Operator), strings.Join(svc.Destinations, ", "))
				}
			})
		},
	}

	addOperatorFlag(cmd, &operator)

	return cmd
}

// NewServicePointsCommand creates the service-points command.
func NewServicePointsCommand() *cobra.Command {
	var operator string

	cmd := &cobra.Command{
		Use:   "service-points SERVICE_REF",
		Short: "List the route points of a service",
		Long:  "List the ordered points of a service route for plotting on a map",
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

			points, err := s.client.ServicePoints(ctx, mbt.ServicePointsParams{
				ServiceReference: args[0],
				Operator:         op,
			})
			if err != nil {
				return fmt.Errorf("failed to get service points: %w", err)
			}

			return writeOutput(cmd.OutOrStdout(), points, func(table *tablewriter.Table) {
				table.Header("Order", "Chainage", "Latitude", "Longitude")

				for _, p := range points.Points {
					_ = table.Append(strconv.Itoa(p.Order), strconv.Itoa(p.Chainage), formatCoord(p.Latitude), formatCoord(p.Longitude))
				}
			})
		},
	}

	addOperatorFlag(cmd, &operator)

	return cmd
}

// NewDestinationsCommand creates the destinations command.
func NewDestinationsCommand() *cobra.Command {
	var operator string

	cmd := &cobra.Command{
		Use:     "destinations",
		Aliases: []string{"dests"},
		Short:   "List service destinations",
		Long:    "List every destination with its direction and service",
		Args:    cobra.NoArgs,
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

			dests, err := s.client.Destinations(ctx, mbt.DestinationsParams{Operator: op})
			if err != nil {
				return fmt.Errorf("failed to list destinations: %w", err)
			}

			return writeOutput(cmd.OutOrStdout(), dests, func(table *tablewriter.Table) {
				table.Header("Ref", "Name", "Direction", "Service")

				for _, d := range dests.Destinations {
					_ = table.Append(d.Reference, d.Name, string(d.Direction), d.Service)
				}
			})
		},
	}

	addOperatorFlag(cmd, &operator)

	return cmd
}

// NewBusStopsCommand creates the stops command.
func NewBusStopsCommand() *cobra.Command {
	var (
		operator string
		service  string
	)

	cmd := &cobra.Command{
		Use:     "stops",
		Aliases: []string{"bus-stops"},
		Short:   "List bus stops",
		Long:    "List every bus stop with its position, orientation and services",
		Args:    cobra.NoArgs,
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

			stops, err := s.client.BusStops(ctx, mbt.BusStopsParams{Operator: op})
			if err != nil {
				return fmt.Errorf("failed to list bus stops: %w", err)
			}

			if service != "" {
				stops = filterStopsByService(stops, service)
			}

			return writeOutput(cmd.OutOrStdout(), stops, func(table *tablewriter.Table) {
				table.Header("Stop ID", "Name", "Latitude", "Longitude", "Orientation", "Services")

				for _, st := range stops.BusStops {
					_ = table.Append(st.StopID, st.Name, formatCoord(st.Latitude), formatCoord(st.Longitude),
						strconv.Itoa(st.Orientation), strings.Join(st.Services, ", "))
				}
			})
		},
	}

	addOperatorFlag(cmd, &operator)
	cmd.Flags().StringVar(&service, "service", "", "only show stops served by this service reference")

	return cmd
}

func filterStopsByService(stops *mbt.BusStops, service string) *mbt.BusStops {
	filtered := &mbt.BusStops{BusStops: []mbt.BusStop{}}

	for _, st := range stops.BusStops {
		for _, ref := range st.Services {
			if ref == service {
				filtered.BusStops = append(filtered.BusStops, st)

				break
			}
		}
	}

	return filtered
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
