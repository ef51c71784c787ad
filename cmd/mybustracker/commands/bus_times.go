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

// busTimesFlags are shared by bus-times, publish and export gtfsrt.
type busTimesFlags struct {
	timetables []string
	departures int
	day        int
	time       string
}

func (f *busTimesFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.timetables, "timetable", "t", nil,
		"timetable as STOP:SERVICE:DESTINATION (repeat up to 5 times)")
	cmd.Flags().IntVarP(&f.departures, "departures", "n", 0, "departures per timetable (1-10, default 2)")
	cmd.Flags().IntVar(&f.day, "day", 0, "day offset from today (0-3)")
	cmd.Flags().StringVar(&f.time, "time", "", "departure time as HH:MM (default now)")
}

func (f *busTimesFlags) params() (mbt.BusTimesParams, error) {
	timetables, err := parseTimetables(f.timetables)
	if err != nil {
		return mbt.BusTimesParams{}, err
	}

	return mbt.BusTimesParams{
		Timetables: timetables,
		Departures: f.departures,
		DayOffset:  f.day,
		Time:       f.time,
	}, nil
}

// NewBusTimesCommand creates the bus-times command.
func NewBusTimesCommand() *cobra.Command {
	var flags busTimesFlags

	cmd := &cobra.Command{
		Use:     "bus-times",
		Aliases: []string{"times"},
		Short:   "Show predicted departures",
		Long: `Show predicted departures for up to five stop/service/destination timetables.

Example:
  mybustracker bus-times -t 36232087:22:2 -t 36232087:25:9 -n 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params()
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

			times, err := s.client.BusTimes(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to get bus times: %w", err)
			}

			return writeOutput(cmd.OutOrStdout(), times, func(table *tablewriter.Table) {
				table.Header("Stop", "Service", "Destination", "Time", "Minutes", "Reliability", "Journey", "Bus", "Disruption")

				for _, bt := range times.BusTimes {
					for _, td := range bt.Times {
						_ = table.Append(valueOr(bt.StopName, bt.StopID), valueOr(bt.ServiceMnemonic, bt.ServiceReference),
							stringOrNA(bt.DestinationName), td.Time, strconv.Itoa(td.Minutes),
							td.Reliability.Description(), td.JourneyID, stringOrNA(td.BusID), disruptionFlags(bt))
					}
				}
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func disruptionFlags(bt mbt.BusTime) string {
	var flags []string

	if bt.GlobalDisruption {
		flags = append(flags, "network")
	}

	if bt.ServiceDisruption {
		flags = append(flags, "service")
	}

	if bt.BusStopDisruption {
		flags = append(flags, "stop")
	}

	if bt.ServiceDiversion {
		flags = append(flags, "diversion")
	}

	if len(flags) == 0 {
		return "-"
	}

	return strings.Join(flags, ", ")
}

func parseMode(s string) (mbt.JourneyTimeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "0":
		return mbt.JourneyTimeModeAll, nil
	case "next", "1":
		return mbt.JourneyTimeModeNextReference, nil
	default:
		return 0, fmt.Errorf("%w: %q", constants.ErrInvalidMode, s)
	}
}

// NewJourneyTimesCommand creates the journey-times command.
func NewJourneyTimesCommand() *cobra.Command {
	var (
		stopID    string
		journeyID string
		busID     string
		operator  string
		day       int
		mode      string
	)

	cmd := &cobra.Command{
		Use:   "journey-times",
		Short: "Show the predicted stop times of one journey",
		Long: `Show the predicted passing times of a journey, identified by --journey-id
(with --stop) or by the fleet number of the bus running it (--bus-id).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := parseOperator(operator)
			if err != nil {
				return err
			}

			m, err := parseMode(mode)
			if err != nil {
				return err
			}

			journey := mbt.ByJourneyID(journeyID)
			if busID != "" {
				journey = mbt.ByBusID(busID)
			}

			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			journeys, err := s.client.JourneyTimes(ctx, mbt.JourneyTimesParams{
				StopID:    stopID,
				Journey:   journey,
				Operator:  op,
				DayOffset: day,
				Mode:      m,
			})
			if err != nil {
				return fmt.Errorf("failed to get journey times: %w", err)
			}

			return writeOutput(cmd.OutOrStdout(), journeys, func(table *tablewriter.Table) {
				table.Header("Journey", "Service", "Order", "Stop", "Time", "Minutes", "Reliability", "Disruption")

				for _, j := range journeys.JourneyTimes {
					for _, td := range j.Times {
						_ = table.Append(j.JourneyID, valueOr(j.ServiceMnemonic, j.ServiceReference), strconv.Itoa(td.Order),
							valueOr(td.StopName, td.StopID), td.Time.String(), strconv.Itoa(td.Minutes), td.Reliability.Description(), yesNo(td.Disruption))
					}
				}
			})
		},
	}

	cmd.Flags().StringVar(&stopID, "stop", "", "stop ID (required with --journey-id)")
	cmd.Flags().StringVar(&journeyID, "journey-id", "", "journey ID")
	cmd.Flags().StringVar(&busID, "bus-id", "", "bus fleet number")
	cmd.Flags().StringVar(&operator, "operator", "", "operator code (LB, or 0/ALL for every operator)")
	cmd.Flags().IntVar(&day, "day", 0, "day offset from today (0-3)")
	cmd.Flags().StringVar(&mode, "mode", "all", "stops to return (all, next)")
	cmd.MarkFlagsMutuallyExclusive("journey-id", "bus-id")
	cmd.MarkFlagsOneRequired("journey-id", "bus-id")

	return cmd
}
