package cli

import (
	"fmt"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/events"
	"github.com/Domenick1991/aircargo/internal/service/booking"
	"github.com/spf13/cobra"
)

type RoutesOptions struct {
	*RootOptions
	Origin      string
	Destination string
	Date        string
}

func NewRoutesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RoutesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "routes",
		Short:   "List direct and one-stop routes for a day",
		Example: `  cargoctl routes --origin DEL --destination BLR --date 2026-03-01`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := time.Parse("2006-01-02", opts.Date)
			if err != nil {
				return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", opts.Date)
			}
			return withServices(cmd, opts.RootOptions, func(svc *Services) error {
				result, err := svc.Flights.FindRoutes(cmd.Context(), opts.Origin, opts.Destination, date)
				if err != nil {
					return err
				}
				out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
				return out.Routes(result)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Origin, "origin", "", "origin airport code")
	cmd.Flags().StringVar(&opts.Destination, "destination", "", "destination airport code")
	cmd.Flags().StringVar(&opts.Date, "date", "", "departure date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("origin")
	_ = cmd.MarkFlagRequired("destination")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

type CreateOptions struct {
	*RootOptions
	Input booking.CreateBookingInput
}

func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Book a shipment",
		Example: `  cargoctl create --origin DEL --destination BLR --pieces 3 --weight 120 --flight F100`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, opts.RootOptions, func(svc *Services) error {
				b, err := svc.Bookings.CreateBooking(cmd.Context(), opts.Input)
				if err != nil {
					return err
				}
				return report(cmd, opts.RootOptions, svc, events.TypeBookingCreated, b)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Input.Origin, "origin", "", "origin airport code")
	cmd.Flags().StringVar(&opts.Input.Destination, "destination", "", "destination airport code")
	cmd.Flags().IntVar(&opts.Input.Pieces, "pieces", 1, "number of pieces")
	cmd.Flags().IntVar(&opts.Input.WeightKg, "weight", 0, "total weight in kg")
	cmd.Flags().StringSliceVar(&opts.Input.FlightRefs, "flight", nil, "planned flight id (repeatable)")

	return cmd
}

func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id-or-ref-id>",
		Short: "Show a booking and its timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, rootOpts, func(svc *Services) error {
				b, err := svc.Bookings.History(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Booking(b)
			})
		},
	}
}

func NewDepartCommand(rootOpts *RootOptions) *cobra.Command {
	return newMoveCommand(rootOpts, "depart", "Mark a booking as departed", events.TypeBookingDeparted,
		func(cmd *cobra.Command, svc *Services, id, flight string) (*domain.Booking, error) {
			return svc.Bookings.Depart(cmd.Context(), id, flight)
		})
}

func NewArriveCommand(rootOpts *RootOptions) *cobra.Command {
	return newMoveCommand(rootOpts, "arrive", "Mark a booking as arrived", events.TypeBookingArrived,
		func(cmd *cobra.Command, svc *Services, id, flight string) (*domain.Booking, error) {
			return svc.Bookings.Arrive(cmd.Context(), id, flight)
		})
}

func NewCancelCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <id-or-ref-id>",
		Short: "Cancel a booking that has not arrived",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, rootOpts, func(svc *Services) error {
				b, err := svc.Bookings.Cancel(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return report(cmd, rootOpts, svc, events.TypeBookingCancelled, b)
			})
		},
	}
	return cmd
}

type moveFunc func(cmd *cobra.Command, svc *Services, id, flight string) (*domain.Booking, error)

func newMoveCommand(rootOpts *RootOptions, use, short, eventType string, move moveFunc) *cobra.Command {
	var flight string

	cmd := &cobra.Command{
		Use:   use + " <id-or-ref-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, rootOpts, func(svc *Services) error {
				b, err := move(cmd, svc, args[0], flight)
				if err != nil {
					return err
				}
				return report(cmd, rootOpts, svc, eventType, b)
			})
		},
	}

	cmd.Flags().StringVar(&flight, "flight", "", "flight id the shipment moved on")
	return cmd
}

// report notifies the observer of a successful change and prints the booking.
func report(cmd *cobra.Command, opts *RootOptions, svc *Services, eventType string, b *domain.Booking) error {
	if svc.Observer != nil {
		svc.Observer.Observe(cmd.Context(), events.NewBookingEvent(eventType, b))
	}
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Booking(b)
}
