// Package cli implements cargoctl, an operator CLI that talks to the booking
// store directly.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/Domenick1991/aircargo/config"
	"github.com/Domenick1991/aircargo/internal/bootstrap"
	"github.com/Domenick1991/aircargo/internal/events"
	"github.com/Domenick1991/aircargo/internal/kafka"
	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/Domenick1991/aircargo/internal/service/booking"
	"github.com/Domenick1991/aircargo/internal/service/flights"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string

	open Opener
}

// Services is what a command needs to do its work. Close releases whatever
// the opener acquired.
type Services struct {
	Bookings booking.BookingUseCase
	Flights  flights.FlightUseCase
	Observer events.Observer
	Close    func() error
}

type Opener func(ctx context.Context, configPath string) (*Services, error)

func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOpener(OpenServices)
}

// NewRootCommandWithOpener lets tests swap the storage wiring.
func NewRootCommandWithOpener(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "cargoctl",
		Short: "Operate air cargo bookings",
		Long:  "cargoctl books shipments, moves them through their lifecycle and searches flight routes.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config.yaml", "path to the service config")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewRoutesCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewDepartCommand(opts))
	cmd.AddCommand(NewArriveCommand(opts))
	cmd.AddCommand(NewCancelCommand(opts))

	return cmd
}

// withServices opens the services, runs fn and closes them again.
func withServices(cmd *cobra.Command, opts *RootOptions, fn func(*Services) error) error {
	svc, err := opts.open(cmd.Context(), opts.ConfigPath)
	if err != nil {
		return err
	}
	defer func() {
		if svc.Close != nil {
			_ = svc.Close()
		}
	}()
	return fn(svc)
}

// OpenServices wires the services from the config file, the same way the
// HTTP server does. Logs go to stderr so they never mix with command output.
func OpenServices(ctx context.Context, configPath string) (*Services, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Log)
	logrus.SetOutput(errWriter)

	storage, err := bootstrap.OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log := logrus.StandardLogger()
	observers := events.Observers{events.NewLogObserver(log)}
	closers := []func() error{storage.Close}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.BookingEventsTopic != "" {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		closers = append(closers, producer.Close)
		observers = append(observers, events.NewKafkaObserver(producer, cfg.Kafka.BookingEventsTopic, log))
	}

	return &Services{
		Bookings: booking.NewBookingService(storage.Bookings, storage.Flights, storage.RefIDs),
		Flights:  flights.NewFlightService(storage.Flights, cfg.Routes.MaxParallelQueries),
		Observer: observers,
		Close: func() error {
			var first error
			for i := len(closers) - 1; i >= 0; i-- {
				if err := closers[i](); err != nil && first == nil {
					first = err
				}
			}
			return first
		},
	}, nil
}
