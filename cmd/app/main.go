package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/aircargo/api"
	"github.com/Domenick1991/aircargo/config"
	"github.com/Domenick1991/aircargo/internal/bootstrap"
	"github.com/Domenick1991/aircargo/internal/events"
	"github.com/Domenick1991/aircargo/internal/kafka"
	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/Domenick1991/aircargo/internal/service/booking"
	"github.com/Domenick1991/aircargo/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Log)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.OpenStorage(ctx, cfg)
	if err != nil {
		logrus.Fatalf("open storage: %v", err)
	}
	defer storage.Close()

	log := logrus.StandardLogger()
	observers := events.Observers{events.NewLogObserver(log)}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.BookingEventsTopic != "" {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logrus.WithError(err).Warn("Kafka unavailable, booking events will not be published until it recovers")
		}
		observers = append(observers, events.NewKafkaObserver(producer, cfg.Kafka.BookingEventsTopic, log))
	}

	flightService := flights.NewFlightService(storage.Flights, cfg.Routes.MaxParallelQueries)
	bookingService := booking.NewBookingService(storage.Bookings, storage.Flights, storage.RefIDs)

	router := api.NewRouter(
		api.NewBookingHandler(bookingService, observers),
		api.NewFlightHandler(flightService),
		log,
	)

	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
