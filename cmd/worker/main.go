package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/aircargo/config"
	"github.com/Domenick1991/aircargo/internal/audit"
	"github.com/Domenick1991/aircargo/internal/kafka"
	"github.com/Domenick1991/aircargo/internal/logger"
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

	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.BookingEventsTopic == "" {
		logrus.Fatal("kafka.brokers and kafka.booking_events_topic are required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic)
	defer consumer.Close()

	recorder := audit.NewRecorder(logrus.StandardLogger())

	logrus.WithFields(logrus.Fields{
		"topic":    cfg.Kafka.BookingEventsTopic,
		"group_id": cfg.Kafka.GroupID,
	}).Info("audit worker started")

	if err := consumer.Consume(ctx, recorder.Handle); err != nil {
		logrus.WithError(err).Error("consumer stopped")
		return
	}
	logrus.Info("audit worker stopped")
}
