package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"roomly/internal/notifier"
	"roomly/pkg/contracts"
	"roomly/pkg/kafka"
	kafka_config "roomly/pkg/kafka/config"
	"roomly/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{
		Level:   logger.INFO,
		Format:  logger.JSON,
		Service: "notifier",
	})

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(log.Info)

	n := notifier.NewNotifier(log)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		contracts.TopicBookingEvents,
		contracts.NotifierGroupID,
		contracts.TopicBookingEventsDLQ,
		n.HandleBookingEvent,
	)
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	log.Info("Starting notifier", "topic", contracts.TopicBookingEvents, "group", contracts.NotifierGroupID)
	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", "error", err)
	}
	log.Info("Notifier stopped gracefully")
}
