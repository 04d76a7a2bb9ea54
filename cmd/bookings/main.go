package main

import (
	"roomly/internal/bookings/handler"
	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/service"
	"roomly/internal/bookings/validator"
	"roomly/pkg/app"
	"roomly/pkg/config"
	"roomly/pkg/contracts"
	"roomly/pkg/kafka"
	kafka_config "roomly/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")

	producer := initProducer(cfg)
	bookingService := initServices(cfg, producer)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
		cfg.Client.GracefulShutdown()
	})
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, contracts.TopicBookingEvents, contracts.TopicBookingEventsDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewRoomLockRepository(cfg)
	refs := repository.NewReferenceRepository(cfg)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		refs,
		producer,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
