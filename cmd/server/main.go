package main

import (
	"context"
	"time"

	"ribobook/internal/admin/auth"
	adminhandler "ribobook/internal/admin/handler"
	"ribobook/internal/bookings/events"
	"ribobook/internal/bookings/handler"
	"ribobook/internal/bookings/repository"
	"ribobook/internal/bookings/store"
	"ribobook/internal/bookings/sweep"
	"ribobook/internal/bookings/validator"
	"ribobook/pkg/app"
	"ribobook/pkg/config"
)

const ServiceName = "ribobook"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting booking service")

	bookingRepo := initRepository(cfg)
	publisher := initPublisher(cfg)

	bookingStore := store.New(bookingRepo, publisher, cfg.Log, cfg.SlotCapacity)
	ctx, cancel := context.WithCancel(context.Background())
	go bookingStore.Run(ctx)

	sessions := auth.NewSessionManager(cfg.SessionTTL, cfg.Log)
	authenticator := auth.NewPassphraseAuthenticator(cfg.AdminPassphrase)

	sweeper := sweep.New(bookingStore, sessions, cfg.Log, cfg.SweepInterval, cfg.ExpiryGrace)
	go sweeper.Run(ctx)

	bookingValidator := validator.NewBookingValidator(cfg.Log, cfg.BookingCutoffDate, time.Now)
	publicHandler := handler.NewBookingHandler(
		bookingStore,
		bookingValidator,
		cfg.Log,
		cfg.SlotCapacity,
		cfg.BookingCutoffDate,
		cfg.SupportPhone,
	)
	adminHandler := adminhandler.NewAdminHandler(bookingStore, authenticator, sessions, cfg.Log)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, publicHandler, adminHandler)
	serverApp.Run(
		cancel,
		sessions.Stop,
		func() {
			if err := publisher.Close(); err != nil {
				cfg.Log.Error("Failed to close event publisher", "error", err)
			}
		},
		cfg.GracefulShutdown,
	)
}

func initRepository(cfg *config.Config) repository.BookingRepository {
	switch cfg.StorageDriver {
	case config.StorageDriverFile:
		repo, err := repository.NewFileBookingRepository(cfg.FileStorePath)
		if err != nil {
			cfg.Log.Fatal("Failed to open file booking store", "path", cfg.FileStorePath, "error", err)
		}
		cfg.Log.Info("Booking repository initialized", "driver", cfg.StorageDriver, "path", cfg.FileStorePath)
		return repo
	default:
		cfg.SetMongo()
		cfg.Log.Info("Booking repository initialized", "driver", cfg.StorageDriver, "database", cfg.MongoDatabaseName)
		return repository.NewMongoBookingRepository(cfg)
	}
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled() {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return events.NewNoopPublisher()
	}

	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize booking event publisher", "error", err)
	}
	return publisher
}
