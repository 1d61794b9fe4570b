package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"taskapp/internal/app"
	"taskapp/internal/config"
	"taskapp/internal/database"
	"taskapp/internal/logger"
	"taskapp/internal/notify"
	"taskapp/internal/services"
	"taskapp/pkg/rabbitmq"

	"github.com/rs/zerolog/log"
)

func main() {
	configFile := flag.String("config", "", "optional .env file with configuration")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// --- Database ---
	db, err := database.Open(database.Config{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseDSN})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()
	if err := database.Migrate(db, cfg.DatabaseDriver); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// --- Notifications ---
	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.SendGridAPIKey != "" {
		mailer = notify.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SenderEmail, "")
	}

	var notifier services.AccountNotifier
	switch {
	case cfg.RabbitMQURL != "":
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()

		worker := notify.NewWorker(mailer, 0)
		if err := mqClient.Consume(worker.HandleDelivery); err != nil {
			log.Error().Err(err).Msg("failed to start account event consumer")
		}
		notifier = notify.NewQueueNotifier(mqClient)
	default:
		direct := notify.NewDirectNotifier(mailer, 0)
		defer direct.Wait()
		notifier = direct
	}

	// --- HTTP ---
	application := app.New(db, app.Options{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Notifier:  notifier,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("starting server")
		if err := application.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")
	if err := application.Fiber.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}
