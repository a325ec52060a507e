package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"

	"graficaos.service/internal/config"
	"graficaos.service/internal/core"
	"graficaos.service/internal/ports/repository"
	"graficaos.service/internal/worker"
	"graficaos.service/internal/worker/email"
	"graficaos.service/pkg/aws"
	"graficaos.service/pkg/database"
	"graficaos.service/pkg/logger"
	"graficaos.service/pkg/telemetry"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	logger.Setup(cfg.IsLocalDev)

	shutdownTracer, err := telemetry.InitTracer("graficaos-email-worker", cfg.OTelEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	db, err := database.NewInstrumentedConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()
	log.Info().Msg("Successfully connected to the database.")

	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	clock := core.NewCivilClock(cfg.CivilUTCOffsetHours)
	reports := core.NewReportService(repository.NewPunchRepository(db), repository.NewUserRepository(db), clock, cfg.OnTime())
	emailService := core.NewSESEmailService(ses.NewFromConfig(awsCfg), cfg.ReportSender, clock.Location())
	processor := email.NewProcessor(emailService, reports)

	ctx, cancel := context.WithCancel(context.Background())
	app := worker.NewWorker(sqs.NewFromConfig(awsCfg), cfg.EmailSQSQueueURL, processor)

	done := make(chan struct{})
	go func() {
		app.Start(ctx)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down worker...")

	// Cancel the context to signal the worker to stop polling.
	cancel()
	<-done

	log.Info().Msg("Worker exited gracefully")
}
