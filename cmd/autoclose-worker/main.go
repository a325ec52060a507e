package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"

	"graficaos.service/internal/config"
	"graficaos.service/internal/core"
	"graficaos.service/internal/ports/messaging"
	"graficaos.service/internal/ports/repository"
	"graficaos.service/internal/worker/autoclose"
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

	shutdownTracer, err := telemetry.InitTracer("graficaos-autoclose-worker", cfg.OTelEndpoint)
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
	sweeper := core.NewSweepService(repository.NewPunchRepository(db), clock, cfg.AutoCloseHour)
	producer := messaging.NewSQSProducer(sqs.NewFromConfig(awsCfg), cfg.EmailSQSQueueURL)

	scheduler, err := autoclose.NewScheduler(autoclose.NewJob(sweeper, producer), clock.Location(), cfg.AutoCloseHour)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not schedule auto-close")
	}
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down scheduler...")

	// A sweep in progress gets 30 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := scheduler.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("Sweep still running at shutdown")
	}

	log.Info().Msg("Scheduler exited gracefully")
}
