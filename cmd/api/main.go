// Entry point for REST API
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"graficaos.service/internal/api"
	"graficaos.service/internal/config"
	"graficaos.service/internal/core"
	"graficaos.service/internal/ports/messaging"
	"graficaos.service/internal/ports/repository"
	"graficaos.service/pkg/auth"
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

	shutdownTracer, err := telemetry.InitTracer("graficaos-api", cfg.OTelEndpoint)
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

	if cfg.RunMigrations {
		if err := database.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("Could not migrate database")
		}
	}

	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	clock := core.NewCivilClock(cfg.CivilUTCOffsetHours)
	punchRepo := repository.NewPunchRepository(db)
	userRepo := repository.NewUserRepository(db)
	producer := messaging.NewSQSProducer(sqs.NewFromConfig(awsCfg), cfg.EmailSQSQueueURL)

	router := api.NewRouter(api.Dependencies{
		Punches:   core.NewPunchService(punchRepo, clock),
		Reports:   core.NewReportService(punchRepo, userRepo, clock, cfg.OnTime()),
		Publisher: producer,
		Tokens:    auth.NewManager(cfg.JWTSecret, cfg.JWTTTL),
	})

	// Wrap the router with OpenTelemetry middleware to create spans for each request
	handler := otelhttp.NewHandler(router, "api")

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("timezone", clock.Location().String()).Msg("API Service starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// The server has 5 seconds to finish the requests it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
