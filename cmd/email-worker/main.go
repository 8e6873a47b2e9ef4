package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"

	"timesheets.service/internal/config"
	"timesheets.service/internal/core"
	"timesheets.service/internal/db"
	"timesheets.service/internal/ports/repository"
	"timesheets.service/internal/worker"
	"timesheets.service/internal/worker/email"
	"timesheets.service/pkg/aws"
	"timesheets.service/pkg/database"
	"timesheets.service/pkg/logger"
	"timesheets.service/pkg/metrics"
	"timesheets.service/pkg/telemetry"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger.Setup(cfg.IsLocalDev)

	shutdownTracer, err := telemetry.InitTracer("email-worker", cfg.TracingExporter, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// DB connection
	conn, err := database.Open(cfg, db.SQLiteSchema)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer conn.Close()
	log.Info().Msg("Successfully connected to the database.")

	dialect, err := repository.DialectFor(cfg.DBDriver)
	if err != nil {
		log.Fatal().Err(err).Msg("Unsupported database driver")
	}

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	// Initialize Dependencies
	sqsClient := sqs.NewFromConfig(awsCfg)
	repo := repository.NewSQLRepository(conn, dialect)

	var emailService core.EmailService = core.NewSESEmailService(ses.NewFromConfig(awsCfg), cfg.EmailSender)
	if cfg.IsLocalDev && cfg.AWSEndpoint == "" {
		emailService = core.LogEmailService{}
	}
	processor := email.NewProcessor(emailService, repo)

	m := metrics.NewDefault()
	metricsSrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics listener stopped")
		}
	}()

	// Start Worker
	ctx, cancel := context.WithCancel(context.Background())
	app := worker.NewWorker(sqsClient, cfg.EmailSQSQueueURL, processor)
	app.Queue = "email"
	app.Metrics = m

	done := make(chan struct{})
	go func() {
		app.Start(ctx)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down worker...")

	// Cancel the context to signal the worker to stop polling, then wait for
	// in-flight messages.
	cancel()
	<-done

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = metricsSrv.Shutdown(shutdownCtx)

	log.Info().Msg("Worker exited gracefully")
}
