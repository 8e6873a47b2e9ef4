// Entry point for REST API
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"timesheets.service/internal/api"
	"timesheets.service/internal/config"
	"timesheets.service/internal/core"
	"timesheets.service/internal/db"
	"timesheets.service/internal/ports/lock"
	"timesheets.service/internal/ports/messaging"
	"timesheets.service/internal/ports/repository"
	"timesheets.service/internal/security"
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

	// Configure structured logging
	logger.Setup(cfg.IsLocalDev)

	// Configure OpenTelemetry Tracing
	shutdownTracer, err := telemetry.InitTracer("timesheets-api", cfg.TracingExporter, cfg.OTLPEndpoint)
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
	log.Info().Str("driver", cfg.DBDriver).Msg("Successfully connected to the database.")

	dialect, err := repository.DialectFor(cfg.DBDriver)
	if err != nil {
		log.Fatal().Err(err).Msg("Unsupported database driver")
	}
	repo := repository.NewSQLRepository(conn, dialect)

	// Clock actions are serialized per user across replicas when redis is configured.
	var locker lock.Locker = lock.NewLocal()
	var redisLock *lock.Redis
	if cfg.RedisAddr != "" {
		rdb := lock.NewRedisClient(cfg.RedisAddr)
		defer rdb.Close()
		redisLock = lock.NewRedis(rdb, "timesheets:")
		locker = redisLock
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using redis for clock action locks")
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	m := metrics.NewDefault()
	tokens := security.NewTokenProvider(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)
	authService := core.NewAuthService(repo, tokens, security.NewHasher(cfg.BcryptCost), cfg.MaxFailedLogins)
	timesheetService := core.NewTimesheetService(repo, publisher, locker, m, core.WithLockTTL(cfg.ClockLockTTL))

	// Setup router and server
	router := api.NewRouter(api.Deps{
		Auth:       authService,
		Timesheets: timesheetService,
		Metrics:    m,
		Health:     healthCheck(conn, redisLock),
	})

	// Middleware to inject logger with trace ID
	loggerMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.EnrichContextWithLogger(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	// Wrap the router with OpenTelemetry middleware to create spans for each request
	handler := otelhttp.NewHandler(loggerMiddleware(router), "api")

	serverAddr := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("API Service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the requests it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

// newPublisher queues events on SQS. Local runs without an AWS endpoint log
// the events instead.
func newPublisher(cfg config.Config) (messaging.Publisher, error) {
	if cfg.IsLocalDev && cfg.AWSEndpoint == "" {
		log.Warn().Msg("No AWS endpoint configured, events will only be logged")
		return messaging.NewProducer(messaging.LogSender{}, cfg.PayrollSQSQueueURL, cfg.EmailSQSQueueURL), nil
	}

	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	sqsClient := sqs.NewFromConfig(awsCfg)
	return messaging.NewSQSProducer(sqsClient, cfg.PayrollSQSQueueURL, cfg.EmailSQSQueueURL), nil
}

func healthCheck(conn *sql.DB, redisLock *lock.Redis) api.HealthCheck {
	return func(ctx context.Context) error {
		if err := conn.PingContext(ctx); err != nil {
			return err
		}
		if redisLock != nil && !redisLock.Healthy(ctx) {
			return errors.New("redis unreachable")
		}
		return nil
	}
}
