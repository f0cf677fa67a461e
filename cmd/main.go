package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ShinAdam/Badminton-Elo-App/config"
	"github.com/ShinAdam/Badminton-Elo-App/db"
	"github.com/ShinAdam/Badminton-Elo-App/events"
	"github.com/ShinAdam/Badminton-Elo-App/handlers"
	"github.com/ShinAdam/Badminton-Elo-App/live"
	"github.com/ShinAdam/Badminton-Elo-App/metrics"
	"github.com/ShinAdam/Badminton-Elo-App/repositories"
	"github.com/ShinAdam/Badminton-Elo-App/routes"
	"github.com/ShinAdam/Badminton-Elo-App/services"
	"github.com/ShinAdam/Badminton-Elo-App/storage"
	"github.com/ShinAdam/Badminton-Elo-App/tokens"
	"github.com/go-chi/chi/v5"
)

const (
	revocationCapacity = 100_000
	revocationSweep    = time.Minute
	shutdownTimeout    = 15 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.Int("metrics_port", cfg.MetricsPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.Migrate(ctx, dbConn); err != nil {
		return err
	}
	logger.Info("database connection established")

	revocation, err := newRevocationStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := revocation.Close(); err != nil {
			logger.Error("failed to close revocation store", slog.Any("error", err))
		}
	}()

	var uploader storage.FileUploader
	r2 := storage.R2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2.Enabled() {
		uploader, err = storage.NewR2Uploader(ctx, r2)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("R2 settings incomplete, avatar uploads disabled")
	}

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	transactor := repositories.NewTransactor(dbConn)

	userService := services.NewUserService(userRepo, matchRepo, uploader, logger)
	statisticService := services.NewStatisticService(userRepo, matchRepo)
	tokenService := services.NewTokenService(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := services.NewAuthService(userRepo, tokenService, revocation, logger)

	hub := live.NewHub(userService.Ranking, logger)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()
	logger.Info("WebSocket Hub started")

	notifiers := services.MultiNotifier{hub}
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicMatches, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize kafka publisher: %w", err)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("failed to close kafka publisher", slog.Any("error", err))
			}
		}()
		notifiers = append(notifiers, publisher)
		logger.Info("kafka publisher initialized", slog.String("topic", cfg.KafkaTopicMatches))
	}

	matchService := services.NewMatchService(transactor, userRepo, matchRepo, notifiers, logger)

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, userService),
		User:      handlers.NewUserHandler(userService, matchService, statisticService),
		Match:     handlers.NewMatchHandler(matchService, statisticService),
		Statistic: handlers.NewStatisticHandler(matchService, statisticService),
		WebSocket: handlers.NewWebSocketHandler(hub, cfg.CORSAllowedOrigins),
	}, authService, cfg.CORSAllowedOrigins, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	metricsServer := metrics.NewServer(cfg.MetricsPort, dbConn.PingContext)

	serverErrors := make(chan error, 2)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()
	go func() {
		logger.Info("starting metrics server", slog.String("address", metricsServer.Addr))
		serverErrors <- metricsServer.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server error: %w", err)
		}
		stop()
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
	for _, srv := range []*http.Server{server, metricsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.String("address", srv.Addr), slog.Any("error", err))
			if closeErr := srv.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		}
	}
	<-hubDone
	logger.Info("server shutdown complete")
	return runErr
}

// newRevocationStore prefers redis so revocations survive restarts and are shared
// between replicas.
func newRevocationStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (tokens.RevocationStore, error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, revoked tokens are kept in memory")
		store, err := tokens.NewMemoryStore(revocationCapacity, revocationSweep, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to start in-memory revocation store: %w", err)
		}
		return store, nil
	}
	client, err := tokens.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("redis revocation store connected", slog.String("addr", cfg.RedisAddr))
	return tokens.NewRedisStore(client), nil
}
