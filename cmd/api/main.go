package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"balneario/internal/api"
	"balneario/internal/config"
	"balneario/internal/database"
	"balneario/internal/domain"
	"balneario/internal/events"
	"balneario/internal/google"
	"balneario/internal/logging"
	"balneario/internal/metrics"
	"balneario/internal/notify"
	"balneario/internal/repository"
	"balneario/internal/service"
	"balneario/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"balneario/internal/models"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := seedEstablishments(db, &logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	reportCache := buildReportCache(cfg, redisClient, &logger)
	eventBus := events.NewEventBus()

	sheetsService := initGoogleSheets(cfg, &logger)

	var sheetsWorker domain.SyncWorker
	if sheetsService != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		w := worker.NewSheetsWorker(db, sheetsService, redisClient, retryPolicy, &logger)
		go w.Start(ctx)
		sheetsWorker = w
	}

	initNotifier(cfg, eventBus, &logger)

	svcs := api.Services{
		Establishments: service.NewEstablishmentService(db, reportCache, &logger),
		Bookings:       service.NewBookingService(db, reportCache, eventBus, sheetsWorker, &logger),
		Clients:        service.NewClientService(db, &logger),
		Reports:        service.NewReportService(db, reportCache, &logger),
	}

	auth := api.NewAuth(cfg.Auth)
	httpServer := api.NewHTTPServer(cfg.Server, auth, svcs, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			logger.Error().Err(err).Msg("create database directory")
			return err
		}
	}
	if cfg.Exports.Path != "" {
		if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
			logger.Error().Err(err).Msg("create exports directory")
			return err
		}
	}
	return nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}
	return db, nil
}

// seedEstablishments upserts establishments from an optional seed file, so a
// fresh deployment starts with its catalog in place.
func seedEstablishments(db *database.DB, logger *zerolog.Logger) error {
	seedPath := os.Getenv("SEED_PATH")
	if seedPath == "" {
		seedPath = "configs/establishments.yaml"
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("read seed file")
		return err
	}

	var seed struct {
		Establishments []struct {
			OwnerID  int64                           `yaml:"owner_id"`
			Name     string                          `yaml:"name"`
			Services map[string]models.ServiceConfig `yaml:"services"`
		} `yaml:"establishments"`
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("parse seed file")
		return err
	}

	ctx := context.Background()
	for _, e := range seed.Establishments {
		est := &models.Establishment{OwnerID: e.OwnerID, Name: e.Name, Services: e.Services}
		if err := db.UpsertEstablishment(ctx, est); err != nil {
			logger.Error().Err(err).Int64("owner_id", e.OwnerID).Msg("seed establishment")
			return err
		}
	}
	if len(seed.Establishments) > 0 {
		logger.Info().Int("count", len(seed.Establishments)).Msg("establishments seeded")
	}
	return nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// buildReportCache wires the redis cache with an in-memory fallback. Without
// redis the memory cache serves alone.
func buildReportCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.ReportCache {
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	memory := repository.NewMemoryReportCache(ttl)
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisReportCache(redisClient, ttl)
	return repository.NewFailoverReportCache(primary, memory, logger)
}

func initGoogleSheets(cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(cfg.Google.CredentialsFile, cfg.Google.BookingSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

func initNotifier(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Notify.TelegramToken == "" || cfg.Notify.ChatID == 0 {
		return
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.ChatID, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram notifier init failed, continuing without notifications")
		return
	}
	notifier.SubscribeAll(bus)
	logger.Info().Msg("telegram notifier connected")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.Server.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
