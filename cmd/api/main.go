package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"tourbill/internal/api"
	"tourbill/internal/config"
	"tourbill/internal/database"
	"tourbill/internal/domain"
	"tourbill/internal/events"
	"tourbill/internal/google"
	"tourbill/internal/invoice"
	"tourbill/internal/logging"
	"tourbill/internal/metrics"
	"tourbill/internal/models"
	"tourbill/internal/notify"
	"tourbill/internal/repository"
	"tourbill/internal/service"
	"tourbill/internal/worker"
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

	tiers, err := loadTiers(cfg, &logger)
	if err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	sheetsService := initGoogleSheets(cfg, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := events.NewEventBus()

	var auditWorker *worker.AuditWorker
	if sheetsService != nil {
		auditWorker = worker.NewAuditWorker(db, sheetsService, redisClient, worker.RetryPolicy{}, &logger)
		go auditWorker.Start(ctx)
	}

	notifier := initNotifier(cfg, &logger)

	bookingService := service.NewBookingService(db, eventBus, notifier, cfg.Company.ReplyComposerURL, &logger)
	invoiceService := service.NewInvoiceService(service.InvoiceServiceDeps{
		Repo:     db,
		Locks:    buildLockRepository(redisClient, &logger),
		Sync:     syncWorkerOrNil(auditWorker),
		EventBus: eventBus,
		Tiers:    tiers,
		Builder: invoice.NewBuilder(
			invoice.CompanyInfo{
				Name:    cfg.Company.Name,
				Address: cfg.Company.Address,
				Email:   cfg.Company.Email,
				Phone:   cfg.Company.Phone,
				LogoURL: cfg.Company.LogoURL,
			},
			cfg.Pricing.CurrencySymbols,
			cfg.Pricing.DefaultCurrencySymbol,
		),
		Print:  invoice.NewPrintRenderer(),
		Vector: invoice.NewVectorRenderer(invoice.NewLogoFetcher(models.LogoFetchTimeoutSeconds*time.Second, &logger), &logger),
		Sheet:  invoice.NewSpreadsheetRenderer(),
		Logger: &logger,
	})

	httpServer := api.NewHTTPServer(cfg.API, bookingService, invoiceService, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, &logger)
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

// loadTiers prefers a dedicated tiers file when TIERS_PATH is set,
// otherwise the tiers embedded in the main config are used.
func loadTiers(cfg *config.Config, logger *zerolog.Logger) ([]models.DiscountTier, error) {
	tiersPath := os.Getenv("TIERS_PATH")
	if tiersPath == "" {
		return cfg.Tiers, nil
	}

	data, err := os.ReadFile(tiersPath)
	if err != nil {
		logger.Error().Err(err).Str("tiers_path", tiersPath).Msg("read tiers")
		return nil, err
	}

	var tiersConfig struct {
		Tiers []models.DiscountTier `yaml:"discount_tiers"`
	}
	if err := yaml.Unmarshal(data, &tiersConfig); err != nil {
		logger.Error().Err(err).Str("tiers_path", tiersPath).Msg("parse tiers")
		return nil, err
	}

	if err := config.ValidateTiers(tiersConfig.Tiers); err != nil {
		return nil, fmt.Errorf("validate tiers: %w", err)
	}
	return tiersConfig.Tiers, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initGoogleSheets(cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.InvoicesSpreadsheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(cfg.Google.CredentialsFile, cfg.Google.InvoicesSpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

func initNotifier(cfg *config.Config, logger *zerolog.Logger) domain.Notifier {
	if !cfg.Telegram.Enabled {
		return nil
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return nil
	}

	logger.Info().Msg("telegram notifier connected")
	return notifier
}

func buildLockRepository(redisClient *redis.Client, logger *zerolog.Logger) domain.LockRepository {
	memory := repository.NewMemoryLockRepository()
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverLockRepository(repository.NewRedisLockRepository(redisClient), memory, logger)
}

func syncWorkerOrNil(w *worker.AuditWorker) domain.SyncWorker {
	if w == nil {
		return nil
	}
	return w
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

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

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
