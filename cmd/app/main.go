package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/catalogomaker/backend/internal/api/v1/router"
	"github.com/catalogomaker/backend/internal/auth"
	"github.com/catalogomaker/backend/internal/config"
	"github.com/catalogomaker/backend/internal/db"
	"github.com/catalogomaker/backend/internal/idempotency"
	"github.com/catalogomaker/backend/internal/logger"
	"github.com/catalogomaker/backend/internal/metrics"
	"github.com/catalogomaker/backend/internal/pubsub"
	"github.com/catalogomaker/backend/internal/repository"
	"github.com/catalogomaker/backend/internal/service"
	"github.com/catalogomaker/backend/internal/whatsapp"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// @title Catálogo Maker API
// @version 1.0
// @description Catálogo Maker backend: accounts, catalogs, orders and Stripe subscriptions.
// @host localhost:8080
// @BasePath /
// @Schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	logger := logger.New()

	// 1. Load configuration
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	ctx := context.Background()
	if err := resolveSecrets(ctx, cfg, logger); err != nil {
		logger.Fatal().Msgf("Error resolving secrets: %v", err)
	}

	// 2. Connect to the database
	pool, err := db.Open(ctx, cfg.DBConnectionString, cfg.Environment, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	accountRepo := repository.NewAccountRepo(pool)
	catalogRepo := repository.NewCatalogRepo(pool)
	productRepo := repository.NewProductRepo(pool)
	orderRepo := repository.NewOrderRepo(pool)

	// 3. Idempotency: Redis when configured, in-process otherwise
	var (
		ledger idempotency.Ledger
		locker idempotency.Locker
	)
	doneTTL := time.Duration(cfg.StripeWebhookEventTTLHr) * time.Hour
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal().Msgf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		ledger = idempotency.NewRedisLedger(rdb, doneTTL)
		locker = idempotency.NewRedisLocker(rdb)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, webhook dedupe and locks are per-process")
		ledger = idempotency.NewMemoryLedger(doneTTL)
		locker = idempotency.NewMemoryLocker()
	}

	// 4. Account lifecycle events
	var events service.AccountEventPublisher = pubsub.NoopAccountEvents{}
	if cfg.GCPProjectID != "" {
		publisher, err := pubsub.NewPublisher(ctx, cfg)
		if err != nil {
			logger.Fatal().Msgf("Failed to create Pub/Sub publisher: %v", err)
		}
		defer publisher.Close()
		events = pubsub.NewAccountEvents(publisher, cfg.PubSubAccountEventsTopic)
	}

	// 5. Services
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	billing := service.NewStripeGateway(cfg, nil, logger)
	reconciler := service.NewReconciler(accountRepo, locker, events, m, logger)

	var notifier whatsapp.Client = whatsapp.Noop{}
	if cfg.WhatsAppAPIBaseURL != "" {
		notifier = whatsapp.NewClient(cfg.WhatsAppAPIBaseURL, cfg.WhatsAppAPIKey, logger)
	}

	var banners service.BannerStorage
	if cfg.BannerStorageEnabled() {
		s3Client, err := service.NewS3Client(ctx, cfg)
		if err != nil {
			logger.Fatal().Msgf("Failed to create S3 client: %v", err)
		}
		publicBase := cfg.S3PublicBaseURL
		if publicBase == "" {
			publicBase = cfg.S3URL + "/" + cfg.S3Bucket
		}
		banners = service.NewBannerStorage(s3Client, cfg.S3Bucket, publicBase)
	} else {
		logger.Warn().Msg("S3 settings incomplete, banner uploads disabled")
	}

	keysCtx, stopKeys := context.WithCancel(ctx)
	defer stopKeys()
	keys, err := auth.NewKeySet(keysCtx, auth.KeySetOptions{
		URL:                cfg.IdentityJWKSURL,
		RefreshInterval:    time.Duration(cfg.IdentityKeysTTLSec) * time.Second,
		UnknownKIDInterval: time.Duration(cfg.IdentityUnknownKIDLimitSec) * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to create identity key set: %v", err)
	}
	verifier := auth.NewFirebaseVerifier(keys, cfg.FirebaseProjectID)

	// 6. Build router
	r := router.New(router.Deps{
		Accounts:   service.NewAccountService(accountRepo, billing, events, logger),
		Catalogs:   service.NewCatalogService(accountRepo, catalogRepo, productRepo, banners, logger),
		Orders:     service.NewOrderService(orderRepo, catalogRepo, productRepo, notifier, logger),
		Billing:    billing,
		Reconciler: reconciler,
		Ledger:     ledger,
		Verifier:   verifier,
		Metrics:    m,
		Gatherer:   reg,
	}, logger)

	// 7. Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 8. Start server in a goroutine
	go func() {
		logger.Info().Msgf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Msgf("Listen: %s\n", err)
		}
	}()

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutdown signal received, exiting...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Msgf("Server forced to shutdown: %v", err)
		return
	}
	logger.Info().Msg("Server shut down gracefully")
}

// resolveSecrets swaps secretmanager:// references in cfg for their values.
func resolveSecrets(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	hasRef := false
	for _, v := range cfg.SecretFields() {
		if config.IsSecretRef(*v) {
			hasRef = true
			break
		}
	}
	if !hasRef {
		return nil
	}

	resolver, err := service.NewSecretResolver(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := resolver.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close Secret Manager client")
		}
	}()
	return resolver.Resolve(ctx, cfg)
}
