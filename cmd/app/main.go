package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"marketplace-entitlements/internal/config"
	"marketplace-entitlements/internal/domain/model"
	"marketplace-entitlements/internal/infra/api"
	pg "marketplace-entitlements/internal/infra/db/postgres"
	"marketplace-entitlements/internal/infra/logging"
	"marketplace-entitlements/internal/infra/metrics"
	"marketplace-entitlements/internal/infra/payment"
	red "marketplace-entitlements/internal/infra/redis"
	"marketplace-entitlements/internal/infra/sched"
	"marketplace-entitlements/internal/infra/web"
	"marketplace-entitlements/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "development mode (console logs, .env loading)")
	flag.Parse()

	if *devMode {
		// Best effort; price IDs and secrets come from the real environment in prod.
		_ = godotenv.Load()
	}

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	// ---- Plan catalogs (built once, immutable) ----
	consumerPlans, err := model.NewCatalog(model.PlanFamilyConsumer, model.ConsumerPlanSpecs(), cfg.Env.ConsumerPriceIDs())
	if err != nil {
		logger.Fatal().Err(err).Msg("consumer catalog")
	}
	vendorPlans, err := model.NewCatalog(model.PlanFamilyVendor, model.VendorPlanSpecs(), cfg.Env.VendorPriceIDs())
	if err != nil {
		logger.Fatal().Err(err).Msg("vendor catalog")
	}
	if missing := consumerPlans.Missing(); len(missing) > 0 {
		logger.Warn().Strs("plan_keys", missing).Msg("consumer plans skipped: no price id configured")
	}
	if missing := vendorPlans.Missing(); len(missing) > 0 {
		logger.Warn().Strs("plan_keys", missing).Msg("vendor plans skipped: no price id configured")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, int32(cfg.Database.MaxConns))
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// Elevated pool backs the single-retry path of the access resolvers.
	elevatedPool := pool
	if cfg.Database.ElevatedURL != "" && cfg.Database.ElevatedURL != cfg.Database.URL {
		elevatedPool, err = pg.NewPgxPool(ctx, cfg.Database.ElevatedURL, int32(cfg.Database.MaxConns))
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres elevated")
		}
		defer elevatedPool.Close()
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	subRepoElevated := pg.NewSubscriptionRepo(elevatedPool)
	vendorRepo := pg.NewVendorRepoCacheDecorator(pg.NewVendorRepo(pool), redisClient)
	vendorRepoElevated := pg.NewVendorRepo(elevatedPool)
	profileRepo := pg.NewProfileRepo(pool)
	verificationRepo := pg.NewVerificationRepo(pool)
	ledgerRepo := pg.NewLoyaltyLedgerRepo(pool)
	referralRepo := pg.NewReferralCodeRepo(pool)

	// ---- Payments ----
	gateway, err := payment.NewStripeGateway(cfg.Env.StripeSecretKey, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("stripe gateway")
	}

	// ---- Use cases ----
	accessUC := usecase.NewAccessUseCase(cfg.Env.Allowlist(), subRepo, subRepoElevated, vendorRepo, vendorRepoElevated, logger)
	gateUC := usecase.NewGateUseCase(accessUC, profileRepo, vendorRepo, verificationRepo, logger)
	loyaltyUC := usecase.NewLoyaltyUseCase(ledgerRepo, referralRepo, accessUC, consumerPlans, logger)
	checkoutUC := usecase.NewCheckoutUseCase(consumerPlans, vendorPlans, gateway, cfg.Checkout.DashboardURL, logger)
	verificationUC := usecase.NewVerificationUseCase(verificationRepo, txManager, logger)
	statsUC := usecase.NewStatsUseCase(subRepo, verificationRepo, logger)

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- Public API ----
	apiServer := api.NewServer(
		accessUC, gateUC, loyaltyUC, checkoutUC, verificationUC,
		consumerPlans, vendorPlans,
		rateLimiter, cfg.HTTP.RequestTimeout, logger,
	)
	publicSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: apiServer.Routes(),
	}

	// ---- Admin API + metrics ----
	auth := web.NewAuthManager(cfg.Env.AdminSessionSecret, cfg.Admin.CookieName, cfg.Admin.Secure, cfg.Admin.SessionTTL)
	adminServer := web.NewServer(auth, cfg.Env.AdminPassword, verificationUC, loyaltyUC, statsUC, consumerPlans, vendorPlans, logger)
	adminMux := http.NewServeMux()
	adminServer.RegisterRoutes(adminMux)
	adminSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler: adminMux,
	}

	// ---- Background worker ----
	statsWorker := sched.NewStatsWorker(cfg.Worker.StatsInterval, statsUC, logger)
	go func() {
		if err := statsWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("stats worker stopped")
		}
	}()

	go func() {
		logger.Info().Int("port", cfg.HTTP.Port).Msg("public API listening")
		if err := publicSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("public API server")
		}
	}()
	go func() {
		logger.Info().Int("port", cfg.Admin.Port).Msg("admin API listening")
		if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("admin API server")
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = publicSrv.Shutdown(shutdownCtx)
	_ = adminSrv.Shutdown(shutdownCtx)
}
