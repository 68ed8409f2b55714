package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"token-ledger/config"
	"token-ledger/internal/adapter/chain"
	httpHandler "token-ledger/internal/adapter/http/handler"
	memStorage "token-ledger/internal/adapter/storage/memory"
	pgStorage "token-ledger/internal/adapter/storage/postgres"
	redisStorage "token-ledger/internal/adapter/storage/redis"
	"token-ledger/internal/core/domain"
	"token-ledger/internal/core/ports"
	"token-ledger/internal/service"
	"token-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("archive_backend", cfg.Archive.Backend).
		Str("chain_backend", cfg.Chain.Backend).
		Msg("Starting Token Ledger")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := service.SystemClock()
	healthCheckers := []ports.HealthChecker{}

	// Archive store backend
	var archiveStore ports.ArchiveStore
	var rateLimitStore *redisStorage.RateLimitStore
	switch cfg.Archive.Backend {
	case "postgres":
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		archiveStore = pgStorage.NewArchiveStore(pool)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))
	case "redis":
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		archiveStore = redisStorage.NewArchiveStore(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	case "memory":
		archiveStore = memStorage.NewArchiveStore()
		log.Warn().Msg("In-memory archive store selected, archived blocks will not survive restarts")
	default:
		log.Fatal().Str("backend", cfg.Archive.Backend).Msg("Unknown archive backend")
	}

	// Rate limiting rides on Redis even when the archive lives elsewhere.
	if rateLimitStore == nil && cfg.Archive.Backend != "redis" && cfg.Redis.Host != "" {
		if rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, rate limiting disabled")
		} else {
			defer rdb.Close()
			rateLimitStore = redisStorage.NewRateLimitStore(rdb)
			healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
		}
	}

	// External network backend
	var network ports.NetworkAdapter
	switch cfg.Chain.Backend {
	case "http":
		network = chain.NewHTTPAdapter(cfg.Chain.Endpoint, cfg.Chain.RequestTimeout, log)
	case "fake":
		network = chain.NewFakeAdapter()
		log.Warn().Msg("Fake chain adapter selected, deposits and withdrawals are simulated")
	default:
		log.Fatal().Str("backend", cfg.Chain.Backend).Msg("Unknown chain backend")
	}

	// Ledger core
	rules := service.LedgerRules{
		Minter:        domain.Account{Owner: cfg.Ledger.MinterOwner},
		Fee:           cfg.Ledger.Fee,
		MinBurnAmount: cfg.Ledger.MinBurnAmount,
		DedupHorizon:  cfg.Ledger.DedupHorizon,
		ClockSkew:     cfg.Ledger.ClockSkew,
	}
	ledgerSvc := service.NewLedgerService(rules, clock, logger.Component(log, "ledger"))
	ledgerSvc.SetArchiveStore(archiveStore)

	// Rebuild archived balances, the hash chain and the index space from
	// the cold store before accepting traffic. The refs come back to the
	// bridge below so already-minted deposits are not minted twice.
	mintedRefs, err := ledgerSvc.RestoreArchive(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to restore ledger state from archive")
	}

	// Archive rotation
	archiveMgr := service.NewArchiveManager(
		ledgerSvc,
		archiveStore,
		cfg.Archive.HighWater,
		cfg.Archive.LowWater,
		cfg.Archive.Tick,
		cfg.Archive.RetryBackoff,
		ledgerSvc.ArchiveNotify(),
		logger.Component(log, "archive"),
	)
	archiveMgr.Start(ctx)
	defer archiveMgr.Stop()

	// Operation coordinator
	guard := service.NewAccountGuard(
		cfg.Guard.MaxConcurrent,
		cfg.Guard.LeaseTTL,
		cfg.Guard.ReclaimInterval,
		clock,
		logger.Component(log, "guard"),
	)
	guard.Start(ctx)
	defer guard.Stop()

	// Bridge
	bridgeSvc := service.NewBridgeService(ledgerSvc, network, guard, service.BridgeConfig{
		CustodyOwner:      cfg.Ledger.CustodyOwner,
		MinterOwner:       cfg.Ledger.MinterOwner,
		MinRetrieveAmount: cfg.Chain.MinRetrieveAmount,
		MinRetrieveFee:    cfg.Chain.MinRetrieveFee,
	}, logger.Component(log, "bridge"))
	for _, ref := range mintedRefs {
		bridgeSvc.MarkDepositSeen(ref)
	}

	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      ledgerSvc,
		BridgeSvc:      bridgeSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		Logger:         logger.Component(log, "http"),
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
