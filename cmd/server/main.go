// Package main is the entry point for the stockpilot API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockpilot/internal/core/tx"
	"stockpilot/internal/domain/audit"
	"stockpilot/internal/domain/forecast"
	"stockpilot/internal/domain/ledger"
	"stockpilot/internal/domain/order"
	"stockpilot/internal/domain/receiving"
	"stockpilot/internal/domain/reports"
	"stockpilot/internal/domain/transfer"
	"stockpilot/internal/domain/warehouse"
	v1 "stockpilot/internal/infrastructure/http/v1"
	"stockpilot/internal/infrastructure/storage/memory"
	"stockpilot/internal/infrastructure/storage/postgres"
	"stockpilot/pkg/logger"
	"stockpilot/pkg/numerator"
)

// repoSet collects the persistence ports one storage backend provides.
type repoSet struct {
	ledger     ledger.Repository
	warehouses warehouse.Repository
	transfers  transfer.Repository
	orders     order.Repository
	receipts   receiving.Repository
	recorder   audit.Recorder
	txManager  tx.Manager
	numerator  numerator.Generator

	ready func() error
	close func()
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	storeKind := getEnv("APP_STORE", "memory")
	log.Infow("starting stockpilot server", "store", storeKind)

	var repos repoSet
	switch storeKind {
	case "postgres":
		repos, err = buildPostgres(ctx)
	case "memory":
		repos = buildMemory()
	default:
		err = fmt.Errorf("unknown APP_STORE %q (want memory or postgres)", storeKind)
	}
	if err != nil {
		log.Fatalw("storage init failed", "error", err)
	}
	if repos.close != nil {
		defer repos.close()
	}

	// --- Services ---
	stockService := ledger.NewService(repos.ledger, repos.txManager)
	warehouseService := warehouse.NewService(repos.warehouses)
	transferService := transfer.NewService(repos.transfers, repos.warehouses,
		stockService, repos.numerator, repos.txManager, repos.recorder)
	orderService := order.NewService(repos.orders, repos.numerator, repos.txManager, repos.recorder)
	receivingService := receiving.NewService(repos.receipts, stockService,
		repos.numerator, repos.txManager, repos.recorder)
	forecastService := forecast.NewService(stockService)
	reportService := reports.NewService(stockService)

	router := v1.NewRouter(v1.RouterConfig{
		Logger:     log,
		Stock:      stockService,
		Warehouses: warehouseService,
		Transfers:  transferService,
		Orders:     orderService,
		Receipts:   receivingService,
		Forecasts:  forecastService,
		Reports:    reportService,
		StoreKind:  storeKind,
		Ready:      repos.ready,
	})

	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// buildMemory assembles the in-process backend. Numbering and state
// reset on restart.
func buildMemory() repoSet {
	store := memory.NewStore()
	return repoSet{
		ledger:     memory.NewLedgerRepository(store),
		warehouses: memory.NewWarehouseRepository(store),
		transfers:  memory.NewTransferRepository(store),
		orders:     memory.NewOrderRepository(store),
		receipts:   memory.NewReceiptRepository(store),
		recorder:   memory.NewAuditRecorder(store),
		txManager:  memory.NewTxManager(),
		numerator:  numerator.NewInMemory(),
	}
}

// buildPostgres connects the pool and assembles the durable backend.
func buildPostgres(ctx context.Context) (repoSet, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return repoSet{}, fmt.Errorf("DATABASE_URL is required for APP_STORE=postgres")
	}

	cfg := postgres.DefaultPoolConfig(dsn)
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return repoSet{}, err
	}

	txManager := postgres.NewTxManager(pool)
	recorder, err := postgres.NewAuditRecorder(txManager)
	if err != nil {
		pool.Close()
		return repoSet{}, err
	}

	statsCtx, stopStats := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-statsCtx.Done():
				return
			case <-ticker.C:
				pool.LogStats(statsCtx)
			}
		}
	}()

	return repoSet{
		ledger:     postgres.NewLedgerRepo(txManager),
		warehouses: postgres.NewWarehouseRepo(txManager),
		transfers:  postgres.NewTransferRepo(txManager),
		orders:     postgres.NewOrderRepo(txManager),
		receipts:   postgres.NewReceiptRepo(txManager),
		recorder:   recorder,
		txManager:  txManager,
		numerator:  numerator.New(pool),
		ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		},
		close: func() {
			stopStats()
			pool.Close()
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
