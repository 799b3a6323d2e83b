package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"leadcapture/formbridge/internal/api"
	"leadcapture/formbridge/internal/catalog"
	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/config"
	"leadcapture/formbridge/internal/db"
	"leadcapture/formbridge/internal/logging"
	"leadcapture/formbridge/internal/metrics"
	"leadcapture/formbridge/internal/routes"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Formbridge starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	cat, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		logging.Fatal("Failed to load field catalog", "path", cfg.CatalogPath, "error", err)
	}
	logging.Info("Field catalog loaded", "fields", len(cat.Entries()))

	// Connect to DB with GORM
	gdb, err := db.InitPostgresORM(cfg.Postgres.DSN())
	if err != nil {
		logging.Fatal("Failed to connect to Postgres (GORM)", "error", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logging.Fatal("Failed to migrate schema", "error", err)
	}
	logging.Info("Connected to Postgres (GORM)")

	// Connect to DB with sqlx
	sqlDB, err := db.InitPostgres(cfg.Postgres.DSN())
	if err != nil {
		logging.Fatal("Failed to connect to Postgres (sqlx)", "error", err)
	}
	logging.Info("Connected to Postgres (sqlx)")

	wp, err := db.InitWordPress(cfg.WordPress.DSN)
	if err != nil {
		logging.Fatal("Failed to connect to WordPress database", "error", err)
	}

	cache := common.NewCache(cfg.Redis)
	defer cache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)
	deps, err := api.InitDependencies(ctx, cfg, cat, gdb, sqlDB, wp, cache, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err)
	}

	// stale shortcode mappings from deleted forms are dropped on every boot
	if removed, err := deps.Services.Interceptor.Cleanup(ctx); err != nil {
		logging.Warn("Import mapping cleanup failed", "error", err)
	} else if removed > 0 {
		logging.Info("Removed stale import mappings", "count", removed)
	}

	upSince := time.Now()
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.RegisterRoutes(deps, cfg, prometheus.DefaultGatherer, upSince),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logging.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logging.Info("Server stopped")
}
