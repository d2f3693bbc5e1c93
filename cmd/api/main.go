package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docintake/internal/config"
	"docintake/internal/database"
	"docintake/internal/database/migration"
	"docintake/internal/gateway"
	handlers "docintake/internal/http/handler"
	"docintake/internal/http/middleware"
	"docintake/internal/logging"
	"docintake/internal/otel"
	"docintake/internal/registry"
	"docintake/internal/repository"
	"docintake/internal/repository/memory"
	"docintake/internal/repository/postgres"
	"docintake/internal/service"
	"docintake/internal/session"
	"docintake/internal/storage"
)

// Headroom over the upload limit for multipart framing and form fields.
const bodyOverhead = 1 << 20

// @title Document Intake Console API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.Location())
	log := logging.New("main")

	if err := run(cfg, log); err != nil {
		log.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logging.New("otel"))
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	backend, err := gateway.NewClient(cfg.Backend, logging.New("gateway"))
	if err != nil {
		return err
	}

	var repo repository.EntryRepository = memory.NewEntryMemory()
	if cfg.Database.Enabled() {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, logging.New("migration"), cfg.Database.Host); err != nil {
			return err
		}
		repo = postgres.NewEntryPostgres(db)
		log.Info("registry_store", "kind", "postgres", "host", cfg.Database.Host)
	} else {
		log.Info("registry_store", "kind", "memory")
	}

	var archive *storage.Archive
	if cfg.MinIO.Enabled() {
		objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return err
		}
		archive = storage.NewArchive(objStore, cfg.MinIO.URLExpiry)
		log.Info("archive_enabled", "endpoint", cfg.MinIO.Endpoint, "bucket", cfg.MinIO.Bucket)
	}

	sessionMetrics, err := session.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	sessionLog := logging.New("session")
	sessions := session.NewController(session.Options{
		Step:     cfg.Upload.ProgressStep,
		Interval: cfg.Upload.ProgressInterval,
		Settle:   cfg.Upload.SettleDelay,
		OnProgress: func(slot string, progress int) {
			sessionLog.Debug("session_progress", "slot", slot, "progress", progress)
		},
		Metrics: sessionMetrics,
		Logger:  sessionLog,
	})

	svc := service.NewIntakeService(backend,
		registry.New(repo, logging.New("registry")),
		archive, sessions, cfg.Upload, logging.New("service"))

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	bodyLimit := 256 << 20
	if limit := cfg.Upload.MaxBytes(); limit > 0 {
		bodyLimit = int(limit) + bodyOverhead
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logging.New("http")))
	app.Use(promMiddleware.Handler())
	app.Use(middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterDocs(app, cfg.AppHost, "http", "https")
	handlers.RegisterRoutes(app, backend, svc)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("server_listening", "addr", addr, "backend", backend.BaseURL())
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_shutting_down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
