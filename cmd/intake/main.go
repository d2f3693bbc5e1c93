// Command intake drives the intake pipeline for files on local disk.
//
//	intake resume <file>
//	intake document -candidate <id> -type pan_card|aadhaar_card|other <file>
//	intake list
//	intake show <candidate-id>
//	intake request <candidate-id>
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"docintake/internal/config"
	"docintake/internal/database"
	"docintake/internal/database/migration"
	"docintake/internal/gateway"
	"docintake/internal/logging"
	"docintake/internal/registry"
	"docintake/internal/repository"
	"docintake/internal/repository/memory"
	"docintake/internal/repository/postgres"
	"docintake/internal/service"
	"docintake/internal/session"
	"docintake/internal/storage"
)

func main() {
	cfg := config.Load()
	// Results go to stdout; logs stay on stderr.
	slog.SetDefault(slog.New(logging.NewHandler(os.Stderr, logging.ParseLevel(cfg.LogLevel), cfg.Location())))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "intake:", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := run(ctx, os.Args[1:], svc, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "intake:", err)
		cleanup()
		os.Exit(exitCode(err))
	}
}

func buildService(ctx context.Context, cfg *config.AppConfig) (service.IntakeService, func(), error) {
	cleanup := func() {}

	backend, err := gateway.NewClient(cfg.Backend, logging.New("gateway"))
	if err != nil {
		return nil, cleanup, err
	}

	var repo repository.EntryRepository = memory.NewEntryMemory()
	if cfg.Database.Enabled() {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { db.Close() }
		if err := migration.EnsureMigrated(ctx, db, logging.New("migration"), cfg.Database.Host); err != nil {
			return nil, cleanup, err
		}
		repo = postgres.NewEntryPostgres(db)
	}

	var archive *storage.Archive
	if cfg.MinIO.Enabled() {
		objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return nil, cleanup, err
		}
		archive = storage.NewArchive(objStore, cfg.MinIO.URLExpiry)
	}

	sessions := session.NewController(session.Options{
		Step:       cfg.Upload.ProgressStep,
		Interval:   cfg.Upload.ProgressInterval,
		Settle:     cfg.Upload.SettleDelay,
		OnProgress: progressPrinter(os.Stderr),
		Logger:     logging.New("session"),
	})

	svc := service.NewIntakeService(backend,
		registry.New(repo, logging.New("registry")),
		archive, sessions, cfg.Upload, logging.New("service"))
	return svc, cleanup, nil
}
