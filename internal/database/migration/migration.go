package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_registry_entries",
		SQL: `CREATE TABLE IF NOT EXISTS registry_entries (
  seq          BIGSERIAL   PRIMARY KEY,
  candidate_id TEXT        NOT NULL,
  document_id  TEXT        NOT NULL,
  document     JSONB       NOT NULL,
  archive_key  TEXT        NOT NULL DEFAULT '',
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (candidate_id, document_id)
);`,
	},
	{
		Name: "create_index_registry_entries_candidate",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_registry_entries_candidate ON registry_entries (candidate_id, seq);`,
	},
	{
		Name: "create_table_registry_removals",
		SQL: `CREATE TABLE IF NOT EXISTS registry_removals (
  candidate_id TEXT        NOT NULL,
  document_id  TEXT        NOT NULL,
  name         TEXT        NOT NULL DEFAULT '',
  removed_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (candidate_id, document_id)
);`,
	},
}

// EnsureMigrated creates the registry schema unless the registry_entries
// table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With("db_host", dbHost)

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass('public.registry_entries') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"msg", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress", "steps", len(steps))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
