package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/gtdstore/internal/backup"
	"github.com/example/gtdstore/internal/db"
)

// MigrationError reports a failed step. The store has already been
// restored to its pre-step snapshot when this is returned.
type MigrationError struct {
	Version int
	Name    string
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %d (%s) failed: %v", e.Version, e.Name, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// Options configure the engine. Values come from the bootstrap layer's
// config; the engine never reads the environment itself.
type Options struct {
	// RiskThreshold is the score at which a safety-net export is taken
	// before a step runs. Zero means DefaultRiskThreshold.
	RiskThreshold int
	// BackupRetention is the grace window for keeping the final backup of
	// a successful run. Zero means keep indefinitely until the next run.
	BackupRetention time.Duration
	Logger          *slog.Logger
}

// Engine applies and rolls back catalog migrations against the store at
// storePath. It opens the store exclusively for the duration of a
// migration run and releases it before returning; the repository layer
// never observes a half-applied step.
type Engine struct {
	storePath string
	catalog   *Catalog
	backups   *backup.Manager
	validator *Validator
	opts      Options
}

// NewEngine creates an engine over the store at storePath.
func NewEngine(storePath string, catalog *Catalog, backups *backup.Manager, opts Options) *Engine {
	if opts.RiskThreshold == 0 {
		opts.RiskThreshold = DefaultRiskThreshold
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		storePath: storePath,
		catalog:   catalog,
		backups:   backups,
		validator: NewValidator(),
		opts:      opts,
	}
}

// Latest returns the highest published catalog version.
func (e *Engine) Latest() int {
	return e.catalog.Latest()
}

// CurrentVersion reads the schema version marker. A store without a
// marker table is at version 0.
func (e *Engine) CurrentVersion(ctx context.Context) (int, error) {
	database, err := db.Open(e.storePath)
	if err != nil {
		return 0, err
	}
	defer database.Close()
	return currentVersion(ctx, database)
}

func currentVersion(ctx context.Context, database *sql.DB) (int, error) {
	var version int
	err := database.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_version",
	).Scan(&version)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// MigrateTo moves the store to target, one step at a time, each step
// bracketed by a backup and integrity checks. Returns the applied version.
// Calling it with the current version is a no-op.
func (e *Engine) MigrateTo(ctx context.Context, target int) (int, error) {
	database, err := db.Open(e.storePath)
	if err != nil {
		return 0, err
	}
	defer database.Close()

	current, err := currentVersion(ctx, database)
	if err != nil {
		return 0, err
	}

	// An unknown target must fail before anything is created, including
	// the marker table on a fresh store.
	steps, err := e.catalog.Steps(current, target)
	if err != nil {
		return 0, err
	}
	if len(steps) == 0 {
		return current, nil
	}

	if err := ensureVersionTable(ctx, database); err != nil {
		return 0, err
	}

	e.opts.Logger.Info("starting migration run",
		"from", current, "to", target, "steps", len(steps))

	for _, step := range steps {
		if err := e.runStep(ctx, database, step); err != nil {
			return current, err
		}
		current = step.TargetVersion
	}

	if err := e.backups.Prune(e.opts.BackupRetention); err != nil {
		// The schema change is committed; a failed prune is log-worthy
		// but not a migration failure.
		e.opts.Logger.Warn("backup prune failed", "error", err)
	}

	e.opts.Logger.Info("migration run complete", "version", current)
	return current, nil
}

// runStep executes one step: snapshot, risk pre-check, apply + marker
// update in a single transaction, postcondition verification, restore on
// any failure.
func (e *Engine) runStep(ctx context.Context, database *sql.DB, step Step) error {
	fromVersion := step.TargetVersion - 1
	if step.Direction == DirectionDown {
		fromVersion = step.TargetVersion + 1
	}

	handle, err := e.backups.Snapshot(fromVersion)
	if err != nil {
		return fmt.Errorf("failed to back up before step %d: %w", step.Migration.Version, err)
	}

	report := e.validator.AssessRisk(database, step)
	if report.High(e.opts.RiskThreshold) {
		exportPath, err := e.backups.ExportSafetyNet(database)
		if err != nil {
			return fmt.Errorf("failed to export safety net before step %d: %w", step.Migration.Version, err)
		}
		e.opts.Logger.Warn("high-risk migration step",
			"version", step.Migration.Version,
			"score", report.Score,
			"warnings", report.Warnings,
			"safety_net", exportPath)
	}

	e.opts.Logger.Info("running migration step",
		"version", step.Migration.Version,
		"name", step.Migration.Name,
		"direction", directionString(step.Direction))

	if err := applyStep(ctx, database, step); err != nil {
		return e.failStep(database, step, handle, err)
	}

	violations, err := e.validator.VerifyPostconditions(database)
	if err != nil {
		return e.failStep(database, step, handle, err)
	}
	if len(violations) > 0 {
		return e.failStep(database, step, handle, violationError(violations))
	}

	return nil
}

// applyStep runs the step's operation and the version marker update as one
// atomic unit, so the marker can never disagree with the table shape.
func applyStep(ctx context.Context, database *sql.DB, step Step) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := step.Run(tx); err != nil {
		tx.Rollback()
		return err
	}

	// Single-row marker: replace rather than append.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	if step.TargetVersion > 0 {
		if _, err := tx.Exec(
			"INSERT INTO schema_version (version, name) VALUES (?, ?)",
			step.TargetVersion, step.Migration.Name,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}

// failStep restores the pre-step snapshot and wraps the cause. A restore
// failure is fatal and surfaces instead of the step error.
func (e *Engine) failStep(database *sql.DB, step Step, handle backup.Handle, cause error) error {
	// Release the handle before swapping the file underneath it.
	database.Close()

	if restoreErr := e.backups.Restore(handle); restoreErr != nil {
		return restoreErr
	}

	e.opts.Logger.Error("migration step failed, store restored",
		"version", step.Migration.Version,
		"name", step.Migration.Name,
		"error", cause)

	return &MigrationError{
		Version: step.Migration.Version,
		Name:    step.Migration.Name,
		Err:     cause,
	}
}

func ensureVersionTable(ctx context.Context, database *sql.DB) error {
	_, err := database.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			name TEXT,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

func violationError(violations []ConstraintViolation) error {
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.String()
	}
	return fmt.Errorf("postcondition violations: %s", strings.Join(parts, "; "))
}

func directionString(d Direction) string {
	if d == DirectionDown {
		return "down"
	}
	return "up"
}
