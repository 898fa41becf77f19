// Package sqlite contains SQLite implementations of the repository
// contracts. Every mutation runs as one transaction: structural validation
// first, then business rules evaluated against that transaction's view of
// the store, then the write. No partial effect survives a failed hook.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// structuralCheck validates an entity's own fields. Pure, no store access.
type structuralCheck[T any] func(entity *T) error

// businessRule validates an entity against other records through the
// writing transaction.
type businessRule[T any] func(ctx context.Context, tx *sql.Tx, entity *T) error

// runHooks executes the ordered validation pipeline: all structural checks,
// then all business rules.
func runHooks[T any](ctx context.Context, tx *sql.Tx, entity *T, structural []structuralCheck[T], rules []businessRule[T]) error {
	for _, check := range structural {
		if err := check(entity); err != nil {
			return err
		}
	}
	for _, rule := range rules {
		if err := rule(ctx, tx, entity); err != nil {
			return err
		}
	}
	return nil
}

// inTx runs fn inside a transaction, committing on success and rolling
// back on any error.
func inTx(ctx context.Context, database *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
