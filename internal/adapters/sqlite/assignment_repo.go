package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/gtdstore/internal/core/raci"
	"github.com/example/gtdstore/internal/models"
	"github.com/example/gtdstore/internal/ports/secondary"
)

// AssignmentRepository implements secondary.AssignmentRepository with
// SQLite. The single-accountable rule is evaluated against committed rows
// inside the writing transaction, scoped to the item; there is no
// in-memory registry to drift from the store.
type AssignmentRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewAssignmentRepository creates a new SQLite assignment repository.
func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db, now: time.Now}
}

// Assign creates a RACI assignment.
func (r *AssignmentRepository) Assign(ctx context.Context, itemID, stakeholderID, role string) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := rowExistsTx(ctx, tx, "gtd_items", itemID); err != nil {
			return err
		}
		if err := rowExistsTx(ctx, tx, "stakeholders", stakeholderID); err != nil {
			return err
		}

		accountable, err := countAccountable(ctx, tx, itemID, stakeholderID)
		if err != nil {
			return err
		}
		duplicate, err := r.hasRole(ctx, tx, itemID, stakeholderID, role)
		if err != nil {
			return err
		}

		if result := raci.CanAssign(raci.AssignContext{
			ItemID:           itemID,
			StakeholderID:    stakeholderID,
			Role:             role,
			AccountableCount: accountable,
			DuplicateRole:    duplicate,
		}); !result.Allowed {
			return &models.ConflictError{Entity: "assignment", Reason: result.Reason}
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO item_stakeholders (item_id, stakeholder_id, raci_role, created_at) VALUES (?, ?, ?, ?)",
			itemID, stakeholderID, role, r.now().UTC(),
		); err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}
		return nil
	})
}

// Remove deletes a RACI assignment. The last accountable assignment can
// only go while the item is still in inbox.
func (r *AssignmentRepository) Remove(ctx context.Context, itemID, stakeholderID, role string) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx,
			"SELECT status FROM gtd_items WHERE id = ?", itemID,
		).Scan(&status)
		if err == sql.ErrNoRows {
			return &models.NotFoundError{Entity: "item", ID: itemID}
		}
		if err != nil {
			return fmt.Errorf("failed to read item status: %w", err)
		}

		var accountable int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM item_stakeholders WHERE item_id = ? AND raci_role = ?",
			itemID, models.RoleAccountable,
		).Scan(&accountable); err != nil {
			return fmt.Errorf("failed to count accountable assignments: %w", err)
		}

		if result := raci.CanRemove(raci.RemoveContext{
			ItemID:           itemID,
			Role:             role,
			ItemStatus:       status,
			AccountableCount: accountable,
		}); !result.Allowed {
			return &models.ConflictError{Entity: "assignment", Reason: result.Reason}
		}

		result, err := tx.ExecContext(ctx,
			"DELETE FROM item_stakeholders WHERE item_id = ? AND stakeholder_id = ? AND raci_role = ?",
			itemID, stakeholderID, role,
		)
		if err != nil {
			return fmt.Errorf("failed to remove assignment: %w", err)
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			return &models.NotFoundError{Entity: "assignment", ID: itemID + "/" + stakeholderID + "/" + role}
		}
		return nil
	})
}

// ListByItem retrieves all assignments for an item, newest first.
func (r *AssignmentRepository) ListByItem(ctx context.Context, itemID string) ([]*models.Assignment, error) {
	return r.queryAssignments(ctx,
		"SELECT item_id, stakeholder_id, raci_role, created_at FROM item_stakeholders WHERE item_id = ? ORDER BY created_at DESC",
		itemID,
	)
}

// ListByItemAndRole retrieves an item's assignments holding one role.
func (r *AssignmentRepository) ListByItemAndRole(ctx context.Context, itemID, role string) ([]*models.Assignment, error) {
	return r.queryAssignments(ctx,
		"SELECT item_id, stakeholder_id, raci_role, created_at FROM item_stakeholders WHERE item_id = ? AND raci_role = ? ORDER BY created_at DESC",
		itemID, role,
	)
}

func (r *AssignmentRepository) queryAssignments(ctx context.Context, query string, args ...any) ([]*models.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*models.Assignment
	for rows.Next() {
		a := &models.Assignment{}
		if err := rows.Scan(&a.ItemID, &a.StakeholderID, &a.Role, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *AssignmentRepository) hasRole(ctx context.Context, tx *sql.Tx, itemID, stakeholderID, role string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM item_stakeholders WHERE item_id = ? AND stakeholder_id = ? AND raci_role = ?",
		itemID, stakeholderID, role,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check existing role: %w", err)
	}
	return n > 0, nil
}

// countAccountable counts accountable assignments on the item held by
// other stakeholders.
func countAccountable(ctx context.Context, tx *sql.Tx, itemID, excludeStakeholderID string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM item_stakeholders WHERE item_id = ? AND raci_role = ? AND stakeholder_id != ?",
		itemID, models.RoleAccountable, excludeStakeholderID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count accountable assignments: %w", err)
	}
	return n, nil
}

// Ensure AssignmentRepository implements the interface
var _ secondary.AssignmentRepository = (*AssignmentRepository)(nil)
