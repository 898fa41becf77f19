package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/gtdstore/internal/core/item"
	"github.com/example/gtdstore/internal/models"
	"github.com/example/gtdstore/internal/ports/secondary"
)

// ItemRepository implements secondary.ItemRepository with SQLite.
type ItemRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewItemRepository creates a new SQLite item repository.
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db, now: time.Now}
}

const itemSelectCols = "id, title, description, status, item_type, project_id, due_date, energy_level, success_criteria, created_at, updated_at, completed_at"

// scanItem scans an item row into a models.Item.
func scanItem(scanner interface {
	Scan(dest ...any) error
}) (*models.Item, error) {
	var (
		desc        sql.NullString
		projectID   sql.NullString
		dueDate     sql.NullTime
		energy      sql.NullInt64
		criteria    sql.NullString
		completedAt sql.NullTime
	)

	it := &models.Item{}
	err := scanner.Scan(
		&it.ID, &it.Title, &desc, &it.Status, &it.Type, &projectID,
		&dueDate, &energy, &criteria, &it.CreatedAt, &it.UpdatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	it.Description = desc.String
	it.ProjectID = projectID.String
	it.SuccessCriteria = criteria.String
	if dueDate.Valid {
		t := dueDate.Time
		it.DueDate = &t
	}
	if energy.Valid {
		level := int(energy.Int64)
		it.EnergyLevel = &level
	}
	if completedAt.Valid {
		t := completedAt.Time
		it.CompletedAt = &t
	}

	return it, nil
}

// validateItemFields adapts the pure field guard to the structural hook.
func validateItemFields(it *models.Item) error {
	if result := item.ValidateFields(it); !result.Allowed {
		return &models.ValidationError{Entity: "item", Reason: result.Reason}
	}
	return nil
}

// Create persists a new item. An empty ID is generated, an empty status
// defaults to inbox, and creating directly as complete stamps CompletedAt.
func (r *ItemRepository) Create(ctx context.Context, it *models.Item) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.Status == "" {
		it.Status = item.InitialStatus()
	}
	now := r.now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now
	if it.Status == models.StatusComplete {
		it.CompletedAt = &now
	} else {
		it.CompletedAt = nil
	}

	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := runHooks(ctx, tx, it,
			[]structuralCheck[models.Item]{validateItemFields},
			[]businessRule[models.Item]{r.checkParent},
		); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO gtd_items (id, title, description, status, item_type, project_id, due_date, energy_level, success_criteria, created_at, updated_at, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			it.ID, it.Title, nullString(it.Description), it.Status, it.Type,
			nullString(it.ProjectID), nullTime(it.DueDate), nullInt(it.EnergyLevel),
			nullString(it.SuccessCriteria), it.CreatedAt, it.UpdatedAt, nullTime(it.CompletedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		return nil
	})
}

// Get retrieves an item by its ID.
func (r *ItemRepository) Get(ctx context.Context, id string) (*models.Item, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+itemSelectCols+" FROM gtd_items WHERE id = ?", id)

	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "item", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

// Update updates an item's fields. Status is deliberately excluded: the
// lifecycle only moves through ChangeStatus. Complete items are frozen.
func (r *ItemRepository) Update(ctx context.Context, it *models.Item) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		stored, err := getItemTx(ctx, tx, it.ID)
		if err != nil {
			return err
		}

		// Carry the stored lifecycle fields so validation sees the real state.
		it.Status = stored.Status
		it.Type = stored.Type
		it.CompletedAt = stored.CompletedAt

		if err := runHooks(ctx, tx, it,
			[]structuralCheck[models.Item]{validateItemFields},
			[]businessRule[models.Item]{r.checkFrozen, r.checkParent},
		); err != nil {
			return err
		}

		it.UpdatedAt = r.now().UTC()
		_, err = tx.ExecContext(ctx,
			"UPDATE gtd_items SET title = ?, description = ?, project_id = ?, due_date = ?, energy_level = ?, success_criteria = ?, updated_at = ? WHERE id = ?",
			it.Title, nullString(it.Description), nullString(it.ProjectID),
			nullTime(it.DueDate), nullInt(it.EnergyLevel), nullString(it.SuccessCriteria),
			it.UpdatedAt, it.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		return nil
	})
}

// Delete removes an item. Context links and assignments cascade with it;
// child projects are detached, not deleted.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM gtd_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &models.NotFoundError{Entity: "item", ID: id}
	}
	return nil
}

// List retrieves items matching the filter, oldest first.
func (r *ItemRepository) List(ctx context.Context, filter secondary.ItemFilter) ([]*models.Item, error) {
	query := "SELECT " + itemSelectCols + " FROM gtd_items WHERE 1=1"
	args := []any{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		query += " AND item_type = ?"
		args = append(args, filter.Type)
	}
	if filter.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, filter.ProjectID)
	}
	if filter.ContextID != "" {
		query += " AND id IN (SELECT item_id FROM item_contexts WHERE context_id = ?)"
		args = append(args, filter.ContextID)
	}

	query += " ORDER BY created_at ASC"
	return r.queryItems(ctx, query, args...)
}

// ChangeStatus runs the lifecycle state machine for one item. Entry into
// complete stamps CompletedAt; re-opening to organized clears it.
func (r *ItemRepository) ChangeStatus(ctx context.Context, id, newStatus string) (*models.Item, error) {
	var updated *models.Item
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		stored, err := getItemTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if result := item.CanMutate(item.MutationContext{
			StoredStatus: stored.Status,
			NewStatus:    newStatus,
		}); !result.Allowed {
			return &models.ConflictError{Entity: "item", Reason: result.Reason}
		}

		contextCount, err := countContexts(ctx, tx, id)
		if err != nil {
			return err
		}
		if result := item.CanChangeStatus(item.TransitionContext{
			From:         stored.Status,
			To:           newStatus,
			ContextCount: contextCount,
		}); !result.Allowed {
			return &models.ConflictError{Entity: "item", Reason: result.Reason}
		}

		now := r.now().UTC()
		transition := item.ApplyTransition(newStatus, now)
		_, err = tx.ExecContext(ctx,
			"UPDATE gtd_items SET status = ?, completed_at = ?, updated_at = ? WHERE id = ?",
			transition.NewStatus, nullTime(transition.CompletedAt), now, id,
		)
		if err != nil {
			return fmt.Errorf("failed to change item status: %w", err)
		}

		stored.Status = transition.NewStatus
		stored.CompletedAt = transition.CompletedAt
		stored.UpdatedAt = now
		updated = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// LinkContext links a context to an action.
func (r *ItemRepository) LinkContext(ctx context.Context, itemID, contextID string) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		stored, err := getItemTx(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if !stored.IsAction() {
			return &models.ConflictError{Entity: "item", Reason: "only actions carry contexts"}
		}
		if err := rowExistsTx(ctx, tx, "contexts", contextID); err != nil {
			return err
		}

		var n int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM item_contexts WHERE item_id = ? AND context_id = ?",
			itemID, contextID,
		).Scan(&n); err != nil {
			return fmt.Errorf("failed to check context link: %w", err)
		}
		if n > 0 {
			return &models.ConflictError{Entity: "item", Reason: "context already linked"}
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO item_contexts (item_id, context_id) VALUES (?, ?)",
			itemID, contextID,
		); err != nil {
			return fmt.Errorf("failed to link context: %w", err)
		}
		return nil
	})
}

// UnlinkContext removes a context link from an action.
func (r *ItemRepository) UnlinkContext(ctx context.Context, itemID, contextID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM item_contexts WHERE item_id = ? AND context_id = ?",
		itemID, contextID,
	)
	if err != nil {
		return fmt.Errorf("failed to unlink context: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &models.NotFoundError{Entity: "context link", ID: itemID + "/" + contextID}
	}
	return nil
}

// ListNextActions retrieves organized actions, the GTD "next action" view.
func (r *ItemRepository) ListNextActions(ctx context.Context) ([]*models.Item, error) {
	return r.queryItems(ctx,
		"SELECT "+itemSelectCols+" FROM gtd_items WHERE status = ? AND item_type = ? ORDER BY created_at ASC",
		models.StatusOrganized, models.ItemTypeAction,
	)
}

// ListByEnergy retrieves active actions within an energy range, highest
// energy first.
func (r *ItemRepository) ListByEnergy(ctx context.Context, min, max int) ([]*models.Item, error) {
	return r.queryItems(ctx,
		"SELECT "+itemSelectCols+" FROM gtd_items WHERE item_type = ? AND energy_level >= ? AND energy_level <= ? AND status IN (?, ?) ORDER BY energy_level DESC, created_at ASC",
		models.ItemTypeAction, min, max, models.StatusOrganized, models.StatusReviewing,
	)
}

// ListOverdue retrieves incomplete actions whose due date has passed.
func (r *ItemRepository) ListOverdue(ctx context.Context, now time.Time) ([]*models.Item, error) {
	return r.queryItems(ctx,
		"SELECT "+itemSelectCols+" FROM gtd_items WHERE item_type = ? AND due_date IS NOT NULL AND due_date < ? AND status != ? ORDER BY due_date ASC",
		models.ItemTypeAction, now.UTC(), models.StatusComplete,
	)
}

// checkFrozen is the immutable-after-complete business rule for field
// updates; status transitions take the ChangeStatus path instead.
func (r *ItemRepository) checkFrozen(ctx context.Context, tx *sql.Tx, it *models.Item) error {
	if result := item.CanMutate(item.MutationContext{
		StoredStatus: it.Status,
		NewStatus:    it.Status,
	}); !result.Allowed {
		return &models.ConflictError{Entity: "item", Reason: result.Reason}
	}
	return nil
}

// checkParent is the tree-depth business rule: the proposed parent must be
// a project and the resulting chain must stay within bounds, walking up
// from the parent and failing closed on cycles.
func (r *ItemRepository) checkParent(ctx context.Context, tx *sql.Tx, it *models.Item) error {
	if it.ProjectID == "" {
		return nil
	}

	chain, parentType, cycle, err := parentChain(ctx, tx, it.ProjectID)
	if err != nil {
		return err
	}

	if result := item.CanSetParent(item.ParentContext{
		ItemID:        it.ID,
		ParentID:      it.ProjectID,
		ParentType:    parentType,
		AncestorChain: chain,
		CycleDetected: cycle,
	}); !result.Allowed {
		return &models.ValidationError{Entity: "item", Field: "project_id", Reason: result.Reason}
	}
	return nil
}

// parentChain walks from parentID to the root, returning the visited IDs
// in order. The walk is bounded; hitting the bound or a missing link
// reports a cycle so the guard fails closed.
func parentChain(ctx context.Context, tx *sql.Tx, parentID string) (chain []string, parentType string, cycle bool, err error) {
	cur := parentID
	seen := map[string]bool{}

	for i := 0; i <= item.MaxProjectDepth; i++ {
		var itemType string
		var nextParent sql.NullString
		err := tx.QueryRowContext(ctx,
			"SELECT item_type, project_id FROM gtd_items WHERE id = ?", cur,
		).Scan(&itemType, &nextParent)
		if err == sql.ErrNoRows {
			return nil, "", false, &models.NotFoundError{Entity: "item", ID: cur}
		}
		if err != nil {
			return nil, "", false, fmt.Errorf("failed to walk project chain: %w", err)
		}

		if parentType == "" {
			parentType = itemType
		}
		if seen[cur] {
			return chain, parentType, true, nil
		}
		seen[cur] = true
		chain = append(chain, cur)

		if !nextParent.Valid {
			return chain, parentType, false, nil
		}
		cur = nextParent.String
	}

	// Bound exceeded without reaching a root: treat as a cycle.
	return chain, parentType, true, nil
}

func getItemTx(ctx context.Context, tx *sql.Tx, id string) (*models.Item, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+itemSelectCols+" FROM gtd_items WHERE id = ?", id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "item", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

func countContexts(ctx context.Context, tx *sql.Tx, itemID string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM item_contexts WHERE item_id = ?", itemID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count contexts: %w", err)
	}
	return n, nil
}

func rowExistsTx(ctx context.Context, tx *sql.Tx, table, id string) error {
	var n int
	query := "SELECT COUNT(*) FROM " + table + " WHERE id = ?"
	if err := tx.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	if n == 0 {
		return &models.NotFoundError{Entity: table, ID: id}
	}
	return nil
}

func (r *ItemRepository) queryItems(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

// Ensure ItemRepository implements the interface
var _ secondary.ItemRepository = (*ItemRepository)(nil)
