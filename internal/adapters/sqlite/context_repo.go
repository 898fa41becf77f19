package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/gtdstore/internal/models"
	"github.com/example/gtdstore/internal/ports/secondary"
)

// ContextRepository implements secondary.ContextRepository with SQLite.
type ContextRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewContextRepository creates a new SQLite context repository.
func NewContextRepository(db *sql.DB) *ContextRepository {
	return &ContextRepository{db: db, now: time.Now}
}

const contextSelectCols = "id, name, description, created_at"

func scanContext(scanner interface {
	Scan(dest ...any) error
}) (*models.Context, error) {
	var desc sql.NullString
	c := &models.Context{}
	if err := scanner.Scan(&c.ID, &c.Name, &desc, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Description = desc.String
	return c, nil
}

// validateContextFields checks name presence and the @-prefix convention.
func validateContextFields(c *models.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return &models.ValidationError{Entity: "context", Field: "name", Reason: "cannot be empty"}
	}
	if !strings.HasPrefix(c.Name, "@") {
		return &models.ValidationError{Entity: "context", Field: "name", Reason: "must start with @"}
	}
	return nil
}

// Create persists a new context. Names are unique across the store.
func (r *ContextRepository) Create(ctx context.Context, c *models.Context) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = r.now().UTC()

	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := runHooks(ctx, tx, c,
			[]structuralCheck[models.Context]{validateContextFields},
			[]businessRule[models.Context]{r.checkUniqueName},
		); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO contexts (id, name, description, created_at) VALUES (?, ?, ?, ?)",
			c.ID, c.Name, nullString(c.Description), c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create context: %w", err)
		}
		return nil
	})
}

// Get retrieves a context by ID.
func (r *ContextRepository) Get(ctx context.Context, id string) (*models.Context, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+contextSelectCols+" FROM contexts WHERE id = ?", id)
	c, err := scanContext(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "context", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get context: %w", err)
	}
	return c, nil
}

// Update updates an existing context.
func (r *ContextRepository) Update(ctx context.Context, c *models.Context) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := rowExistsTx(ctx, tx, "contexts", c.ID); err != nil {
			return err
		}
		if err := runHooks(ctx, tx, c,
			[]structuralCheck[models.Context]{validateContextFields},
			[]businessRule[models.Context]{r.checkUniqueName},
		); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"UPDATE contexts SET name = ?, description = ? WHERE id = ?",
			c.Name, nullString(c.Description), c.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update context: %w", err)
		}
		return nil
	})
}

// Delete removes a context and its item links.
func (r *ContextRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM contexts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete context: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &models.NotFoundError{Entity: "context", ID: id}
	}
	return nil
}

// List retrieves contexts alphabetically, optionally filtered by name.
func (r *ContextRepository) List(ctx context.Context, filter secondary.ContextFilter) ([]*models.Context, error) {
	query := "SELECT " + contextSelectCols + " FROM contexts WHERE 1=1"
	args := []any{}
	if filter.Name != "" {
		query += " AND name = ?"
		args = append(args, filter.Name)
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contexts: %w", err)
	}
	defer rows.Close()

	var contexts []*models.Context
	for rows.Next() {
		c, err := scanContext(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan context: %w", err)
		}
		contexts = append(contexts, c)
	}
	return contexts, rows.Err()
}

// FindByName retrieves a context by exact name, or a NotFoundError.
func (r *ContextRepository) FindByName(ctx context.Context, name string) (*models.Context, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+contextSelectCols+" FROM contexts WHERE name = ?", name)
	c, err := scanContext(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "context", ID: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find context by name: %w", err)
	}
	return c, nil
}

// checkUniqueName rejects a duplicate context name.
func (r *ContextRepository) checkUniqueName(ctx context.Context, tx *sql.Tx, c *models.Context) error {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM contexts WHERE name = ? AND id != ?", c.Name, c.ID,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to check context name: %w", err)
	}
	if n > 0 {
		return &models.ConflictError{Entity: "context", Reason: fmt.Sprintf("name %q already exists", c.Name)}
	}
	return nil
}

// Ensure ContextRepository implements the interface
var _ secondary.ContextRepository = (*ContextRepository)(nil)
