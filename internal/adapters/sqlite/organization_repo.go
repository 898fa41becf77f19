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

// OrganizationRepository implements secondary.OrganizationRepository with SQLite.
type OrganizationRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewOrganizationRepository creates a new SQLite organization repository.
func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db, now: time.Now}
}

const organizationSelectCols = "id, name, type, description, created_at"

func scanOrganization(scanner interface {
	Scan(dest ...any) error
}) (*models.Organization, error) {
	var desc sql.NullString
	o := &models.Organization{}
	if err := scanner.Scan(&o.ID, &o.Name, &o.Type, &desc, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Description = desc.String
	return o, nil
}

func validateOrganizationFields(o *models.Organization) error {
	if strings.TrimSpace(o.Name) == "" {
		return &models.ValidationError{Entity: "organization", Field: "name", Reason: "cannot be empty"}
	}
	for _, t := range models.OrganizationTypes {
		if o.Type == t {
			return nil
		}
	}
	return &models.ValidationError{Entity: "organization", Field: "type", Reason: fmt.Sprintf("unknown type %q", o.Type)}
}

// Create persists a new organization.
func (r *OrganizationRepository) Create(ctx context.Context, o *models.Organization) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.CreatedAt = r.now().UTC()

	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := runHooks(ctx, tx, o,
			[]structuralCheck[models.Organization]{validateOrganizationFields},
			nil,
		); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO organizations (id, name, type, description, created_at) VALUES (?, ?, ?, ?, ?)",
			o.ID, o.Name, o.Type, nullString(o.Description), o.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create organization: %w", err)
		}
		return nil
	})
}

// Get retrieves an organization by ID.
func (r *OrganizationRepository) Get(ctx context.Context, id string) (*models.Organization, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+organizationSelectCols+" FROM organizations WHERE id = ?", id)
	o, err := scanOrganization(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "organization", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return o, nil
}

// Update updates an existing organization.
func (r *OrganizationRepository) Update(ctx context.Context, o *models.Organization) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := rowExistsTx(ctx, tx, "organizations", o.ID); err != nil {
			return err
		}
		if err := runHooks(ctx, tx, o,
			[]structuralCheck[models.Organization]{validateOrganizationFields},
			nil,
		); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"UPDATE organizations SET name = ?, type = ?, description = ? WHERE id = ?",
			o.Name, o.Type, nullString(o.Description), o.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update organization: %w", err)
		}
		return nil
	})
}

// Delete removes an organization; member stakeholders are detached.
func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM organizations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &models.NotFoundError{Entity: "organization", ID: id}
	}
	return nil
}

// List retrieves organizations by name, optionally filtered by type.
func (r *OrganizationRepository) List(ctx context.Context, filter secondary.OrganizationFilter) ([]*models.Organization, error) {
	query := "SELECT " + organizationSelectCols + " FROM organizations WHERE 1=1"
	args := []any{}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, filter.Type)
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

// Ensure OrganizationRepository implements the interface
var _ secondary.OrganizationRepository = (*OrganizationRepository)(nil)
