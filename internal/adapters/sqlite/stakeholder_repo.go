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

// StakeholderRepository implements secondary.StakeholderRepository with SQLite.
type StakeholderRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewStakeholderRepository creates a new SQLite stakeholder repository.
func NewStakeholderRepository(db *sql.DB) *StakeholderRepository {
	return &StakeholderRepository{db: db, now: time.Now}
}

const stakeholderSelectCols = "id, name, contact, organization_id, created_at"

func scanStakeholder(scanner interface {
	Scan(dest ...any) error
}) (*models.Stakeholder, error) {
	var orgID sql.NullString
	s := &models.Stakeholder{}
	if err := scanner.Scan(&s.ID, &s.Name, &s.Contact, &orgID, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.OrganizationID = orgID.String
	return s, nil
}

const maxStakeholderNameLen = 100

func validateStakeholderFields(s *models.Stakeholder) error {
	if strings.TrimSpace(s.Name) == "" {
		return &models.ValidationError{Entity: "stakeholder", Field: "name", Reason: "cannot be empty"}
	}
	if len(s.Name) > maxStakeholderNameLen {
		return &models.ValidationError{Entity: "stakeholder", Field: "name", Reason: fmt.Sprintf("cannot exceed %d characters", maxStakeholderNameLen)}
	}
	if strings.TrimSpace(s.Contact) == "" {
		return &models.ValidationError{Entity: "stakeholder", Field: "contact", Reason: "cannot be empty"}
	}
	return nil
}

// Create persists a new stakeholder.
func (r *StakeholderRepository) Create(ctx context.Context, s *models.Stakeholder) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = r.now().UTC()

	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := runHooks(ctx, tx, s,
			[]structuralCheck[models.Stakeholder]{validateStakeholderFields},
			[]businessRule[models.Stakeholder]{r.checkOrganization},
		); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO stakeholders (id, name, contact, organization_id, created_at) VALUES (?, ?, ?, ?, ?)",
			s.ID, s.Name, s.Contact, nullString(s.OrganizationID), s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create stakeholder: %w", err)
		}
		return nil
	})
}

// Get retrieves a stakeholder by ID.
func (r *StakeholderRepository) Get(ctx context.Context, id string) (*models.Stakeholder, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+stakeholderSelectCols+" FROM stakeholders WHERE id = ?", id)
	s, err := scanStakeholder(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "stakeholder", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stakeholder: %w", err)
	}
	return s, nil
}

// Update updates an existing stakeholder.
func (r *StakeholderRepository) Update(ctx context.Context, s *models.Stakeholder) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := rowExistsTx(ctx, tx, "stakeholders", s.ID); err != nil {
			return err
		}
		if err := runHooks(ctx, tx, s,
			[]structuralCheck[models.Stakeholder]{validateStakeholderFields},
			[]businessRule[models.Stakeholder]{r.checkOrganization},
		); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"UPDATE stakeholders SET name = ?, contact = ?, organization_id = ? WHERE id = ?",
			s.Name, s.Contact, nullString(s.OrganizationID), s.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update stakeholder: %w", err)
		}
		return nil
	})
}

// Delete removes a stakeholder. Their assignments cascade away; items are
// untouched.
func (r *StakeholderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM stakeholders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete stakeholder: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &models.NotFoundError{Entity: "stakeholder", ID: id}
	}
	return nil
}

// List retrieves stakeholders by name, optionally scoped to an organization.
func (r *StakeholderRepository) List(ctx context.Context, filter secondary.StakeholderFilter) ([]*models.Stakeholder, error) {
	query := "SELECT " + stakeholderSelectCols + " FROM stakeholders WHERE 1=1"
	args := []any{}
	if filter.OrganizationID != "" {
		query += " AND organization_id = ?"
		args = append(args, filter.OrganizationID)
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stakeholders: %w", err)
	}
	defer rows.Close()

	var stakeholders []*models.Stakeholder
	for rows.Next() {
		s, err := scanStakeholder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stakeholder: %w", err)
		}
		stakeholders = append(stakeholders, s)
	}
	return stakeholders, rows.Err()
}

// FindByContact retrieves a stakeholder by exact contact.
func (r *StakeholderRepository) FindByContact(ctx context.Context, contact string) (*models.Stakeholder, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+stakeholderSelectCols+" FROM stakeholders WHERE contact = ?", contact)
	s, err := scanStakeholder(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "stakeholder", ID: contact}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stakeholder by contact: %w", err)
	}
	return s, nil
}

// checkOrganization verifies the referenced organization exists.
func (r *StakeholderRepository) checkOrganization(ctx context.Context, tx *sql.Tx, s *models.Stakeholder) error {
	if s.OrganizationID == "" {
		return nil
	}
	return rowExistsTx(ctx, tx, "organizations", s.OrganizationID)
}

// Ensure StakeholderRepository implements the interface
var _ secondary.StakeholderRepository = (*StakeholderRepository)(nil)
