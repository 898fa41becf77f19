package migrate

import (
	"database/sql"
	"fmt"
)

// DefaultCatalog returns the published migration catalog. Append-only:
// never reorder or delete a released step.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog([]Migration{
		{
			Version: 1,
			Name:    "create_items_and_contexts",
			Up:      migrationV1Up,
			Down:    migrationV1Down,
		},
		{
			Version: 2,
			Name:    "create_organizations_and_stakeholders",
			Up:      migrationV2Up,
			Down:    migrationV2Down,
		},
		{
			Version:     3,
			Name:        "create_raci_assignments",
			Up:          migrationV3Up,
			Down:        migrationV3Down,
			DataLoss:    true,
			RiskFactors: []string{"down path drops the item_stakeholders table and its rows"},
		},
		{
			Version:     4,
			Name:        "add_due_date_and_energy_level",
			Up:          migrationV4Up,
			Down:        migrationV4Down,
			DataLoss:    true,
			RiskFactors: []string{"down path rebuilds gtd_items and drops due_date and energy_level values"},
		},
		{
			Version: 5,
			Name:    "add_success_criteria_and_indexes",
			Up:      migrationV5Up,
			Down:    migrationV5Down,
		},
	})
	if err != nil {
		// The built-in catalog is validated by tests; a bad sequence here is
		// a programming error, not a runtime condition.
		panic(fmt.Sprintf("invalid built-in migration catalog: %v", err))
	}
	return catalog
}

func migrationV1Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE gtd_items (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'inbox' CHECK(status IN ('inbox', 'clarified', 'organized', 'reviewing', 'complete', 'someday')),
			item_type TEXT NOT NULL CHECK(item_type IN ('action', 'project')),
			project_id TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP,
			FOREIGN KEY (project_id) REFERENCES gtd_items(id) ON DELETE SET NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create gtd_items: %w", err)
	}

	_, err = tx.Exec(`
		CREATE TABLE contexts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create contexts: %w", err)
	}

	_, err = tx.Exec(`
		CREATE TABLE item_contexts (
			item_id TEXT NOT NULL,
			context_id TEXT NOT NULL,
			PRIMARY KEY (item_id, context_id),
			FOREIGN KEY (item_id) REFERENCES gtd_items(id) ON DELETE CASCADE,
			FOREIGN KEY (context_id) REFERENCES contexts(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create item_contexts: %w", err)
	}

	return nil
}

func migrationV1Down(tx *sql.Tx) error {
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS item_contexts",
		"DROP TABLE IF EXISTS contexts",
		"DROP TABLE IF EXISTS gtd_items",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to drop v1 tables: %w", err)
		}
	}
	return nil
}

func migrationV2Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE organizations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL CHECK(type IN ('internal', 'customer', 'partner', 'other')),
			description TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create organizations: %w", err)
	}

	_, err = tx.Exec(`
		CREATE TABLE stakeholders (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			contact TEXT NOT NULL,
			organization_id TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE SET NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create stakeholders: %w", err)
	}

	return nil
}

func migrationV2Down(tx *sql.Tx) error {
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS stakeholders",
		"DROP TABLE IF EXISTS organizations",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to drop v2 tables: %w", err)
		}
	}
	return nil
}

func migrationV3Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE item_stakeholders (
			item_id TEXT NOT NULL,
			stakeholder_id TEXT NOT NULL,
			raci_role TEXT NOT NULL CHECK(raci_role IN ('responsible', 'accountable', 'consulted', 'informed')),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (item_id, stakeholder_id, raci_role),
			FOREIGN KEY (item_id) REFERENCES gtd_items(id) ON DELETE CASCADE,
			FOREIGN KEY (stakeholder_id) REFERENCES stakeholders(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create item_stakeholders: %w", err)
	}
	return nil
}

func migrationV3Down(tx *sql.Tx) error {
	if _, err := tx.Exec("DROP TABLE IF EXISTS item_stakeholders"); err != nil {
		return fmt.Errorf("failed to drop item_stakeholders: %w", err)
	}
	return nil
}

func migrationV4Up(tx *sql.Tx) error {
	// New columns with CHECK constraints are legal in SQLite ALTER TABLE.
	if _, err := tx.Exec("ALTER TABLE gtd_items ADD COLUMN due_date TIMESTAMP"); err != nil {
		return fmt.Errorf("failed to add due_date: %w", err)
	}
	if _, err := tx.Exec("ALTER TABLE gtd_items ADD COLUMN energy_level INTEGER CHECK(energy_level IS NULL OR (energy_level >= 1 AND energy_level <= 5))"); err != nil {
		return fmt.Errorf("failed to add energy_level: %w", err)
	}
	return nil
}

func migrationV4Down(tx *sql.Tx) error {
	for _, stmt := range []string{
		"ALTER TABLE gtd_items DROP COLUMN energy_level",
		"ALTER TABLE gtd_items DROP COLUMN due_date",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to drop v4 columns: %w", err)
		}
	}
	return nil
}

func migrationV5Up(tx *sql.Tx) error {
	if _, err := tx.Exec("ALTER TABLE gtd_items ADD COLUMN success_criteria TEXT"); err != nil {
		return fmt.Errorf("failed to add success_criteria: %w", err)
	}

	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS idx_gtd_items_status ON gtd_items(status)",
		"CREATE INDEX IF NOT EXISTS idx_gtd_items_type ON gtd_items(item_type)",
		"CREATE INDEX IF NOT EXISTS idx_gtd_items_project ON gtd_items(project_id)",
		"CREATE INDEX IF NOT EXISTS idx_contexts_name ON contexts(name)",
		"CREATE INDEX IF NOT EXISTS idx_stakeholders_org ON stakeholders(organization_id)",
		"CREATE INDEX IF NOT EXISTS idx_item_stakeholders_item ON item_stakeholders(item_id)",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create v5 indexes: %w", err)
		}
	}
	return nil
}

func migrationV5Down(tx *sql.Tx) error {
	for _, stmt := range []string{
		"DROP INDEX IF EXISTS idx_item_stakeholders_item",
		"DROP INDEX IF EXISTS idx_stakeholders_org",
		"DROP INDEX IF EXISTS idx_contexts_name",
		"DROP INDEX IF EXISTS idx_gtd_items_project",
		"DROP INDEX IF EXISTS idx_gtd_items_type",
		"DROP INDEX IF EXISTS idx_gtd_items_status",
		"ALTER TABLE gtd_items DROP COLUMN success_criteria",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to revert v5: %w", err)
		}
	}
	return nil
}
