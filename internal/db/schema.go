package db

// SchemaSQL is the complete current schema for fresh installs, i.e. the
// table shape after every catalog migration has been applied.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Repository
// tests load it via GetSchemaSQL() instead of hardcoding CREATE TABLE
// statements, so a repository referencing a column that does not exist
// here fails immediately with "no such column".
//
// IMPORTANT: keep this in sync with the migration catalog in
// internal/migrate/migrations.go. When adding a migration:
//  1. Add the step to the catalog
//  2. Update SchemaSQL here
//  3. Run the migrate round-trip tests to verify alignment
const SchemaSQL = `
-- Tracked items (actions and projects, tagged variant)
CREATE TABLE IF NOT EXISTS gtd_items (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'inbox' CHECK(status IN ('inbox', 'clarified', 'organized', 'reviewing', 'complete', 'someday')),
	item_type TEXT NOT NULL CHECK(item_type IN ('action', 'project')),
	project_id TEXT,
	due_date TIMESTAMP,
	energy_level INTEGER CHECK(energy_level IS NULL OR (energy_level >= 1 AND energy_level <= 5)),
	success_criteria TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	completed_at TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES gtd_items(id) ON DELETE SET NULL
);

-- Contexts (unique names)
CREATE TABLE IF NOT EXISTS contexts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	description TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Action <-> Context many-to-many, owned by the item
CREATE TABLE IF NOT EXISTS item_contexts (
	item_id TEXT NOT NULL,
	context_id TEXT NOT NULL,
	PRIMARY KEY (item_id, context_id),
	FOREIGN KEY (item_id) REFERENCES gtd_items(id) ON DELETE CASCADE,
	FOREIGN KEY (context_id) REFERENCES contexts(id) ON DELETE CASCADE
);

-- Organizations
CREATE TABLE IF NOT EXISTS organizations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('internal', 'customer', 'partner', 'other')),
	description TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Stakeholders (independently owned, weakly referenced by assignments)
CREATE TABLE IF NOT EXISTS stakeholders (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	contact TEXT NOT NULL,
	organization_id TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE SET NULL
);

-- RACI accountability assignments, owned by the item
CREATE TABLE IF NOT EXISTS item_stakeholders (
	item_id TEXT NOT NULL,
	stakeholder_id TEXT NOT NULL,
	raci_role TEXT NOT NULL CHECK(raci_role IN ('responsible', 'accountable', 'consulted', 'informed')),
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (item_id, stakeholder_id, raci_role),
	FOREIGN KEY (item_id) REFERENCES gtd_items(id) ON DELETE CASCADE,
	FOREIGN KEY (stakeholder_id) REFERENCES stakeholders(id) ON DELETE CASCADE
);

-- Performance indexes
CREATE INDEX IF NOT EXISTS idx_gtd_items_status ON gtd_items(status);
CREATE INDEX IF NOT EXISTS idx_gtd_items_type ON gtd_items(item_type);
CREATE INDEX IF NOT EXISTS idx_gtd_items_project ON gtd_items(project_id);
CREATE INDEX IF NOT EXISTS idx_contexts_name ON contexts(name);
CREATE INDEX IF NOT EXISTS idx_stakeholders_org ON stakeholders(organization_id);
CREATE INDEX IF NOT EXISTS idx_item_stakeholders_item ON item_stakeholders(item_id);
`

// GetSchemaSQL returns the authoritative schema for test setup.
func GetSchemaSQL() string {
	return SchemaSQL
}
