// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/gtdstore/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// This is the single shared test database setup function for all repository tests.
// Uses db.GetSchemaSQL() to prevent test schemas from drifting.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedContext inserts a test context and returns its ID.
func seedContext(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "CTX-001"
	}
	if name == "" {
		name = "@computer"
	}
	_, err := db.Exec("INSERT INTO contexts (id, name) VALUES (?, ?)", id, name)
	if err != nil {
		t.Fatalf("failed to seed context: %v", err)
	}
	return id
}

// seedOrganization inserts a test organization and returns its ID.
func seedOrganization(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "ORG-001"
	}
	if name == "" {
		name = "Test Organization"
	}
	_, err := db.Exec("INSERT INTO organizations (id, name, type) VALUES (?, ?, 'internal')", id, name)
	if err != nil {
		t.Fatalf("failed to seed organization: %v", err)
	}
	return id
}

// seedStakeholder inserts a test stakeholder and returns its ID.
func seedStakeholder(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "STK-001"
	}
	if name == "" {
		name = "Test Stakeholder"
	}
	_, err := db.Exec("INSERT INTO stakeholders (id, name, contact) VALUES (?, ?, ?)", id, name, "test@example.com")
	if err != nil {
		t.Fatalf("failed to seed stakeholder: %v", err)
	}
	return id
}

// seedItem inserts a test item with the given status and returns its ID.
func seedItem(t *testing.T, db *sql.DB, id, title, itemType, status string) string {
	t.Helper()
	if id == "" {
		id = "ITEM-001"
	}
	if title == "" {
		title = "Test Item"
	}
	if itemType == "" {
		itemType = "action"
	}
	if status == "" {
		status = "inbox"
	}
	_, err := db.Exec("INSERT INTO gtd_items (id, title, item_type, status) VALUES (?, ?, ?, ?)", id, title, itemType, status)
	if err != nil {
		t.Fatalf("failed to seed item: %v", err)
	}
	return id
}

// seedItemContext links an item to a context directly.
func seedItemContext(t *testing.T, db *sql.DB, itemID, contextID string) {
	t.Helper()
	_, err := db.Exec("INSERT INTO item_contexts (item_id, context_id) VALUES (?, ?)", itemID, contextID)
	if err != nil {
		t.Fatalf("failed to seed item context link: %v", err)
	}
}

// seedAssignment links a stakeholder to an item with a RACI role directly.
func seedAssignment(t *testing.T, db *sql.DB, itemID, stakeholderID, role string) {
	t.Helper()
	_, err := db.Exec("INSERT INTO item_stakeholders (item_id, stakeholder_id, raci_role) VALUES (?, ?, ?)", itemID, stakeholderID, role)
	if err != nil {
		t.Fatalf("failed to seed assignment: %v", err)
	}
}
