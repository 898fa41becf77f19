package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the store with development fixtures that exercise
// the cross-record invariants: a nested project chain, context-linked
// actions, and RACI assignments with one accountable per item.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)

	contexts := []struct{ id, name, desc string }{
		{"CTX-001", "@computer", "Needs a keyboard"},
		{"CTX-002", "@office", "Only doable on site"},
		{"CTX-003", "@errands", "Out and about"},
	}
	for _, c := range contexts {
		if _, err := database.Exec(
			"INSERT INTO contexts (id, name, description, created_at) VALUES (?, ?, ?, ?)",
			c.id, c.name, c.desc, now,
		); err != nil {
			return fmt.Errorf("seed contexts: %w", err)
		}
	}

	orgs := []struct{ id, name, orgType string }{
		{"ORG-001", "Platform Team", "internal"},
		{"ORG-002", "Acme Corp", "customer"},
	}
	for _, o := range orgs {
		if _, err := database.Exec(
			"INSERT INTO organizations (id, name, type, created_at) VALUES (?, ?, ?, ?)",
			o.id, o.name, o.orgType, now,
		); err != nil {
			return fmt.Errorf("seed organizations: %w", err)
		}
	}

	stakeholders := []struct{ id, name, contact, orgID string }{
		{"STK-001", "Avery Quinn", "avery@example.com", "ORG-001"},
		{"STK-002", "Jordan Lee", "jordan@example.com", "ORG-002"},
	}
	for _, s := range stakeholders {
		if _, err := database.Exec(
			"INSERT INTO stakeholders (id, name, contact, organization_id, created_at) VALUES (?, ?, ?, ?, ?)",
			s.id, s.name, s.contact, s.orgID, now,
		); err != nil {
			return fmt.Errorf("seed stakeholders: %w", err)
		}
	}

	// Project chain at the maximum legal depth plus attached actions.
	items := []struct{ id, title, status, itemType, projectID string }{
		{"ITEM-001", "Quarterly launch", "organized", "project", ""},
		{"ITEM-002", "Website refresh", "organized", "project", "ITEM-001"},
		{"ITEM-003", "Landing page copy", "organized", "project", "ITEM-002"},
		{"ITEM-004", "Draft proposal", "inbox", "action", ""},
		{"ITEM-005", "Review homepage draft", "organized", "action", "ITEM-002"},
	}
	for _, it := range items {
		var projectID any
		if it.projectID != "" {
			projectID = it.projectID
		}
		if _, err := database.Exec(
			"INSERT INTO gtd_items (id, title, status, item_type, project_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			it.id, it.title, it.status, it.itemType, projectID, now, now,
		); err != nil {
			return fmt.Errorf("seed items: %w", err)
		}
	}

	links := []struct{ itemID, contextID string }{
		{"ITEM-005", "CTX-001"},
	}
	for _, l := range links {
		if _, err := database.Exec(
			"INSERT INTO item_contexts (item_id, context_id) VALUES (?, ?)",
			l.itemID, l.contextID,
		); err != nil {
			return fmt.Errorf("seed item contexts: %w", err)
		}
	}

	assignments := []struct{ itemID, stakeholderID, role string }{
		{"ITEM-001", "STK-001", "accountable"},
		{"ITEM-002", "STK-001", "accountable"},
		{"ITEM-005", "STK-002", "accountable"},
		{"ITEM-005", "STK-001", "informed"},
	}
	for _, a := range assignments {
		if _, err := database.Exec(
			"INSERT INTO item_stakeholders (item_id, stakeholder_id, raci_role, created_at) VALUES (?, ?, ?, ?)",
			a.itemID, a.stakeholderID, a.role, now,
		); err != nil {
			return fmt.Errorf("seed assignments: %w", err)
		}
	}

	return nil
}
