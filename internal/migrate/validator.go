package migrate

import (
	"database/sql"
	"fmt"
	"strings"
)

// Risk scores assigned per warning category. A step's score is the sum of
// its triggered categories; the engine takes a safety-net export when the
// score reaches the configured threshold.
const (
	riskDataLoss    = 50
	riskPerFactor   = 10
	riskPopulatedDB = 20

	// DefaultRiskThreshold is the score at which the engine exports a
	// safety net before running the step.
	DefaultRiskThreshold = 50
)

// RiskReport is the validator's pre-step assessment of a pending migration.
type RiskReport struct {
	Score    int
	Warnings []string
}

// High reports whether the score crosses threshold.
func (r RiskReport) High(threshold int) bool {
	return r.Score >= threshold
}

// ConstraintViolation is one failed post-step check.
type ConstraintViolation struct {
	Constraint string
	Detail     string
}

func (v ConstraintViolation) String() string {
	return fmt.Sprintf("%s: %s", v.Constraint, v.Detail)
}

// Validator inspects stored data against declared constraints before and
// after each migration step.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// AssessRisk statically inspects a pending step against currently stored
// data. Declared data-loss steps on a populated store score highest.
func (v *Validator) AssessRisk(database *sql.DB, step Step) RiskReport {
	report := RiskReport{}

	if step.Migration.DataLoss {
		report.Score += riskDataLoss
		report.Warnings = append(report.Warnings, fmt.Sprintf("migration %d (%s) involves potential data loss", step.Migration.Version, step.Migration.Name))
	}
	for _, factor := range step.Migration.RiskFactors {
		report.Score += riskPerFactor
		report.Warnings = append(report.Warnings, factor)
	}

	// Data loss only matters when there is data to lose.
	if step.Migration.DataLoss || len(step.Migration.RiskFactors) > 0 {
		if n := v.itemCount(database); n > 0 {
			report.Score += riskPopulatedDB
			report.Warnings = append(report.Warnings, fmt.Sprintf("store holds %d tracked items", n))
		}
	}

	return report
}

func (v *Validator) itemCount(database *sql.DB) int {
	var n int
	// gtd_items may not exist yet on an empty store.
	if err := database.QueryRow("SELECT COUNT(*) FROM gtd_items").Scan(&n); err != nil {
		return 0
	}
	return n
}

// postChecks are the schema-expressible invariants re-verified after every
// step. Each query returns one row per violation. Checks against tables
// that do not exist at the current version are skipped.
var postChecks = []struct {
	constraint string
	table      string // guard: skip when absent
	query      string
}{
	{
		constraint: "bounded energy level",
		table:      "gtd_items",
		query:      "SELECT id FROM gtd_items WHERE energy_level IS NOT NULL AND (energy_level < 1 OR energy_level > 5)",
	},
	{
		constraint: "completed_at consistency",
		table:      "gtd_items",
		query: `SELECT id FROM gtd_items
			WHERE (status = 'complete' AND completed_at IS NULL)
			   OR (status != 'complete' AND completed_at IS NOT NULL)`,
	},
	{
		constraint: "single accountable per item",
		table:      "item_stakeholders",
		query: `SELECT item_id FROM item_stakeholders
			WHERE raci_role = 'accountable'
			GROUP BY item_id HAVING COUNT(*) > 1`,
	},
	{
		constraint: "unique context names",
		table:      "contexts",
		query:      "SELECT name FROM contexts GROUP BY name HAVING COUNT(*) > 1",
	},
	{
		constraint: "bounded project nesting",
		table:      "gtd_items",
		query: `WITH RECURSIVE depth(id, lvl) AS (
				SELECT id, 1 FROM gtd_items WHERE project_id IS NULL
				UNION ALL
				SELECT i.id, d.lvl + 1 FROM gtd_items i
				JOIN depth d ON i.project_id = d.id
				WHERE d.lvl <= 4
			)
			SELECT id FROM depth WHERE lvl > 3`,
	},
	{
		// The depth walk above seeds from roots, so rows whose parent
		// chain loops back on itself never appear in it. Any row not
		// reachable from a root is in or under such a loop.
		constraint: "acyclic project links",
		table:      "gtd_items",
		query: `WITH RECURSIVE reachable(id) AS (
				SELECT id FROM gtd_items WHERE project_id IS NULL
				UNION
				SELECT i.id FROM gtd_items i
				JOIN reachable r ON i.project_id = r.id
			)
			SELECT id FROM gtd_items WHERE id NOT IN (SELECT id FROM reachable)`,
	},
}

// VerifyPostconditions re-checks all declared schema constraints and the
// schema-expressible domain invariants. A non-empty result is treated as
// step failure and triggers a restore, including violations that predate
// the step: pre-existing bad data is fatal rather than warned about.
func (v *Validator) VerifyPostconditions(database *sql.DB) ([]ConstraintViolation, error) {
	var violations []ConstraintViolation

	fkViolations, err := v.foreignKeyCheck(database)
	if err != nil {
		return nil, err
	}
	violations = append(violations, fkViolations...)

	for _, check := range postChecks {
		exists, err := tableExists(database, check.table)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}

		rows, err := database.Query(check.query)
		if err != nil {
			// Columns added by later migrations are absent at earlier
			// versions; skip checks the current schema cannot express.
			if strings.Contains(err.Error(), "no such column") {
				continue
			}
			return nil, fmt.Errorf("postcondition query failed (%s): %w", check.constraint, err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan violation row: %w", err)
			}
			violations = append(violations, ConstraintViolation{
				Constraint: check.constraint,
				Detail:     id,
			})
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
	}

	return violations, nil
}

func (v *Validator) foreignKeyCheck(database *sql.DB) ([]ConstraintViolation, error) {
	rows, err := database.Query("PRAGMA foreign_key_check")
	if err != nil {
		return nil, fmt.Errorf("foreign key check failed: %w", err)
	}
	defer rows.Close()

	var violations []ConstraintViolation
	for rows.Next() {
		var table string
		var rowid sql.NullInt64
		var parent string
		var fkid int
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key violation: %w", err)
		}
		violations = append(violations, ConstraintViolation{
			Constraint: "foreign key integrity",
			Detail:     fmt.Sprintf("%s row %d references missing %s", table, rowid.Int64, parent),
		})
	}
	return violations, rows.Err()
}

func tableExists(database *sql.DB, name string) (bool, error) {
	var n int
	err := database.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return n > 0, nil
}
