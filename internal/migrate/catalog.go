// Package migrate contains the versioned schema-migration engine: the
// declarative catalog of migration steps, the integrity validator that
// brackets each step, and the engine that applies steps with backup and
// rollback safety.
package migrate

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownVersion is returned when a target version is not in the
// catalog. The engine aborts before touching any data.
var ErrUnknownVersion = errors.New("unknown schema version")

// Migration is one reversible transformation between two adjacent schema
// versions. The catalog is append-only: reordering or deleting a published
// step is forbidden once released.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
	Down    func(*sql.Tx) error

	// Static risk declarations consumed by the validator.
	DataLoss    bool
	RiskFactors []string
}

// Direction of a migration step.
type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
)

// Step is a catalog migration paired with the direction to run it in and
// the version the marker lands on afterwards.
type Step struct {
	Migration Migration
	Direction Direction
	// TargetVersion is the schema version after this step commits.
	TargetVersion int
}

// Run executes the step's operation on tx.
func (s Step) Run(tx *sql.Tx) error {
	if s.Direction == DirectionDown {
		return s.Migration.Down(tx)
	}
	return s.Migration.Up(tx)
}

// Catalog is the ordered, read-only list of published migrations.
type Catalog struct {
	byVersion map[int]Migration
	maxVer    int
}

// NewCatalog builds a catalog from migrations. Versions must form a
// continuous sequence starting at 1.
func NewCatalog(migrations []Migration) (*Catalog, error) {
	byVersion := make(map[int]Migration, len(migrations))
	versions := make([]int, 0, len(migrations))
	for _, m := range migrations {
		if _, dup := byVersion[m.Version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d", m.Version)
		}
		byVersion[m.Version] = m
		versions = append(versions, m.Version)
	}

	sort.Ints(versions)
	for i, v := range versions {
		if v != i+1 {
			return nil, fmt.Errorf("migration versions must be continuous from 1, got %v", versions)
		}
	}

	maxVer := 0
	if len(versions) > 0 {
		maxVer = versions[len(versions)-1]
	}
	return &Catalog{byVersion: byVersion, maxVer: maxVer}, nil
}

// Latest returns the highest published version.
func (c *Catalog) Latest() int {
	return c.maxVer
}

// Steps returns the ordered step sequence to move the store from current
// to target: ascending Up steps for an upgrade, descending Down steps for
// a downgrade. Fails with ErrUnknownVersion when target is outside the
// catalog's range (version 0 is the empty store).
func (c *Catalog) Steps(current, target int) ([]Step, error) {
	if target < 0 || target > c.maxVer {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, target)
	}
	if current < 0 || current > c.maxVer {
		return nil, fmt.Errorf("%w: current version %d", ErrUnknownVersion, current)
	}

	var steps []Step
	switch {
	case target > current:
		for v := current + 1; v <= target; v++ {
			steps = append(steps, Step{
				Migration:     c.byVersion[v],
				Direction:     DirectionUp,
				TargetVersion: v,
			})
		}
	case target < current:
		for v := current; v > target; v-- {
			steps = append(steps, Step{
				Migration:     c.byVersion[v],
				Direction:     DirectionDown,
				TargetVersion: v - 1,
			})
		}
	}
	return steps, nil
}
