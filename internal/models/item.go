// Package models contains domain types for gtdstore entities.
// SQL persistence lives in internal/adapters/sqlite/*.go
package models

import "time"

// Item represents a tracked item (action or project).
// The two variants share one shape discriminated by Type; the action-only
// fields (DueDate, EnergyLevel) and the project-only field
// (SuccessCriteria) are empty for the other variant.
type Item struct {
	ID              string
	Title           string
	Description     string
	Status          string
	Type            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
	ProjectID       string // parent project, empty for top-level items
	DueDate         *time.Time
	EnergyLevel     *int // 1..5 when set
	SuccessCriteria string
}

// Item lifecycle status constants
const (
	StatusInbox     = "inbox"
	StatusClarified = "clarified"
	StatusOrganized = "organized"
	StatusReviewing = "reviewing"
	StatusComplete  = "complete"
	StatusSomeday   = "someday"
)

// Item type constants
const (
	ItemTypeAction  = "action"
	ItemTypeProject = "project"
)

// IsAction reports whether the item is the action variant.
func (i *Item) IsAction() bool {
	return i.Type == ItemTypeAction
}

// IsProject reports whether the item is the project variant.
func (i *Item) IsProject() bool {
	return i.Type == ItemTypeProject
}
