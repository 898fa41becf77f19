package models

import "time"

// Assignment is the ternary RACI relation between an item and a stakeholder.
// An item has at most one assignment with RoleAccountable; once it leaves
// inbox it must have exactly one.
type Assignment struct {
	ItemID        string
	StakeholderID string
	Role          string
	CreatedAt     time.Time
}

// RACI role constants
const (
	RoleResponsible = "responsible"
	RoleAccountable = "accountable"
	RoleConsulted   = "consulted"
	RoleInformed    = "informed"
)

// RACIRoles lists all valid assignment roles.
var RACIRoles = []string{RoleResponsible, RoleAccountable, RoleConsulted, RoleInformed}
