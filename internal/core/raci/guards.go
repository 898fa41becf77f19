// Package raci contains the pure business logic for accountability
// assignments. The single-accountable rule is evaluated against counts
// queried inside the writing transaction, never against in-memory state.
package raci

import (
	"fmt"

	"github.com/example/gtdstore/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// ValidRole reports whether role is one of the RACI roles.
func ValidRole(role string) bool {
	for _, r := range models.RACIRoles {
		if r == role {
			return true
		}
	}
	return false
}

// AssignContext provides context for assignment-creation guards, filled from
// the writing transaction's view of the store.
type AssignContext struct {
	ItemID           string
	StakeholderID    string
	Role             string
	AccountableCount int  // existing accountable assignments for the item, excluding this stakeholder
	DuplicateRole    bool // this stakeholder already holds this role on the item
}

// CanAssign evaluates whether a RACI assignment can be created.
// Rules:
// - role must be a known RACI role
// - no duplicate (item, stakeholder, role) triple
// - at most one accountable stakeholder per item
func CanAssign(ctx AssignContext) GuardResult {
	if !ValidRole(ctx.Role) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown RACI role %q", ctx.Role),
		}
	}
	if ctx.DuplicateRole {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("stakeholder %s already holds role %s on item %s", ctx.StakeholderID, ctx.Role, ctx.ItemID),
		}
	}
	if ctx.Role == models.RoleAccountable && ctx.AccountableCount > 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("item %s already has an accountable stakeholder", ctx.ItemID),
		}
	}
	return GuardResult{Allowed: true}
}

// RemoveContext provides context for assignment-removal guards.
type RemoveContext struct {
	ItemID           string
	Role             string
	ItemStatus       string
	AccountableCount int // accountable assignments for the item, including the one being removed
}

// CanRemove evaluates whether a RACI assignment can be removed.
// Rules:
// - removing the last accountable assignment is only allowed while the
//   item is still in inbox
func CanRemove(ctx RemoveContext) GuardResult {
	if ctx.Role == models.RoleAccountable &&
		ctx.AccountableCount <= 1 &&
		ctx.ItemStatus != models.StatusInbox {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("item %s is %s and must keep an accountable stakeholder", ctx.ItemID, ctx.ItemStatus),
		}
	}
	return GuardResult{Allowed: true}
}
