package item

import (
	"fmt"
	"strings"

	"github.com/example/gtdstore/internal/models"
)

// Field length bounds, matching the stored schema.
const (
	MaxTitleLen           = 255
	MaxDescriptionLen     = 2000
	MaxSuccessCriteriaLen = 1000

	MinEnergyLevel = 1
	MaxEnergyLevel = 5

	// MaxProjectDepth bounds project nesting (P1 <- P2 <- P3 is the deepest
	// allowed chain).
	MaxProjectDepth = 3
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

// allow is the zero-friction success result.
func allow() GuardResult {
	return GuardResult{Allowed: true}
}

func deny(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// ValidateFields performs the structural checks on an item: required title,
// length bounds, known type and status, bounded energy level, and variant
// consistency (project-only fields on projects, action-only on actions).
func ValidateFields(it *models.Item) GuardResult {
	if strings.TrimSpace(it.Title) == "" {
		return deny("title cannot be empty")
	}
	if len(it.Title) > MaxTitleLen {
		return deny("title cannot exceed %d characters", MaxTitleLen)
	}
	if len(it.Description) > MaxDescriptionLen {
		return deny("description cannot exceed %d characters", MaxDescriptionLen)
	}
	if it.Type != models.ItemTypeAction && it.Type != models.ItemTypeProject {
		return deny("unknown item type %q", it.Type)
	}
	if !validStatus(it.Status) {
		return deny("unknown status %q", it.Status)
	}
	if it.EnergyLevel != nil && (*it.EnergyLevel < MinEnergyLevel || *it.EnergyLevel > MaxEnergyLevel) {
		return deny("energy level must be between %d and %d, got %d", MinEnergyLevel, MaxEnergyLevel, *it.EnergyLevel)
	}
	if it.IsProject() && it.EnergyLevel != nil {
		return deny("projects do not carry an energy level")
	}
	if it.IsProject() && it.DueDate != nil {
		return deny("projects do not carry a due date")
	}
	if it.IsAction() && it.SuccessCriteria != "" {
		return deny("actions do not carry success criteria")
	}
	if len(it.SuccessCriteria) > MaxSuccessCriteriaLen {
		return deny("success criteria cannot exceed %d characters", MaxSuccessCriteriaLen)
	}
	return allow()
}

// TransitionContext provides the cross-record facts a status transition
// guard needs. The repository fills it from the current transaction's view.
type TransitionContext struct {
	From         string
	To           string
	ContextCount int // contexts linked to the item
}

// CanChangeStatus evaluates a lifecycle transition.
// Rules:
// - the transition must be in the legal-transition table
// - leaving inbox for organized requires at least one linked context
func CanChangeStatus(ctx TransitionContext) GuardResult {
	if !CanTransition(ctx.From, ctx.To) {
		return deny("illegal transition %s -> %s", ctx.From, ctx.To)
	}
	if ctx.From == models.StatusInbox && ctx.To == models.StatusOrganized {
		// inbox items jump straight to organized only once they have a context
		if ctx.ContextCount == 0 {
			return deny("cannot organize an item with no contexts assigned")
		}
	}
	return allow()
}

// MutationContext provides context for the immutable-after-complete guard.
type MutationContext struct {
	StoredStatus string
	NewStatus    string
}

// CanMutate evaluates whether a field mutation on a stored item is allowed.
// Complete items are frozen; the only permitted write is the explicit
// re-open transition back to organized.
func CanMutate(ctx MutationContext) GuardResult {
	if ctx.StoredStatus != models.StatusComplete {
		return allow()
	}
	if ctx.NewStatus == models.StatusOrganized {
		return allow()
	}
	return deny("item is complete; only re-opening to organized is allowed")
}

// ParentContext provides context for the tree-depth guard. AncestorChain is
// the walk from the proposed parent up to the root, in order; CycleDetected
// is set when the walk revisits a node or exceeds the stored depth bound.
type ParentContext struct {
	ItemID        string
	ParentID      string
	ParentType    string
	AncestorChain []string
	CycleDetected bool
}

// CanSetParent evaluates a parentProjectId assignment.
// Rules:
// - parent must be a project
// - no cycles (fails closed when the walk-up aborted)
// - resulting nesting depth must not exceed MaxProjectDepth
func CanSetParent(ctx ParentContext) GuardResult {
	if ctx.ParentType != models.ItemTypeProject {
		return deny("parent %s is not a project", ctx.ParentID)
	}
	if ctx.CycleDetected {
		return deny("parent assignment would create a cycle")
	}
	for _, ancestor := range ctx.AncestorChain {
		if ancestor == ctx.ItemID {
			return deny("parent assignment would create a cycle")
		}
	}
	// The item sits one level below its parent; the parent's depth is the
	// chain length including the parent itself.
	if len(ctx.AncestorChain)+1 > MaxProjectDepth {
		return deny("project nesting depth cannot exceed %d", MaxProjectDepth)
	}
	return allow()
}

func validStatus(status string) bool {
	switch status {
	case models.StatusInbox, models.StatusClarified, models.StatusOrganized,
		models.StatusReviewing, models.StatusComplete, models.StatusSomeday:
		return true
	}
	return false
}
