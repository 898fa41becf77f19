// Package item contains the pure business logic for tracked items.
// Guards are pure functions that evaluate preconditions without side effects.
package item

import (
	"time"

	"github.com/example/gtdstore/internal/models"
)

// allowedTransitions is the legal-transition table for the item lifecycle.
// complete only re-opens to organized; every other exit from complete is
// rejected by the immutability guard.
var allowedTransitions = map[string][]string{
	models.StatusInbox:     {models.StatusClarified, models.StatusOrganized, models.StatusSomeday},
	models.StatusClarified: {models.StatusOrganized, models.StatusSomeday},
	models.StatusOrganized: {models.StatusReviewing, models.StatusComplete, models.StatusSomeday},
	models.StatusReviewing: {models.StatusOrganized, models.StatusComplete},
	models.StatusSomeday:   {models.StatusClarified, models.StatusOrganized},
	models.StatusComplete:  {models.StatusOrganized},
}

// InitialStatus returns the status every newly captured item starts in.
func InitialStatus() string {
	return models.StatusInbox
}

// CanTransition reports whether from -> to is in the legal-transition table.
// Self transitions are allowed as no-ops.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionResult captures a status change plus its timestamp side effects.
// CompletedAt is set on entry into complete and cleared on re-open; it is
// never supplied by the caller.
type TransitionResult struct {
	NewStatus   string
	CompletedAt *time.Time
}

// ApplyTransition computes the timestamp side effects of a legal transition.
// The caller passes the current time to keep this testable. A nil
// CompletedAt in the result means the column is cleared, which is how
// re-opening a complete item drops its completion timestamp.
func ApplyTransition(to string, now time.Time) TransitionResult {
	result := TransitionResult{NewStatus: to}
	if to == models.StatusComplete {
		result.CompletedAt = &now
	}
	return result
}
