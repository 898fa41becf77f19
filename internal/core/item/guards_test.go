package item

import (
	"strings"
	"testing"
	"time"

	"github.com/example/gtdstore/internal/models"
)

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func TestValidateFields(t *testing.T) {
	tests := []struct {
		name        string
		item        models.Item
		wantAllowed bool
	}{
		{
			name:        "valid action",
			item:        models.Item{Title: "Write report", Type: models.ItemTypeAction, Status: models.StatusInbox},
			wantAllowed: true,
		},
		{
			name:        "valid action with energy and due date",
			item:        models.Item{Title: "Write report", Type: models.ItemTypeAction, Status: models.StatusOrganized, EnergyLevel: intPtr(3), DueDate: timePtr(time.Now())},
			wantAllowed: true,
		},
		{
			name:        "valid project with success criteria",
			item:        models.Item{Title: "Launch", Type: models.ItemTypeProject, Status: models.StatusInbox, SuccessCriteria: "Shipped to production"},
			wantAllowed: true,
		},
		{
			name:        "empty title",
			item:        models.Item{Title: "  ", Type: models.ItemTypeAction, Status: models.StatusInbox},
			wantAllowed: false,
		},
		{
			name:        "title too long",
			item:        models.Item{Title: strings.Repeat("x", MaxTitleLen+1), Type: models.ItemTypeAction, Status: models.StatusInbox},
			wantAllowed: false,
		},
		{
			name:        "unknown type",
			item:        models.Item{Title: "Thing", Type: "epic", Status: models.StatusInbox},
			wantAllowed: false,
		},
		{
			name:        "unknown status",
			item:        models.Item{Title: "Thing", Type: models.ItemTypeAction, Status: "archived"},
			wantAllowed: false,
		},
		{
			name:        "energy below bound",
			item:        models.Item{Title: "Thing", Type: models.ItemTypeAction, Status: models.StatusInbox, EnergyLevel: intPtr(0)},
			wantAllowed: false,
		},
		{
			name:        "energy above bound",
			item:        models.Item{Title: "Thing", Type: models.ItemTypeAction, Status: models.StatusInbox, EnergyLevel: intPtr(6)},
			wantAllowed: false,
		},
		{
			name:        "project with energy level",
			item:        models.Item{Title: "Launch", Type: models.ItemTypeProject, Status: models.StatusInbox, EnergyLevel: intPtr(2)},
			wantAllowed: false,
		},
		{
			name:        "project with due date",
			item:        models.Item{Title: "Launch", Type: models.ItemTypeProject, Status: models.StatusInbox, DueDate: timePtr(time.Now())},
			wantAllowed: false,
		},
		{
			name:        "action with success criteria",
			item:        models.Item{Title: "Thing", Type: models.ItemTypeAction, Status: models.StatusInbox, SuccessCriteria: "Done well"},
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateFields(&tt.item)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason: %s)", result.Allowed, tt.wantAllowed, result.Reason)
			}
		})
	}
}

func TestCanChangeStatus(t *testing.T) {
	tests := []struct {
		name        string
		ctx         TransitionContext
		wantAllowed bool
	}{
		{
			name:        "inbox to clarified",
			ctx:         TransitionContext{From: models.StatusInbox, To: models.StatusClarified},
			wantAllowed: true,
		},
		{
			name:        "inbox to organized with context",
			ctx:         TransitionContext{From: models.StatusInbox, To: models.StatusOrganized, ContextCount: 1},
			wantAllowed: true,
		},
		{
			name:        "inbox to organized without context",
			ctx:         TransitionContext{From: models.StatusInbox, To: models.StatusOrganized, ContextCount: 0},
			wantAllowed: false,
		},
		{
			name:        "inbox to reviewing is illegal",
			ctx:         TransitionContext{From: models.StatusInbox, To: models.StatusReviewing},
			wantAllowed: false,
		},
		{
			name:        "inbox to complete is illegal",
			ctx:         TransitionContext{From: models.StatusInbox, To: models.StatusComplete},
			wantAllowed: false,
		},
		{
			name:        "organized to complete",
			ctx:         TransitionContext{From: models.StatusOrganized, To: models.StatusComplete},
			wantAllowed: true,
		},
		{
			name:        "reviewing back to organized",
			ctx:         TransitionContext{From: models.StatusReviewing, To: models.StatusOrganized},
			wantAllowed: true,
		},
		{
			name:        "someday back to clarified",
			ctx:         TransitionContext{From: models.StatusSomeday, To: models.StatusClarified},
			wantAllowed: true,
		},
		{
			name:        "complete re-opens to organized",
			ctx:         TransitionContext{From: models.StatusComplete, To: models.StatusOrganized},
			wantAllowed: true,
		},
		{
			name:        "complete to someday is illegal",
			ctx:         TransitionContext{From: models.StatusComplete, To: models.StatusSomeday},
			wantAllowed: false,
		},
		{
			name:        "self transition is a no-op",
			ctx:         TransitionContext{From: models.StatusClarified, To: models.StatusClarified},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanChangeStatus(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason: %s)", result.Allowed, tt.wantAllowed, result.Reason)
			}
		})
	}
}

func TestCanMutate(t *testing.T) {
	tests := []struct {
		name        string
		ctx         MutationContext
		wantAllowed bool
	}{
		{
			name:        "active item is mutable",
			ctx:         MutationContext{StoredStatus: models.StatusOrganized, NewStatus: models.StatusOrganized},
			wantAllowed: true,
		},
		{
			name:        "complete item is frozen",
			ctx:         MutationContext{StoredStatus: models.StatusComplete, NewStatus: models.StatusComplete},
			wantAllowed: false,
		},
		{
			name:        "complete item may re-open",
			ctx:         MutationContext{StoredStatus: models.StatusComplete, NewStatus: models.StatusOrganized},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanMutate(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
		})
	}
}

func TestCanSetParent(t *testing.T) {
	tests := []struct {
		name        string
		ctx         ParentContext
		wantAllowed bool
	}{
		{
			name:        "first level under a root project",
			ctx:         ParentContext{ItemID: "A", ParentID: "P1", ParentType: models.ItemTypeProject, AncestorChain: []string{"P1"}},
			wantAllowed: true,
		},
		{
			name:        "second level",
			ctx:         ParentContext{ItemID: "A", ParentID: "P2", ParentType: models.ItemTypeProject, AncestorChain: []string{"P2", "P1"}},
			wantAllowed: true,
		},
		{
			name:        "third level exceeds the bound",
			ctx:         ParentContext{ItemID: "A", ParentID: "P3", ParentType: models.ItemTypeProject, AncestorChain: []string{"P3", "P2", "P1"}},
			wantAllowed: false,
		},
		{
			name:        "parent is not a project",
			ctx:         ParentContext{ItemID: "A", ParentID: "ACT-1", ParentType: models.ItemTypeAction, AncestorChain: []string{"ACT-1"}},
			wantAllowed: false,
		},
		{
			name:        "self in ancestor chain",
			ctx:         ParentContext{ItemID: "P1", ParentID: "P2", ParentType: models.ItemTypeProject, AncestorChain: []string{"P2", "P1"}},
			wantAllowed: false,
		},
		{
			name:        "walk aborted on cycle",
			ctx:         ParentContext{ItemID: "A", ParentID: "P1", ParentType: models.ItemTypeProject, CycleDetected: true},
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanSetParent(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason: %s)", result.Allowed, tt.wantAllowed, result.Reason)
			}
		})
	}
}
