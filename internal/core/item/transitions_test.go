package item

import (
	"testing"
	"time"

	"github.com/example/gtdstore/internal/models"
)

func TestInitialStatus(t *testing.T) {
	if got := InitialStatus(); got != models.StatusInbox {
		t.Errorf("InitialStatus() = %q, want %q", got, models.StatusInbox)
	}
}

func TestApplyTransition_CompleteStampsTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	result := ApplyTransition(models.StatusComplete, now)
	if result.NewStatus != models.StatusComplete {
		t.Errorf("NewStatus = %q, want %q", result.NewStatus, models.StatusComplete)
	}
	if result.CompletedAt == nil || !result.CompletedAt.Equal(now) {
		t.Errorf("CompletedAt = %v, want %v", result.CompletedAt, now)
	}
}

func TestApplyTransition_ReopenClearsTimestamp(t *testing.T) {
	result := ApplyTransition(models.StatusOrganized, time.Now())
	if result.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil", result.CompletedAt)
	}
}

func TestCanTransition_UnknownStatusHasNoExits(t *testing.T) {
	if CanTransition("archived", models.StatusInbox) {
		t.Error("expected no transitions out of an unknown status")
	}
}
