package migrate

import (
	"database/sql"
	"errors"
	"testing"
)

func noop(tx *sql.Tx) error { return nil }

func testMigrations(n int) []Migration {
	var migrations []Migration
	for v := 1; v <= n; v++ {
		migrations = append(migrations, Migration{
			Version: v,
			Name:    "step",
			Up:      noop,
			Down:    noop,
		})
	}
	return migrations
}

func TestNewCatalog_RejectsGaps(t *testing.T) {
	_, err := NewCatalog([]Migration{
		{Version: 1, Name: "one", Up: noop, Down: noop},
		{Version: 3, Name: "three", Up: noop, Down: noop},
	})
	if err == nil {
		t.Fatal("expected error for gapped versions")
	}
}

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]Migration{
		{Version: 1, Name: "one", Up: noop, Down: noop},
		{Version: 1, Name: "one again", Up: noop, Down: noop},
	})
	if err == nil {
		t.Fatal("expected error for duplicate versions")
	}
}

func TestCatalog_Steps_Upgrade(t *testing.T) {
	catalog, err := NewCatalog(testMigrations(5))
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	steps, err := catalog.Steps(2, 5)
	if err != nil {
		t.Fatalf("Steps failed: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
	for i, want := range []int{3, 4, 5} {
		if steps[i].Migration.Version != want {
			t.Errorf("step %d version = %d, want %d", i, steps[i].Migration.Version, want)
		}
		if steps[i].Direction != DirectionUp {
			t.Errorf("step %d direction = %v, want up", i, steps[i].Direction)
		}
		if steps[i].TargetVersion != want {
			t.Errorf("step %d target = %d, want %d", i, steps[i].TargetVersion, want)
		}
	}
}

func TestCatalog_Steps_Downgrade(t *testing.T) {
	catalog, err := NewCatalog(testMigrations(5))
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	steps, err := catalog.Steps(5, 2)
	if err != nil {
		t.Fatalf("Steps failed: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
	for i, want := range []int{5, 4, 3} {
		if steps[i].Migration.Version != want {
			t.Errorf("step %d version = %d, want %d", i, steps[i].Migration.Version, want)
		}
		if steps[i].Direction != DirectionDown {
			t.Errorf("step %d direction = %v, want down", i, steps[i].Direction)
		}
		if steps[i].TargetVersion != want-1 {
			t.Errorf("step %d target = %d, want %d", i, steps[i].TargetVersion, want-1)
		}
	}
}

func TestCatalog_Steps_NoOp(t *testing.T) {
	catalog, _ := NewCatalog(testMigrations(3))

	steps, err := catalog.Steps(2, 2)
	if err != nil {
		t.Fatalf("Steps failed: %v", err)
	}
	if len(steps) != 0 {
		t.Errorf("expected no steps, got %d", len(steps))
	}
}

func TestCatalog_Steps_UnknownTarget(t *testing.T) {
	catalog, _ := NewCatalog(testMigrations(3))

	_, err := catalog.Steps(0, 4)
	if !errors.Is(err, ErrUnknownVersion) {
		t.Fatalf("expected ErrUnknownVersion, got %v", err)
	}
	_, err = catalog.Steps(0, -1)
	if !errors.Is(err, ErrUnknownVersion) {
		t.Fatalf("expected ErrUnknownVersion for negative target, got %v", err)
	}
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	if catalog.Latest() != 5 {
		t.Errorf("Latest() = %d, want 5", catalog.Latest())
	}

	steps, err := catalog.Steps(0, catalog.Latest())
	if err != nil {
		t.Fatalf("Steps failed: %v", err)
	}
	if len(steps) != 5 {
		t.Errorf("expected 5 steps to latest, got %d", len(steps))
	}
}
