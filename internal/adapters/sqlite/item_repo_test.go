package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/gtdstore/internal/adapters/sqlite"
	"github.com/example/gtdstore/internal/models"
	"github.com/example/gtdstore/internal/ports/secondary"
)

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func TestItemRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	it := &models.Item{
		Title: "Capture meeting notes",
		Type:  models.ItemTypeAction,
	}
	if err := repo.Create(ctx, it); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if it.ID == "" {
		t.Fatal("expected a generated ID")
	}

	retrieved, err := repo.Get(ctx, it.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retrieved.Status != models.StatusInbox {
		t.Errorf("expected status 'inbox', got '%s'", retrieved.Status)
	}
	if retrieved.Title != "Capture meeting notes" {
		t.Errorf("expected title 'Capture meeting notes', got '%s'", retrieved.Title)
	}
	if retrieved.CompletedAt != nil {
		t.Error("expected nil completed_at on a fresh item")
	}
}

func TestItemRepository_Create_EnergyOutOfBounds(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	it := &models.Item{
		Title:       "High intensity task",
		Type:        models.ItemTypeAction,
		EnergyLevel: intPtr(6),
	}
	err := repo.Create(ctx, it)
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// The store must be unchanged.
	items, err := repo.List(ctx, secondary.ItemFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty store after rejected create, got %d items", len(items))
	}
}

func TestItemRepository_Create_EmptyTitle(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &models.Item{Title: "   ", Type: models.ItemTypeAction})
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestItemRepository_Get_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)

	_, err := repo.Get(context.Background(), "NOPE")
	if !models.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestItemRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	seedItem(t, db, "ITEM-001", "Old title", "action", "inbox")

	it, _ := repo.Get(ctx, "ITEM-001")
	it.Title = "New title"
	it.EnergyLevel = intPtr(3)
	if err := repo.Update(ctx, it); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retrieved, _ := repo.Get(ctx, "ITEM-001")
	if retrieved.Title != "New title" {
		t.Errorf("expected title 'New title', got '%s'", retrieved.Title)
	}
	if retrieved.EnergyLevel == nil || *retrieved.EnergyLevel != 3 {
		t.Errorf("expected energy level 3, got %v", retrieved.EnergyLevel)
	}
}

func TestItemRepository_Update_CompleteIsFrozen(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	seedItem(t, db, "ITEM-001", "Done task", "action", "complete")

	it, _ := repo.Get(ctx, "ITEM-001")
	it.Title = "Rewriting history"
	err := repo.Update(ctx, it)
	if !models.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}

	retrieved, _ := repo.Get(ctx, "ITEM-001")
	if retrieved.Title != "Done task" {
		t.Errorf("expected stored title unchanged, got '%s'", retrieved.Title)
	}
}

func TestItemRepository_ChangeStatus_OrganizeRequiresContext(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	seedItem(t, db, "ITEM-001", "Inbox task", "action", "inbox")
	seedContext(t, db, "CTX-001", "@office")

	// No contexts linked yet: organizing must fail and leave the item alone.
	_, err := repo.ChangeStatus(ctx, "ITEM-001", models.StatusOrganized)
	if !models.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	stored, _ := repo.Get(ctx, "ITEM-001")
	if stored.Status != models.StatusInbox {
		t.Errorf("expected status still 'inbox', got '%s'", stored.Status)
	}

	// With a context linked the same transition succeeds.
	if err := repo.LinkContext(ctx, "ITEM-001", "CTX-001"); err != nil {
		t.Fatalf("LinkContext failed: %v", err)
	}
	updated, err := repo.ChangeStatus(ctx, "ITEM-001", models.StatusOrganized)
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if updated.Status != models.StatusOrganized {
		t.Errorf("expected status 'organized', got '%s'", updated.Status)
	}
}

func TestItemRepository_ChangeStatus_IllegalTransition(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	seedItem(t, db, "ITEM-001", "Inbox task", "action", "inbox")

	_, err := repo.ChangeStatus(ctx, "ITEM-001", models.StatusReviewing)
	if !models.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestItemRepository_ChangeStatus_CompleteAndReopen(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	seedItem(t, db, "ITEM-001", "Ship release", "action", "organized")

	completed, err := repo.ChangeStatus(ctx, "ITEM-001", models.StatusComplete)
	if err != nil {
		t.Fatalf("ChangeStatus to complete failed: %v", err)
	}
	if completed.CompletedAt == nil {
		t.Fatal("expected completed_at to be stamped")
	}

	// A complete item only re-opens to organized, which clears the stamp.
	_, err = repo.ChangeStatus(ctx, "ITEM-001", models.StatusSomeday)
	if !models.IsConflict(err) {
		t.Fatalf("expected conflict error for complete -> someday, got %v", err)
	}

	reopened, err := repo.ChangeStatus(ctx, "ITEM-001", models.StatusOrganized)
	if err != nil {
		t.Fatalf("ChangeStatus to organized failed: %v", err)
	}
	if reopened.CompletedAt != nil {
		t.Error("expected completed_at cleared after re-open")
	}
}

func TestItemRepository_ProjectNesting_DepthLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	// Build a three-level chain: P1 <- P2 <- P3.
	if err := repo.Create(ctx, &models.Item{ID: "P1", Title: "Root", Type: models.ItemTypeProject}); err != nil {
		t.Fatalf("Create P1 failed: %v", err)
	}
	if err := repo.Create(ctx, &models.Item{ID: "P2", Title: "Middle", Type: models.ItemTypeProject, ProjectID: "P1"}); err != nil {
		t.Fatalf("Create P2 failed: %v", err)
	}
	if err := repo.Create(ctx, &models.Item{ID: "P3", Title: "Leaf", Type: models.ItemTypeProject, ProjectID: "P2"}); err != nil {
		t.Fatalf("Create P3 failed: %v", err)
	}

	// A fourth level is out of bounds.
	err := repo.Create(ctx, &models.Item{ID: "P4", Title: "Too deep", Type: models.ItemTypeProject, ProjectID: "P3"})
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error for depth 4, got %v", err)
	}
	if _, getErr := repo.Get(ctx, "P4"); !models.IsNotFound(getErr) {
		t.Errorf("expected P4 absent after rejected create, got %v", getErr)
	}
}

func TestItemRepository_ProjectNesting_ParentMustBeProject(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	seedItem(t, db, "ACT-001", "An action", "action", "inbox")

	err := repo.Create(ctx, &models.Item{Title: "Child", Type: models.ItemTypeAction, ProjectID: "ACT-001"})
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestItemRepository_LinkContext_ProjectRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	seedItem(t, db, "PROJ-001", "A project", "project", "inbox")
	seedContext(t, db, "CTX-001", "@office")

	err := repo.LinkContext(ctx, "PROJ-001", "CTX-001")
	if !models.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestItemRepository_LinkContext_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	seedItem(t, db, "ITEM-001", "A task", "action", "inbox")
	seedContext(t, db, "CTX-001", "@office")
	seedItemContext(t, db, "ITEM-001", "CTX-001")

	err := repo.LinkContext(ctx, "ITEM-001", "CTX-001")
	if !models.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestItemRepository_List_Filters(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	seedItem(t, db, "ITEM-001", "Inbox action", "action", "inbox")
	seedItem(t, db, "ITEM-002", "Organized action", "action", "organized")
	seedItem(t, db, "PROJ-001", "A project", "project", "organized")
	seedContext(t, db, "CTX-001", "@office")
	seedItemContext(t, db, "ITEM-002", "CTX-001")

	byStatus, err := repo.List(ctx, secondary.ItemFilter{Status: models.StatusOrganized})
	if err != nil {
		t.Fatalf("List by status failed: %v", err)
	}
	if len(byStatus) != 2 {
		t.Errorf("expected 2 organized items, got %d", len(byStatus))
	}

	byContext, err := repo.List(ctx, secondary.ItemFilter{ContextID: "CTX-001"})
	if err != nil {
		t.Fatalf("List by context failed: %v", err)
	}
	if len(byContext) != 1 || byContext[0].ID != "ITEM-002" {
		t.Errorf("expected only ITEM-002 for context filter, got %v", byContext)
	}
}

func TestItemRepository_ListNextActions(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	seedItem(t, db, "ITEM-001", "Organized action", "action", "organized")
	seedItem(t, db, "ITEM-002", "Inbox action", "action", "inbox")
	seedItem(t, db, "PROJ-001", "Organized project", "project", "organized")

	next, err := repo.ListNextActions(ctx)
	if err != nil {
		t.Fatalf("ListNextActions failed: %v", err)
	}
	if len(next) != 1 || next[0].ID != "ITEM-001" {
		t.Errorf("expected only ITEM-001 as next action, got %v", next)
	}
}

func TestItemRepository_ListByEnergy(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	low := &models.Item{ID: "LOW", Title: "Low energy", Type: models.ItemTypeAction, Status: models.StatusOrganized, EnergyLevel: intPtr(1)}
	high := &models.Item{ID: "HIGH", Title: "High energy", Type: models.ItemTypeAction, Status: models.StatusOrganized, EnergyLevel: intPtr(5)}
	for _, it := range []*models.Item{low, high} {
		if err := repo.Create(ctx, it); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	items, err := repo.ListByEnergy(ctx, 4, 5)
	if err != nil {
		t.Fatalf("ListByEnergy failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "HIGH" {
		t.Errorf("expected only HIGH in range 4-5, got %v", items)
	}
}

func TestItemRepository_ListOverdue(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	past := &models.Item{ID: "PAST", Title: "Overdue", Type: models.ItemTypeAction, Status: models.StatusOrganized, DueDate: timePtr(now.Add(-24 * time.Hour))}
	future := &models.Item{ID: "FUTURE", Title: "Upcoming", Type: models.ItemTypeAction, Status: models.StatusOrganized, DueDate: timePtr(now.Add(24 * time.Hour))}
	for _, it := range []*models.Item{past, future} {
		if err := repo.Create(ctx, it); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	overdue, err := repo.ListOverdue(ctx, now)
	if err != nil {
		t.Fatalf("ListOverdue failed: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != "PAST" {
		t.Errorf("expected only PAST overdue, got %v", overdue)
	}
}

func TestItemRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewItemRepository(db)
	ctx := context.Background()

	seedItem(t, db, "ITEM-001", "Doomed", "action", "inbox")

	if err := repo.Delete(ctx, "ITEM-001"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete(ctx, "ITEM-001"); !models.IsNotFound(err) {
		t.Fatalf("expected not found error on second delete, got %v", err)
	}
}
