package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/gtdstore/internal/adapters/sqlite"
	"github.com/example/gtdstore/internal/models"
	"github.com/example/gtdstore/internal/ports/secondary"
)

func TestOrganizationRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewOrganizationRepository(db)
	ctx := context.Background()

	o := &models.Organization{Name: "Acme", Type: models.OrgTypeCustomer}
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	retrieved, err := repo.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retrieved.Type != models.OrgTypeCustomer {
		t.Errorf("expected type 'customer', got '%s'", retrieved.Type)
	}
}

func TestOrganizationRepository_Create_UnknownType(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewOrganizationRepository(db)

	err := repo.Create(context.Background(), &models.Organization{Name: "Acme", Type: "cartel"})
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOrganizationRepository_List_ByType(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewOrganizationRepository(db)
	ctx := context.Background()

	seedOrganization(t, db, "ORG-001", "Internal Team")
	if err := repo.Create(ctx, &models.Organization{ID: "ORG-002", Name: "BigCorp", Type: models.OrgTypeCustomer}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	customers, err := repo.List(ctx, secondary.OrganizationFilter{Type: models.OrgTypeCustomer})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(customers) != 1 || customers[0].ID != "ORG-002" {
		t.Errorf("expected only ORG-002 as customer, got %v", customers)
	}
}

func TestOrganizationRepository_Delete_DetachesStakeholders(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewOrganizationRepository(db)
	ctx := context.Background()

	seedOrganization(t, db, "ORG-001", "Acme")
	seedStakeholder(t, db, "STK-001", "Alice")
	if _, err := db.Exec("UPDATE stakeholders SET organization_id = 'ORG-001' WHERE id = 'STK-001'"); err != nil {
		t.Fatalf("failed to attach organization: %v", err)
	}

	if err := repo.Delete(ctx, "ORG-001"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	stakeholders := sqlite.NewStakeholderRepository(db)
	s, err := stakeholders.Get(ctx, "STK-001")
	if err != nil {
		t.Fatalf("Get stakeholder failed: %v", err)
	}
	if s.OrganizationID != "" {
		t.Errorf("expected stakeholder detached, got organization '%s'", s.OrganizationID)
	}
}
