// Package secondary defines the persistence contracts consumed by callers
// of the repository layer. The protocol front-end depends on these
// interfaces; the repositories never depend on its request shapes.
package secondary

import (
	"context"
	"time"

	"github.com/example/gtdstore/internal/models"
)

// Repository is the generic CRUD contract every entity repository
// implements. Create and Update run the structural validation hook and
// then the business-rule hook, in that order, inside one transaction; a
// failure in either leaves the store unchanged.
type Repository[T any, F any] interface {
	Create(ctx context.Context, entity *T) error
	Get(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter F) ([]*T, error)
}

// ItemFilter narrows item listings.
type ItemFilter struct {
	Status    string
	Type      string
	ProjectID string
	ContextID string
}

// ItemRepository is the tracked-item contract: generic CRUD plus the
// lifecycle transition and workflow queries.
type ItemRepository interface {
	Repository[models.Item, ItemFilter]

	// ChangeStatus runs the lifecycle state machine. Entry into complete
	// sets CompletedAt as a side effect; re-opening clears it.
	ChangeStatus(ctx context.Context, id, newStatus string) (*models.Item, error)

	// LinkContext and UnlinkContext manage the action<->context relation.
	LinkContext(ctx context.Context, itemID, contextID string) error
	UnlinkContext(ctx context.Context, itemID, contextID string) error

	// Workflow queries.
	ListNextActions(ctx context.Context) ([]*models.Item, error)
	ListByEnergy(ctx context.Context, min, max int) ([]*models.Item, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*models.Item, error)
}

// ContextFilter narrows context listings.
type ContextFilter struct {
	Name string
}

// ContextRepository is the context contract.
type ContextRepository interface {
	Repository[models.Context, ContextFilter]
	FindByName(ctx context.Context, name string) (*models.Context, error)
}

// StakeholderFilter narrows stakeholder listings.
type StakeholderFilter struct {
	OrganizationID string
}

// StakeholderRepository is the stakeholder contract.
type StakeholderRepository interface {
	Repository[models.Stakeholder, StakeholderFilter]
	FindByContact(ctx context.Context, contact string) (*models.Stakeholder, error)
}

// OrganizationFilter narrows organization listings.
type OrganizationFilter struct {
	Type string
}

// OrganizationRepository is the organization contract.
type OrganizationRepository interface {
	Repository[models.Organization, OrganizationFilter]
}

// AssignmentRepository manages the RACI relation. The relation is keyed by
// (item, stakeholder, role), so it does not fit the generic id-based
// contract.
type AssignmentRepository interface {
	Assign(ctx context.Context, itemID, stakeholderID, role string) error
	Remove(ctx context.Context, itemID, stakeholderID, role string) error
	ListByItem(ctx context.Context, itemID string) ([]*models.Assignment, error)
	ListByItemAndRole(ctx context.Context, itemID, role string) ([]*models.Assignment, error)
}
