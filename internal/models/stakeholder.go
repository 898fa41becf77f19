package models

import "time"

// Stakeholder represents a person referenced by accountability assignments.
// Stakeholders are independently owned; deleting an item never deletes them.
type Stakeholder struct {
	ID             string
	Name           string
	Contact        string
	OrganizationID string
	CreatedAt      time.Time
}

// Organization groups stakeholders by affiliation.
type Organization struct {
	ID          string
	Name        string
	Type        string
	Description string
	CreatedAt   time.Time
}

// Organization type constants
const (
	OrgTypeInternal = "internal"
	OrgTypeCustomer = "customer"
	OrgTypePartner  = "partner"
	OrgTypeOther    = "other"
)

// OrganizationTypes lists all valid organization types.
var OrganizationTypes = []string{OrgTypeInternal, OrgTypeCustomer, OrgTypePartner, OrgTypeOther}
