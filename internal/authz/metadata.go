package authz

import (
	"context"

	"github.com/google/uuid"
)

// Tenant is the top-level authorization domain. The optional rights check
// script refines the tenant-wide decision for every entity and right.
type Tenant struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	RightsCheckScript string    `json:"rightsCheckScript"`
}

// EntityMetadata describes the policy scripts bound to one entity type within
// one application namespace.
type EntityMetadata struct {
	Application        string `json:"application"`
	Entity             string `json:"entity"`
	RightsCheckScript  string `json:"rightsCheckScript"`
	StateAllowedScript string `json:"stateAllowedScript"`
}

// MetadataProvider resolves authorization metadata. Implementations return
// (nil, nil) when the tenant or entity is unknown; the gate turns that into
// its not-found outcome, distinct from a denial.
type MetadataProvider interface {
	TenantByID(ctx context.Context, tenantID uuid.UUID) (*Tenant, error)
	EntityByTenantAndIdentifier(ctx context.Context, tenantID uuid.UUID, entity string) (*EntityMetadata, error)
}
