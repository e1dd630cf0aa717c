// Package metadata resolves tenants and their entity descriptors. The static
// provider serves deployments whose tenant layout ships with the process
// configuration; the cached decorator fronts any provider with a typed cache.
package metadata

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/recordhub/recordhub/internal/authz"
)

// EntityConfig describes one entity of a tenant in configuration.
type EntityConfig struct {
	Application       string `json:"application" yaml:"application" conf:"application"`
	Entity            string `json:"entity" yaml:"entity" conf:"entity"`
	RightsCheckScript string `json:"rights_check_script" yaml:"rights_check_script" conf:"rights_check_script"`
	StateAllowedScript string `json:"state_allowed_script" yaml:"state_allowed_script" conf:"state_allowed_script"`
}

// TenantConfig describes one tenant in configuration.
type TenantConfig struct {
	ID                string         `json:"id" yaml:"id" conf:"id"`
	Name              string         `json:"name" yaml:"name" conf:"name"`
	RightsCheckScript string         `json:"rights_check_script" yaml:"rights_check_script" conf:"rights_check_script"`
	Entities          []EntityConfig `json:"entities" yaml:"entities" conf:"entities"`
}

type tenantEntry struct {
	tenant   authz.Tenant
	entities map[string]authz.EntityMetadata
}

// StaticProvider serves metadata from an in-memory table built at startup.
type StaticProvider struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]*tenantEntry
}

func NewStaticProvider(tenants []TenantConfig) (*StaticProvider, error) {
	provider := &StaticProvider{
		tenants: map[uuid.UUID]*tenantEntry{},
	}

	for _, cfg := range tenants {
		if err := provider.AddTenant(cfg); err != nil {
			return nil, err
		}
	}

	return provider, nil
}

// AddTenant registers a tenant and its entities. Entity identifiers are
// matched case-insensitively on lookup.
func (p *StaticProvider) AddTenant(cfg TenantConfig) error {
	id, err := uuid.Parse(cfg.ID)
	if err != nil {
		return err
	}

	entry := &tenantEntry{
		tenant: authz.Tenant{
			ID:                id,
			Name:              cfg.Name,
			RightsCheckScript: cfg.RightsCheckScript,
		},
		entities: map[string]authz.EntityMetadata{},
	}

	for _, entity := range cfg.Entities {
		entry.entities[strings.ToLower(entity.Entity)] = authz.EntityMetadata{
			Application:        entity.Application,
			Entity:             entity.Entity,
			RightsCheckScript:  entity.RightsCheckScript,
			StateAllowedScript: entity.StateAllowedScript,
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.tenants[id] = entry

	return nil
}

func (p *StaticProvider) TenantByID(ctx context.Context, id uuid.UUID) (*authz.Tenant, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.tenants[id]
	if !ok {
		return nil, nil
	}

	tenant := entry.tenant

	return &tenant, nil
}

func (p *StaticProvider) EntityByTenantAndIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (*authz.EntityMetadata, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.tenants[tenantID]
	if !ok {
		return nil, nil
	}

	entity, ok := entry.entities[strings.ToLower(identifier)]
	if !ok {
		return nil, nil
	}

	return &entity, nil
}
