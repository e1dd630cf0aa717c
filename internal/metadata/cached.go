package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/recordhub/recordhub/internal/authz"
	"github.com/recordhub/recordhub/internal/pkg/xcache"
)

// CachedProvider fronts another provider with typed caches. Only hits are
// cached; unknown tenants and entities fall through on every call.
type CachedProvider struct {
	next     authz.MetadataProvider
	tenants  xcache.Cache[authz.Tenant]
	entities xcache.Cache[authz.EntityMetadata]
}

func NewCachedProvider(next authz.MetadataProvider, cfg xcache.Config) *CachedProvider {
	return &CachedProvider{
		next:     next,
		tenants:  xcache.NewFromConfig[authz.Tenant](cfg),
		entities: xcache.NewFromConfig[authz.EntityMetadata](cfg),
	}
}

func (p *CachedProvider) TenantByID(ctx context.Context, id uuid.UUID) (*authz.Tenant, error) {
	key := fmt.Sprintf("tenant:%s", id)

	if cached, err := p.tenants.Get(ctx, key); err == nil {
		return &cached, nil
	}

	tenant, err := p.next.TenantByID(ctx, id)
	if err != nil || tenant == nil {
		return tenant, err
	}

	_ = p.tenants.Set(ctx, key, *tenant)

	return tenant, nil
}

func (p *CachedProvider) EntityByTenantAndIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (*authz.EntityMetadata, error) {
	key := fmt.Sprintf("entity:%s:%s", tenantID, strings.ToLower(identifier))

	if cached, err := p.entities.Get(ctx, key); err == nil {
		return &cached, nil
	}

	entity, err := p.next.EntityByTenantAndIdentifier(ctx, tenantID, identifier)
	if err != nil || entity == nil {
		return entity, err
	}

	_ = p.entities.Set(ctx, key, *entity)

	return entity, nil
}
