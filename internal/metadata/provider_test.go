package metadata_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub/internal/authz"
	"github.com/recordhub/recordhub/internal/metadata"
	"github.com/recordhub/recordhub/internal/pkg/xcache"
)

func TestStaticProvider(t *testing.T) {
	tenantID := uuid.New()

	provider, err := metadata.NewStaticProvider([]metadata.TenantConfig{
		{
			ID:                tenantID.String(),
			Name:              "acme",
			RightsCheckScript: `"admin" in userinfo.roles`,
			Entities: []metadata.EntityConfig{
				{
					Application:       "records",
					Entity:            "Document",
					RightsCheckScript: "result",
				},
			},
		},
	})
	require.NoError(t, err)

	t.Run("tenant lookup", func(t *testing.T) {
		tenant, err := provider.TenantByID(context.Background(), tenantID)
		require.NoError(t, err)
		require.NotNil(t, tenant)
		assert.Equal(t, "acme", tenant.Name)
	})

	t.Run("unknown tenant yields nil without error", func(t *testing.T) {
		tenant, err := provider.TenantByID(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, tenant)
	})

	t.Run("entity lookup is case insensitive", func(t *testing.T) {
		entity, err := provider.EntityByTenantAndIdentifier(context.Background(), tenantID, "document")
		require.NoError(t, err)
		require.NotNil(t, entity)
		assert.Equal(t, "records", entity.Application)
	})

	t.Run("unknown entity yields nil without error", func(t *testing.T) {
		entity, err := provider.EntityByTenantAndIdentifier(context.Background(), tenantID, "missing")
		require.NoError(t, err)
		assert.Nil(t, entity)
	})

	t.Run("invalid tenant id fails", func(t *testing.T) {
		_, err := metadata.NewStaticProvider([]metadata.TenantConfig{{ID: "nope"}})
		require.Error(t, err)
	})
}

type countingProvider struct {
	inner       authz.MetadataProvider
	tenantCalls int
	entityCalls int
}

func (p *countingProvider) TenantByID(ctx context.Context, id uuid.UUID) (*authz.Tenant, error) {
	p.tenantCalls++
	return p.inner.TenantByID(ctx, id)
}

func (p *countingProvider) EntityByTenantAndIdentifier(ctx context.Context, tenantID uuid.UUID, identifier string) (*authz.EntityMetadata, error) {
	p.entityCalls++
	return p.inner.EntityByTenantAndIdentifier(ctx, tenantID, identifier)
}

func TestCachedProvider(t *testing.T) {
	tenantID := uuid.New()

	inner, err := metadata.NewStaticProvider([]metadata.TenantConfig{
		{
			ID:   tenantID.String(),
			Name: "acme",
			Entities: []metadata.EntityConfig{
				{Application: "records", Entity: "document"},
			},
		},
	})
	require.NoError(t, err)

	counting := &countingProvider{inner: inner}
	cached := metadata.NewCachedProvider(counting, xcache.Config{Mode: xcache.ModeMemory})

	t.Run("tenant hits are cached", func(t *testing.T) {
		for range 3 {
			tenant, err := cached.TenantByID(context.Background(), tenantID)
			require.NoError(t, err)
			require.NotNil(t, tenant)
		}

		assert.Equal(t, 1, counting.tenantCalls)
	})

	t.Run("entity hits are cached", func(t *testing.T) {
		for range 3 {
			entity, err := cached.EntityByTenantAndIdentifier(context.Background(), tenantID, "document")
			require.NoError(t, err)
			require.NotNil(t, entity)
		}

		assert.Equal(t, 1, counting.entityCalls)
	})

	t.Run("misses are not cached", func(t *testing.T) {
		missing := uuid.New()

		for range 2 {
			tenant, err := cached.TenantByID(context.Background(), missing)
			require.NoError(t, err)
			assert.Nil(t, tenant)
		}

		assert.Equal(t, 3, counting.tenantCalls)
	})
}
