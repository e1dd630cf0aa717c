package contexts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub/internal/objects"
)

func TestTenantID(t *testing.T) {
	ctx := context.Background()

	_, ok := GetTenantID(ctx)
	assert.False(t, ok)

	tenantID := uuid.New()
	ctx = WithTenantID(ctx, tenantID)

	got, ok := GetTenantID(ctx)
	require.True(t, ok)
	assert.Equal(t, tenantID, got)
}

func TestUserID(t *testing.T) {
	ctx := context.Background()

	_, ok := GetUserID(ctx)
	assert.False(t, ok)

	userID := uuid.New()
	ctx = WithUserID(ctx, userID)

	got, ok := GetUserID(ctx)
	require.True(t, ok)
	assert.Equal(t, userID, got)
}

func TestClaims(t *testing.T) {
	ctx := context.Background()

	_, ok := GetClaims(ctx)
	assert.False(t, ok)

	claims := objects.Claims{"role": []string{"admin", "editor"}}
	ctx = WithClaims(ctx, claims)

	got, ok := GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"admin", "editor"}, got.Strings("role"))
}

func TestContainerSharedAcrossValues(t *testing.T) {
	ctx := context.Background()

	tenantID := uuid.New()
	userID := uuid.New()

	ctx = WithTenantID(ctx, tenantID)
	ctx = WithUserID(ctx, userID)
	ctx = WithTraceID(ctx, "rh-trace")
	ctx = WithOperationName(ctx, "entity.query")

	gotTenant, ok := GetTenantID(ctx)
	require.True(t, ok)
	assert.Equal(t, tenantID, gotTenant)

	gotUser, ok := GetUserID(ctx)
	require.True(t, ok)
	assert.Equal(t, userID, gotUser)

	traceID, ok := GetTraceID(ctx)
	require.True(t, ok)
	assert.Equal(t, "rh-trace", traceID)

	name, ok := GetOperationName(ctx)
	require.True(t, ok)
	assert.Equal(t, "entity.query", name)
}
