package authz

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"

	"github.com/recordhub/recordhub/internal/objects"
)

type TenantRightsCheckerParams struct {
	fx.In

	Engine ScriptEngine
}

func NewTenantRightsChecker(params TenantRightsCheckerParams) *TenantRightsChecker {
	return &TenantRightsChecker{engine: params.Engine}
}

// TenantRightsChecker applies the tenant-wide policy script. Tenants without
// a script default to allow; the entity-level policy is expected to narrow
// further where needed.
type TenantRightsChecker struct {
	engine ScriptEngine
}

// HasRight decides whether the composite right application.entity.right is
// granted for the given claim set at tenant scope.
func (c *TenantRightsChecker) HasRight(ctx context.Context, tenant *Tenant, application, entity string, claims objects.Claims, right string) (bool, error) {
	script := strings.TrimSpace(tenant.RightsCheckScript)
	if script == "" {
		return true, nil
	}

	allowed, err := evaluateBool(ctx, c.engine, script, map[string]any{
		"right":    fmt.Sprintf("%s.%s.%s", application, entity, right),
		"userinfo": map[string]any(claims),
	})
	if err != nil {
		return false, fmt.Errorf("tenant %s rights check: %w", tenant.ID, err)
	}

	return allowed, nil
}
