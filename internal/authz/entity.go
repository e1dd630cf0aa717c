package authz

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/recordhub/recordhub/internal/objects"
)

type EntityRightsCheckerParams struct {
	fx.In

	Engine ScriptEngine
}

func NewEntityRightsChecker(params EntityRightsCheckerParams) *EntityRightsChecker {
	return &EntityRightsChecker{engine: params.Engine}
}

// EntityRightsChecker applies the entity-specific policy script. The script
// sees the tenant-level decision and may both widen it (record ownership) and
// narrow it (record state).
type EntityRightsChecker struct {
	engine ScriptEngine
}

// HasRight refines the tenant decision for one operation parameter. Entities
// without a script leave the tenant decision unchanged.
func (c *EntityRightsChecker) HasRight(ctx context.Context, tenantID uuid.UUID, metadata *EntityMetadata, claims objects.Claims, right string, param any, tenantResult bool) (bool, error) {
	script := strings.TrimSpace(metadata.RightsCheckScript)
	if script == "" {
		return tenantResult, nil
	}

	allowed, err := evaluateBool(ctx, c.engine, script, map[string]any{
		"application": metadata.Application,
		"entity":      metadata.Entity,
		"right":       right,
		"param":       param,
		"result":      tenantResult,
		"userinfo":    map[string]any(claims),
	})
	if err != nil {
		return false, fmt.Errorf("entity %s rights check for tenant %s: %w", metadata.Entity, tenantID, err)
	}

	return allowed, nil
}

// StateAllowed evaluates the workflow state predicate for a record. Entities
// without a state script fail closed: workflow transitions require an
// explicit policy.
func (c *EntityRightsChecker) StateAllowed(ctx context.Context, tenantID uuid.UUID, metadata *EntityMetadata, id uuid.UUID, currentState int, rights []string) (bool, error) {
	script := strings.TrimSpace(metadata.StateAllowedScript)
	if script == "" {
		return false, nil
	}

	allowed, err := evaluateBool(ctx, c.engine, script, map[string]any{
		"state": currentState,
		"hasRight": func(right string) bool {
			for _, r := range rights {
				if strings.EqualFold(r, right) {
					return true
				}
			}

			return false
		},
		"hasAnyRight": func(prefix string) bool {
			for _, r := range rights {
				if strings.HasPrefix(strings.ToLower(r), strings.ToLower(prefix)) {
					return true
				}
			}

			return false
		},
	})
	if err != nil {
		return false, fmt.Errorf("entity %s state check for record %s: %w", metadata.Entity, id, err)
	}

	return allowed, nil
}
