package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/recordhub/recordhub/internal/log"
	"github.com/recordhub/recordhub/internal/objects"
)

type GateParams struct {
	fx.In

	Metadata MetadataProvider
	Tenants  *TenantRightsChecker
	Entities *EntityRightsChecker
}

func NewGate(params GateParams) *Gate {
	return &Gate{
		metadata: params.Metadata,
		tenants:  params.Tenants,
		entities: params.Entities,
	}
}

// Gate decides, per request, whether an operation on an entity may run. It
// chains the tenant-wide policy with the optional entity-level policy and
// only then invokes the deferred action.
type Gate struct {
	metadata MetadataProvider
	tenants  *TenantRightsChecker
	entities *EntityRightsChecker
}

// Entity starts a check for one entity within an application namespace.
func (g *Gate) Entity(tenantID uuid.UUID, application, entity string) *Check {
	return &Check{
		gate:        g,
		tenantID:    tenantID,
		application: application,
		entity:      entity,
		claims:      objects.Claims{},
	}
}

// Check is a single gate invocation under construction.
type Check struct {
	gate        *Gate
	tenantID    uuid.UUID
	application string
	entity      string
	claims      objects.Claims
	right       string

	param    any
	hasParam bool
	batch    []any
	hasBatch bool
}

func (c *Check) WithClaims(claims objects.Claims) *Check {
	c.claims = claims
	return c
}

// RequireRight gates the deferred action behind the named right. Without it
// the action runs unchecked, which import uses because its authorization
// happens per item later.
func (c *Check) RequireRight(right string) *Check {
	c.right = right
	return c
}

// WithParam requests the entity-level check for a single operation parameter.
func (c *Check) WithParam(param any) *Check {
	c.param = param
	c.hasParam = true

	return c
}

// WithBatch requests the entity-level check for an ordered batch. The running
// decision chains through the items and the first denial short-circuits.
func (c *Check) WithBatch(batch []any) *Check {
	c.batch = batch
	c.hasBatch = true

	return c
}

// Run authorizes the check and, on success, invokes the deferred action.
func (c *Check) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.authorize(ctx); err != nil {
		return err
	}

	return fn(ctx)
}

func (c *Check) authorize(ctx context.Context) error {
	if c.right == "" {
		return nil
	}

	tenant, err := c.gate.metadata.TenantByID(ctx, c.tenantID)
	if err != nil {
		return fmt.Errorf("failed to resolve tenant %s: %w", c.tenantID, err)
	}

	if tenant == nil {
		return fmt.Errorf("%w: %s", ErrTenantNotFound, c.tenantID)
	}

	authorized, err := c.gate.tenants.HasRight(ctx, tenant, c.application, c.entity, c.claims, c.right)
	if err != nil {
		return err
	}

	if c.hasParam || c.hasBatch {
		metadata, err := c.gate.metadata.EntityByTenantAndIdentifier(ctx, c.tenantID, c.entity)
		if err != nil {
			return fmt.Errorf("failed to resolve entity %s for tenant %s: %w", c.entity, c.tenantID, err)
		}

		if metadata == nil {
			return fmt.Errorf("%w: %s in tenant %s", ErrEntityNotFound, c.entity, c.tenantID)
		}

		if c.hasParam {
			authorized, err = c.gate.entities.HasRight(ctx, c.tenantID, metadata, c.claims, c.right, c.param, authorized)
			if err != nil {
				return err
			}
		}

		if c.hasBatch {
			for _, param := range c.batch {
				authorized, err = c.gate.entities.HasRight(ctx, c.tenantID, metadata, c.claims, c.right, param, authorized)
				if err != nil {
					return err
				}

				if !authorized {
					break
				}
			}
		}
	}

	if !authorized {
		log.Debug(ctx, "authz: denied",
			log.String("tenant_id", c.tenantID.String()),
			log.String("entity", c.entity),
			log.String("right", c.right),
		)

		return fmt.Errorf("%w: %s.%s.%s", ErrUnauthorized, c.application, c.entity, c.right)
	}

	return nil
}

// Execute runs fn behind the check and returns its result.
func Execute[T any](ctx context.Context, check *Check, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T

	err := check.Run(ctx, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)

		return err
	})

	return result, err
}
