package contexts

import (
	"context"

	"github.com/google/uuid"

	"github.com/recordhub/recordhub/internal/objects"
)

// contextContainer contains all request-scoped values stored in the context.
type contextContainer struct {
	TenantID      *uuid.UUID
	UserID        *uuid.UUID
	Claims        objects.Claims
	TraceID       *string
	RequestID     *string
	OperationName *string
}

// getContainer retrieves the existing container from context, or creates a
// new one if it doesn't exist yet.
func getContainer(ctx context.Context) *contextContainer {
	if container, ok := ctx.Value(containerContextKey).(*contextContainer); ok {
		return container
	}

	return &contextContainer{}
}

// withContainer stores the container in the context (if not already stored).
func withContainer(ctx context.Context, container *contextContainer) context.Context {
	if ctx.Value(containerContextKey) == nil {
		return context.WithValue(ctx, containerContextKey, container)
	}

	return ctx
}
