package contexts

import (
	"context"

	"github.com/google/uuid"

	"github.com/recordhub/recordhub/internal/objects"
)

// ContextKey defines the context key type.
type ContextKey string

const (
	// containerContextKey is used to store the context container in the context.
	containerContextKey ContextKey = "context_container"
)

// WithTenantID stores the tenant id in the context.
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	container := getContainer(ctx)
	container.TenantID = &tenantID

	return withContainer(ctx, container)
}

// GetTenantID retrieves the tenant id from the context.
func GetTenantID(ctx context.Context) (uuid.UUID, bool) {
	container := getContainer(ctx)
	if container.TenantID != nil {
		return *container.TenantID, true
	}

	return uuid.Nil, false
}

// WithUserID stores the acting user id in the context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	container := getContainer(ctx)
	container.UserID = &userID

	return withContainer(ctx, container)
}

// GetUserID retrieves the acting user id from the context.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	container := getContainer(ctx)
	if container.UserID != nil {
		return *container.UserID, true
	}

	return uuid.Nil, false
}

// WithClaims stores the caller's claims in the context.
func WithClaims(ctx context.Context, claims objects.Claims) context.Context {
	container := getContainer(ctx)
	container.Claims = claims

	return withContainer(ctx, container)
}

// GetClaims retrieves the caller's claims from the context.
func GetClaims(ctx context.Context) (objects.Claims, bool) {
	container := getContainer(ctx)
	return container.Claims, container.Claims != nil
}

// WithTraceID stores the trace id in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	container := getContainer(ctx)
	container.TraceID = &traceID

	return withContainer(ctx, container)
}

// GetTraceID retrieves the trace id from the context.
func GetTraceID(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.TraceID != nil {
		return *container.TraceID, true
	}

	return "", false
}

// WithRequestID stores the request id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	container := getContainer(ctx)
	container.RequestID = &requestID

	return withContainer(ctx, container)
}

// GetRequestID retrieves the request id from the context.
func GetRequestID(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.RequestID != nil {
		return *container.RequestID, true
	}

	return "", false
}

// WithOperationName stores the operation name in the context.
func WithOperationName(ctx context.Context, name string) context.Context {
	container := getContainer(ctx)
	container.OperationName = &name

	return withContainer(ctx, container)
}

// GetOperationName retrieves the operation name from the context.
func GetOperationName(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.OperationName != nil {
		return *container.OperationName, true
	}

	return "", false
}
