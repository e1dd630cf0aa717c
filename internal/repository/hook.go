package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/recordhub/recordhub/internal/objects"
)

// Hook is the entity-specific extension surface of a repository. Concrete
// entities embed BaseHook and override the lifecycle points they care about;
// a repository without a hook applies the same defaults.
type Hook[E Editable, P Persisted] interface {
	ExtendByID(ctx context.Context, identifier string, claims objects.Claims, value E) (E, error)
	BeforeSave(ctx context.Context, userID uuid.UUID, identifier string, claims objects.Claims, value E, insert bool) error
	AfterSave(ctx context.Context, userID uuid.UUID, identifier string, claims objects.Claims, value E, record P, insert bool) error
	RemovePreliminaryCheck(ctx context.Context, userID uuid.UUID, claims objects.Claims, removeParams map[string]any, value E, exists bool) (RemoveResult[E], error)
	BeforeRemove(ctx context.Context, userID uuid.UUID, claims objects.Claims, record P) error
}

// NewProducer is optionally implemented by hooks that want to seed new
// records with entity-specific defaults instead of the plain fresh-id record.
type NewProducer[P Persisted] interface {
	ProduceNew(ctx context.Context, identifier string, claims objects.Claims, queryParams map[string]any) (P, error)
}

// BaseHook provides the default behavior for every lifecycle point: identity
// extension, no-op callbacks and an allow-all preliminary check.
type BaseHook[E Editable, P Persisted] struct{}

func (BaseHook[E, P]) ExtendByID(_ context.Context, _ string, _ objects.Claims, value E) (E, error) {
	return value, nil
}

func (BaseHook[E, P]) BeforeSave(context.Context, uuid.UUID, string, objects.Claims, E, bool) error {
	return nil
}

func (BaseHook[E, P]) AfterSave(context.Context, uuid.UUID, string, objects.Claims, E, P, bool) error {
	return nil
}

func (BaseHook[E, P]) RemovePreliminaryCheck(_ context.Context, _ uuid.UUID, _ objects.Claims, _ map[string]any, value E, _ bool) (RemoveResult[E], error) {
	return RemoveResult[E]{Result: true, Messages: []string{}, Value: value}, nil
}

func (BaseHook[E, P]) BeforeRemove(context.Context, uuid.UUID, objects.Claims, P) error {
	return nil
}
