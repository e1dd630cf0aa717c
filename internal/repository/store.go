package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// Query is the filter the repository hands to a store. The store decides how
// to execute it; ordering is store-defined.
type Query struct {
	// IDs restricts the result to records with one of these stable ids.
	// Empty means no restriction.
	IDs []uuid.UUID
}

// Store is the tenant-partitioned record store underneath a repository. Every
// operation is scoped to exactly one tenant id.
type Store[P Persisted] interface {
	List(ctx context.Context, tenantID uuid.UUID, query Query) ([]P, error)
	Count(ctx context.Context, tenantID uuid.UUID, query Query) (int64, error)
	ByRecordID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (P, bool, error)
	Insert(ctx context.Context, tenantID uuid.UUID, record P) error
	Update(ctx context.Context, tenantID uuid.UUID, record P) error
	Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error
}

// buildQuery derives the store filter from query params. The "id" key accepts
// a single UUID string or a list of UUID strings; every other key is opaque to
// the base engine and left to hooks.
func buildQuery(queryParams map[string]any) (Query, error) {
	var query Query

	idParam, ok := queryParams["id"]
	if !ok {
		return query, nil
	}

	switch v := idParam.(type) {
	case string:
		// A single unparsable value is ignored rather than rejected, it may
		// be meaningful to a hook.
		if id, err := uuid.Parse(v); err == nil {
			query.IDs = []uuid.UUID{id}
		}
	default:
		values, err := cast.ToStringSliceE(idParam)
		if err != nil {
			return query, fmt.Errorf("query param id: %w", err)
		}

		for _, value := range values {
			id, err := uuid.Parse(value)
			if err != nil {
				return query, fmt.Errorf("query param id %q: %w", value, err)
			}

			query.IDs = append(query.IDs, id)
		}
	}

	return query, nil
}
