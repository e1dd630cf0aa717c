// Package memstore provides an in-memory, tenant-partitioned record store.
// It backs tests and single-process deployments that do not need durability.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/recordhub/recordhub/internal/repository"
)

type bucket[P repository.Persisted] struct {
	order   []uuid.UUID
	records map[uuid.UUID]P
}

// Store keeps records per tenant in insertion order. The clone function
// isolates callers from internal state; records are cloned on both write and
// read.
type Store[P repository.Persisted] struct {
	mu      sync.RWMutex
	clone   func(P) P
	tenants map[uuid.UUID]*bucket[P]
}

func New[P repository.Persisted](clone func(P) P) *Store[P] {
	return &Store[P]{
		clone:   clone,
		tenants: map[uuid.UUID]*bucket[P]{},
	}
}

func (s *Store[P]) List(ctx context.Context, tenantID uuid.UUID, query repository.Query) ([]P, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant, ok := s.tenants[tenantID]
	if !ok {
		return []P{}, nil
	}

	records := make([]P, 0, len(tenant.order))

	for _, id := range tenant.order {
		if len(query.IDs) > 0 && !lo.Contains(query.IDs, id) {
			continue
		}

		records = append(records, s.clone(tenant.records[id]))
	}

	return records, nil
}

func (s *Store[P]) Count(ctx context.Context, tenantID uuid.UUID, query repository.Query) (int64, error) {
	records, err := s.List(ctx, tenantID, query)
	if err != nil {
		return 0, err
	}

	return int64(len(records)), nil
}

func (s *Store[P]) ByRecordID(ctx context.Context, tenantID, id uuid.UUID) (P, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero P

	tenant, ok := s.tenants[tenantID]
	if !ok {
		return zero, false, nil
	}

	record, ok := tenant.records[id]
	if !ok {
		return zero, false, nil
	}

	return s.clone(record), true, nil
}

func (s *Store[P]) Insert(ctx context.Context, tenantID uuid.UUID, record P) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.tenants[tenantID]
	if !ok {
		tenant = &bucket[P]{records: map[uuid.UUID]P{}}
		s.tenants[tenantID] = tenant
	}

	id := record.RecordID()

	if _, exists := tenant.records[id]; !exists {
		tenant.order = append(tenant.order, id)
	}

	tenant.records[id] = s.clone(record)

	return nil
}

func (s *Store[P]) Update(ctx context.Context, tenantID uuid.UUID, record P) error {
	return s.Insert(ctx, tenantID, record)
}

func (s *Store[P]) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.tenants[tenantID]
	if !ok {
		return nil
	}

	delete(tenant.records, id)
	tenant.order = lo.Without(tenant.order, id)

	return nil
}
