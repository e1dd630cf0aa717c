package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/recordhub/recordhub/internal/repository"
)

// ErrInvalidTransition signals an attempt to move a job backwards or to
// reuse a terminal job.
var ErrInvalidTransition = fmt.Errorf("invalid job state transition")

// Service owns the job lifecycle. All state changes go through it so the
// forward-only rule holds regardless of the backing store.
type Service struct {
	store repository.Store[*Job]
	now   func() time.Time
}

type Params struct {
	fx.In

	Store repository.Store[*Job]
}

func NewService(params Params) *Service {
	return &Service{
		store: params.Store,
		now:   time.Now,
	}
}

// Create persists a fresh job in the queued state and returns it.
func (s *Service) Create(ctx context.Context, tenantID, ownerID uuid.UUID, kind, entity, identifier string) (*Job, error) {
	now := s.now()

	job := &Job{
		ID:         uuid.New(),
		TenantID:   tenantID,
		OwnerID:    ownerID,
		Kind:       kind,
		Entity:     entity,
		Identifier: identifier,
		State:      StateQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.Insert(ctx, tenantID, job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	return job, nil
}

func (s *Service) ByID(ctx context.Context, tenantID, id uuid.UUID) (*Job, bool, error) {
	return s.store.ByRecordID(ctx, tenantID, id)
}

func (s *Service) ForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Job, error) {
	return s.store.List(ctx, tenantID, repository.Query{})
}

func (s *Service) transition(ctx context.Context, tenantID, id uuid.UUID, next State, result string) error {
	job, found, err := s.store.ByRecordID(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", id, err)
	}

	if !found {
		return fmt.Errorf("job %s not found", id)
	}

	if !job.State.CanTransition(next) {
		return fmt.Errorf("%w: %s to %s for job %s", ErrInvalidTransition, job.State, next, id)
	}

	job.State = next
	job.Result = result
	job.UpdatedAt = s.now()

	if err := s.store.Update(ctx, tenantID, job); err != nil {
		return fmt.Errorf("failed to persist job %s: %w", id, err)
	}

	return nil
}

func (s *Service) MarkInProgress(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.transition(ctx, tenantID, id, StateInProgress, "")
}

func (s *Service) MarkFinished(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.transition(ctx, tenantID, id, StateFinished, "")
}

func (s *Service) MarkError(ctx context.Context, tenantID, id uuid.UUID, result string) error {
	return s.transition(ctx, tenantID, id, StateError, result)
}
