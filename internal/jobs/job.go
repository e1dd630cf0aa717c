// Package jobs tracks long-running background work per tenant and runs the
// import pipeline on the shared executor pool.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle position of a job. Transitions only move forward;
// a finished or errored job never becomes runnable again.
type State string

const (
	StateUnknown    State = "unknown"
	StateQueued     State = "queued"
	StateInProgress State = "in_progress"
	StateFinished   State = "finished"
	StateError      State = "error"
)

func (s State) rank() int {
	switch s {
	case StateQueued:
		return 1
	case StateInProgress:
		return 2
	case StateFinished, StateError:
		return 3
	default:
		return 0
	}
}

// CanTransition reports whether next is a legal forward move from s.
func (s State) CanTransition(next State) bool {
	return next.rank() > s.rank()
}

type Job struct {
	ID         uuid.UUID `json:"id"`
	TenantID   uuid.UUID `json:"tenantId"`
	OwnerID    uuid.UUID `json:"ownerId"`
	Kind       string    `json:"kind"`
	Entity     string    `json:"entity"`
	Identifier string    `json:"identifier"`
	State      State     `json:"state"`
	Result     string    `json:"result"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (j *Job) RecordID() uuid.UUID {
	return j.ID
}

func (j *Job) SetRecordID(id uuid.UUID) {
	j.ID = id
}

func (j *Job) Tenant() uuid.UUID {
	return j.TenantID
}

func (j *Job) SetTenant(id uuid.UUID) {
	j.TenantID = id
}

// CloneJob supports memory-backed job stores.
func CloneJob(job *Job) *Job {
	clone := *job
	return &clone
}

// DecodeJob supports SQL-backed job stores.
func DecodeJob(payload []byte) (*Job, error) {
	job := &Job{}
	if err := json.Unmarshal(payload, job); err != nil {
		return nil, err
	}

	return job, nil
}
