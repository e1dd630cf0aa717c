package repository

import (
	"time"

	"github.com/google/uuid"
)

// Editable is the public shape of a record. It always carries the externally
// stable identifier and never exposes internal surrogate keys.
type Editable interface {
	RecordID() uuid.UUID
}

// Persisted is the storage shape of a record within a tenant partition.
type Persisted interface {
	RecordID() uuid.UUID
	SetRecordID(id uuid.UUID)
	Tenant() uuid.UUID
	SetTenant(id uuid.UUID)
}

// AuditFields tracks who created and last changed a record.
type AuditFields struct {
	CreatorID       *uuid.UUID `json:"creatorId,omitempty"`
	CreateStamp     *time.Time `json:"createStamp,omitempty"`
	LastChangerID   *uuid.UUID `json:"lastChangerId,omitempty"`
	LastChangeStamp *time.Time `json:"lastChangeStamp,omitempty"`
}

// Auditable is implemented by persisted shapes that carry audit fields. The
// repository stamps them on save; shapes without audit fields are saved as-is.
type Auditable interface {
	Audit() *AuditFields
}

// Mapper converts between the editable and persisted shapes of one record
// type. ToPersisted applies the editable fields onto an existing persisted
// record in place, so updates keep the surrogate key and audit fields.
type Mapper[E Editable, P Persisted] struct {
	ToEditable  func(record P) E
	ToPersisted func(value E, record P)
}
