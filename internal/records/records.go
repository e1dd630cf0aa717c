// Package records defines the schemaless entity served by the generic CRUD
// endpoints. Payload fields stay an open document; structure and policy come
// from tenant metadata, not from Go types.
package records

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/recordhub/recordhub/internal/repository"
)

// Record is the editable projection exchanged with clients.
type Record struct {
	ID     uuid.UUID      `json:"id"`
	Fields map[string]any `json:"fields"`
}

func (r *Record) RecordID() uuid.UUID {
	return r.ID
}

// StoredRecord is the persisted shape, carrying tenant and audit data the
// editable projection never exposes.
type StoredRecord struct {
	ID        uuid.UUID              `json:"id"`
	TenantID  uuid.UUID              `json:"tenantId"`
	Fields    map[string]any         `json:"fields"`
	AuditInfo repository.AuditFields `json:"audit"`
}

func (r *StoredRecord) RecordID() uuid.UUID {
	return r.ID
}

func (r *StoredRecord) SetRecordID(id uuid.UUID) {
	r.ID = id
}

func (r *StoredRecord) Tenant() uuid.UUID {
	return r.TenantID
}

func (r *StoredRecord) SetTenant(id uuid.UUID) {
	r.TenantID = id
}

func (r *StoredRecord) Audit() *repository.AuditFields {
	return &r.AuditInfo
}

// Mapper converts between the two shapes. Field maps are copied so editable
// values never alias persisted state.
var Mapper = repository.Mapper[*Record, *StoredRecord]{
	ToEditable: func(record *StoredRecord) *Record {
		return &Record{
			ID:     record.ID,
			Fields: lo.Assign(map[string]any{}, record.Fields),
		}
	},
	ToPersisted: func(value *Record, record *StoredRecord) {
		record.Fields = lo.Assign(map[string]any{}, value.Fields)
	},
}

// CloneStored supports memory-backed stores.
func CloneStored(record *StoredRecord) *StoredRecord {
	clone := *record
	clone.Fields = lo.Assign(map[string]any{}, record.Fields)

	return &clone
}

// DecodeStored supports SQL-backed stores.
func DecodeStored(payload []byte) (*StoredRecord, error) {
	record := &StoredRecord{}
	if err := json.Unmarshal(payload, record); err != nil {
		return nil, err
	}

	return record, nil
}

// NewProduce returns the factory for fresh persisted records.
func NewProduce() *StoredRecord {
	return &StoredRecord{Fields: map[string]any{}}
}

// NewRepository builds the tenantable repository over the given store.
func NewRepository(store repository.Store[*StoredRecord]) *repository.TenantableRepo[*Record, *StoredRecord] {
	return repository.NewTenantable(store, Mapper, NewProduce)
}
