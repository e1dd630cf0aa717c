package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/recordhub/recordhub/internal/log"
	"github.com/recordhub/recordhub/internal/objects"
)

// Tenantable is the tenant-scoped CRUD contract a concrete entity binds its
// routes and jobs to. One instance exists per entity type, wired at startup.
type Tenantable[E Editable] interface {
	All(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims) ([]E, error)
	Query(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims, queryParams map[string]any) ([]E, error)
	Count(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims, queryParams map[string]any) (int64, error)
	ByID(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims, id uuid.UUID) (E, bool, error)
	New(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims) (E, error)
	NewQuery(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims, queryParams map[string]any) (E, error)
	Save(ctx context.Context, tenantID, userID uuid.UUID, identifier string, claims objects.Claims, value E) error
	Remove(ctx context.Context, tenantID, userID uuid.UUID, claims objects.Claims, removeParams map[string]any) (RemoveResult[E], error)
	Import(ctx context.Context, tenantID, userID uuid.UUID, identifier string, claims objects.Claims, data io.Reader, authorized func(ctx context.Context, item E) (bool, error)) error
	Export(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims, queryParams map[string]any) (*ExportResult, error)
}

// ImportTarget is the non-generic view of a repository the import job works
// with; the job does not know the entity's concrete shapes.
type ImportTarget interface {
	ImportRecords(ctx context.Context, tenantID, userID uuid.UUID, identifier string, claims objects.Claims, data io.Reader, authorized func(ctx context.Context, item any) (bool, error)) error
}

// TenantableRepo is the generic CRUD engine over a tenant-partitioned store.
// Entity-specific behavior comes in through the optional hook; everything
// else is shared between all entity types.
type TenantableRepo[E Editable, P Persisted] struct {
	store   Store[P]
	mapper  Mapper[E, P]
	produce func() P
	hook    Hook[E, P]
	now     func() time.Time
}

type Option[E Editable, P Persisted] func(*TenantableRepo[E, P])

// WithHook attaches the entity-specific extension points.
func WithHook[E Editable, P Persisted](hook Hook[E, P]) Option[E, P] {
	return func(r *TenantableRepo[E, P]) {
		r.hook = hook
	}
}

// WithClock overrides the time source used for audit stamps.
func WithClock[E Editable, P Persisted](now func() time.Time) Option[E, P] {
	return func(r *TenantableRepo[E, P]) {
		r.now = now
	}
}

func NewTenantable[E Editable, P Persisted](store Store[P], mapper Mapper[E, P], produce func() P, opts ...Option[E, P]) *TenantableRepo[E, P] {
	repo := &TenantableRepo[E, P]{
		store:   store,
		mapper:  mapper,
		produce: produce,
		hook:    BaseHook[E, P]{},
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(repo)
	}

	return repo
}

func (r *TenantableRepo[E, P]) All(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims) ([]E, error) {
	return r.Query(ctx, tenantID, identifier, claims, map[string]any{})
}

func (r *TenantableRepo[E, P]) Query(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims, queryParams map[string]any) ([]E, error) {
	query, err := buildQuery(queryParams)
	if err != nil {
		return nil, err
	}

	records, err := r.store.List(ctx, tenantID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	values := make([]E, 0, len(records))
	for _, record := range records {
		values = append(values, r.mapper.ToEditable(record))
	}

	return values, nil
}

func (r *TenantableRepo[E, P]) Count(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims, queryParams map[string]any) (int64, error) {
	query, err := buildQuery(queryParams)
	if err != nil {
		return 0, err
	}

	count, err := r.store.Count(ctx, tenantID, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	return count, nil
}

func (r *TenantableRepo[E, P]) ByID(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims, id uuid.UUID) (E, bool, error) {
	var zero E

	record, found, err := r.store.ByRecordID(ctx, tenantID, id)
	if err != nil {
		return zero, false, fmt.Errorf("failed to fetch record %s: %w", id, err)
	}

	if !found {
		return zero, false, nil
	}

	value, err := r.hook.ExtendByID(ctx, identifier, claims, r.mapper.ToEditable(record))
	if err != nil {
		return zero, false, err
	}

	return value, true, nil
}

func (r *TenantableRepo[E, P]) New(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims) (E, error) {
	return r.NewQuery(ctx, tenantID, identifier, claims, map[string]any{})
}

// NewQuery produces a transient editable instance, not yet persisted. Hooks
// implementing NewProducer seed entity-specific defaults; the built-in
// default is a fresh record with a newly generated id.
func (r *TenantableRepo[E, P]) NewQuery(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims, queryParams map[string]any) (E, error) {
	var (
		record P
		err    error
	)

	if producer, ok := r.hook.(NewProducer[P]); ok {
		record, err = producer.ProduceNew(ctx, identifier, claims, queryParams)
		if err != nil {
			var zero E
			return zero, err
		}
	} else {
		record = r.produce()
	}

	if record.RecordID() == uuid.Nil {
		record.SetRecordID(uuid.New())
	}

	return r.mapper.ToEditable(record), nil
}

// Save upserts by the value's stable id within the tenant. Inserts stamp the
// full audit trail, updates only refresh the last-changer fields.
func (r *TenantableRepo[E, P]) Save(ctx context.Context, tenantID, userID uuid.UUID, identifier string, claims objects.Claims, value E) error {
	existing, found, err := r.store.ByRecordID(ctx, tenantID, value.RecordID())
	if err != nil {
		return fmt.Errorf("failed to resolve record %s: %w", value.RecordID(), err)
	}

	insert := !found

	if err := r.hook.BeforeSave(ctx, userID, identifier, claims, value, insert); err != nil {
		return err
	}

	now := r.now()

	var record P
	if insert {
		record = r.produce()
		r.mapper.ToPersisted(value, record)
		record.SetRecordID(value.RecordID())
		record.SetTenant(tenantID)

		if auditable, ok := any(record).(Auditable); ok {
			audit := auditable.Audit()
			audit.CreatorID = &userID
			audit.CreateStamp = &now
			audit.LastChangerID = &userID
			audit.LastChangeStamp = &now
		}
	} else {
		record = existing
		r.mapper.ToPersisted(value, record)

		if auditable, ok := any(record).(Auditable); ok {
			audit := auditable.Audit()
			audit.LastChangerID = &userID
			audit.LastChangeStamp = &now
		}
	}

	if err := r.hook.AfterSave(ctx, userID, identifier, claims, value, record, insert); err != nil {
		return err
	}

	if insert {
		if err := r.store.Insert(ctx, tenantID, record); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", value.RecordID(), err)
		}
	} else {
		if err := r.store.Update(ctx, tenantID, record); err != nil {
			return fmt.Errorf("failed to update record %s: %w", value.RecordID(), err)
		}
	}

	return nil
}

// Remove deletes the record addressed by removeParams["Id"]. The hook's
// preliminary check runs first; a negative check aborts without touching the
// store and its messages propagate to the caller.
func (r *TenantableRepo[E, P]) Remove(ctx context.Context, tenantID, userID uuid.UUID, claims objects.Claims, removeParams map[string]any) (RemoveResult[E], error) {
	var (
		record   P
		value    E
		found    bool
		recordID uuid.UUID
	)

	if idParam, ok := removeParams["Id"]; ok {
		if id, err := uuid.Parse(cast.ToString(idParam)); err == nil {
			recordID = id

			var err error

			record, found, err = r.store.ByRecordID(ctx, tenantID, id)
			if err != nil {
				return RemoveResult[E]{}, fmt.Errorf("failed to resolve record %s: %w", id, err)
			}

			if found {
				value = r.mapper.ToEditable(record)
			}
		}
	}

	result, err := r.hook.RemovePreliminaryCheck(ctx, userID, claims, removeParams, value, found)
	if err != nil {
		return RemoveResult[E]{}, err
	}

	if !result.Result {
		return result, nil
	}

	if found {
		if err := r.hook.BeforeRemove(ctx, userID, claims, record); err != nil {
			return RemoveResult[E]{}, err
		}

		if err := r.store.Delete(ctx, tenantID, recordID); err != nil {
			return RemoveResult[E]{}, fmt.Errorf("failed to delete record %s: %w", recordID, err)
		}
	}

	return RemoveResult[E]{Result: true, Messages: []string{}, Value: value}, nil
}

// Import deserializes a list of editable records and saves the ones the
// caller-supplied predicate authorizes. Denied items are skipped silently;
// an empty stream is a no-op.
func (r *TenantableRepo[E, P]) Import(ctx context.Context, tenantID, userID uuid.UUID, identifier string, claims objects.Claims, data io.Reader, authorized func(ctx context.Context, item E) (bool, error)) error {
	var items []E

	if err := json.NewDecoder(data).Decode(&items); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return fmt.Errorf("failed to decode import payload: %w", err)
	}

	skipped := 0

	for _, item := range items {
		allowed, err := authorized(ctx, item)
		if err != nil {
			return err
		}

		if !allowed {
			skipped++
			continue
		}

		if err := r.Save(ctx, tenantID, userID, identifier, claims, item); err != nil {
			return err
		}
	}

	if skipped > 0 {
		log.Debug(ctx, "import skipped unauthorized items",
			log.String("tenant_id", tenantID.String()),
			log.String("identifier", identifier),
			log.Int("skipped", skipped),
			log.Int("total", len(items)),
		)
	}

	return nil
}

// ImportRecords adapts Import to the non-generic ImportTarget contract.
func (r *TenantableRepo[E, P]) ImportRecords(ctx context.Context, tenantID, userID uuid.UUID, identifier string, claims objects.Claims, data io.Reader, authorized func(ctx context.Context, item any) (bool, error)) error {
	return r.Import(ctx, tenantID, userID, identifier, claims, data, func(ctx context.Context, item E) (bool, error) {
		return authorized(ctx, item)
	})
}

// Export serializes the queried record set, with hook extensions applied, to
// a JSON payload named after the identifier.
func (r *TenantableRepo[E, P]) Export(ctx context.Context, tenantID uuid.UUID, identifier string, claims objects.Claims, queryParams map[string]any) (*ExportResult, error) {
	values, err := r.Query(ctx, tenantID, identifier, claims, queryParams)
	if err != nil {
		return nil, err
	}

	extended := make([]E, 0, len(values))

	for _, value := range values {
		item, err := r.hook.ExtendByID(ctx, identifier, claims, value)
		if err != nil {
			return nil, err
		}

		extended = append(extended, item)
	}

	data, err := json.Marshal(extended)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize export: %w", err)
	}

	return &ExportResult{
		FileName:  fmt.Sprintf("%s.json", identifier),
		MediaType: "application/json",
		Data:      data,
	}, nil
}
