package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/zhenzou/executors"
	"go.uber.org/fx"

	"github.com/recordhub/recordhub/internal/authz"
	"github.com/recordhub/recordhub/internal/files"
	"github.com/recordhub/recordhub/internal/log"
	"github.com/recordhub/recordhub/internal/objects"
	"github.com/recordhub/recordhub/internal/tools"
)

// ImportRequest carries everything the import pipeline needs. The identifier
// doubles as the tenant right required per imported item.
type ImportRequest struct {
	JobID      uuid.UUID
	TenantID   uuid.UUID
	UserID     uuid.UUID
	Entity     string
	Identifier string
	FileID     uuid.UUID
	Claims     objects.Claims
}

// Importer runs import jobs against registered entities.
type Importer struct {
	jobs         *Service
	files        *files.Store
	registry     *tools.Registry
	metadata     authz.MetadataProvider
	tenantRights *authz.TenantRightsChecker
	executor     executors.ScheduledExecutor
}

type ImporterParams struct {
	fx.In

	Jobs         *Service
	Files        *files.Store
	Registry     *tools.Registry
	Metadata     authz.MetadataProvider
	TenantRights *authz.TenantRightsChecker
	Executor     executors.ScheduledExecutor
}

func NewImporter(params ImporterParams) *Importer {
	return &Importer{
		jobs:         params.Jobs,
		files:        params.Files,
		registry:     params.Registry,
		metadata:     params.Metadata,
		tenantRights: params.TenantRights,
		executor:     params.Executor,
	}
}

// Enqueue creates a queued job for the request and hands it to the executor
// pool. The returned job reflects the state at creation time.
func (i *Importer) Enqueue(ctx context.Context, req ImportRequest) (*Job, error) {
	job, err := i.jobs.Create(ctx, req.TenantID, req.UserID, "import", req.Entity, req.Identifier)
	if err != nil {
		return nil, err
	}

	req.JobID = job.ID

	if err := i.Dispatch(ctx, req); err != nil {
		return nil, err
	}

	return job, nil
}

// Dispatch hands the request to the executor pool. Precondition failures are
// logged loudly because they leave the job queued forever.
func (i *Importer) Dispatch(ctx context.Context, req ImportRequest) error {
	return i.executor.ExecuteFunc(func(ctx context.Context) {
		if err := i.Execute(ctx, req); err != nil {
			log.Error(ctx, "import job could not start, job remains queued",
				log.String("job_id", req.JobID.String()),
				log.String("tenant_id", req.TenantID.String()),
				log.String("entity", req.Entity),
				log.Cause(err),
			)
		}
	})
}

// Execute runs the import. Failures before the job is marked in progress
// surface as the returned error and leave the job queued. Failures after
// that point are recorded on the job itself and do not trigger a retry.
func (i *Importer) Execute(ctx context.Context, req ImportRequest) error {
	entry, ok := i.registry.Lookup(req.Entity)
	if !ok {
		return fmt.Errorf("entity %q is not registered for import", req.Entity)
	}

	tenant, err := i.metadata.TenantByID(ctx, req.TenantID)
	if err != nil {
		return fmt.Errorf("failed to resolve tenant %s: %w", req.TenantID, err)
	}

	if tenant == nil {
		return fmt.Errorf("tenant %s not found", req.TenantID)
	}

	if _, found, err := i.jobs.ByID(ctx, req.TenantID, req.JobID); err != nil {
		return fmt.Errorf("failed to resolve job %s: %w", req.JobID, err)
	} else if !found {
		return fmt.Errorf("job %s not found", req.JobID)
	}

	if err := i.jobs.MarkInProgress(ctx, req.TenantID, req.JobID); err != nil {
		return err
	}

	if err := i.runImport(ctx, req, entry, tenant); err != nil {
		log.Error(ctx, "import job failed",
			log.String("job_id", req.JobID.String()),
			log.String("tenant_id", req.TenantID.String()),
			log.String("entity", req.Entity),
			log.Cause(err),
		)

		if markErr := i.jobs.MarkError(ctx, req.TenantID, req.JobID, err.Error()); markErr != nil {
			log.Error(ctx, "failed to record import job failure",
				log.String("job_id", req.JobID.String()),
				log.Cause(markErr),
			)
		}

		return nil
	}

	return i.jobs.MarkFinished(ctx, req.TenantID, req.JobID)
}

func (i *Importer) runImport(ctx context.Context, req ImportRequest, entry tools.Entry, tenant *authz.Tenant) error {
	_, reader, err := i.files.Fetch(ctx, req.TenantID, req.FileID)
	if err != nil {
		return err
	}
	defer reader.Close()

	authorized := func(ctx context.Context, item any) (bool, error) {
		return i.tenantRights.HasRight(ctx, tenant, entry.Application, entry.Entity, req.Claims, req.Identifier)
	}

	if err := entry.Importer.ImportRecords(ctx, req.TenantID, req.UserID, req.Identifier, req.Claims, reader, authorized); err != nil {
		return err
	}

	return i.files.Remove(ctx, req.TenantID, req.UserID, req.FileID)
}
