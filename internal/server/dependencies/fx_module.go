package dependencies

import (
	"context"
	"fmt"

	"github.com/zhenzou/executors"
	"go.uber.org/fx"

	"github.com/recordhub/recordhub/internal/authz"
	"github.com/recordhub/recordhub/internal/authz/exprscript"
	"github.com/recordhub/recordhub/internal/files"
	"github.com/recordhub/recordhub/internal/jobs"
	"github.com/recordhub/recordhub/internal/log"
	"github.com/recordhub/recordhub/internal/metadata"
	"github.com/recordhub/recordhub/internal/pkg/xcache"
	"github.com/recordhub/recordhub/internal/records"
	"github.com/recordhub/recordhub/internal/repository"
	"github.com/recordhub/recordhub/internal/server/api"
	"github.com/recordhub/recordhub/internal/tools"
)

var Module = fx.Module("dependencies",
	fx.Provide(log.New),
	fx.Provide(NewExecutors),
	fx.Provide(NewStores),
	fx.Provide(func(stores *Stores) repository.Store[*jobs.Job] {
		return stores.Jobs
	}),
	fx.Provide(func() authz.ScriptEngine {
		return exprscript.NewEngine()
	}),
	fx.Provide(authz.NewTenantRightsChecker),
	fx.Provide(authz.NewEntityRightsChecker),
	fx.Provide(authz.NewGate),
	fx.Provide(NewMetadataProvider),
	fx.Provide(files.NewStore),
	fx.Provide(tools.NewRegistry),
	fx.Provide(jobs.NewService),
	fx.Provide(jobs.NewImporter),
	fx.Provide(api.NewJobHandlers),
	fx.Provide(api.NewToolHandlers),
	fx.Provide(NewEntityRegistrars),
	fx.Invoke(func(lc fx.Lifecycle, executor executors.ScheduledExecutor, stores *Stores) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if err := executor.Shutdown(ctx); err != nil {
					return err
				}

				return stores.Close()
			},
		})
	}),
)

func NewMetadataProvider(tenants []metadata.TenantConfig, cacheConfig xcache.Config) (authz.MetadataProvider, error) {
	static, err := metadata.NewStaticProvider(tenants)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant metadata: %w", err)
	}

	return metadata.NewCachedProvider(static, cacheConfig), nil
}

type EntityRegistrarsParams struct {
	fx.In

	Stores   *Stores
	Gate     *authz.Gate
	Files    *files.Store
	Importer *jobs.Importer
	Registry *tools.Registry
	Bindings []records.Binding
	API      api.Config
}

// NewEntityRegistrars builds one endpoint set per configured entity binding
// and registers each repository for background imports. The registry freezes
// once all bindings are wired.
func NewEntityRegistrars(params EntityRegistrarsParams) ([]api.Registrar, error) {
	registrars := make([]api.Registrar, 0, len(params.Bindings))

	for _, binding := range params.Bindings {
		if binding.Application == "" || binding.Entity == "" {
			return nil, fmt.Errorf("entity binding needs application and entity, got %q/%q", binding.Application, binding.Entity)
		}

		store, err := params.Stores.RecordStore(context.Background(), binding.TableName())
		if err != nil {
			return nil, err
		}

		repo := records.NewRepository(store)

		err = params.Registry.Register(binding.Entity, tools.Entry{
			Application: binding.Application,
			Entity:      binding.Entity,
			Importer:    repo,
		})
		if err != nil {
			return nil, err
		}

		registrars = append(registrars, api.NewEntityEndpoints(api.EntityConfig[*records.Record]{
			Application: binding.Application,
			Entity:      binding.Entity,
			Gate:        params.Gate,
			Repo:        repo,
			Files:       params.Files,
			Importer:    params.Importer,
			ParamOf: func(value *records.Record) any {
				return value.Fields
			},
			ExportExpiration: params.API.ExportExpiration,
		}))
	}

	params.Registry.Freeze()

	return registrars, nil
}
