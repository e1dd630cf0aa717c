package dependencies

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/recordhub/recordhub/internal/jobs"
	"github.com/recordhub/recordhub/internal/records"
	"github.com/recordhub/recordhub/internal/repository"
	"github.com/recordhub/recordhub/internal/store/memstore"
	"github.com/recordhub/recordhub/internal/store/sqlstore"

	_ "github.com/recordhub/recordhub/internal/pkg/sqlite"
)

// Stores wires the persistence layer. With an empty dialect everything runs
// on in-memory stores, which keeps local setups free of external services.
type Stores struct {
	db      *sql.DB
	dialect string

	Jobs repository.Store[*jobs.Job]
}

func NewStores(cfg sqlstore.Config) (*Stores, error) {
	if cfg.Dialect == "" {
		return &Stores{
			Jobs: memstore.New(jobs.CloneJob),
		}, nil
	}

	db, dialect, err := sqlstore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open record database: %w", err)
	}

	jobStore := sqlstore.NewStore(db, dialect, "jobs", jobs.DecodeJob)
	if err := jobStore.EnsureSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to prepare jobs table: %w", err)
	}

	return &Stores{
		db:      db,
		dialect: dialect,
		Jobs:    jobStore,
	}, nil
}

// RecordStore builds the store backing one entity table, creating the table
// when it does not exist yet.
func (s *Stores) RecordStore(ctx context.Context, table string) (repository.Store[*records.StoredRecord], error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	if s.db == nil {
		return memstore.New(records.CloneStored), nil
	}

	store := sqlstore.NewStore(s.db, s.dialect, table, records.DecodeStored)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare table %s: %w", table, err)
	}

	return store, nil
}

func (s *Stores) Close() error {
	if s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Table names end up in DDL, so only a conservative charset is accepted.
func validateTable(table string) error {
	if table == "" {
		return fmt.Errorf("empty table name")
	}

	for _, r := range table {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return fmt.Errorf("invalid table name %q", table)
		}
	}

	return nil
}
