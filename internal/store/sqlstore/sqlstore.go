// Package sqlstore persists tenant-partitioned records as JSON documents in
// a relational table, one table per entity type.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	_ "github.com/recordhub/recordhub/internal/pkg/sqlite"
	"github.com/recordhub/recordhub/internal/repository"
)

type Config struct {
	Dialect string `json:"dialect" yaml:"dialect" conf:"dialect"`
	DSN     string `json:"dsn" yaml:"dsn" conf:"dsn"`
	Debug   bool   `json:"debug" yaml:"debug" conf:"debug"`
}

// Open connects per the configured dialect. Dialect aliases follow common
// driver naming so operators can use whichever name they know.
func Open(cfg Config) (*sql.DB, string, error) {
	var (
		db      *sql.DB
		dialect string
		err     error
	)

	switch cfg.Dialect {
	case "postgres", "pgx", "postgresdb", "pg", "postgresql":
		db, err = sql.Open("pgx", cfg.DSN)
		dialect = "postgres"
	case "sqlite3", "sqlite":
		db, err = sql.Open("sqlite3", cfg.DSN)
		dialect = "sqlite3"
	case "mysql", "tidb":
		db, err = sql.Open("mysql", cfg.DSN)
		dialect = "mysql"
	default:
		return nil, "", fmt.Errorf("invalid dialect: %s", cfg.Dialect)
	}

	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	return db, dialect, nil
}

// Store implements the record store over database/sql. Records live in a
// table with a stable id, the owning tenant and the serialized payload.
type Store[P repository.Persisted] struct {
	db      *sql.DB
	dialect string
	table   string
	decode  func([]byte) (P, error)
}

func NewStore[P repository.Persisted](db *sql.DB, dialect, table string, decode func([]byte) (P, error)) *Store[P] {
	return &Store[P]{
		db:      db,
		dialect: dialect,
		table:   table,
		decode:  decode,
	}
}

// EnsureSchema creates the backing table when it is missing. The DDL sticks
// to types all three dialects accept.
func (s *Store[P]) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) NOT NULL,
		tenant_id VARCHAR(36) NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (tenant_id, id)
	)`, s.table)

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}

	return nil
}

// rebind rewrites ? placeholders to the postgres numbered form when needed.
func (s *Store[P]) rebind(query string) string {
	if s.dialect != "postgres" {
		return query
	}

	var builder strings.Builder

	n := 0

	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&builder, "$%d", n)

			continue
		}

		builder.WriteRune(ch)
	}

	return builder.String()
}

func (s *Store[P]) List(ctx context.Context, tenantID uuid.UUID, query repository.Query) ([]P, error) {
	stmt := fmt.Sprintf("SELECT payload FROM %s WHERE tenant_id = ?", s.table)
	args := []any{tenantID.String()}

	if len(query.IDs) > 0 {
		stmt += fmt.Sprintf(" AND id IN (%s)", strings.TrimSuffix(strings.Repeat("?,", len(query.IDs)), ","))

		for _, id := range query.IDs {
			args = append(args, id.String())
		}
	}

	stmt += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, s.rebind(stmt), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	defer rows.Close()

	records := []P{}

	for rows.Next() {
		var payload []byte

		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.table, err)
		}

		record, err := s.decode(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", s.table, err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", s.table, err)
	}

	return records, nil
}

func (s *Store[P]) Count(ctx context.Context, tenantID uuid.UUID, query repository.Query) (int64, error) {
	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE tenant_id = ?", s.table)
	args := []any{tenantID.String()}

	if len(query.IDs) > 0 {
		stmt += fmt.Sprintf(" AND id IN (%s)", strings.TrimSuffix(strings.Repeat("?,", len(query.IDs)), ","))

		args = append(args, lo.Map(query.IDs, func(id uuid.UUID, _ int) any {
			return id.String()
		})...)
	}

	var count int64

	if err := s.db.QueryRowContext(ctx, s.rebind(stmt), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", s.table, err)
	}

	return count, nil
}

func (s *Store[P]) ByRecordID(ctx context.Context, tenantID, id uuid.UUID) (P, bool, error) {
	var zero P

	stmt := fmt.Sprintf("SELECT payload FROM %s WHERE tenant_id = ? AND id = ?", s.table)

	var payload []byte

	err := s.db.QueryRowContext(ctx, s.rebind(stmt), tenantID.String(), id.String()).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return zero, false, nil
		}

		return zero, false, fmt.Errorf("failed to fetch %s record: %w", s.table, err)
	}

	record, err := s.decode(payload)
	if err != nil {
		return zero, false, fmt.Errorf("failed to decode %s payload: %w", s.table, err)
	}

	return record, true, nil
}

func (s *Store[P]) Insert(ctx context.Context, tenantID uuid.UUID, record P) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", s.table, err)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (id, tenant_id, payload) VALUES (?, ?, ?)", s.table)

	if _, err := s.db.ExecContext(ctx, s.rebind(stmt), record.RecordID().String(), tenantID.String(), string(payload)); err != nil {
		return fmt.Errorf("failed to insert %s record: %w", s.table, err)
	}

	return nil
}

func (s *Store[P]) Update(ctx context.Context, tenantID uuid.UUID, record P) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", s.table, err)
	}

	stmt := fmt.Sprintf("UPDATE %s SET payload = ? WHERE tenant_id = ? AND id = ?", s.table)

	if _, err := s.db.ExecContext(ctx, s.rebind(stmt), string(payload), tenantID.String(), record.RecordID().String()); err != nil {
		return fmt.Errorf("failed to update %s record: %w", s.table, err)
	}

	return nil
}

func (s *Store[P]) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE tenant_id = ? AND id = ?", s.table)

	if _, err := s.db.ExecContext(ctx, s.rebind(stmt), tenantID.String(), id.String()); err != nil {
		return fmt.Errorf("failed to delete %s record: %w", s.table, err)
	}

	return nil
}
