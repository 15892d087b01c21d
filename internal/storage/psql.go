package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

var _ Store = (*PsqlStore)(nil)

// PsqlStore keeps the snapshots in a single key/value table with JSONB values.
type PsqlStore struct {
	db    *pgxpool.Pool
	table string
}

func NewPsqlStore(db *pgxpool.Pool, table string) *PsqlStore {
	return &PsqlStore{
		db:    db,
		table: pq.QuoteIdentifier(table),
	}
}

func (s *PsqlStore) EnsureTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, CreateTableSQL(s.table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// CreateTableSQL returns the DDL for the key/value table. The table name must already be quoted.
func CreateTableSQL(quotedTable string) string {
	return fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		quotedTable,
	)
}

func (s *PsqlStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "psqlStore.get")
	defer func() {
		if errors.Is(err, ErrNotFound) {
			span.End()
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var value []byte
	err = s.db.QueryRow(
		ctx,
		fmt.Sprintf(`SELECT value FROM %s WHERE key = $1;`, s.table),
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select %s: %w", key, err)
	}

	return value, nil
}

func (s *PsqlStore) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "psqlStore.set")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = s.db.Exec(
		ctx,
		fmt.Sprintf(
			`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at;`,
			s.table,
		),
		key, string(value),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *PsqlStore) Delete(ctx context.Context, key string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "psqlStore.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if _, err := s.db.Exec(
		ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE key = $1;`, s.table),
		key,
	); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
