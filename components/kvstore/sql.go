package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects placeholder style and DDL.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DefaultTable is the preference table name.
const DefaultTable = "inkhub_preferences"

// SQLOptions configures a SQLStore.
type SQLOptions struct {
	Dialect Dialect
	Table   string
}

// SQLStore keeps preferences in a relational table with an upsert per write.
type SQLStore struct {
	db    *sql.DB
	qb    sq.StatementBuilderType
	table string
	dia   Dialect
	now   func() time.Time
}

// NewSQLStore wraps db. Call Migrate once before use on a fresh database.
func NewSQLStore(db *sql.DB, opts SQLOptions) *SQLStore {
	if opts.Table == "" {
		opts.Table = DefaultTable
	}
	if opts.Dialect == "" {
		opts.Dialect = DialectSQLite
	}
	placeholder := sq.Question
	if opts.Dialect == DialectPostgres {
		placeholder = sq.Dollar
	}
	return &SQLStore{
		db:    db,
		qb:    sq.StatementBuilder.PlaceholderFormat(placeholder),
		table: opts.Table,
		dia:   opts.Dialect,
		now:   time.Now,
	}
}

// Open opens a database for the dialect and migrates the preference table.
func Open(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	driver := "sqlite"
	if dialect == DialectPostgres {
		driver = "postgres"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open %s: %w", dialect, err)
	}
	if dialect != DialectPostgres {
		db.SetMaxOpenConns(1)
	}
	store := NewSQLStore(db, SQLOptions{Dialect: dialect})
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Migrate creates the preference table when missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	stamp := "DATETIME"
	if s.dia == DialectPostgres {
		stamp = "TIMESTAMPTZ"
	}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		pref_key TEXT PRIMARY KEY,
		pref_value TEXT NOT NULL,
		updated_at %s NOT NULL
	)`, s.table, stamp)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("kvstore: migrate %s: %w", s.table, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	query, args, err := s.qb.Select("pref_value").From(s.table).Where(sq.Eq{"pref_key": key}).ToSql()
	if err != nil {
		return "", false, err
	}
	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvstore: get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	query, args, err := s.qb.Insert(s.table).
		Columns("pref_key", "pref_value", "updated_at").
		Values(key, value, s.now().UTC()).
		Suffix("ON CONFLICT (pref_key) DO UPDATE SET pref_value = EXCLUDED.pref_value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("kvstore: set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	query, args, err := s.qb.Delete(s.table).Where(sq.Eq{"pref_key": key}).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("kvstore: delete %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
