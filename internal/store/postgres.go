package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/mihirdhamankar/searchlite/pkg/config"
)

// PostgresStore keeps index records in a single two-column table, one row
// per key.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// OpenPostgres connects to PostgreSQL and ensures the backing table exists.
func OpenPostgres(cfg config.PostgresConfig, table string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	schema := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value BYTEA NOT NULL)`,
		table,
	)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table %s: %w", table, err)
	}

	return &PostgresStore{db: db, table: table}, nil
}

func (s *PostgresStore) Put(key string, value []byte) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		s.table,
	)
	if _, err := s.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("storing record %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Get(key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table)
	var value []byte
	err := s.db.QueryRow(query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading record %q: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Iter(prefix string, fn func(key string, value []byte) error) error {
	query := fmt.Sprintf(
		`SELECT key, value FROM %s WHERE key LIKE $1 || '%%' ORDER BY key`,
		s.table,
	)
	rows, err := s.db.Query(query, prefix)
	if err != nil {
		return fmt.Errorf("iterating records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scanning record: %w", err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *PostgresStore) Flush() error {
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
