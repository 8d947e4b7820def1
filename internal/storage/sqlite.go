package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStorage keeps the shopper state in a single-file database, the closest
// thing to browser local storage for a local process.
type SQLiteStorage struct {
	db        *sql.DB
	namespace string
}

func NewSQLiteStorage(dbPath, namespace string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// one writer at a time, sqlite would return SQLITE_BUSY otherwise
	db.SetMaxOpenConns(1)

	return &SQLiteStorage{db: db, namespace: namespace}, nil
}

func (s *SQLiteStorage) RunMigrations() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations source: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{
		MigrationsTable: "storefront_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv WHERE namespace = ? AND key = ?`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query key %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStorage) Set(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv (namespace, key, value, updated_at)
	          VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	          ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, s.namespace, key, value); err != nil {
		return fmt.Errorf("upsert key %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv WHERE namespace = ? AND key = ?`
	if _, err := s.db.ExecContext(ctx, query, s.namespace, key); err != nil {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
