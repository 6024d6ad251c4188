package store

import (
	"database/sql"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"
)

const cacheSize = 1024

// Store is the SQLite data access layer for previously generated scope
// contracts.
type Store struct {
	db    *sql.DB
	cache *lru.Cache[string, *GeneratedScope]
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	cache, err := lru.New[string, *GeneratedScope](cacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Store{db: db, cache: cache}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS generated_scopes (
  id                INTEGER PRIMARY KEY,
  scope_type        TEXT NOT NULL UNIQUE,
  impl_type         TEXT NOT NULL,
  signature_hash    TEXT NOT NULL,
  parent_name       TEXT,
  parent_mode       TEXT,
  dependencies_name TEXT,
  generated_at      TIMESTAMP
);

CREATE TABLE IF NOT EXISTS parent_methods (
  id              INTEGER PRIMARY KEY,
  scope_id        INTEGER NOT NULL REFERENCES generated_scopes(id) ON DELETE CASCADE,
  ordinal         INTEGER NOT NULL,
  name            TEXT NOT NULL,
  type_expr       TEXT NOT NULL,
  transitive      BOOLEAN DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS dependency_methods (
  id              INTEGER PRIMARY KEY,
  scope_id        INTEGER NOT NULL REFERENCES generated_scopes(id) ON DELETE CASCADE,
  ordinal         INTEGER NOT NULL,
  name            TEXT NOT NULL,
  type_expr       TEXT NOT NULL,
  requesters      TEXT
);

CREATE INDEX IF NOT EXISTS idx_generated_scopes_hash ON generated_scopes(signature_hash);
CREATE INDEX IF NOT EXISTS idx_parent_methods_scope ON parent_methods(scope_id);
CREATE INDEX IF NOT EXISTS idx_dependency_methods_scope ON dependency_methods(scope_id);
`
