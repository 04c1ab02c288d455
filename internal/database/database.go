package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection used by the local document store
type DB struct {
	*sql.DB
}

// New opens (or creates) a SQLite database file.
// Accepts a bare path or a sqlite:// DSN; ":memory:" is supported for tests.
func New(dsn string) (*DB, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite", withPragmas(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers; one connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("✅ SQLite database opened: %s", path)

	return &DB{db}, nil
}

// withPragmas appends the connection pragmas, keeping any query the path already has.
// busy_timeout avoids SQLITE_BUSY between the server and background jobs.
func withPragmas(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Initialize creates all required tables
func (db *DB) Initialize() error {
	log.Println("🔍 Checking database schema...")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE TABLE IF NOT EXISTS knowledge (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			topic_key TEXT NOT NULL,
			content TEXT NOT NULL,
			source TEXT NOT NULL,
			learned_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_knowledge_topic_key ON knowledge(topic_key, learned_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	if err := db.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("✅ Database initialized successfully")
	return nil
}

// runMigrations runs schema updates for databases created by older builds
func (db *DB) runMigrations() error {
	columnExists := func(tableName, columnName string) (bool, error) {
		var count int
		err := db.QueryRow(
			`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
			tableName, columnName,
		).Scan(&count)
		if err != nil {
			return false, err
		}
		return count > 0, nil
	}

	// Migration: documents.version (early builds stored the singleton without one)
	exists, err := columnExists("documents", "version")
	if err != nil {
		return err
	}
	if !exists {
		log.Println("📦 Running migration: Adding version to documents table")
		if _, err := db.Exec("ALTER TABLE documents ADD COLUMN version INTEGER NOT NULL DEFAULT 0"); err != nil {
			return fmt.Errorf("failed to add version to documents: %w", err)
		}
		log.Println("✅ Migration completed: documents.version added")
	}

	return nil
}
