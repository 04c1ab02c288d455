package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leon/internal/database"
	"leon/internal/models"
)

const documentsUsers = "usuarios"

// Fixed-width so that ORDER BY learned_at is chronological
const learnedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore emulates the document store on a local SQLite file.
// The singleton is kept as a JSON document; knowledge records are rows.
type SQLiteStore struct {
	db  *database.DB
	now func() time.Time
}

// NewSQLiteStore creates a store over an initialized database
func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Ping checks the underlying connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get fetches and decodes the singleton document
func (s *SQLiteStore) Get(ctx context.Context) (*models.Leon, error) {
	return s.get(ctx, s.db.QueryRowContext)
}

type rowQuerier func(ctx context.Context, query string, args ...any) *sql.Row

func (s *SQLiteStore) get(ctx context.Context, queryRow rowQuerier) (*models.Leon, error) {
	var data string
	var version int64
	err := queryRow(ctx,
		`SELECT data, version FROM documents WHERE collection = ? AND id = ?`,
		documentsUsers, models.LeonID,
	).Scan(&data, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get leon: %w", err)
	}

	var leon models.Leon
	if err := json.Unmarshal([]byte(data), &leon); err != nil {
		return nil, fmt.Errorf("failed to decode leon: %w", err)
	}
	leon.ID = models.LeonID
	leon.Version = version
	if leon.Experiences == nil {
		leon.Experiences = []models.Experience{}
	}
	return &leon, nil
}

// Create writes the seed document
func (s *SQLiteStore) Create(ctx context.Context, leon *models.Leon, overwrite bool) (bool, error) {
	data, err := json.Marshal(leon)
	if err != nil {
		return false, fmt.Errorf("failed to encode leon: %w", err)
	}

	query := `INSERT INTO documents (collection, id, data, version) VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO NOTHING`
	if overwrite {
		query = `INSERT INTO documents (collection, id, data, version) VALUES (?, ?, ?, ?)
			ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, version = excluded.version`
	}

	result, err := s.db.ExecContext(ctx, query, documentsUsers, models.LeonID, string(data), leon.Version)
	if err != nil {
		return false, fmt.Errorf("failed to write leon: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to write leon: %w", err)
	}
	return affected > 0, nil
}

// Update reads, mutates and writes the document inside one transaction,
// guarding the write with the version that was read.
func (s *SQLiteStore) Update(ctx context.Context, update models.LeonUpdate) (*models.Leon, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	leon, err := s.get(ctx, tx.QueryRowContext)
	if err != nil {
		return nil, err
	}
	if update.ExpectedVersion != nil && *update.ExpectedVersion != leon.Version {
		return nil, ErrVersionConflict
	}

	readVersion := leon.Version
	update.Apply(leon, s.now())

	data, err := json.Marshal(leon)
	if err != nil {
		return nil, fmt.Errorf("failed to encode leon: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = ?, version = ? WHERE collection = ? AND id = ? AND version = ?`,
		string(data), leon.Version, documentsUsers, models.LeonID, readVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update leon: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, ErrVersionConflict
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit leon update: %w", err)
	}
	return leon, nil
}

// Insert stores one knowledge record
func (s *SQLiteStore) Insert(ctx context.Context, k *models.Knowledge) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO knowledge (id, topic, topic_key, content, source, learned_at) VALUES (?, ?, ?, ?, ?, ?)`,
		k.ID, k.Topic, k.Key(), k.Content, k.Source, k.LearnedAt.UTC().Format(learnedAtLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert knowledge: %w", err)
	}
	return nil
}

// FindByTopicKey returns records whose key equals key, oldest first
func (s *SQLiteStore) FindByTopicKey(ctx context.Context, key string) ([]models.Knowledge, error) {
	return s.queryKnowledge(ctx,
		`SELECT id, topic, topic_key, content, source, learned_at FROM knowledge WHERE topic_key = ? ORDER BY learned_at`,
		key,
	)
}

// All returns every record, oldest first
func (s *SQLiteStore) All(ctx context.Context) ([]models.Knowledge, error) {
	return s.queryKnowledge(ctx,
		`SELECT id, topic, topic_key, content, source, learned_at FROM knowledge ORDER BY learned_at`,
	)
}

// Count returns the number of knowledge records
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count knowledge: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) queryKnowledge(ctx context.Context, query string, args ...any) ([]models.Knowledge, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge: %w", err)
	}
	defer rows.Close()

	records := []models.Knowledge{}
	for rows.Next() {
		var k models.Knowledge
		var learnedAt string
		if err := rows.Scan(&k.ID, &k.Topic, &k.TopicKey, &k.Content, &k.Source, &learnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan knowledge: %w", err)
		}
		if k.LearnedAt, err = time.Parse(learnedAtLayout, learnedAt); err != nil {
			return nil, fmt.Errorf("failed to parse learned_at %q: %w", learnedAt, err)
		}
		records = append(records, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read knowledge: %w", err)
	}
	return records, nil
}
