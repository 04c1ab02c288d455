// Package store persists the León singleton and knowledge records.
//
// Handlers and services depend on the LeonStore and KnowledgeStore interfaces;
// main wires MongoDB, SQLite or the in-memory implementation behind them.
package store

import (
	"context"
	"errors"

	"leon/internal/models"
)

var (
	// ErrNotFound is returned when the singleton record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned when an update's expected version is stale
	ErrVersionConflict = errors.New("version conflict")
)

// LeonStore reads and atomically mutates the singleton record
type LeonStore interface {
	Get(ctx context.Context) (*models.Leon, error)
	// Create writes the seed document. With overwrite=false an existing
	// record is kept and created is false.
	Create(ctx context.Context, leon *models.Leon, overwrite bool) (created bool, err error)
	Update(ctx context.Context, update models.LeonUpdate) (*models.Leon, error)
}

// KnowledgeStore persists knowledge records
type KnowledgeStore interface {
	Insert(ctx context.Context, k *models.Knowledge) error
	FindByTopicKey(ctx context.Context, key string) ([]models.Knowledge, error)
	All(ctx context.Context) ([]models.Knowledge, error)
	Count(ctx context.Context) (int64, error)
}

// Pinger is implemented by backends that can report connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}
