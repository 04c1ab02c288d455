package store

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"leon/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// mongoBackend joins both Mongo stores so the shared contract can run against them
type mongoBackend struct {
	*MongoLeonStore
	*MongoKnowledgeStore
}

// newMongoBackend connects to MONGODB_URI using a throwaway database.
// The test is skipped when no server is configured.
func newMongoBackend(t *testing.T) backend {
	t.Helper()

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set, skipping MongoDB integration run")
	}

	dbName := "leon_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	mongoDB, err := database.NewMongoDB(uri, dbName)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	require.NoError(t, mongoDB.Initialize(ctx))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		mongoDB.Collection(database.CollectionUsers).Database().Drop(ctx)
		mongoDB.Close(ctx)
	})

	return mongoBackend{
		MongoLeonStore:      NewMongoLeonStore(mongoDB),
		MongoKnowledgeStore: NewMongoKnowledgeStore(mongoDB),
	}
}
