package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leon/internal/database"
	"leon/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLeonStore keeps the singleton in the "usuarios" collection
type MongoLeonStore struct {
	mongodb    *database.MongoDB
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoLeonStore creates a singleton store backed by MongoDB
func NewMongoLeonStore(mongodb *database.MongoDB) *MongoLeonStore {
	return &MongoLeonStore{
		mongodb:    mongodb,
		collection: mongodb.Collection(database.CollectionUsers),
		now:        time.Now,
	}
}

// Ping checks the underlying connection
func (s *MongoLeonStore) Ping(ctx context.Context) error {
	return s.mongodb.Ping(ctx)
}

// Get fetches the singleton
func (s *MongoLeonStore) Get(ctx context.Context) (*models.Leon, error) {
	var leon models.Leon
	err := s.collection.FindOne(ctx, bson.M{"_id": models.LeonID}).Decode(&leon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get leon: %w", err)
	}
	if leon.Experiences == nil {
		leon.Experiences = []models.Experience{}
	}
	return &leon, nil
}

// Create writes the seed document
func (s *MongoLeonStore) Create(ctx context.Context, leon *models.Leon, overwrite bool) (bool, error) {
	doc := *leon
	doc.ID = models.LeonID
	// A nil slice encodes as null, which $push refuses
	if doc.Experiences == nil {
		doc.Experiences = []models.Experience{}
	}

	if overwrite {
		_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": models.LeonID}, doc, options.Replace().SetUpsert(true))
		if err != nil {
			return false, fmt.Errorf("failed to replace leon: %w", err)
		}
		return true, nil
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert leon: %w", err)
	}
	return true, nil
}

// Update applies the mutation with field operators in a single round trip:
// $set for scalars, $push for experiences and $inc for the version.
func (s *MongoLeonStore) Update(ctx context.Context, update models.LeonUpdate) (*models.Leon, error) {
	set := bson.M{"actualizadoEn": s.now()}
	if update.CurrentState != nil {
		set["estado_actual"] = *update.CurrentState
	}
	if update.LastLesson != nil {
		set["ultimo_aprendizaje"] = *update.LastLesson
	}
	if update.Energy != nil {
		set["energia"] = *update.Energy
	}
	if update.CurrentColor != nil {
		set["color_actual"] = *update.CurrentColor
	}
	if update.BondStrength != nil {
		set["vinculo"] = *update.BondStrength
	}

	doc := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	if len(update.NewExperiences) > 0 {
		doc["$push"] = bson.M{"experiencias": bson.M{"$each": update.NewExperiences}}
	}

	filter := bson.M{"_id": models.LeonID}
	if update.ExpectedVersion != nil {
		filter["version"] = *update.ExpectedVersion
	}

	var leon models.Leon
	err := s.collection.FindOneAndUpdate(
		ctx,
		filter,
		doc,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&leon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.missOrConflict(ctx, update)
		}
		return nil, fmt.Errorf("failed to update leon: %w", err)
	}
	return &leon, nil
}

// missOrConflict tells a missing singleton apart from a stale version
func (s *MongoLeonStore) missOrConflict(ctx context.Context, update models.LeonUpdate) error {
	if update.ExpectedVersion == nil {
		return ErrNotFound
	}
	count, err := s.collection.CountDocuments(ctx, bson.M{"_id": models.LeonID})
	if err != nil {
		return fmt.Errorf("failed to check leon: %w", err)
	}
	if count > 0 {
		return ErrVersionConflict
	}
	return ErrNotFound
}

// MongoKnowledgeStore keeps knowledge records in their own collection
type MongoKnowledgeStore struct {
	collection *mongo.Collection
}

// NewMongoKnowledgeStore creates a knowledge store backed by MongoDB
func NewMongoKnowledgeStore(mongodb *database.MongoDB) *MongoKnowledgeStore {
	return &MongoKnowledgeStore{
		collection: mongodb.Collection(database.CollectionKnowledge),
	}
}

// Insert stores one record
func (s *MongoKnowledgeStore) Insert(ctx context.Context, k *models.Knowledge) error {
	if _, err := s.collection.InsertOne(ctx, k); err != nil {
		return fmt.Errorf("failed to insert knowledge: %w", err)
	}
	return nil
}

// FindByTopicKey returns records whose folded topic equals key, oldest first
func (s *MongoKnowledgeStore) FindByTopicKey(ctx context.Context, key string) ([]models.Knowledge, error) {
	return s.find(ctx, bson.M{"topicKey": key})
}

// All returns every record, oldest first
func (s *MongoKnowledgeStore) All(ctx context.Context) ([]models.Knowledge, error) {
	return s.find(ctx, bson.M{})
}

// Count returns the number of stored records
func (s *MongoKnowledgeStore) Count(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count knowledge: %w", err)
	}
	return count, nil
}

func (s *MongoKnowledgeStore) find(ctx context.Context, filter bson.M) ([]models.Knowledge, error) {
	opts := options.Find().SetSort(bson.D{{Key: "learnedAt", Value: 1}})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.Knowledge{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge: %w", err)
	}
	return records, nil
}
