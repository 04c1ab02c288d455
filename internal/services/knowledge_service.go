package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leon/internal/logging"
	"leon/internal/models"
	"leon/internal/store"

	"github.com/google/uuid"
)

// KnowledgeService stores taught lessons and recalls them by topic
type KnowledgeService struct {
	store store.KnowledgeStore
	now   func() time.Time
}

// NewKnowledgeService creates a new knowledge service
func NewKnowledgeService(knowledgeStore store.KnowledgeStore) *KnowledgeService {
	return &KnowledgeService{
		store: knowledgeStore,
		now:   time.Now,
	}
}

// Teach stores a lesson. topic, content and source are all required.
func (s *KnowledgeService) Teach(ctx context.Context, topic, content, source string) (*models.Knowledge, error) {
	topic = strings.TrimSpace(topic)
	content = strings.TrimSpace(content)
	source = strings.TrimSpace(source)

	var missing []string
	if topic == "" {
		missing = append(missing, "topic")
	}
	if content == "" {
		missing = append(missing, "content")
	}
	if source == "" {
		missing = append(missing, "source")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}

	knowledge := &models.Knowledge{
		ID:        uuid.NewString(),
		Topic:     topic,
		TopicKey:  models.TopicKey(topic),
		Content:   content,
		Source:    source,
		LearnedAt: s.now(),
	}
	if err := s.store.Insert(ctx, knowledge); err != nil {
		return nil, fmt.Errorf("failed to store knowledge: %w", err)
	}

	GetMetrics().RecordLesson("manual")
	logging.WithTopic("teach", topic).Info("lesson stored", "id", knowledge.ID, "source", source)
	return knowledge, nil
}

// Recall returns the records whose topic equals topic case-insensitively.
// Without an exact match it falls back to records whose topic contains the
// query or is contained in it.
func (s *KnowledgeService) Recall(ctx context.Context, topic string) ([]models.Knowledge, error) {
	key := models.TopicKey(topic)
	if key == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrValidation)
	}

	exact, err := s.store.FindByTopicKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge: %w", err)
	}
	if len(exact) > 0 {
		GetMetrics().RecordRecall("exact")
		return exact, nil
	}

	all, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan knowledge: %w", err)
	}

	var partial []models.Knowledge
	for _, k := range all {
		recordKey := k.Key()
		if recordKey == "" {
			continue
		}
		if strings.Contains(recordKey, key) || strings.Contains(key, recordKey) {
			partial = append(partial, k)
		}
	}

	if len(partial) == 0 {
		GetMetrics().RecordRecall("none")
		return nil, fmt.Errorf("%w: nothing recalled about %q", ErrTopicNotFound, strings.TrimSpace(topic))
	}

	GetMetrics().RecordRecall("partial")
	return partial, nil
}
