package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Knowledge is one learned fact, stored independently of the singleton
type Knowledge struct {
	ID        string    `bson:"_id" json:"id"`
	Topic     string    `bson:"topic" json:"topic"`
	TopicKey  string    `bson:"topicKey" json:"-"` // Case-folded topic for exact lookup
	Content   string    `bson:"content" json:"content"`
	Source    string    `bson:"source" json:"source"`
	LearnedAt time.Time `bson:"learnedAt" json:"learnedAt"`
}

// TopicKey normalizes a topic for case-insensitive comparison.
// A Caser is stateful, so a fresh one is built per call.
func TopicKey(topic string) string {
	return cases.Fold().String(strings.Join(strings.Fields(topic), " "))
}

// Key returns the stored key, deriving it for records written without one
func (k *Knowledge) Key() string {
	if k.TopicKey != "" {
		return k.TopicKey
	}
	return TopicKey(k.Topic)
}
