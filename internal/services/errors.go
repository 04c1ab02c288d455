package services

import "errors"

var (
	// ErrValidation wraps every client input error
	ErrValidation = errors.New("validation failed")

	// ErrTopicNotFound is returned when neither the wiki nor stored knowledge has the topic
	ErrTopicNotFound = errors.New("topic not found")

	// ErrAmbiguousTopic is returned when the best match is a disambiguation or off-topic page
	ErrAmbiguousTopic = errors.New("ambiguous topic")
)
