package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithTopic returns a logger scoped to a single topic lookup.
// Use this for all logging within one learn or recall request.
func WithTopic(operation, topic string) *slog.Logger {
	return slog.With(
		"operation", operation,
		"topic", topic,
	)
}

// WithLanguage returns a logger scoped to a wiki language edition
func WithLanguage(logger *slog.Logger, lang string) *slog.Logger {
	return logger.With("lang", lang)
}
