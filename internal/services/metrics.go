package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Singleton metrics
	LeonUpdates         *prometheus.CounterVec
	ExperiencesAppended prometheus.Counter

	// Knowledge metrics
	LessonsTaught  *prometheus.CounterVec
	WikiLookups    *prometheus.CounterVec
	WikiLatency    prometheus.Histogram
	Translations   *prometheus.CounterVec
	RecallRequests *prometheus.CounterVec
}

var globalMetrics *Metrics

// InitMetrics registers the application metrics with reg.
// Services record nothing until this has been called.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	metrics := &Metrics{
		// Updates by kind: "learn", "apply", "reflect", "seed"
		LeonUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leon_updates_total",
			Help: "Total number of singleton updates by kind",
		}, []string{"kind"}),

		ExperiencesAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "leon_experiences_appended_total",
			Help: "Total number of experiences appended to the singleton",
		}),

		// Knowledge records written by source: "manual" or "wiki"
		LessonsTaught: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leon_lessons_taught_total",
			Help: "Total number of knowledge records written by source",
		}, []string{"source"}),

		// Outcome: "learned", "not_found", "ambiguous", "error"
		WikiLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leon_wiki_lookups_total",
			Help: "Total number of topic resolutions by outcome",
		}, []string{"outcome"}),

		WikiLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "leon_wiki_lookup_duration_seconds",
			Help:    "Topic resolution latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),

		Translations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leon_translations_total",
			Help: "Total number of fallback translations by outcome",
		}, []string{"outcome"}),

		// Match: "exact", "partial", "none"
		RecallRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leon_recall_requests_total",
			Help: "Total number of recall lookups by match kind",
		}, []string{"match"}),
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance (nil before InitMetrics)
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordLeonUpdate records a singleton update and its appended experiences
func (m *Metrics) RecordLeonUpdate(kind string, experiences int) {
	if m == nil {
		return
	}
	m.LeonUpdates.WithLabelValues(kind).Inc()
	m.ExperiencesAppended.Add(float64(experiences))
}

// RecordLesson records a knowledge write
func (m *Metrics) RecordLesson(source string) {
	if m == nil {
		return
	}
	m.LessonsTaught.WithLabelValues(source).Inc()
}

// RecordWikiLookup records a topic resolution outcome and latency
func (m *Metrics) RecordWikiLookup(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.WikiLookups.WithLabelValues(outcome).Inc()
	m.WikiLatency.Observe(seconds)
}

// RecordTranslation records a fallback translation outcome
func (m *Metrics) RecordTranslation(outcome string) {
	if m == nil {
		return
	}
	m.Translations.WithLabelValues(outcome).Inc()
}

// RecordRecall records a recall lookup
func (m *Metrics) RecordRecall(match string) {
	if m == nil {
		return
	}
	m.RecallRequests.WithLabelValues(match).Inc()
}
