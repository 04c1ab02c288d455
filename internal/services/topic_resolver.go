package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"leon/internal/logging"
	"leon/internal/models"
	"leon/internal/store"

	"github.com/google/uuid"
)

// DefaultDenylist holds the markers of pages that are about a work or a band
// rather than the topic itself, plus disambiguation phrasing in both languages
var DefaultDenylist = []string{
	"film", "película",
	"novel", "novela",
	"band", "banda",
	"album", "álbum",
	"song", "canción",
	"television series", "serie de televisión",
	"video game", "videojuego",
	"may refer to", "puede referirse a",
	"disambiguation", "desambiguación",
}

const defaultSearchLimit = 10

// WikiSource is the encyclopedia capability the resolver needs
type WikiSource interface {
	Search(ctx context.Context, lang, query string, limit int) ([]WikiSearchResult, error)
	Summary(ctx context.Context, lang, title string) (*WikiSummary, error)
}

// IsDenylisted reports whether title or summary contains any marker,
// compared case-insensitively
func IsDenylisted(title, summary string, markers []string) bool {
	title = models.TopicKey(title)
	summary = models.TopicKey(summary)
	for _, marker := range markers {
		m := models.TopicKey(marker)
		if m == "" {
			continue
		}
		if strings.Contains(title, m) || strings.Contains(summary, m) {
			return true
		}
	}
	return false
}

// SelectBestMatch picks an exact case-insensitive title match, else the first
// title containing query, else the first result. ok is false for no results.
func SelectBestMatch(query string, results []WikiSearchResult) (best WikiSearchResult, ok bool) {
	if len(results) == 0 {
		return WikiSearchResult{}, false
	}

	key := models.TopicKey(query)
	for _, r := range results {
		if models.TopicKey(r.Title) == key {
			return r, true
		}
	}
	for _, r := range results {
		if strings.Contains(models.TopicKey(r.Title), key) {
			return r, true
		}
	}
	return results[0], true
}

// Denylist is a replaceable set of disambiguation markers, safe for concurrent use
type Denylist struct {
	mu      sync.RWMutex
	markers []string
}

// NewDenylist creates a denylist; empty markers select DefaultDenylist
func NewDenylist(markers []string) *Denylist {
	d := &Denylist{}
	d.Replace(markers)
	return d
}

// Replace swaps the marker set (used by the file watcher)
func (d *Denylist) Replace(markers []string) {
	if len(markers) == 0 {
		markers = DefaultDenylist
	}
	cp := make([]string, len(markers))
	copy(cp, markers)

	d.mu.Lock()
	d.markers = cp
	d.mu.Unlock()
}

// Markers returns the current marker set
func (d *Denylist) Markers() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.markers
}

// Matches applies IsDenylisted with the current markers
func (d *Denylist) Matches(title, summary string) bool {
	return IsDenylisted(title, summary, d.Markers())
}

// TopicResolver learns a topic from the encyclopedia and stores it as knowledge
type TopicResolver struct {
	wiki         WikiSource
	translator   Translator
	knowledge    store.KnowledgeStore
	denylist     *Denylist
	primaryLang  string
	fallbackLang string
	searchLimit  int
	now          func() time.Time
}

// NewTopicResolver creates a resolver searching primaryLang first and
// fallbackLang (after translating the topic) when that finds nothing
func NewTopicResolver(
	wiki WikiSource,
	translator Translator,
	knowledge store.KnowledgeStore,
	denylist *Denylist,
	primaryLang, fallbackLang string,
) *TopicResolver {
	if denylist == nil {
		denylist = NewDenylist(nil)
	}
	if translator == nil {
		translator = NoopTranslator{}
	}
	return &TopicResolver{
		wiki:         wiki,
		translator:   translator,
		knowledge:    knowledge,
		denylist:     denylist,
		primaryLang:  primaryLang,
		fallbackLang: fallbackLang,
		searchLimit:  defaultSearchLimit,
		now:          time.Now,
	}
}

// Learn resolves topic and persists the summary of the best match.
// Returns ErrValidation, ErrTopicNotFound or ErrAmbiguousTopic (wrapped) for
// the user-facing failures; anything else is a collaborator failure.
func (r *TopicResolver) Learn(ctx context.Context, topic string) (*models.Knowledge, error) {
	start := time.Now()
	knowledge, err := r.learn(ctx, strings.TrimSpace(topic))
	GetMetrics().RecordWikiLookup(lookupOutcome(err), time.Since(start).Seconds())
	return knowledge, err
}

func (r *TopicResolver) learn(ctx context.Context, topic string) (*models.Knowledge, error) {
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrValidation)
	}

	logger := logging.WithTopic("learn", topic)

	lang, query := r.primaryLang, topic
	results, err := r.wiki.Search(ctx, lang, query, r.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search %s wiki: %w", lang, err)
	}

	if len(results) == 0 && r.fallbackLang != "" && r.fallbackLang != r.primaryLang {
		translated, err := r.translator.Translate(ctx, topic, r.primaryLang, r.fallbackLang)
		if err != nil {
			GetMetrics().RecordTranslation("error")
			return nil, fmt.Errorf("translate topic to %s: %w", r.fallbackLang, err)
		}
		GetMetrics().RecordTranslation("ok")

		lang, query = r.fallbackLang, translated
		logging.WithLanguage(logger, lang).Debug("no primary results, searching fallback", "query", query)

		results, err = r.wiki.Search(ctx, lang, query, r.searchLimit)
		if err != nil {
			return nil, fmt.Errorf("search %s wiki: %w", lang, err)
		}
	}

	best, ok := SelectBestMatch(query, results)
	if !ok {
		return nil, fmt.Errorf("%w: no results for %q", ErrTopicNotFound, topic)
	}

	if r.denylist.Matches(best.Title, best.Snippet) {
		logger.Info("best match rejected by denylist", "title", best.Title)
		return nil, fmt.Errorf("%w: %q looks like a work or a disambiguation page", ErrAmbiguousTopic, best.Title)
	}

	summary, err := r.wiki.Summary(ctx, lang, best.Title)
	if err != nil {
		if errors.Is(err, ErrTopicNotFound) {
			return nil, fmt.Errorf("%w: no summary for %q", ErrTopicNotFound, best.Title)
		}
		return nil, fmt.Errorf("fetch summary of %q: %w", best.Title, err)
	}

	title := summary.Title
	if title == "" {
		title = best.Title
	}
	if summary.IsDisambiguation() || r.denylist.Matches(title, summary.Extract) {
		logger.Info("summary rejected by denylist", "title", title)
		return nil, fmt.Errorf("%w: %q looks like a work or a disambiguation page", ErrAmbiguousTopic, title)
	}
	if summary.Extract == "" {
		return nil, fmt.Errorf("%w: %q has no summary text", ErrTopicNotFound, title)
	}

	knowledge := &models.Knowledge{
		ID:        uuid.NewString(),
		Topic:     topic,
		TopicKey:  models.TopicKey(topic),
		Content:   summary.Extract,
		Source:    fmt.Sprintf("Wikipedia (%s): %s", lang, title),
		LearnedAt: r.now(),
	}
	if err := r.knowledge.Insert(ctx, knowledge); err != nil {
		return nil, fmt.Errorf("store knowledge: %w", err)
	}

	GetMetrics().RecordLesson("wiki")
	logging.WithLanguage(logger, lang).Info("topic learned", "title", title, "id", knowledge.ID)
	return knowledge, nil
}

func lookupOutcome(err error) string {
	switch {
	case err == nil:
		return "learned"
	case errors.Is(err, ErrTopicNotFound):
		return "not_found"
	case errors.Is(err, ErrAmbiguousTopic):
		return "ambiguous"
	case errors.Is(err, ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
