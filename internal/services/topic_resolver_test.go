package services

import (
	"context"
	"errors"
	"testing"

	"leon/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWiki struct {
	results   map[string][]WikiSearchResult // lang:query
	summaries map[string]*WikiSummary       // lang:title
	searchErr error
	searches  []string
}

func (w *stubWiki) Search(ctx context.Context, lang, query string, limit int) ([]WikiSearchResult, error) {
	w.searches = append(w.searches, lang+":"+query)
	if w.searchErr != nil {
		return nil, w.searchErr
	}
	return w.results[lang+":"+query], nil
}

func (w *stubWiki) Summary(ctx context.Context, lang, title string) (*WikiSummary, error) {
	summary, ok := w.summaries[lang+":"+title]
	if !ok {
		return nil, ErrTopicNotFound
	}
	return summary, nil
}

type stubTranslator struct {
	translation string
	err         error
	calls       []string
}

func (s *stubTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	s.calls = append(s.calls, source+">"+target+":"+text)
	if s.err != nil {
		return "", s.err
	}
	return s.translation, nil
}

func TestSelectBestMatch(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		results []string
		want    string
		wantOK  bool
	}{
		{"exact beats earlier substring", "sol", []string{"Sistema solar", "Sol"}, "Sol", true},
		{"exact ignores case", "LUNA", []string{"Luna llena", "luna"}, "luna", true},
		{"first substring match", "marte", []string{"Exploración de Marte", "Marte (planeta)"}, "Exploración de Marte", true},
		{"falls back to first result", "astro", []string{"Estrella", "Planeta"}, "Estrella", true},
		{"no results", "sol", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var results []WikiSearchResult
			for _, title := range tt.results {
				results = append(results, WikiSearchResult{Title: title})
			}

			best, ok := SelectBestMatch(tt.query, results)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, best.Title)
		})
	}
}

func TestIsDenylisted(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		summary string
		want    bool
	}{
		{"film in title", "Sol (película)", "", true},
		{"english disambiguation", "Mercury", "Mercury may refer to:", true},
		{"spanish disambiguation upper case", "Luna", "LUNA PUEDE REFERIRSE A varias cosas", true},
		{"video game summary", "Halo", "Halo is a video game franchise", true},
		{"clean page", "Sol", "El Sol es la estrella del sistema solar.", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDenylisted(tt.title, tt.summary, DefaultDenylist))
		})
	}
}

func TestDenylist_Replace(t *testing.T) {
	denylist := NewDenylist(nil)
	assert.Equal(t, DefaultDenylist, denylist.Markers())
	assert.True(t, denylist.Matches("Thriller (album)", ""))

	denylist.Replace([]string{"planeta enano"})
	assert.False(t, denylist.Matches("Thriller (album)", ""))
	assert.True(t, denylist.Matches("Plutón", "Plutón es un planeta enano"))

	denylist.Replace(nil)
	assert.Equal(t, DefaultDenylist, denylist.Markers())
}

func newTestResolver(wiki *stubWiki, translator Translator, knowledge store.KnowledgeStore) *TopicResolver {
	return NewTopicResolver(wiki, translator, knowledge, NewDenylist(nil), "es", "en")
}

func TestTopicResolver_LearnPrimary(t *testing.T) {
	ctx := context.Background()
	memory := store.NewMemoryStore()
	translator := &stubTranslator{translation: "Sun"}
	wiki := &stubWiki{
		results: map[string][]WikiSearchResult{
			"es:sol": {{Title: "Sistema solar"}, {Title: "Sol"}},
		},
		summaries: map[string]*WikiSummary{
			"es:Sol": {Type: "standard", Title: "Sol", Extract: "El Sol es la estrella del sistema solar."},
		},
	}

	knowledge, err := newTestResolver(wiki, translator, memory).Learn(ctx, "  sol ")
	require.NoError(t, err)

	assert.Equal(t, "sol", knowledge.Topic)
	assert.Equal(t, "El Sol es la estrella del sistema solar.", knowledge.Content)
	assert.Equal(t, "Wikipedia (es): Sol", knowledge.Source)
	assert.NotEmpty(t, knowledge.ID)
	assert.Empty(t, translator.calls)

	count, err := memory.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTopicResolver_LearnTranslatesWhenPrimaryIsEmpty(t *testing.T) {
	ctx := context.Background()
	memory := store.NewMemoryStore()
	translator := &stubTranslator{translation: "Moon"}
	wiki := &stubWiki{
		results: map[string][]WikiSearchResult{
			"en:Moon": {{Title: "Moon"}},
		},
		summaries: map[string]*WikiSummary{
			"en:Moon": {Type: "standard", Title: "Moon", Extract: "The Moon is Earth's only natural satellite."},
		},
	}

	knowledge, err := newTestResolver(wiki, translator, memory).Learn(ctx, "Luna")
	require.NoError(t, err)

	assert.Equal(t, []string{"es>en:Luna"}, translator.calls)
	assert.Equal(t, []string{"es:Luna", "en:Moon"}, wiki.searches)
	assert.Equal(t, "Luna", knowledge.Topic)
	assert.Equal(t, "Wikipedia (en): Moon", knowledge.Source)
}

func TestTopicResolver_LearnNotFoundAfterFallback(t *testing.T) {
	ctx := context.Background()
	memory := store.NewMemoryStore()
	translator := &stubTranslator{translation: "Nothing"}
	wiki := &stubWiki{}

	_, err := newTestResolver(wiki, translator, memory).Learn(ctx, "Nada")
	assert.ErrorIs(t, err, ErrTopicNotFound)
	assert.Len(t, translator.calls, 1)
	assert.Equal(t, []string{"es:Nada", "en:Nothing"}, wiki.searches)

	count, _ := memory.Count(ctx)
	assert.Zero(t, count)
}

func TestTopicResolver_LearnRejectsDenylistedMatch(t *testing.T) {
	ctx := context.Background()
	memory := store.NewMemoryStore()
	wiki := &stubWiki{
		results: map[string][]WikiSearchResult{
			"es:Titanic": {{Title: "Titanic (película)"}, {Title: "Titanic (banda sonora)"}},
		},
		summaries: map[string]*WikiSummary{
			"es:Titanic (película)": {Type: "standard", Title: "Titanic (película)", Extract: "Titanic es una película de 1997."},
		},
	}

	_, err := newTestResolver(wiki, &stubTranslator{}, memory).Learn(ctx, "Titanic")
	assert.ErrorIs(t, err, ErrAmbiguousTopic)

	count, _ := memory.Count(ctx)
	assert.Zero(t, count)
}

func TestTopicResolver_LearnRejectsDisambiguationSummary(t *testing.T) {
	ctx := context.Background()
	memory := store.NewMemoryStore()
	wiki := &stubWiki{
		results: map[string][]WikiSearchResult{
			"es:Mercurio": {{Title: "Mercurio"}},
		},
		summaries: map[string]*WikiSummary{
			"es:Mercurio": {Type: "disambiguation", Title: "Mercurio", Extract: "Mercurio es el nombre de:"},
		},
	}

	_, err := newTestResolver(wiki, &stubTranslator{}, memory).Learn(ctx, "Mercurio")
	assert.ErrorIs(t, err, ErrAmbiguousTopic)

	count, _ := memory.Count(ctx)
	assert.Zero(t, count)
}

func TestTopicResolver_LearnEmptyExtractIsNotFound(t *testing.T) {
	memory := store.NewMemoryStore()
	wiki := &stubWiki{
		results: map[string][]WikiSearchResult{
			"es:Vacío": {{Title: "Vacío"}},
		},
		summaries: map[string]*WikiSummary{
			"es:Vacío": {Type: "standard", Title: "Vacío"},
		},
	}

	_, err := newTestResolver(wiki, &stubTranslator{}, memory).Learn(context.Background(), "Vacío")
	assert.ErrorIs(t, err, ErrTopicNotFound)
}

func TestTopicResolver_LearnCollaboratorFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("translation error", func(t *testing.T) {
		memory := store.NewMemoryStore()
		translator := &stubTranslator{err: errors.New("quota exceeded")}

		_, err := newTestResolver(&stubWiki{}, translator, memory).Learn(ctx, "Luna")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrTopicNotFound)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("search error", func(t *testing.T) {
		memory := store.NewMemoryStore()
		wiki := &stubWiki{searchErr: errors.New("connection refused")}

		_, err := newTestResolver(wiki, &stubTranslator{}, memory).Learn(ctx, "Luna")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestTopicResolver_LearnRequiresTopic(t *testing.T) {
	_, err := newTestResolver(&stubWiki{}, &stubTranslator{}, store.NewMemoryStore()).Learn(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrValidation)
}
