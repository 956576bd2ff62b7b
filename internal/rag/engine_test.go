package rag

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upb/research-assistant/corpus"
	"github.com/upb/research-assistant/models"
)

func defaultEngine(t *testing.T) *Engine {
	t.Helper()
	store, err := corpus.Default()
	require.NoError(t, err)
	return NewEngine(store)
}

func fixtureEngine(t *testing.T, docs ...models.Document) *Engine {
	t.Helper()
	store, err := corpus.New(docs)
	require.NoError(t, err)
	return NewEngine(store)
}

func doc(id, title, content string, findings ...string) models.Document {
	return models.Document{
		ID:          id,
		Title:       title,
		Authors:     "Author",
		Year:        "2020",
		Category:    models.CategoryLeadership,
		Content:     content,
		KeyFindings: findings,
	}
}

func resultIDs(results []models.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Document.ID
	}
	return out
}

func TestScore(t *testing.T) {
	d := doc("x", "Crisis Leadership", "A study of resilience.", "Trust matters", "Resilience is built")

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "title only", query: "crisis", want: 10},
		{name: "findings only", query: "trust", want: 5},
		{name: "content only", query: "a study", want: 2},
		{name: "findings and content", query: "resilience", want: 7},
		{name: "title findings content", query: "", want: 17},
		{name: "no match", query: "katrina", want: 0},
		{name: "findings counted once", query: "s", want: 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(&d, tt.query))
		})
	}
}

func TestEngine_ExclusionInvariant(t *testing.T) {
	engine := fixtureEngine(t,
		doc("match", "Katrina response", "body"),
		doc("miss", "Other", "nothing here", "no mention"),
	)

	results := engine.Search("katrina")

	assert.Equal(t, []string{"match"}, resultIDs(results))
	for _, r := range results {
		assert.Greater(t, r.Relevance, 0)
	}
}

func TestEngine_ScoreAdditivity(t *testing.T) {
	engine := fixtureEngine(t,
		doc("d", "Sensemaking in crises", "Sensemaking is hard.", "Unrelated finding"),
	)

	results := engine.Search("sensemaking")

	require.Len(t, results, 1)
	assert.Equal(t, 12, results[0].Relevance)
}

func TestEngine_CapAndOrdering(t *testing.T) {
	engine := fixtureEngine(t,
		doc("c1", "Other", "crisis"),                     // 2
		doc("c2", "Crisis A", "crisis", "crisis finding"), // 17
		doc("c3", "Other", "other", "crisis finding"),    // 5
		doc("c4", "Crisis B", "other"),                   // 10
		doc("c5", "Other", "crisis", "crisis finding"),   // 7
		doc("c6", "Crisis C", "crisis"),                  // 12
		doc("c7", "Other", "crisis"),                     // 2
	)

	results := engine.Search("crisis")

	require.Len(t, results, MaxResults)
	assert.Equal(t, []string{"c2", "c6", "c4", "c5", "c3"}, resultIDs(results))
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Relevance, results[i].Relevance)
	}
}

func TestEngine_TiesKeepCorpusOrder(t *testing.T) {
	engine := fixtureEngine(t,
		doc("first", "x", "shared term"),
		doc("second", "y", "shared term"),
		doc("third", "z", "shared term"),
	)

	assert.Equal(t, []string{"first", "second", "third"}, resultIDs(engine.Search("shared")))
}

func TestEngine_ExcerptBound(t *testing.T) {
	long := strings.Repeat("é", ExcerptLength+120)
	engine := fixtureEngine(t,
		doc("long", "Long paper", long),
		doc("short", "Short paper", "tiny"),
	)

	results := engine.Search("paper")
	require.Len(t, results, 2)

	for _, r := range results {
		want := utf8.RuneCountInString(r.Document.Content)
		if want > ExcerptLength {
			want = ExcerptLength
		}
		assert.Equal(t, want+len(TruncationMarker), utf8.RuneCountInString(r.MatchedContent))
		assert.True(t, strings.HasSuffix(r.MatchedContent, TruncationMarker))
	}

	assert.Equal(t, "tiny...", results[1].MatchedContent)
}

func TestEngine_CaseInsensitive(t *testing.T) {
	engine := defaultEngine(t)

	assert.Equal(t, engine.Search("katrina"), engine.Search("KATRINA"))
	assert.NotEmpty(t, engine.Search("KATRINA"))
}

func TestEngine_NoTokenization(t *testing.T) {
	engine := fixtureEngine(t, doc("d", "Crisis leadership", "body"))

	assert.Empty(t, engine.Search("leadership crisis"))
	assert.Empty(t, engine.Search(" crisis leadership"))
	assert.Len(t, engine.Search("crisis leadership"), 1)
}

func TestEngine_SharesDocuments(t *testing.T) {
	engine := defaultEngine(t)

	results := engine.Search("erbil")
	require.NotEmpty(t, results)

	stored, err := engine.store.Get(results[0].Document.ID)
	require.NoError(t, err)
	assert.Same(t, stored, results[0].Document)
}

func TestEngine_DefaultCorpusScenarios(t *testing.T) {
	engine := defaultEngine(t)

	t.Run("charismatic", func(t *testing.T) {
		results := engine.Search("charismatic")

		byTitle := make(map[string]int)
		for _, r := range results {
			byTitle[r.Document.Title] = r.Relevance
		}

		erbil, ok := byTitle["The Role of Effective Leadership Styles in Crisis Management: A Study of Erbil, Iraq"]
		require.True(t, ok)
		assert.GreaterOrEqual(t, erbil, 2)

		charisma, ok := byTitle["Charisma Leadership an Important Determinant for the Crisis Management"]
		require.True(t, ok)
		assert.GreaterOrEqual(t, charisma, 2)

		assert.Equal(t, []string{
			"leadership-crisis-erbil",
			"administrative-crisis-leadership",
			"charisma-leadership-determinant",
		}, resultIDs(results))
	})

	t.Run("hurricane katrina", func(t *testing.T) {
		results := engine.Search("Hurricane Katrina")

		assert.Equal(t, []string{
			"increasing-impact-ulmer",
			"leadership-times-crisis-framework",
		}, resultIDs(results))
		assert.Equal(t, "Leadership in Times of Crisis: A Framework for Assessment", results[1].Document.Title)
		assert.Equal(t, 2, results[1].Relevance)
	})

	t.Run("empty query returns five documents", func(t *testing.T) {
		results := engine.Search("")

		require.Len(t, results, 5)
		for _, r := range results {
			assert.Equal(t, 17, r.Relevance)
		}
		assert.Equal(t, []string{
			"leadership-crisis-erbil",
			"leadership-under-stress",
			"quantitative-research-methods",
			"leadership-crisis-business",
			"self-managing-leadership",
		}, resultIDs(results))
	})

	t.Run("broad query is capped", func(t *testing.T) {
		assert.Len(t, engine.Search("leadership"), MaxResults)
	})

	t.Run("unknown term", func(t *testing.T) {
		assert.Empty(t, engine.Search("blockchain"))
	})

	t.Run("long input", func(t *testing.T) {
		assert.Empty(t, engine.Search(strings.Repeat("crisis ", 10000)))
	})
}

func TestEngine_ConcurrentSearch(t *testing.T) {
	engine := defaultEngine(t)
	want := resultIDs(engine.Search("crisis"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, resultIDs(engine.Search("crisis")))
		}()
	}
	wg.Wait()
}
