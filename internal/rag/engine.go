package rag

import (
	"sort"
	"strings"

	"github.com/upb/research-assistant/corpus"
	"github.com/upb/research-assistant/models"
)

const (
	// MaxResults caps the number of results returned per query
	MaxResults = 5

	// ExcerptLength is the number of characters of content kept in an excerpt
	ExcerptLength = 500

	// TruncationMarker is appended to every excerpt
	TruncationMarker = "..."

	titleScore    = 10
	findingsScore = 5
	contentScore  = 2
)

// Retriever fetches ranked documents for a free-text query
type Retriever interface {
	Search(query string) []models.SearchResult
}

// Engine scores the documents of a corpus store against a query
type Engine struct {
	store *corpus.Store
}

var _ Retriever = (*Engine)(nil)

// NewEngine creates an engine over store
func NewEngine(store *corpus.Store) *Engine {
	return &Engine{store: store}
}

// Search returns at most MaxResults documents matching query, best first
func (e *Engine) Search(query string) []models.SearchResult {
	q := strings.ToLower(query)

	results := make([]models.SearchResult, 0, MaxResults)
	e.store.Each(func(_ int, doc *models.Document) bool {
		score := Score(doc, q)
		if score == 0 {
			return true
		}
		results = append(results, models.SearchResult{
			Document:       doc,
			Relevance:      score,
			MatchedContent: Excerpt(doc.Content),
		})
		return true
	})

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})

	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

// Score computes the relevance of doc for an already lower-cased query
func Score(doc *models.Document, lowerQuery string) int {
	score := 0
	if strings.Contains(strings.ToLower(doc.Title), lowerQuery) {
		score += titleScore
	}
	for _, finding := range doc.KeyFindings {
		if strings.Contains(strings.ToLower(finding), lowerQuery) {
			score += findingsScore
			break
		}
	}
	if strings.Contains(strings.ToLower(doc.Content), lowerQuery) {
		score += contentScore
	}
	return score
}

// Excerpt returns the first ExcerptLength characters of content followed by
// TruncationMarker. The marker is appended even when nothing was cut.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) > ExcerptLength {
		runes = runes[:ExcerptLength]
	}
	return string(runes) + TruncationMarker
}
