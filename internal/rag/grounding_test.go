package rag

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upb/research-assistant/models"
)

func TestBuildContext(t *testing.T) {
	d := &models.Document{
		ID:          "p",
		Title:       "Paper",
		Authors:     "Ali & Anwar",
		Year:        "2021",
		Content:     "content",
		KeyFindings: []string{"one", "two", "three", "four"},
	}

	entries := BuildContext([]models.SearchResult{{Document: d, Relevance: 7, MatchedContent: "content..."}})

	require.Len(t, entries, 1)
	assert.Equal(t, ContextEntry{
		Source:      "Paper",
		Authors:     "Ali & Anwar",
		Year:        "2021",
		Relevance:   7,
		Content:     "content...",
		KeyFindings: []string{"one", "two", "three"},
	}, entries[0])

	entries[0].KeyFindings[0] = "changed"
	assert.Equal(t, "one", d.KeyFindings[0])
}

func TestSystemPrompt(t *testing.T) {
	engine := defaultEngine(t)
	results := engine.Search("charismatic")

	prompt, err := SystemPrompt(results, engine.store.Len())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "You are a specialized research assistant with access to 22 academic papers"))
	assert.Contains(t, prompt, "- Charisma Leadership an Important Determinant for the Crisis Management (Alkhawlani & AL Haderi, 2016)")
	assert.Contains(t, prompt, `"authors": "Ali & Anwar"`)
	assert.Contains(t, prompt, "7. At the end of your response")

	start := strings.Index(prompt, "Context from relevant papers:\n") + len("Context from relevant papers:\n")
	end := strings.Index(prompt, "\n\nInstructions:")
	var entries []ContextEntry
	require.NoError(t, json.Unmarshal([]byte(prompt[start:end]), &entries))
	assert.Len(t, entries, len(results))
	assert.Equal(t, results[0].Document.Title, entries[0].Source)
}

func TestSystemPrompt_NoResults(t *testing.T) {
	prompt, err := SystemPrompt(nil, 3)
	require.NoError(t, err)

	assert.Contains(t, prompt, "access to 3 academic papers")
	assert.Contains(t, prompt, "Context from relevant papers:\n[]")
}
