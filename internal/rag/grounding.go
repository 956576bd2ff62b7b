package rag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/upb/research-assistant/models"
)

// maxContextFindings is how many key findings of each result reach the model
const maxContextFindings = 3

// ContextEntry is one retrieved document as presented to the model
type ContextEntry struct {
	Source      string   `json:"source"`
	Authors     string   `json:"authors"`
	Year        string   `json:"year"`
	Relevance   int      `json:"relevance"`
	Content     string   `json:"content"`
	KeyFindings []string `json:"keyFindings"`
}

// BuildContext converts ranked results into grounding context entries
func BuildContext(results []models.SearchResult) []ContextEntry {
	entries := make([]ContextEntry, 0, len(results))
	for _, r := range results {
		findings := r.Document.KeyFindings
		if len(findings) > maxContextFindings {
			findings = findings[:maxContextFindings]
		}
		entries = append(entries, ContextEntry{
			Source:      r.Document.Title,
			Authors:     r.Document.Authors,
			Year:        r.Document.Year,
			Relevance:   r.Relevance,
			Content:     r.MatchedContent,
			KeyFindings: append([]string{}, findings...),
		})
	}
	return entries
}

// SystemPrompt renders the instruction that constrains the model to the
// retrieved documents. corpusSize is the number of papers in the library.
func SystemPrompt(results []models.SearchResult, corpusSize int) (string, error) {
	var contextJSON bytes.Buffer
	enc := json.NewEncoder(&contextJSON)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(BuildContext(results)); err != nil {
		return "", fmt.Errorf("failed to encode grounding context: %w", err)
	}

	var available strings.Builder
	for i, r := range results {
		if i > 0 {
			available.WriteByte('\n')
		}
		fmt.Fprintf(&available, "- %s (%s, %s)", r.Document.Title, r.Document.Authors, r.Document.Year)
	}

	return fmt.Sprintf(systemPromptTemplate, corpusSize, available.String(),
		strings.TrimSuffix(contextJSON.String(), "\n")), nil
}

const systemPromptTemplate = `You are a specialized research assistant with access to %d academic papers on leadership and crisis management.

Available documents:
%s

Context from relevant papers:
%s

Instructions:
1. Answer questions based ONLY on the information provided in the context above
2. Always cite specific papers when making claims (e.g., "According to Pillai (2012)...")
3. If the answer isn't in the provided documents, say "I don't have information about that in the available documents"
4. Be precise and academic in your responses
5. When multiple papers discuss the same topic, synthesize the information
6. Include key findings and specific data when available (e.g., correlation coefficients, sample sizes)
7. At the end of your response, reference which papers you used by mentioning their titles`
