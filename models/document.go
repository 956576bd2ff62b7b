package models

import "strings"

// Category is the subject area a document is filed under
type Category string

const (
	CategoryLeadership           Category = "Leadership"
	CategoryCrisisManagement     Category = "Crisis Management"
	CategoryResearchMethods      Category = "Research Methods"
	CategoryOrganizationalTheory Category = "Organizational Theory"
)

// Categories lists every valid category in canonical order
var Categories = []Category{
	CategoryLeadership,
	CategoryCrisisManagement,
	CategoryResearchMethods,
	CategoryOrganizationalTheory,
}

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Document is a pre-extracted academic paper held in the corpus
type Document struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Authors     string   `json:"authors" yaml:"authors"`
	Year        string   `json:"year" yaml:"year"`
	URL         string   `json:"url,omitempty" yaml:"url"`
	Category    Category `json:"category" yaml:"category"`
	Content     string   `json:"content" yaml:"content"`
	KeyFindings []string `json:"keyFindings" yaml:"keyFindings"`
}

// FirstAuthor returns the leading author of a free-text author list
func (d *Document) FirstAuthor() string {
	authors := d.Authors
	for _, sep := range []string{",", "&", " et al."} {
		if i := strings.Index(authors, sep); i >= 0 {
			authors = authors[:i]
		}
	}
	return strings.TrimSpace(authors)
}

// Citation returns the citation record for the document
func (d *Document) Citation() Citation {
	return Citation{
		ID:       d.ID,
		Title:    d.Title,
		Authors:  d.Authors,
		Year:     d.Year,
		Category: d.Category,
	}
}

// SearchResult is a ranked match produced for a single query.
// Document points at the record owned by the corpus.
type SearchResult struct {
	Document       *Document `json:"document"`
	Relevance      int       `json:"relevance"`
	MatchedContent string    `json:"matchedContent"`
}

// Citation identifies a document that informed a response
type Citation struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Authors  string   `json:"authors"`
	Year     string   `json:"year"`
	Category Category `json:"category"`
}

// CitationsFor builds the citation manifest for ranked results, in rank order
func CitationsFor(results []SearchResult) []Citation {
	citations := make([]Citation, 0, len(results))
	for _, r := range results {
		citations = append(citations, r.Document.Citation())
	}
	return citations
}
