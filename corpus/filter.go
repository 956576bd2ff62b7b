package corpus

import (
	"strings"

	"github.com/upb/research-assistant/models"
)

// Filter returns the documents whose title or authors contain query
// (case-insensitive, surrounding whitespace ignored) and whose category
// equals category. An empty query or category matches everything.
// Results keep definition order.
func (s *Store) Filter(query string, category models.Category) []models.Document {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]models.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		if category != "" && doc.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(doc.Title), q) &&
			!strings.Contains(strings.ToLower(doc.Authors), q) {
			continue
		}
		out = append(out, doc)
	}
	return out
}
