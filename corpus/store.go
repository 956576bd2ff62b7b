package corpus

import (
	"errors"
	"fmt"

	"github.com/upb/research-assistant/models"
)

var (
	// ErrDocumentNotFound is returned when no document has the requested ID
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidCorpus is returned when a corpus fails validation
	ErrInvalidCorpus = errors.New("invalid corpus")
)

// Store is a read-only, ordered collection of documents
type Store struct {
	docs       []models.Document
	byID       map[string]int
	categories []models.Category
}

// New validates docs and builds a Store preserving their order
func New(docs []models.Document) (*Store, error) {
	s := &Store{
		docs: make([]models.Document, len(docs)),
		byID: make(map[string]int, len(docs)),
	}

	seen := make(map[models.Category]bool)
	for i, doc := range docs {
		if doc.ID == "" {
			return nil, fmt.Errorf("%w: document at position %d has no id", ErrInvalidCorpus, i)
		}
		if _, dup := s.byID[doc.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate document id %q", ErrInvalidCorpus, doc.ID)
		}
		if !doc.Category.IsValid() {
			return nil, fmt.Errorf("%w: document %q has unknown category %q", ErrInvalidCorpus, doc.ID, doc.Category)
		}

		doc.KeyFindings = append([]string(nil), doc.KeyFindings...)
		s.docs[i] = doc
		s.byID[doc.ID] = i

		if !seen[doc.Category] {
			seen[doc.Category] = true
			s.categories = append(s.categories, doc.Category)
		}
	}

	return s, nil
}

// All returns every document in definition order.
// The returned slice is a copy; the documents themselves must not be modified.
func (s *Store) All() []models.Document {
	out := make([]models.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Categories returns the distinct categories present, in first-occurrence order
func (s *Store) Categories() []models.Category {
	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Get returns the document with the given ID
func (s *Store) Get(id string) (*models.Document, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return &s.docs[i], nil
}

// Len returns the number of documents in the store
func (s *Store) Len() int {
	return len(s.docs)
}

// Each calls fn for every document in definition order, passing a pointer to
// the stored record. Iteration stops early if fn returns false.
func (s *Store) Each(fn func(i int, doc *models.Document) bool) {
	for i := range s.docs {
		if !fn(i, &s.docs[i]) {
			return
		}
	}
}
