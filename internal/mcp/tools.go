package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/upb/research-assistant/models"
	"github.com/upb/research-assistant/services"
)

// SearchInput is the input schema for search_documents
type SearchInput struct {
	Query string `json:"query" jsonschema:"case-insensitive substring of the title, a key finding or the content"`
}

// SearchOutput is the output schema for search_documents
type SearchOutput struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// SearchResult is one ranked paper
type SearchResult struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Authors   string          `json:"authors"`
	Year      string          `json:"year"`
	Category  models.Category `json:"category"`
	URI       string          `json:"uri"`
	Relevance int             `json:"relevance"`
	Excerpt   string          `json:"excerpt"`
}

// ListInput is the input schema for list_documents
type ListInput struct {
	Query    string `json:"query,omitempty" jsonschema:"case-insensitive filter on title and authors"`
	Category string `json:"category,omitempty" jsonschema:"exact category name, empty for all"`
}

// ListOutput is the output schema for list_documents
type ListOutput struct {
	Documents []DocumentSummary `json:"documents"`
	Total     int               `json:"total"`
}

// DocumentSummary is a paper without its full text
type DocumentSummary struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Authors  string          `json:"authors"`
	Year     string          `json:"year"`
	Category models.Category `json:"category"`
	URI      string          `json:"uri"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Rank the research papers by relevance to a query and return the top matches",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List research papers, optionally filtered by title/author text and category",
	}, s.handleList)
}

func (s *Server) handleSearch(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results := s.retriever.Search(input.Query)

	output := SearchOutput{
		Query:   input.Query,
		Results: make([]SearchResult, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		output.Results[i] = SearchResult{
			ID:        r.Document.ID,
			Title:     r.Document.Title,
			Authors:   r.Document.Authors,
			Year:      r.Document.Year,
			Category:  r.Document.Category,
			URI:       documentURI(r.Document.ID),
			Relevance: r.Relevance,
			Excerpt:   r.MatchedContent,
		}
	}

	s.logger.Debug("mcp search", zap.String("query", input.Query), zap.Int("results", len(results)))
	return nil, output, nil
}

func (s *Server) handleList(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	category := models.Category(input.Category)
	if category != "" && !category.IsValid() {
		return nil, ListOutput{}, fmt.Errorf("%w: %q", services.ErrInvalidCategory, input.Category)
	}

	docs := s.store.Filter(input.Query, category)

	output := ListOutput{
		Documents: make([]DocumentSummary, len(docs)),
		Total:     len(docs),
	}
	for i, doc := range docs {
		output.Documents[i] = DocumentSummary{
			ID:       doc.ID,
			Title:    doc.Title,
			Authors:  doc.Authors,
			Year:     doc.Year,
			Category: doc.Category,
			URI:      documentURI(doc.ID),
		}
	}

	return nil, output, nil
}
