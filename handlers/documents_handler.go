package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/research-assistant/corpus"
	"github.com/upb/research-assistant/internal/rag"
	"github.com/upb/research-assistant/models"
	"github.com/upb/research-assistant/utils"
	"go.uber.org/zap"
)

// SearchResponse is the payload of GET /api/v1/search
type SearchResponse struct {
	Query   string                `json:"query"`
	Results []models.SearchResult `json:"results"`
}

// DocumentListResponse is the payload of GET /api/v1/documents
type DocumentListResponse struct {
	Documents []models.Document `json:"documents"`
	Total     int               `json:"total"`
}

// CategoryListResponse is the payload of GET /api/v1/categories
type CategoryListResponse struct {
	Categories []models.Category `json:"categories"`
}

type documentListQuery struct {
	Query    string `validate:"max=500"`
	Category string `validate:"omitempty,category"`
}

// DocumentsHandler exposes the library and the retrieval engine
type DocumentsHandler struct {
	store     *corpus.Store
	retriever rag.Retriever
	logger    *zap.Logger
}

// NewDocumentsHandler creates a new DocumentsHandler
func NewDocumentsHandler(store *corpus.Store, retriever rag.Retriever, logger *zap.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		store:     store,
		retriever: retriever,
		logger:    logger,
	}
}

// HandleSearch handles GET /api/v1/search?q=
func (h *DocumentsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results := h.retriever.Search(query)
	if results == nil {
		results = []models.SearchResult{}
	}

	h.logger.Debug("search",
		zap.String("query", query),
		zap.Int("results", len(results)))

	h.write(w, SearchResponse{Query: query, Results: results})
}

// HandleList handles GET /api/v1/documents?q=&category=
func (h *DocumentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	params := documentListQuery{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}
	if err := utils.ValidateStruct(&params); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	docs := h.store.Filter(params.Query, models.Category(params.Category))
	h.write(w, DocumentListResponse{Documents: docs, Total: len(docs)})
}

// HandleGet handles GET /api/v1/documents/{id}
func (h *DocumentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.write(w, doc)
}

// HandleCategories handles GET /api/v1/categories
func (h *DocumentsHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	h.write(w, CategoryListResponse{Categories: h.store.Categories()})
}

func (h *DocumentsHandler) write(w http.ResponseWriter, data interface{}) {
	if err := utils.WriteOK(w, data); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}
