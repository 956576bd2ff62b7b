package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/research-assistant/app"
	"github.com/upb/research-assistant/config"
	"github.com/upb/research-assistant/handlers"
	"github.com/upb/research-assistant/models"
	"github.com/upb/research-assistant/services/providers/providertest"
	"go.uber.org/zap/zaptest"
)

func setupTestRouter(t *testing.T, rateLimit bool) (http.Handler, *providertest.Fake) {
	t.Helper()

	cfg := &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Port:            8080,
			ShutdownTimeout: time.Second,
			AllowedOrigins:  []string{"http://localhost:3000"},
		},
		Chat: config.ChatConfig{Model: "openai/gpt-4o-mini", Timeout: 5 * time.Second},
		RateLimit: config.RateLimitConfig{
			Enabled:           rateLimit,
			RequestsPerSecond: 0.001,
			Burst:             1,
			TTL:               time.Minute,
		},
	}

	deps, err := app.NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close(context.Background()) })

	fake := providertest.New("openai", "Charismatic ", "leaders matter.")
	require.NoError(t, deps.ProviderRegistry.Register(fake))

	return SetupRoutes(deps), fake
}

func chatBody(content string) *strings.Reader {
	return strings.NewReader(`{"messages":[{"role":"user","content":"` + content + `"}]}`)
}

func TestRoutes_Health(t *testing.T) {
	router, _ := setupTestRouter(t, false)

	t.Run("healthz", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("readyz without database", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "not_configured")
	})
}

func TestRoutes_Chat(t *testing.T) {
	for _, path := range []string{"/api/chat", "/api/v1/chat"} {
		t.Run(path, func(t *testing.T) {
			router, fake := setupTestRouter(t, false)

			req := httptest.NewRequest(http.MethodPost, path, chatBody("charismatic"))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "Charismatic leaders matter.", w.Body.String())

			var citations []models.Citation
			require.NoError(t, json.Unmarshal([]byte(w.Header().Get(handlers.CitationsHeader)), &citations))
			require.Len(t, citations, 3)
			assert.Equal(t, "leadership-crisis-erbil", citations[0].ID)

			require.Len(t, fake.Requests(), 1)
			assert.Equal(t, "gpt-4o-mini", fake.Requests()[0].Model)
		})
	}

	t.Run("empty messages", func(t *testing.T) {
		router, _ := setupTestRouter(t, false)

		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":[]}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"No messages provided"}`, w.Body.String())
	})

	t.Run("rate limited", func(t *testing.T) {
		router, _ := setupTestRouter(t, true)

		first := httptest.NewRecorder()
		router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/chat", chatBody("crisis")))
		assert.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/chat", chatBody("crisis")))
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.NotEmpty(t, second.Header().Get("Retry-After"))
	})
}

func TestRoutes_Documents(t *testing.T) {
	router, _ := setupTestRouter(t, false)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "search", path: "/api/v1/search?q=Hurricane+Katrina", wantStatus: http.StatusOK, wantBody: "increasing-impact-ulmer"},
		{name: "list by category", path: "/api/v1/documents?category=Research+Methods", wantStatus: http.StatusOK, wantBody: `"total":1`},
		{name: "unknown category", path: "/api/v1/documents?category=Astrology", wantStatus: http.StatusBadRequest},
		{name: "get", path: "/api/v1/documents/leadership-crisis-erbil", wantStatus: http.StatusOK, wantBody: "Ali & Anwar"},
		{name: "get missing", path: "/api/v1/documents/nope", wantStatus: http.StatusNotFound, wantBody: "Document not found"},
		{name: "categories", path: "/api/v1/categories", wantStatus: http.StatusOK, wantBody: "Crisis Management"},
		{name: "turns without database", path: "/api/v1/chat/turns", wantStatus: http.StatusOK, wantBody: `"enabled":false`},
		{name: "status", path: "/api/v1/status", wantStatus: http.StatusOK, wantBody: `"documents":22`},
		{name: "unknown endpoint", path: "/api/v2/nothing", wantStatus: http.StatusNotFound, wantBody: "endpoint not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRoutes_CORSExposesCitations(t *testing.T) {
	router, _ := setupTestRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", chatBody("leadership"))
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), handlers.CitationsHeader)
}
