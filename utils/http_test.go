package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "test"}

		err := WriteJSON(w, http.StatusOK, data)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "test", response["message"])
	})

	t.Run("ampersand kept literal", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, map[string]string{"authors": "Ali & Anwar"})
		require.NoError(t, err)

		assert.Equal(t, "{\"authors\":\"Ali & Anwar\"}\n", w.Body.String())
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteOK(w, map[string]string{"result": "success"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"result":"success"}}`, w.Body.String())
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter) error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bad request without details",
			write:      func(w http.ResponseWriter) error { return WriteBadRequest(w, "No messages provided", nil) },
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"No messages provided"}`,
		},
		{
			name: "bad request with field details",
			write: func(w http.ResponseWriter) error {
				return WriteBadRequest(w, "Validation failed", map[string]string{"Limit": "Limit must be at most 500"})
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Validation failed","details":{"Limit":"Limit must be at most 500"}}`,
		},
		{
			name:       "not found default message",
			write:      func(w http.ResponseWriter) error { return WriteNotFound(w, "") },
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Resource not found"}`,
		},
		{
			name:       "too many requests default message",
			write:      func(w http.ResponseWriter) error { return WriteTooManyRequests(w, "", nil) },
			wantStatus: http.StatusTooManyRequests,
			wantBody:   `{"error":"Rate limit exceeded"}`,
		},
		{
			name: "internal error with string details",
			write: func(w http.ResponseWriter) error {
				return WriteInternalServerError(w, "An error occurred while processing your request", "upstream timeout")
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"An error occurred while processing your request","details":"upstream timeout"}`,
		},
		{
			name:       "empty message falls back to status text",
			write:      func(w http.ResponseWriter) error { return WriteError(w, http.StatusServiceUnavailable, "", nil) },
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"error":"Service Unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{name: "valid", body: `{"name":"crisis"}`, want: "crisis"},
		{name: "empty body", body: ``, wantErr: "request body is empty"},
		{name: "malformed", body: `{"name":`, wantErr: "invalid JSON body"},
		{name: "trailing data", body: `{"name":"a"}{"name":"b"}`, wantErr: "unexpected trailing data"},
		{name: "too large", body: `{"name":"` + strings.Repeat("x", MaxBodyBytes) + `"}`, wantErr: "invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var got payload
			err := DecodeJSON(r, &got)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestQueryInt(t *testing.T) {
	t.Run("absent uses default", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		n, err := QueryInt(r, "limit", 50)
		require.NoError(t, err)
		assert.Equal(t, 50, n)
	})

	t.Run("present", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/?limit=7", nil)

		n, err := QueryInt(r, "limit", 50)
		require.NoError(t, err)
		assert.Equal(t, 7, n)
	})

	t.Run("not a number", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/?limit=ten", nil)

		_, err := QueryInt(r, "limit", 50)
		assert.EqualError(t, err, "limit must be an integer")
	})
}
