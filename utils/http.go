package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// MaxBodyBytes bounds request bodies decoded by DecodeJSON
const MaxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse is the envelope WriteOK puts around its payload.
type SuccessResponse struct {
	Data interface{} `json:"data,omitempty"`
}

// WriteJSON sets the content type and status, then encodes data unless it
// is nil.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// WriteError writes an ErrorResponse. An empty message falls back to the
// status text.
func WriteError(w http.ResponseWriter, status int, message string, details interface{}) error {
	return WriteJSON(w, status, ErrorResponse{Error: orDefault(message, http.StatusText(status)), Details: details})
}

func WriteBadRequest(w http.ResponseWriter, message string, details interface{}) error {
	return WriteError(w, http.StatusBadRequest, message, details)
}

func WriteNotFound(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusNotFound, orDefault(message, "Resource not found"), nil)
}

func WriteTooManyRequests(w http.ResponseWriter, message string, details interface{}) error {
	return WriteError(w, http.StatusTooManyRequests, orDefault(message, "Rate limit exceeded"), details)
}

func WriteInternalServerError(w http.ResponseWriter, message string, details interface{}) error {
	return WriteError(w, http.StatusInternalServerError, orDefault(message, "Internal server error"), details)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// DecodeJSON decodes the request body into v. Bodies larger than
// MaxBodyBytes and trailing data are rejected.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: unexpected trailing data")
	}
	return nil
}

// QueryInt parses an integer query parameter, returning def when absent
func QueryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}
