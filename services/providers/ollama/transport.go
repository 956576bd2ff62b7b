package ollama

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/upb/research-assistant/services/providers"
)

const maxErrorBody = 64 << 10

// statusTransport turns error responses into api.StatusError. The api
// client reports an {"error": ...} body as a plain error and drops the
// status code, so it is captured here before the body is decoded.
type statusTransport struct {
	base http.RoundTripper
}

func newHTTPClient(timeout time.Duration) *http.Client {
	client := providers.NewHTTPClient(timeout)
	client.Transport = statusTransport{base: client.Transport}
	return client
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode < http.StatusBadRequest {
		return resp, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	statusErr := api.StatusError{
		StatusCode:   resp.StatusCode,
		Status:       resp.Status,
		ErrorMessage: strings.TrimSpace(string(raw)),
	}

	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		statusErr.ErrorMessage = body.Error
	}
	return nil, statusErr
}
