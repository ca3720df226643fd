package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/face-insight/internal/ai"
	"github.com/kozaktomas/face-insight/internal/config"
	"github.com/kozaktomas/face-insight/internal/gemini"
	"github.com/kozaktomas/face-insight/internal/web/middleware"
)

// testConfig creates a minimal config pointing at the given upstream
func testConfig(upstreamURL string) *config.Config {
	return &config.Config{
		Gemini: config.GeminiConfig{
			APIKey:  "test-key",
			Model:   "gemini-2.5-flash",
			BaseURL: upstreamURL,
		},
		Analysis: config.AnalysisConfig{
			Language: "zh",
			Timeout:  5 * time.Second,
		},
	}
}

// requestWithUpstream creates a relay request with a forwarding client in context
func requestWithUpstream(t *testing.T, body string, client *gemini.Client) *http.Request {
	t.Helper()
	req := httptest.NewRequest("POST", "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.SetUpstreamInContext(req.Context(), client)
	return req.WithContext(ctx)
}

// setupMockUpstream creates a mock model provider; every request is passed to handler
func setupMockUpstream(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// createUpstreamClient creates a forwarding client connected to a mock server
func createUpstreamClient(server *httptest.Server) *gemini.Client {
	return gemini.NewClient(server.URL, "gemini-2.5-flash", "test-key", 5*time.Second)
}

// fakeTransport answers every completion with a fixed text or error
type fakeTransport struct {
	text  string
	err   error
	calls int
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Complete(_ context.Context, _ ai.ImageRequest) (*ai.Completion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Completion{Text: f.text, InputTokens: 10, OutputTokens: 5}, nil
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
