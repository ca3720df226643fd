package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/face-insight/internal/ai"
	"github.com/kozaktomas/face-insight/internal/config"
)

func testServerConfig(upstreamURL, apiKey string) *config.Config {
	return &config.Config{
		Gemini:   config.GeminiConfig{APIKey: apiKey, Model: "gemini-2.5-flash", BaseURL: upstreamURL},
		Analysis: config.AnalysisConfig{Language: "zh", Timeout: 5 * time.Second},
		Web:      config.WebConfig{Host: "127.0.0.1", Port: 0},
	}
}

func serve(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse error body: %v\nBody: %s", err, rec.Body.String())
	}
	return body["error"]
}

func TestServer_AnalyzeEndToEnd(t *testing.T) {
	upstreamBody := `{"candidates":[{"content":{"parts":[{"text":"[{\"gender\":\"女\",\"age\":\"25\",\"description\":\"戴眼镜\"}]"}]}}]}`
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, upstreamBody)
	}))
	defer upstream.Close()

	s := NewServer(testServerConfig(upstream.URL, "server-key"))

	for _, path := range []string{"/analyze", "/api/analyze"} {
		t.Run(path, func(t *testing.T) {
			rec := serve(s, http.MethodPost, path, `{"prompt":"p","mimeType":"image/jpeg","base64Data":"QUJD"}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if rec.Body.String() != upstreamBody {
				t.Errorf("expected upstream body verbatim, got %s", rec.Body.String())
			}
			if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
				t.Error("expected CORS header on relay response")
			}
		})
	}
}

func TestServer_RelayTransportRoundTrip(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"[]"}]}}]}`)
	}))
	defer upstream.Close()

	relay := httptest.NewServer(NewServer(testServerConfig(upstream.URL, "server-key")).Router())
	defer relay.Close()

	analyzer := ai.NewAnalyzer(ai.NewRelayTransport(relay.URL, 5*time.Second), ai.Options{})
	records, err := analyzer.Analyze(t.Context(), "data:image/jpeg;base64,QUJD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty result, got %+v", records)
	}
}

func TestServer_Preflight(t *testing.T) {
	s := NewServer(testServerConfig("http://unused", ""))

	rec := serve(s, http.MethodOptions, "/analyze", "")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET,OPTIONS,PATCH,DELETE,POST,PUT" {
		t.Errorf("unexpected Allow-Methods %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("unexpected Allow-Credentials %q", got)
	}
}

func TestServer_AnalyzeRejectsOtherMethods(t *testing.T) {
	s := NewServer(testServerConfig("http://unused", "server-key"))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			rec := serve(s, method, "/analyze", "")
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("expected 405, got %d", rec.Code)
			}
			if msg := errorMessage(t, rec); msg != "Method not allowed" {
				t.Errorf("unexpected error %q", msg)
			}
		})
	}
}

func TestServer_AnalyzeWithoutCredential(t *testing.T) {
	called := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer upstream.Close()

	s := NewServer(testServerConfig(upstream.URL, ""))
	rec := serve(s, http.MethodPost, "/analyze", `{"prompt":"p","mimeType":"image/jpeg","base64Data":"QUJD"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Server API Key not configured" {
		t.Errorf("unexpected error %q", msg)
	}
	if called {
		t.Error("upstream must not be called without a credential")
	}

	// The process keeps serving.
	if rec := serve(s, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("expected health 200 after failure, got %d", rec.Code)
	}
}

func TestServer_PeopleWithoutCredential(t *testing.T) {
	called := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer upstream.Close()

	s := NewServer(testServerConfig(upstream.URL, ""))
	rec := serve(s, http.MethodPost, "/api/v1/people", `{"image":"data:image/png;base64,QUJD"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Server API Key not configured" {
		t.Errorf("unexpected error %q", msg)
	}
	if called {
		t.Error("upstream must not be called without a credential")
	}
}

func TestServer_PeopleAndRelayShareUpstream(t *testing.T) {
	upstreamBody := `{"candidates":[{"content":{"parts":[{"text":"[{\"gender\":\"女\",\"age\":\"25\",\"description\":\"左边\"},{\"gender\":\"男\",\"age\":\"30\",\"description\":\"右边\"}]"}]}}],"usageMetadata":{"promptTokenCount":100,"candidatesTokenCount":20}}`
	var paths, keys []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		keys = append(keys, r.Header.Get("x-goog-api-key"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, upstreamBody)
	}))
	defer upstream.Close()

	s := NewServer(testServerConfig(upstream.URL, "server-key"))

	if rec := serve(s, http.MethodPost, "/analyze", `{"prompt":"p","mimeType":"image/png","base64Data":"QUJD"}`); rec.Code != http.StatusOK {
		t.Fatalf("relay: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec := serve(s, http.MethodPost, "/api/v1/people", `{"image":"data:image/png;base64,QUJD"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("people: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Phase   string `json:"phase"`
		Results []struct {
			Description string `json:"description"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse people response: %v", err)
	}
	if resp.Phase != "success" || len(resp.Results) != 2 {
		t.Fatalf("unexpected people response %+v", resp)
	}
	if resp.Results[0].Description != "左边" || resp.Results[1].Description != "右边" {
		t.Errorf("expected results in upstream order, got %+v", resp.Results)
	}

	if len(paths) != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", len(paths))
	}
	if paths[0] != paths[1] || paths[0] != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("expected both endpoints on the same upstream path, got %v", paths)
	}
	if keys[0] != "server-key" || keys[1] != "server-key" {
		t.Errorf("expected the server key on both calls, got %v", keys)
	}

	if usage := s.Analyzer().GetUsage(); usage.Requests != 1 || usage.InputTokens != 100 {
		t.Errorf("expected people usage to be tracked, got %+v", usage)
	}
}

func TestServer_PeopleUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"code":403,"message":"API key invalid"}}`)
	}))
	defer upstream.Close()

	s := NewServer(testServerConfig(upstream.URL, "bad-key"))
	rec := serve(s, http.MethodPost, "/api/v1/people", `{"image":"data:image/png;base64,QUJD"}`)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
	var resp struct {
		Phase string `json:"phase"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse people response: %v", err)
	}
	if resp.Phase != "error" || resp.Error != "无法分析图片，请稍后重试或更换图片。" {
		t.Errorf("expected the fixed failure message, got %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "API key invalid") {
		t.Error("upstream detail must not reach the page")
	}
}

func TestServer_ServesMobilePage(t *testing.T) {
	s := NewServer(testServerConfig("http://unused", ""))

	for _, path := range []string{"/", "/index.html"} {
		t.Run(path, func(t *testing.T) {
			rec := serve(s, http.MethodGet, path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("unexpected Content-Type %q", ct)
			}
			page := rec.Body.String()
			if !strings.Contains(page, "/api/v1/people") {
				t.Error("expected embedded page to call the people endpoint")
			}
			for _, hook := range []string{"reader.onerror", "reader.onabort"} {
				if !strings.Contains(page, hook) {
					t.Errorf("expected embedded page to handle %s", hook)
				}
			}
			if !strings.Contains(page, `fetch("/config")`) {
				t.Error("expected embedded page to load its labels from /config")
			}
			if rec.Header().Get("X-Frame-Options") != "DENY" {
				t.Error("expected security headers on the page")
			}
		})
	}
}

func TestServer_UnknownPath(t *testing.T) {
	s := NewServer(testServerConfig("http://unused", ""))

	if rec := serve(s, http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServer_Config(t *testing.T) {
	s := NewServer(testServerConfig("http://unused", "super-secret"))

	rec := serve(s, http.MethodGet, "/config", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "super-secret") {
		t.Error("config endpoint leaked the key")
	}
}
