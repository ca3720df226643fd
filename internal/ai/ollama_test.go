package ai

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOllamaTransport_Complete(t *testing.T) {
	var got ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("expected /api/chat, got %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"llava","message":{"role":"assistant","content":"[{\"gender\":\"男\",\"age\":\"30\",\"description\":\"短发\"}]"},"done":true,"prompt_eval_count":640,"eval_count":42}`))
	}))
	defer server.Close()

	analyzer := NewAnalyzer(NewOllamaTransport(server.URL, "llava", time.Second), Options{})
	records, err := analyzer.Analyze(t.Context(), testDataURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Description != "短发" {
		t.Errorf("unexpected records %+v", records)
	}

	if got.Model != "llava" || got.Stream {
		t.Errorf("unexpected request envelope %+v", got)
	}
	if len(got.Messages) != 1 || len(got.Messages[0].Images) != 1 || got.Messages[0].Images[0] != "QUJD" {
		t.Errorf("expected one user message carrying the raw base64 image, got %+v", got.Messages)
	}
	if len(got.Format) == 0 {
		t.Error("expected structured output schema in format")
	}

	usage := analyzer.GetUsage()
	if usage.InputTokens != 640 || usage.OutputTokens != 42 {
		t.Errorf("unexpected usage %+v", usage)
	}
}

func TestOllamaTransport_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model 'llava' not found"}`))
	}))
	defer server.Close()

	_, err := NewOllamaTransport(server.URL, "llava", time.Second).Complete(t.Context(), ImageRequest{Prompt: "p", MIMEType: "image/jpeg", Base64Data: "QUJD"})
	if !errors.Is(err, ErrAnalysisRequestFailed) {
		t.Errorf("expected ErrAnalysisRequestFailed, got %v", err)
	}
}

func TestOllamaTransport_Defaults(t *testing.T) {
	tr := NewOllamaTransport("", "", time.Second)
	if tr.baseURL != defaultOllamaURL {
		t.Errorf("expected default URL, got %s", tr.baseURL)
	}
	if tr.Name() != defaultOllamaModel {
		t.Errorf("expected default model, got %s", tr.Name())
	}
}
