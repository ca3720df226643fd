package cmd

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kozaktomas/face-insight/internal/ai"
	"github.com/kozaktomas/face-insight/internal/config"
	"github.com/kozaktomas/face-insight/internal/session"
)

type countingAnalyzer struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	calls    atomic.Int32
}

func (c *countingAnalyzer) Analyze(_ context.Context, _ string) ([]ai.PersonRecord, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.inFlight++
	c.peak = max(c.peak, c.inFlight)
	c.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
	return []ai.PersonRecord{{Gender: "女", Age: "25", Description: "戴眼镜"}}, nil
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(_ context.Context, _ string) ([]ai.PersonRecord, error) {
	return nil, errors.New("upstream detail")
}

func writeTestPNG(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

func TestAnalyzeFiles_BoundedConcurrencyKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png", "e.png"} {
		paths = append(paths, writeTestPNG(t, dir, name))
	}

	analyzer := &countingAnalyzer{}
	var done atomic.Int32
	results := analyzeFiles(t.Context(), analyzer, "failed", paths, 2, func() { done.Add(1) })

	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, r := range results {
		if r.File != paths[i] {
			t.Errorf("result %d is for %s, want %s", i, r.File, paths[i])
		}
		if r.Phase != session.PhaseSuccess {
			t.Errorf("result %d phase %s", i, r.Phase)
		}
	}
	if analyzer.peak > 2 {
		t.Errorf("expected at most 2 concurrent calls, saw %d", analyzer.peak)
	}
	if got := analyzer.calls.Load(); got != int32(len(paths)) {
		t.Errorf("expected one call per file, got %d", got)
	}
	if got := done.Load(); got != int32(len(paths)) {
		t.Errorf("expected progress callback per file, got %d", got)
	}
}

func TestAnalyzeFile_Failures(t *testing.T) {
	dir := t.TempDir()

	missing := analyzeFile(t.Context(), failingAnalyzer{}, "fixed message", filepath.Join(dir, "missing.png"))
	if missing.Phase != session.PhaseError || missing.Results == nil {
		t.Errorf("expected error with empty results for missing file, got %+v", missing)
	}

	failed := analyzeFile(t.Context(), failingAnalyzer{}, "fixed message", writeTestPNG(t, dir, "x.png"))
	if failed.Phase != session.PhaseError {
		t.Fatalf("expected error phase, got %s", failed.Phase)
	}
	if failed.Error != "fixed message" {
		t.Errorf("expected fixed failure message, got %q", failed.Error)
	}
}

func TestNewAnalyzer_TransportSelection(t *testing.T) {
	base := func(transport string) *config.Config {
		return &config.Config{
			Gemini:   config.GeminiConfig{Model: "gemini-2.5-flash"},
			OpenAI:   config.OpenAIConfig{Model: "gpt-4.1-mini"},
			Analysis: config.AnalysisConfig{Transport: transport, RelayURL: "http://localhost:8080", Language: "en", Timeout: time.Second},
		}
	}

	a, err := newAnalyzer(t.Context(), base(config.TransportRelay))
	if err != nil {
		t.Fatalf("relay: unexpected error %v", err)
	}
	if a.Name() != "relay" {
		t.Errorf("expected relay transport, got %s", a.Name())
	}
	if a.Locale().EmptyMessage != "No clearly visible people were detected." {
		t.Error("expected English locale")
	}

	ollama := base(config.TransportOllama)
	ollama.Ollama = config.OllamaConfig{URL: "http://localhost:11434", Model: "llava"}
	if a, err := newAnalyzer(t.Context(), ollama); err != nil || a.Name() != "llava" {
		t.Errorf("ollama: expected llava transport, got err=%v", err)
	}

	for _, transport := range []string{config.TransportGemini, config.TransportOpenAI} {
		if _, err := newAnalyzer(t.Context(), base(transport)); err == nil {
			t.Errorf("%s: expected missing credential error", transport)
		}
	}

	if _, err := newAnalyzer(t.Context(), base("carrier-pigeon")); err == nil || !strings.Contains(err.Error(), "unknown transport") {
		t.Errorf("expected unknown transport error, got %v", err)
	}
}

func TestLanAddress_ExplicitHost(t *testing.T) {
	if got := lanAddress("192.168.1.20"); got != "192.168.1.20" {
		t.Errorf("lanAddress = %q", got)
	}
}

func TestPrintQRCode(t *testing.T) {
	if err := printQRCode("http://192.168.1.20:8080"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
