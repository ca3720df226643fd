package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/kozaktomas/face-insight/internal/gemini"
)

type fakeForwarder struct {
	resp *gemini.RawResponse
	err  error
	got  gemini.ForwardRequest
}

func (f *fakeForwarder) Forward(ctx context.Context, fr gemini.ForwardRequest) (*gemini.RawResponse, error) {
	f.got = fr
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestUpstreamTransport_Success(t *testing.T) {
	forwarder := &fakeForwarder{resp: &gemini.RawResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(envelope(`[{"gender":"女","age":"25","description":"戴眼镜"}]`)),
	}}
	analyzer := NewAnalyzer(NewUpstreamTransport(forwarder, "gemini-2.5-flash"), Options{})

	records, err := analyzer.Analyze(t.Context(), "data:image/png;base64,QUJD")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	want := []PersonRecord{{Gender: "女", Age: "25", Description: "戴眼镜"}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("got %+v, want %+v", records, want)
	}
	if forwarder.got.MIMEType != "image/png" || forwarder.got.Base64Data != "QUJD" {
		t.Errorf("unexpected forward request %+v", forwarder.got)
	}
	if forwarder.got.Prompt != analyzer.Locale().Prompt {
		t.Error("expected the locale prompt to be forwarded")
	}
	if usage := analyzer.GetUsage(); usage.InputTokens != 1000 || usage.OutputTokens != 200 {
		t.Errorf("expected usage from envelope metadata, got %+v", usage)
	}
	if analyzer.Name() != "gemini-2.5-flash" {
		t.Errorf("expected model as name, got %q", analyzer.Name())
	}
}

func TestUpstreamTransport_Failures(t *testing.T) {
	tests := []struct {
		name      string
		forwarder *fakeForwarder
		want      error
	}{
		{
			name:      "transport error",
			forwarder: &fakeForwarder{err: errors.New("connection refused")},
			want:      ErrAnalysisRequestFailed,
		},
		{
			name:      "upstream rejects",
			forwarder: &fakeForwarder{resp: &gemini.RawResponse{StatusCode: http.StatusTooManyRequests, Body: []byte(`{"error":"quota"}`)}},
			want:      ErrAnalysisRequestFailed,
		},
		{
			name:      "envelope is not JSON",
			forwarder: &fakeForwarder{resp: &gemini.RawResponse{StatusCode: http.StatusOK, Body: []byte("<html>")}},
			want:      ErrAnalysisParseFailed,
		},
		{
			name:      "completion is not an array",
			forwarder: &fakeForwarder{resp: &gemini.RawResponse{StatusCode: http.StatusOK, Body: []byte(envelope("no people here"))}},
			want:      ErrAnalysisParseFailed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			analyzer := NewAnalyzer(NewUpstreamTransport(tc.forwarder, "m"), Options{})
			_, err := analyzer.Analyze(t.Context(), testDataURL)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUpstreamTransport_WithGeminiClient(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(envelope("[]")))
	}))
	defer upstream.Close()

	client := gemini.NewClient(upstream.URL, "gemini-2.5-flash", "key", time.Second)
	analyzer := NewAnalyzer(NewUpstreamTransport(client, client.Model()), Options{})

	records, err := analyzer.Analyze(t.Context(), testDataURL)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no people, got %+v", records)
	}
}
