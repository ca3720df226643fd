package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/face-insight/internal/gemini"
)

// RelayTransport posts to the relay's /analyze endpoint, which holds the
// upstream credential. This is the default deployment shape.
type RelayTransport struct {
	endpoint string
	client   *http.Client
}

// NewRelayTransport creates a transport for the relay at baseURL.
func NewRelayTransport(baseURL string, timeout time.Duration) *RelayTransport {
	return &RelayTransport{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/analyze",
		client:   &http.Client{Timeout: timeout},
	}
}

func (t *RelayTransport) Name() string {
	return "relay"
}

func (t *RelayTransport) Complete(ctx context.Context, ir ImageRequest) (*Completion, error) {
	payload, err := json.Marshal(ir)
	if err != nil {
		return nil, fmt.Errorf("%w: could not marshal request body: %w", ErrAnalysisRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: could not create request: %w", ErrAnalysisRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req) //nolint:gosec // relay URL comes from configuration
	if err != nil {
		return nil, fmt.Errorf("%w: could not send request: %w", ErrAnalysisRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read response body: %w", ErrAnalysisRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: relay returned status %d: %s", ErrAnalysisRequestFailed, resp.StatusCode, readErrorBody(body))
	}

	return completionFromEnvelope(body)
}

// completionFromEnvelope decodes a generateContent response body.
func completionFromEnvelope(body []byte) (*Completion, error) {
	var envelope gemini.GenerateContentResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal provider envelope: %w", ErrAnalysisParseFailed, err)
	}

	completion := &Completion{Text: envelope.Text()}
	if envelope.UsageMetadata != nil {
		completion.InputTokens = envelope.UsageMetadata.PromptTokenCount
		completion.OutputTokens = envelope.UsageMetadata.CandidatesTokenCount
	}
	return completion, nil
}
