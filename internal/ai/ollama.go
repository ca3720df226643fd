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
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2-vision:11b"
)

// ollamaPersonFormat is the structured-output schema for /api/chat.
var ollamaPersonFormat = json.RawMessage(`{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "gender": {"type": "string"},
      "age": {"type": "string"},
      "description": {"type": "string"}
    },
    "required": ["gender", "age", "description"]
  }
}`)

// OllamaTransport sends the prompt and image to a self-hosted Ollama vision
// model. No credential is involved.
type OllamaTransport struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaTransport(baseURL, model string, timeout time.Duration) *OllamaTransport {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaTransport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *OllamaTransport) Name() string {
	return t.model
}

// ollamaRequest represents a request to the Ollama chat API
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // base64 encoded images
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

// ollamaResponse represents a response from the Ollama chat API
type ollamaResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool `json:"done"`
	PromptEvalCount int  `json:"prompt_eval_count"`
	EvalCount       int  `json:"eval_count"`
}

// Complete makes a single /api/chat call. Malformed answers are not retried;
// they surface as parse failures from the analyzer.
func (t *OllamaTransport) Complete(ctx context.Context, ir ImageRequest) (*Completion, error) {
	reqBody := ollamaRequest{
		Model: t.model,
		Messages: []ollamaMessage{
			{
				Role:    "user",
				Content: ir.Prompt,
				Images:  []string{ir.Base64Data},
			},
		},
		Stream: false,
		Format: ollamaPersonFormat,
		Options: ollamaOptions{
			NumPredict: 1000,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %w", ErrAnalysisRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrAnalysisRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrAnalysisRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrAnalysisRequestFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ollama API error (status %d): %s", ErrAnalysisRequestFailed, resp.StatusCode, readErrorBody(body))
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %w", ErrAnalysisParseFailed, err)
	}

	return &Completion{
		Text:         ollamaResp.Message.Content,
		InputTokens:  ollamaResp.PromptEvalCount,
		OutputTokens: ollamaResp.EvalCount,
	}, nil
}
