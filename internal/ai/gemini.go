package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// personArraySchema constrains direct Gemini calls to the person record shape.
var personArraySchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"gender":      {Type: genai.TypeString},
			"age":         {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
		},
		Required: []string{"gender", "age", "description"},
	},
}

// GeminiTransport calls Gemini directly with a key held by this process.
// Used by deployments without a separate relay and by the server itself.
type GeminiTransport struct {
	client *genai.Client
	model  string
}

// NewGeminiTransport creates a genai client. baseURL may carry the API
// version as its last segment (https://generativelanguage.googleapis.com/v1beta);
// empty means the SDK default.
func NewGeminiTransport(ctx context.Context, apiKey, model, baseURL string) (*GeminiTransport, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: geminiHTTPOptions(baseURL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiTransport{client: client, model: model}, nil
}

// geminiHTTPOptions splits a REST base URL into the SDK's root URL and API version.
func geminiHTTPOptions(baseURL string) genai.HTTPOptions {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return genai.HTTPOptions{}
	}
	if i := strings.LastIndex(baseURL, "/"); i >= 0 {
		last := baseURL[i+1:]
		if len(last) > 1 && last[0] == 'v' && last[1] >= '0' && last[1] <= '9' {
			return genai.HTTPOptions{BaseURL: baseURL[:i+1], APIVersion: last}
		}
	}
	return genai.HTTPOptions{BaseURL: baseURL}
}

func (t *GeminiTransport) Name() string {
	return t.model
}

func (t *GeminiTransport) Complete(ctx context.Context, ir ImageRequest) (*Completion, error) {
	imageData, err := base64.StdEncoding.DecodeString(ir.Base64Data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 image: %w", ErrAnalysisRequestFailed, err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: ir.Prompt},
				{InlineData: &genai.Blob{Data: imageData, MIMEType: ir.MIMEType}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   personArraySchema,
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini API error: %w", ErrAnalysisRequestFailed, err)
	}

	completion := &Completion{Text: result.Text()}
	if result.UsageMetadata != nil {
		completion.InputTokens = int(result.UsageMetadata.PromptTokenCount)
		completion.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	return completion, nil
}
