package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = openai.ChatModelGPT4_1Mini

// OpenAITransport sends the same prompt and image to an OpenAI vision model.
type OpenAITransport struct {
	client *openai.Client
	model  string
}

// NewOpenAITransport creates an OpenAI client. An empty baseURL means the
// public API; any OpenAI-compatible endpoint works otherwise.
func NewOpenAITransport(apiKey, model, baseURL string) *OpenAITransport {
	if model == "" {
		model = defaultOpenAIModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAITransport{
		client: &client,
		model:  model,
	}
}

func (t *OpenAITransport) Name() string {
	return t.model
}

func (t *OpenAITransport) Complete(ctx context.Context, ir ImageRequest) (*Completion, error) {
	imageURL := "data:" + ir.MIMEType + ";base64," + ir.Base64Data

	resp, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: t.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
							openai.TextContentPart(ir.Prompt),
							openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
								URL:    imageURL,
								Detail: "high",
							}),
						},
					},
				},
			},
		},
		MaxTokens: openai.Int(1000),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: OpenAI API error: %w", ErrAnalysisRequestFailed, err)
	}

	completion := &Completion{
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}
	if len(resp.Choices) > 0 {
		completion.Text = resp.Choices[0].Message.Content
	}
	return completion, nil
}
