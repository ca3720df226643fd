package ai

import (
	"context"
	"errors"
)

var (
	// ErrAnalysisRequestFailed covers every failure to obtain a completion:
	// non-2xx from the relay, transport errors and timeouts.
	ErrAnalysisRequestFailed = errors.New("analysis request failed")
	// ErrAnalysisParseFailed means a completion arrived but was not a JSON
	// array of well-formed person records.
	ErrAnalysisParseFailed = errors.New("analysis response could not be parsed")
)

// PersonRecord is one detected person, in the order the model listed them.
type PersonRecord struct {
	Gender      string `json:"gender"`
	Age         string `json:"age"`
	Description string `json:"description"`
}

// ImageRequest is the relay contract: a prompt and one inline image.
type ImageRequest struct {
	Prompt     string `json:"prompt"`
	MIMEType   string `json:"mimeType"`
	Base64Data string `json:"base64Data"`
}

// Completion is the model's textual answer plus token accounting.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Transport delivers one ImageRequest to a model and returns its completion.
// Implementations make exactly one outbound call and never retry.
type Transport interface {
	Name() string
	Complete(ctx context.Context, req ImageRequest) (*Completion, error)
}

// RequestPricing holds input/output prices per 1M tokens
type RequestPricing struct {
	Input  float64
	Output float64
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	Requests     int
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}
