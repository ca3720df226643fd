package ai

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-insight/internal/gemini"
)

// Forwarder sends one prompt+image request upstream and returns the raw answer.
// *gemini.Client implements it.
type Forwarder interface {
	Forward(ctx context.Context, fr gemini.ForwardRequest) (*gemini.RawResponse, error)
}

// UpstreamTransport analyzes inside the relay process through the same
// forwarder that serves POST /analyze, so both reach the provider the same way.
type UpstreamTransport struct {
	forwarder Forwarder
	model     string
}

func NewUpstreamTransport(forwarder Forwarder, model string) *UpstreamTransport {
	return &UpstreamTransport{forwarder: forwarder, model: model}
}

func (t *UpstreamTransport) Name() string {
	return t.model
}

func (t *UpstreamTransport) Complete(ctx context.Context, ir ImageRequest) (*Completion, error) {
	resp, err := t.forwarder.Forward(ctx, gemini.ForwardRequest{
		Prompt:     ir.Prompt,
		MIMEType:   ir.MIMEType,
		Base64Data: ir.Base64Data,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisRequestFailed, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: upstream returned status %d: %s", ErrAnalysisRequestFailed, resp.StatusCode, readErrorBody(resp.Body))
	}
	return completionFromEnvelope(resp.Body)
}
