package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kozaktomas/face-insight/internal/constants"
	"github.com/kozaktomas/face-insight/internal/imaging"
)

// Options configures an Analyzer.
type Options struct {
	Locale  Locale
	Timeout time.Duration // zero means constants.DefaultAnalysisTimeout
	Pricing RequestPricing
}

// Analyzer is the single analysis entry point. It is safe for concurrent use.
type Analyzer struct {
	transport Transport
	locale    Locale
	timeout   time.Duration
	pricing   RequestPricing

	mu    sync.Mutex
	usage Usage
}

func NewAnalyzer(transport Transport, opts Options) *Analyzer {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultAnalysisTimeout
	}
	locale := opts.Locale
	if locale.Prompt == "" {
		locale = LocaleFor("")
	}
	return &Analyzer{
		transport: transport,
		locale:    locale,
		timeout:   timeout,
		pricing:   opts.Pricing,
	}
}

// Name returns the underlying transport's name.
func (a *Analyzer) Name() string {
	return a.transport.Name()
}

// Locale returns the locale used for the prompt and user-facing strings.
func (a *Analyzer) Locale() Locale {
	return a.locale
}

// Analyze sends one data-URL encoded image to the model and returns the
// detected people in the model's left-to-right order. Every error wraps
// either ErrAnalysisRequestFailed or ErrAnalysisParseFailed.
func (a *Analyzer) Analyze(ctx context.Context, imageDataURL string) ([]PersonRecord, error) {
	mimeType, payload, err := imaging.SplitDataURL(imageDataURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisRequestFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	completion, err := a.transport.Complete(ctx, ImageRequest{
		Prompt:     a.locale.Prompt,
		MIMEType:   string(mimeType),
		Base64Data: payload,
	})
	if err != nil {
		if errors.Is(err, ErrAnalysisRequestFailed) || errors.Is(err, ErrAnalysisParseFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrAnalysisRequestFailed, err)
	}

	a.trackUsage(completion.InputTokens, completion.OutputTokens)

	return ParsePersonRecords(completion.Text)
}

func (a *Analyzer) trackUsage(inputTokens, outputTokens int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.usage.Requests++
	a.usage.InputTokens += inputTokens
	a.usage.OutputTokens += outputTokens
	a.usage.TotalCost += float64(inputTokens) / 1_000_000 * a.pricing.Input
	a.usage.TotalCost += float64(outputTokens) / 1_000_000 * a.pricing.Output
}

// GetUsage returns a snapshot of accumulated usage.
func (a *Analyzer) GetUsage() Usage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.usage
}

func (a *Analyzer) ResetUsage() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.usage = Usage{}
}
