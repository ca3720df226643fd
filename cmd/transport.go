package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-insight/internal/ai"
	"github.com/kozaktomas/face-insight/internal/config"
)

// newAnalyzer builds the analysis entry point for the configured transport.
// Only one transport is active per process.
func newAnalyzer(ctx context.Context, cfg *config.Config) (*ai.Analyzer, error) {
	var transport ai.Transport
	var pricing config.ModelPricing

	switch cfg.Analysis.Transport {
	case config.TransportRelay:
		transport = ai.NewRelayTransport(cfg.Analysis.RelayURL, cfg.Analysis.Timeout)
		pricing = cfg.GetModelPricing(cfg.Gemini.Model)
	case config.TransportGemini:
		apiKey, err := cfg.Gemini.RequireAPIKey()
		if err != nil {
			return nil, errors.New("GEMINI_API_KEY environment variable is required for the gemini transport")
		}
		gt, err := ai.NewGeminiTransport(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini transport: %w", err)
		}
		transport = gt
		pricing = cfg.GetModelPricing(cfg.Gemini.Model)
	case config.TransportOpenAI:
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required for the openai transport")
		}
		transport = ai.NewOpenAITransport(cfg.OpenAI.Token, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
		pricing = cfg.GetModelPricing(cfg.OpenAI.Model)
	case config.TransportOllama:
		// Self-hosted, so there is no price to track.
		transport = ai.NewOllamaTransport(cfg.Ollama.URL, cfg.Ollama.Model, cfg.Analysis.Timeout)
	default:
		return nil, fmt.Errorf("unknown transport: %s (supported: relay, gemini, openai, ollama)", cfg.Analysis.Transport)
	}

	return ai.NewAnalyzer(transport, ai.Options{
		Locale:  ai.LocaleFor(cfg.Analysis.Language),
		Timeout: cfg.Analysis.Timeout,
		Pricing: ai.RequestPricing{Input: pricing.Input, Output: pricing.Output},
	}), nil
}

// printUsage prints token usage and cost when the transport reported any.
func printUsage(usage ai.Usage) {
	if usage.InputTokens == 0 && usage.OutputTokens == 0 {
		return
	}
	fmt.Printf("\nAPI Usage:\n")
	fmt.Printf("  Requests: %d\n", usage.Requests)
	fmt.Printf("  Input tokens: %d\n", usage.InputTokens)
	fmt.Printf("  Output tokens: %d\n", usage.OutputTokens)
	fmt.Printf("  Total cost: $%.4f\n", usage.TotalCost)
}
