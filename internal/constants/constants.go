// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Timeout constants
const (
	// DefaultAnalysisTimeout bounds both the client->relay call and the relay->upstream call
	DefaultAnalysisTimeout = 30 * time.Second

	// ShutdownTimeout is how long the server waits for in-flight requests on shutdown
	ShutdownTimeout = 30 * time.Second

	// RequestTimeoutSlack is added on top of the analysis timeout for whole-request deadlines
	RequestTimeoutSlack = 15 * time.Second
)

// Upstream model constants
const (
	// DefaultGeminiModel is the generative model the relay forwards to
	DefaultGeminiModel = "gemini-2.5-flash"

	// DefaultGeminiBaseURL is the Generative Language API root
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultRelayURL is where the analysis client expects the relay by default
	DefaultRelayURL = "http://localhost:8080"
)

// Processing constants
const (
	// DefaultConcurrency is the default number of images analyzed in parallel by the CLI
	DefaultConcurrency = 3
)
