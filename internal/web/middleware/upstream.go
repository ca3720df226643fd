package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kozaktomas/face-insight/internal/config"
	"github.com/kozaktomas/face-insight/internal/constants"
	"github.com/kozaktomas/face-insight/internal/gemini"
)

type contextKey string

const upstreamContextKey contextKey = "upstream"

// WithUpstreamClient reads the upstream credential for every request and
// injects a forwarding client into the context. Without a credential the
// request fails with 500 instead of being forwarded unauthenticated.
func WithUpstreamClient(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, err := cfg.Gemini.RequireAPIKey()
			if err != nil {
				log.Printf("relay: %v", err)
				writeError(w, http.StatusInternalServerError, constants.ErrMsgServerMisconfigured)
				return
			}

			client := gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.Model, apiKey, cfg.Analysis.Timeout)
			ctx := context.WithValue(r.Context(), upstreamContextKey, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUpstreamFromContext retrieves the forwarding client from the request context.
// Returns nil if no client is available.
func GetUpstreamFromContext(ctx context.Context) *gemini.Client {
	client, ok := ctx.Value(upstreamContextKey).(*gemini.Client)
	if !ok {
		return nil
	}
	return client
}

// SetUpstreamInContext stores a forwarding client in the context (used in tests).
func SetUpstreamInContext(ctx context.Context, client *gemini.Client) context.Context {
	return context.WithValue(ctx, upstreamContextKey, client)
}

// MustGetUpstream retrieves the forwarding client or writes a 500 and returns nil.
func MustGetUpstream(ctx context.Context, w http.ResponseWriter) *gemini.Client {
	client := GetUpstreamFromContext(ctx)
	if client == nil {
		writeError(w, http.StatusInternalServerError, constants.ErrMsgServerMisconfigured)
		return nil
	}
	return client
}

// ErrNoUpstream is returned when a request context carries no forwarding client.
var ErrNoUpstream = errors.New("no upstream client in request context")

// RequestUpstream forwards through the client WithUpstreamClient placed in the
// request context, so server-side analysis resolves the credential per request
// exactly like the relay.
type RequestUpstream struct{}

func (RequestUpstream) Forward(ctx context.Context, fr gemini.ForwardRequest) (*gemini.RawResponse, error) {
	client := GetUpstreamFromContext(ctx)
	if client == nil {
		return nil, ErrNoUpstream
	}
	return client.Forward(ctx, fr)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
