package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kozaktomas/face-insight/internal/ai"
	"github.com/kozaktomas/face-insight/internal/constants"
	"github.com/kozaktomas/face-insight/internal/gemini"
	"github.com/kozaktomas/face-insight/internal/web/middleware"
)

// Relay forwards {prompt, mimeType, base64Data} to the model provider with
// the server-held key and mirrors the provider's status and body. The
// forwarding client is injected by middleware.WithUpstreamClient.
func Relay(w http.ResponseWriter, r *http.Request) {
	client := middleware.MustGetUpstream(r.Context(), w)
	if client == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRelayBodySize)
	var req ai.ImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	resp, err := client.Forward(r.Context(), gemini.ForwardRequest{
		Prompt:     req.Prompt,
		MIMEType:   req.MIMEType,
		Base64Data: req.Base64Data,
	})
	if err != nil {
		log.Printf("Server Proxy Error: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !json.Valid(resp.Body) {
		log.Printf("Server Proxy Error: upstream returned non-JSON body with status %d", resp.StatusCode)
		respondError(w, http.StatusInternalServerError, "upstream returned an invalid response")
		return
	}

	if !resp.OK() {
		log.Printf("relay: upstream %s rejected request with status %d", sanitizeForLog(client.Model()), resp.StatusCode)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Body)
}
