package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ForwardRequest is what the relay received from the browser.
type ForwardRequest struct {
	Prompt     string
	MIMEType   string
	Base64Data string
}

// RawResponse is the upstream answer exactly as received.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the upstream status is 2xx.
func (r *RawResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client posts generateContent requests with a server-held key.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a forwarder. timeout bounds every upstream call.
func NewClient(baseURL, model, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) endpoint() string {
	return c.baseURL + "/models/" + url.PathEscape(c.model) + ":generateContent"
}

// Forward sends a single-turn prompt+image request and returns the upstream
// status and body untouched. An error means the call never produced a
// response (transport failure, timeout, unreadable body).
func (c *Client) Forward(ctx context.Context, fr ForwardRequest) (*RawResponse, error) {
	payload, err := json.Marshal(NewSingleTurnRequest(fr.Prompt, fr.MIMEType, fr.Base64Data))
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL built from operator configuration
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	return &RawResponse{StatusCode: resp.StatusCode, Body: body}, nil
}
