// Package gemini holds the Generative Language API wire envelope and the
// REST forwarder the relay uses to reach it.
package gemini

import "strings"

// GenerateContentRequest is the body of models/{model}:generateContent.
type GenerateContentRequest struct {
	Contents []Content `json:"contents"`
}

// Content is one turn. The relay always sends exactly one.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is either text or inline binary data.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inline_data,omitempty"`
}

// Blob carries base64 image bytes tagged with their MIME type.
type Blob struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// GenerateContentResponse is the subset of the provider envelope the client reads.
type GenerateContentResponse struct {
	Candidates    []Candidate    `json:"candidates"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Text concatenates the text parts of the first candidate.
func (r *GenerateContentResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// NewSingleTurnRequest builds a request with one user turn: the prompt
// followed by the inline image.
func NewSingleTurnRequest(prompt, mimeType, base64Data string) GenerateContentRequest {
	return GenerateContentRequest{
		Contents: []Content{
			{
				Role: "user",
				Parts: []Part{
					{Text: prompt},
					{InlineData: &Blob{MIMEType: mimeType, Data: base64Data}},
				},
			},
		},
	}
}
