package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-insight/internal/ai"
	"github.com/kozaktomas/face-insight/internal/config"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the configuration response. It never carries the key.
type ConfigResponse struct {
	Model                string     `json:"model"`
	CredentialConfigured bool       `json:"credential_configured"`
	Language             string     `json:"language"`
	Labels               PageLabels `json:"labels"`
}

// PageLabels are the user-facing strings of the mobile page in the
// configured language, so server messages and page chrome always agree.
type PageLabels struct {
	Lang        string `json:"lang"`
	Camera      string `json:"camera"`
	Gallery     string `json:"gallery"`
	Analyze     string `json:"analyze"`
	Analyzing   string `json:"analyzing"`
	Person      string `json:"person"`
	Gender      string `json:"gender"`
	Age         string `json:"age"`
	Empty       string `json:"empty"`
	Failure     string `json:"failure"`
	ReadFailure string `json:"read_failure"`
}

func pageLabels(locale ai.Locale) PageLabels {
	return PageLabels{
		Lang:        locale.Tag.String(),
		Camera:      locale.CameraAction,
		Gallery:     locale.GalleryAction,
		Analyze:     locale.AnalyzeAction,
		Analyzing:   locale.AnalyzingStatus,
		Person:      locale.PersonLabel,
		Gender:      locale.GenderLabel,
		Age:         locale.AgeLabel,
		Empty:       locale.EmptyMessage,
		Failure:     locale.FailureMessage,
		ReadFailure: locale.ReadFailureMessage,
	}
}

// Get returns the public part of the configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ConfigResponse{
		Model:                h.config.Gemini.Model,
		CredentialConfigured: h.config.Gemini.APIKey != "",
		Language:             h.config.Analysis.Language,
		Labels:               pageLabels(ai.LocaleFor(h.config.Analysis.Language)),
	})
}
