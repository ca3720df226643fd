package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/face-insight/internal/constants"
)

//go:embed prices.yaml
var pricesYAML []byte

// ErrConfigurationMissing is returned when the upstream credential is not configured.
var ErrConfigurationMissing = errors.New("upstream API credential is not configured")

const defaultConfigPath = "~/.config/face-insight/config.toml"

// Transport names accepted by ANALYSIS_TRANSPORT.
const (
	TransportRelay  = "relay"
	TransportGemini = "gemini"
	TransportOpenAI = "openai"
	TransportOllama = "ollama"
)

type Config struct {
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	Ollama   OllamaConfig
	Analysis AnalysisConfig
	Web      WebConfig
	Prices   PricesConfig
}

type GeminiConfig struct {
	APIKey  string
	Model   string // defaults to gemini-2.5-flash
	BaseURL string // defaults to the public Generative Language API
}

// RequireAPIKey returns the credential or ErrConfigurationMissing.
func (c *GeminiConfig) RequireAPIKey() (string, error) {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return "", ErrConfigurationMissing
	}
	return key, nil
}

type OpenAIConfig struct {
	Token   string
	Model   string // defaults to gpt-4.1-mini
	BaseURL string // empty means the public OpenAI API
}

type OllamaConfig struct {
	URL   string
	Model string
}

type AnalysisConfig struct {
	Transport string        // relay, gemini, openai or ollama
	RelayURL  string        // base URL of the relay, /analyze is appended
	Language  string        // BCP 47 tag for the prompt and user-facing messages
	Timeout   time.Duration // bound on a single analysis call
}

type WebConfig struct {
	Host string
	Port int
}

type PricesConfig struct {
	Models map[string]ModelPricing `yaml:"models"`
}

// ModelPricing holds input/output prices per 1M tokens.
type ModelPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// fileConfig mirrors the optional TOML file. Secrets are deliberately absent.
type fileConfig struct {
	GeminiModel   string `toml:"gemini_model"`
	GeminiBaseURL string `toml:"gemini_base_url"`
	OpenAIModel   string `toml:"openai_model"`
	OpenAIBaseURL string `toml:"openai_base_url"`
	OllamaURL     string `toml:"ollama_url"`
	OllamaModel   string `toml:"ollama_model"`
	RelayURL      string `toml:"relay_url"`
	Transport     string `toml:"transport"`
	Language      string `toml:"language"`
	Timeout       string `toml:"timeout"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads a Go duration ("30s") from the environment.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

// envString returns the env value, or defaultVal when unset or blank.
func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Load builds the configuration from the optional TOML file at path and the
// environment. Environment variables win over the file. An empty path means
// the default location; a missing file is not an error.
func Load(path string) (*Config, error) {
	var prices PricesConfig
	if err := yaml.Unmarshal(pricesYAML, &prices); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded prices.yaml: " + err.Error())
	}

	file, err := readFile(path)
	if err != nil {
		return nil, err
	}

	fileTimeout := constants.DefaultAnalysisTimeout
	if file.Timeout != "" {
		d, err := time.ParseDuration(file.Timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("parse config: invalid timeout %q", file.Timeout)
		}
		fileTimeout = d
	}
	filePort := 8080
	if file.Port > 0 {
		filePort = file.Port
	}

	cfg := &Config{
		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   envString("GEMINI_MODEL", firstNonEmpty(file.GeminiModel, constants.DefaultGeminiModel)),
			BaseURL: strings.TrimSuffix(envString("GEMINI_BASE_URL", firstNonEmpty(file.GeminiBaseURL, constants.DefaultGeminiBaseURL)), "/"),
		},
		OpenAI: OpenAIConfig{
			Token:   os.Getenv("OPENAI_TOKEN"),
			Model:   envString("OPENAI_MODEL", firstNonEmpty(file.OpenAIModel, "gpt-4.1-mini")),
			BaseURL: envString("OPENAI_BASE_URL", firstNonEmpty(file.OpenAIBaseURL)),
		},
		Ollama: OllamaConfig{
			URL:   envString("OLLAMA_URL", firstNonEmpty(file.OllamaURL, "http://localhost:11434")),
			Model: envString("OLLAMA_MODEL", firstNonEmpty(file.OllamaModel, "llama3.2-vision:11b")),
		},
		Analysis: AnalysisConfig{
			Transport: strings.ToLower(envString("ANALYSIS_TRANSPORT", firstNonEmpty(file.Transport, TransportRelay))),
			RelayURL:  strings.TrimSuffix(envString("RELAY_URL", firstNonEmpty(file.RelayURL, constants.DefaultRelayURL)), "/"),
			Language:  envString("ANALYSIS_LANGUAGE", firstNonEmpty(file.Language, "zh")),
			Timeout:   envDuration("ANALYSIS_TIMEOUT", fileTimeout),
		},
		Web: WebConfig{
			Host: envString("WEB_HOST", firstNonEmpty(file.Host, "0.0.0.0")),
			Port: envInt("WEB_PORT", filePort),
		},
		Prices: prices,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late and confusingly.
func (c *Config) Validate() error {
	switch c.Analysis.Transport {
	case TransportRelay, TransportGemini, TransportOpenAI, TransportOllama:
	default:
		return fmt.Errorf("unknown analysis transport %q (supported: %s)", c.Analysis.Transport,
			strings.Join([]string{TransportRelay, TransportGemini, TransportOpenAI, TransportOllama}, ", "))
	}
	if c.Analysis.Timeout <= 0 {
		return errors.New("analysis timeout must be positive")
	}
	return nil
}

// GetModelPricing returns pricing for a specific model, or zero pricing if unknown.
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	return ModelPricing{}
}

func readFile(path string) (fileConfig, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = defaultConfigPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		if !explicit {
			return fileConfig{}, nil
		}
		return fileConfig{}, err
	}

	data, err := os.ReadFile(resolved) //nolint:gosec // path comes from the operator
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fileConfig{}, fmt.Errorf("parse config: %w", err)
	}
	return raw, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
