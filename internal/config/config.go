// Package config builds the process configuration once at startup.
// Precedence: defaults < config.yaml in the data dir < environment.
// Nothing in the pipeline reads the environment directly; everything is
// injected through this struct.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDeployment = "gpt-4.1"
	DefaultAPIVersion = "2024-12-01-preview"
	DefaultSearchURL  = "https://api.duckduckgo.com"

	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "qwen2.5-coder:3b-instruct"
)

type Config struct {
	// Azure OpenAI backend. When Endpoint and APIKey are both set, this
	// backend is preferred over the local one.
	AzureEndpoint   string
	AzureAPIKey     string
	AzureDeployment string
	AzureAPIVersion string
	Temperature     float64
	MaxTokens       int
	RequestTimeout  time.Duration

	// Local Ollama fallback backend.
	OllamaURL   string
	OllamaModel string

	// Invoker retry discipline.
	MaxRetries   int
	RetryBackoff time.Duration

	// Prompt building.
	MaxPromptChars int
	RedactSecrets  bool

	// Enrichment (reference-link search).
	SearchURL        string
	SearchTimeout    time.Duration
	SearchMaxResults int
	SearchDisabled   bool

	// Storage and server.
	DataDir    string
	ListenAddr string
	Debug      bool
}

// fileConfig mirrors Config for the optional YAML file. Durations are
// strings in time.ParseDuration syntax.
type fileConfig struct {
	AzureEndpoint    string  `yaml:"azure_endpoint"`
	AzureAPIKey      string  `yaml:"azure_api_key"`
	AzureDeployment  string  `yaml:"azure_deployment"`
	AzureAPIVersion  string  `yaml:"azure_api_version"`
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	RequestTimeout   string  `yaml:"request_timeout"`
	OllamaURL        string  `yaml:"ollama_url"`
	OllamaModel      string  `yaml:"ollama_model"`
	MaxRetries       int     `yaml:"max_retries"`
	RetryBackoff     string  `yaml:"retry_backoff"`
	MaxPromptChars   int     `yaml:"max_prompt_chars"`
	RedactSecrets    bool    `yaml:"redact_secrets"`
	SearchURL        string  `yaml:"search_url"`
	SearchTimeout    string  `yaml:"search_timeout"`
	SearchMaxResults int     `yaml:"search_max_results"`
	SearchDisabled   bool    `yaml:"search_disabled"`
	ListenAddr       string  `yaml:"listen_addr"`
}

// Load builds the configuration. A .env file in the working directory is
// honored first (so RCA_* variables can live there), then config.yaml in
// the data dir, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AzureDeployment:  DefaultDeployment,
		AzureAPIVersion:  DefaultAPIVersion,
		RequestTimeout:   60 * time.Second,
		OllamaURL:        defaultOllamaURL,
		OllamaModel:      defaultOllamaModel,
		MaxRetries:       3,
		RetryBackoff:     5 * time.Second,
		MaxPromptChars:   50000,
		SearchURL:        DefaultSearchURL,
		SearchTimeout:    8 * time.Second,
		SearchMaxResults: 3,
		ListenAddr:       ":8000",
		DataDir:          defaultDataDir(),
	}

	if v := os.Getenv("RCA_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	cfg.applyFile(filepath.Join(cfg.DataDir, "config.yaml"))
	cfg.applyEnv()
	return cfg
}

// HasAzure reports whether the Azure backend is fully configured.
func (c *Config) HasAzure() bool {
	return c.AzureEndpoint != "" && c.AzureAPIKey != ""
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rca-agent"
	}
	return filepath.Join(home, ".rca-agent")
}

func (c *Config) applyFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return // file is optional
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return
	}
	setString(&c.AzureEndpoint, fc.AzureEndpoint)
	setString(&c.AzureAPIKey, fc.AzureAPIKey)
	setString(&c.AzureDeployment, fc.AzureDeployment)
	setString(&c.AzureAPIVersion, fc.AzureAPIVersion)
	if fc.Temperature != 0 {
		c.Temperature = fc.Temperature
	}
	if fc.MaxTokens != 0 {
		c.MaxTokens = fc.MaxTokens
	}
	setDuration(&c.RequestTimeout, fc.RequestTimeout)
	setString(&c.OllamaURL, fc.OllamaURL)
	setString(&c.OllamaModel, fc.OllamaModel)
	if fc.MaxRetries > 0 {
		c.MaxRetries = fc.MaxRetries
	}
	setDuration(&c.RetryBackoff, fc.RetryBackoff)
	if fc.MaxPromptChars > 0 {
		c.MaxPromptChars = fc.MaxPromptChars
	}
	if fc.RedactSecrets {
		c.RedactSecrets = true
	}
	setString(&c.SearchURL, fc.SearchURL)
	setDuration(&c.SearchTimeout, fc.SearchTimeout)
	if fc.SearchMaxResults > 0 {
		c.SearchMaxResults = fc.SearchMaxResults
	}
	if fc.SearchDisabled {
		c.SearchDisabled = true
	}
	setString(&c.ListenAddr, fc.ListenAddr)
}

func (c *Config) applyEnv() {
	// RCA_* names take priority; the bare names match the original
	// deployment environment.
	setString(&c.AzureEndpoint, envOr("RCA_AZURE_ENDPOINT", "AZURE_ENDPOINT"))
	setString(&c.AzureAPIKey, envOr("RCA_API_KEY", "API_KEY"))
	setString(&c.AzureDeployment, os.Getenv("RCA_DEPLOYMENT"))
	setString(&c.AzureAPIVersion, os.Getenv("RCA_API_VERSION"))
	if v := os.Getenv("RCA_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Temperature = f
		}
	}
	if v := os.Getenv("RCA_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		}
	}
	setDuration(&c.RequestTimeout, os.Getenv("RCA_REQUEST_TIMEOUT"))
	setString(&c.OllamaURL, os.Getenv("RCA_OLLAMA_URL"))
	setString(&c.OllamaModel, os.Getenv("RCA_OLLAMA_MODEL"))
	if v := os.Getenv("RCA_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxRetries = n
		}
	}
	setDuration(&c.RetryBackoff, os.Getenv("RCA_RETRY_BACKOFF"))
	if v := os.Getenv("RCA_MAX_PROMPT_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxPromptChars = n
		}
	}
	if os.Getenv("RCA_REDACT_SECRETS") != "" {
		c.RedactSecrets = true
	}
	setString(&c.SearchURL, os.Getenv("RCA_SEARCH_URL"))
	setDuration(&c.SearchTimeout, os.Getenv("RCA_SEARCH_TIMEOUT"))
	if v := os.Getenv("RCA_SEARCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.SearchMaxResults = n
		}
	}
	if os.Getenv("RCA_SEARCH_DISABLED") != "" {
		c.SearchDisabled = true
	}
	setString(&c.ListenAddr, os.Getenv("RCA_LISTEN_ADDR"))
	if os.Getenv("RCA_DEBUG") != "" {
		c.Debug = true
	}
}

func envOr(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) {
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = d
	}
}
