// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (RFIDRAG_* overrides)
//  2. Config file (./config.yaml or ~/.rfidrag/config.yaml)
//  3. Default values
//
// Validation uses sentinel errors so callers can check classes of failure
// with errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Provider identifiers for the generation/embedding backends.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidProvider indicates the model provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidTopP indicates the nucleus sampling value is out of range.
	ErrInvalidTopP = errors.New("invalid top_p")

	// ErrInvalidTimeout indicates a timeout value is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrMissingDatasetPath indicates the approved dataset path is empty.
	ErrMissingDatasetPath = errors.New("missing dataset path")

	// ErrMissingPendingPath indicates the pending contributions path is empty.
	ErrMissingPendingPath = errors.New("missing pending path")

	// ErrInvalidOllamaHost indicates the Ollama host is empty while the
	// ollama provider is selected.
	ErrInvalidOllamaHost = errors.New("invalid Ollama host")
)

// Config holds the full application configuration.
type Config struct {
	// Durable storage: approved knowledge and pending contributions,
	// each a complete JSON snapshot rewritten on every mutation.
	DatasetPath string `mapstructure:"dataset_path" json:"dataset_path"`
	PendingPath string `mapstructure:"pending_path" json:"pending_path"`

	// Model provider: "ollama" (default) or "openai".
	Provider string `mapstructure:"provider" json:"provider"`

	// Generator settings.
	GeneratorModel  string        `mapstructure:"generator_model" json:"generator_model"`
	Temperature     float32       `mapstructure:"temperature" json:"temperature"`
	TopP            float32       `mapstructure:"top_p" json:"top_p"`
	RepeatPenalty   float32       `mapstructure:"repeat_penalty" json:"repeat_penalty"`
	GenerateTimeout time.Duration `mapstructure:"generate_timeout" json:"generate_timeout"`

	// Embedder settings.
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`

	// Ollama server address (provider "ollama").
	OllamaHost string `mapstructure:"ollama_host" json:"ollama_host"`

	// OpenAI API key (provider "openai").
	OpenAIAPIKey string `mapstructure:"openai_api_key" json:"-"`

	// Online search webhook.
	OnlineSearchURL     string        `mapstructure:"online_search_url" json:"online_search_url"`
	OnlineSearchTimeout time.Duration `mapstructure:"online_search_timeout" json:"online_search_timeout"`

	// HTTP server (serve mode).
	ServerAddr  string   `mapstructure:"server_addr" json:"server_addr"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`

	// Response language for user-facing fallback messages ("id" or "en").
	Language string `mapstructure:"language" json:"language"`

	// WatchDataset reindexes automatically when the dataset file changes
	// on disk (external edits). Approvals always reindex regardless.
	WatchDataset bool `mapstructure:"watch_dataset" json:"watch_dataset"`

	// Logging.
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// Load reads configuration from defaults, an optional config file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".rfidrag"))
	}

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset_path", "data/data.json")
	v.SetDefault("pending_path", "data/data_pending.json")

	v.SetDefault("provider", ProviderOllama)
	v.SetDefault("generator_model", "mistral")
	v.SetDefault("temperature", 0.6)
	v.SetDefault("top_p", 0.9)
	v.SetDefault("repeat_penalty", 1.1)
	v.SetDefault("generate_timeout", 2*time.Minute)

	v.SetDefault("embedder_model", "nomic-embed-text")
	v.SetDefault("ollama_host", "http://localhost:11434")

	v.SetDefault("online_search_url", "https://n8n.najihhome.dev/webhook/search")
	v.SetDefault("online_search_timeout", 20*time.Second)

	v.SetDefault("server_addr", "127.0.0.1:8000")
	v.SetDefault("cors_origins", []string{"*"})

	v.SetDefault("language", "id")
	v.SetDefault("watch_dataset", false)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("dataset_path", "RFIDRAG_DATASET_PATH")
	mustBind("pending_path", "RFIDRAG_PENDING_PATH")
	mustBind("provider", "RFIDRAG_PROVIDER")
	mustBind("generator_model", "RFIDRAG_GENERATOR_MODEL")
	mustBind("embedder_model", "RFIDRAG_EMBEDDER_MODEL")
	mustBind("ollama_host", "RFIDRAG_OLLAMA_HOST")
	mustBind("openai_api_key", "OPENAI_API_KEY")
	mustBind("online_search_url", "RFIDRAG_ONLINE_SEARCH_URL")
	mustBind("server_addr", "RFIDRAG_SERVER_ADDR")
	mustBind("cors_origins", "RFIDRAG_CORS_ORIGINS")
	mustBind("language", "RFIDRAG_LANGUAGE")
	mustBind("watch_dataset", "RFIDRAG_WATCH_DATASET")
	mustBind("log_level", "RFIDRAG_LOG_LEVEL")
}
