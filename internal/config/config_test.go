package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a config that passes Validate, for mutation in tests.
func validConfig() *Config {
	return &Config{
		DatasetPath:         "data/data.json",
		PendingPath:         "data/data_pending.json",
		Provider:            ProviderOllama,
		GeneratorModel:      "mistral",
		Temperature:         0.6,
		TopP:                0.9,
		RepeatPenalty:       1.1,
		GenerateTimeout:     2 * time.Minute,
		EmbedderModel:       "nomic-embed-text",
		OllamaHost:          "http://localhost:11434",
		OnlineSearchURL:     "http://localhost:5678/webhook/search",
		OnlineSearchTimeout: 20 * time.Second,
		ServerAddr:          "127.0.0.1:8000",
		Language:            "id",
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_NilConfig(t *testing.T) {
	var cfg *Config
	assert.ErrorIs(t, cfg.Validate(), ErrConfigNil)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"empty dataset path", func(c *Config) { c.DatasetPath = "" }, ErrMissingDatasetPath},
		{"empty pending path", func(c *Config) { c.PendingPath = "" }, ErrMissingPendingPath},
		{"unknown provider", func(c *Config) { c.Provider = "bedrock" }, ErrInvalidProvider},
		{"empty ollama host", func(c *Config) { c.OllamaHost = "" }, ErrInvalidOllamaHost},
		{"openai without key", func(c *Config) { c.Provider = ProviderOpenAI }, ErrMissingAPIKey},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, ErrInvalidTemperature},
		{"temperature negative", func(c *Config) { c.Temperature = -0.1 }, ErrInvalidTemperature},
		{"top_p zero", func(c *Config) { c.TopP = 0 }, ErrInvalidTopP},
		{"top_p above one", func(c *Config) { c.TopP = 1.2 }, ErrInvalidTopP},
		{"zero generate timeout", func(c *Config) { c.GenerateTimeout = 0 }, ErrInvalidTimeout},
		{"zero search timeout", func(c *Config) { c.OnlineSearchTimeout = 0 }, ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidate_OpenAIWithKey(t *testing.T) {
	cfg := validConfig()
	cfg.Provider = ProviderOpenAI
	cfg.OpenAIAPIKey = "sk-test"
	require.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config file in search path

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/data.json", cfg.DatasetPath)
	assert.Equal(t, "data/data_pending.json", cfg.PendingPath)
	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "mistral", cfg.GeneratorModel)
	assert.InDelta(t, 0.6, cfg.Temperature, 1e-6)
	assert.InDelta(t, 0.9, cfg.TopP, 1e-6)
	assert.Equal(t, 2*time.Minute, cfg.GenerateTimeout)
	assert.Equal(t, "id", cfg.Language)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RFIDRAG_GENERATOR_MODEL", "llama3")
	t.Setenv("RFIDRAG_DATASET_PATH", "custom/data.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "llama3", cfg.GeneratorModel)
	assert.Equal(t, "custom/data.json", cfg.DatasetPath)
}
