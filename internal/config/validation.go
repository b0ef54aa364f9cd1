package config

import "fmt"

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.DatasetPath == "" {
		return fmt.Errorf("%w: dataset_path cannot be empty", ErrMissingDatasetPath)
	}
	if c.PendingPath == "" {
		return fmt.Errorf("%w: pending_path cannot be empty", ErrMissingPendingPath)
	}

	switch c.Provider {
	case ProviderOllama:
		if c.OllamaHost == "" {
			return fmt.Errorf("%w: ollama_host cannot be empty", ErrInvalidOllamaHost)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY environment variable is required "+
				"when provider is %q", ErrMissingAPIKey, ProviderOpenAI)
		}
	default:
		return fmt.Errorf("%w: %q (supported: %q, %q)",
			ErrInvalidProvider, c.Provider, ProviderOllama, ProviderOpenAI)
	}

	// Temperature range follows the Ollama/OpenAI sampling contract.
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.Temperature)
	}
	if c.TopP <= 0.0 || c.TopP > 1.0 {
		return fmt.Errorf("%w: must be in (0.0, 1.0], got %.2f", ErrInvalidTopP, c.TopP)
	}

	if c.GenerateTimeout <= 0 {
		return fmt.Errorf("%w: generate_timeout must be positive, got %s", ErrInvalidTimeout, c.GenerateTimeout)
	}
	if c.OnlineSearchTimeout <= 0 {
		return fmt.Errorf("%w: online_search_timeout must be positive, got %s", ErrInvalidTimeout, c.OnlineSearchTimeout)
	}

	return nil
}
