// Package app wires configuration, model providers, stores, and the
// answer router into a running application.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/najihhome/rfidrag/internal/config"
	"github.com/najihhome/rfidrag/internal/contribution"
	"github.com/najihhome/rfidrag/internal/i18n"
	"github.com/najihhome/rfidrag/internal/knowledge"
	"github.com/najihhome/rfidrag/internal/llm"
	"github.com/najihhome/rfidrag/internal/router"
	"github.com/najihhome/rfidrag/internal/websearch"
)

// Provider bundles the generation and embedding capabilities of one
// model backend.
type Provider interface {
	router.Generator
	knowledge.Embedder
}

// App holds the assembled application components.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Knowledge     *knowledge.Store
	Contributions *contribution.Store
	Router        *router.Router
}

// Setup builds the application from configuration. It loads and indexes
// the approved knowledge base before returning, so a broken or empty
// dataset fails startup.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	i18n.Init(cfg.Language)

	provider, err := newProvider(cfg, logger)
	if err != nil {
		return nil, err
	}

	store := knowledge.New(cfg.DatasetPath, provider, logger)
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("loading knowledge base: %w", err)
	}

	contributions := contribution.New(cfg.PendingPath, cfg.DatasetPath, logger)

	online := websearch.New(websearch.Config{
		URL:     cfg.OnlineSearchURL,
		Timeout: cfg.OnlineSearchTimeout,
	}, logger)

	rt := router.New(store, provider, provider, online, contributions, logger)

	logger.Info("application ready",
		"provider", cfg.Provider,
		"generator_model", cfg.GeneratorModel,
		"knowledge_entries", store.Current().Size(),
	)

	return &App{
		Config:        cfg,
		Logger:        logger,
		Knowledge:     store,
		Contributions: contributions,
		Router:        rt,
	}, nil
}

func newProvider(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	opts := llm.Options{
		Temperature:   cfg.Temperature,
		TopP:          cfg.TopP,
		RepeatPenalty: cfg.RepeatPenalty,
	}

	switch cfg.Provider {
	case config.ProviderOllama:
		return llm.NewOllama(llm.OllamaConfig{
			Host:          cfg.OllamaHost,
			GenerateModel: cfg.GeneratorModel,
			EmbedModel:    cfg.EmbedderModel,
			Timeout:       cfg.GenerateTimeout,
			Options:       opts,
		}, logger), nil

	case config.ProviderOpenAI:
		return llm.NewOpenAI(llm.OpenAIConfig{
			APIKey:    cfg.OpenAIAPIKey,
			ChatModel: cfg.GeneratorModel,
			Timeout:   cfg.GenerateTimeout,
			Options:   opts,
		}, logger), nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidProvider, cfg.Provider)
	}
}
