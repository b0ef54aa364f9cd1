package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures the OpenAI adapter.
type OpenAIConfig struct {
	APIKey string

	// ChatModel is the chat-completion model, e.g. "gpt-4".
	ChatModel string

	// Timeout bounds each Generate call.
	Timeout time.Duration

	// Options are the sampling options sent with every generation.
	// RepeatPenalty maps to the API's frequency penalty.
	Options Options
}

// OpenAI adapts the OpenAI API to the Generator and Embedder capabilities.
type OpenAI struct {
	cfg    OpenAIConfig
	client *openai.Client
	logger *slog.Logger
}

// NewOpenAI creates an OpenAI adapter.
func NewOpenAI(cfg OpenAIConfig, logger *slog.Logger) *OpenAI {
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenAI{
		cfg:    cfg,
		client: openai.NewClient(cfg.APIKey),
		logger: logger,
	}
}

// Generate produces text for the prompt via chat completion.
// A timeout is returned as ErrTimeout.
func (c *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:      c.cfg.Options.Temperature,
		TopP:             c.cfg.Options.TopP,
		FrequencyPenalty: c.cfg.Options.RepeatPenalty - 1,
	})
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Embed returns the embedding vector for a single text.
func (c *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns embedding vectors for all texts, in input order.
func (c *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.AdaEmbeddingV2,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d embeddings for %d inputs",
			len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
