package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OllamaConfig configures the Ollama adapter.
type OllamaConfig struct {
	// Host is the Ollama server address, e.g. "http://localhost:11434".
	Host string

	// GenerateModel is the model used for /api/generate.
	GenerateModel string

	// EmbedModel is the model used for /api/embed.
	EmbedModel string

	// Timeout bounds each Generate call.
	Timeout time.Duration

	// Options are the sampling options sent with every generation.
	Options Options
}

// Ollama talks to a local Ollama server over its HTTP API.
// It implements both the Generator and Embedder capabilities.
type Ollama struct {
	cfg    OllamaConfig
	client *http.Client
	logger *slog.Logger
}

// NewOllama creates an Ollama adapter.
func NewOllama(cfg OllamaConfig, logger *slog.Logger) *Ollama {
	if logger == nil {
		logger = slog.Default()
	}

	return &Ollama{
		cfg:    cfg,
		client: &http.Client{},
		logger: logger,
	}
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Generate produces text for the prompt, bounded by the configured timeout.
// A timeout is returned as ErrTimeout.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	reqBody := ollamaGenerateRequest{
		Model:  o.cfg.GenerateModel,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"temperature":    o.cfg.Options.Temperature,
			"top_p":          o.cfg.Options.TopP,
			"repeat_penalty": o.cfg.Options.RepeatPenalty,
		},
	}

	var resp ollamaGenerateResponse
	if err := o.post(ctx, "/api/generate", reqBody, &resp); err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	return strings.TrimSpace(resp.Response), nil
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns the embedding vector for a single text.
func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns embedding vectors for all texts, in input order.
func (o *Ollama) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var resp ollamaEmbedResponse
	err := o.post(ctx, "/api/embed", ollamaEmbedRequest{
		Model: o.cfg.EmbedModel,
		Input: texts,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: got %d embeddings for %d inputs",
			len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

// post sends a JSON request to the Ollama server and decodes the response.
func (o *Ollama) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(o.cfg.Host, "/")+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	o.logger.Debug("ollama request", "path", path, "duration", time.Since(start))
	return nil
}
