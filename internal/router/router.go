// Package router decides how each question gets answered: from the local
// knowledge base, from an online search, or straight from the generator.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/najihhome/rfidrag/internal/contribution"
	"github.com/najihhome/rfidrag/internal/i18n"
	"github.com/najihhome/rfidrag/internal/knowledge"
	"github.com/najihhome/rfidrag/internal/llm"
	"github.com/najihhome/rfidrag/internal/websearch"
)

const (
	// TopK is how many knowledge entries back a grounded answer.
	TopK = 3

	// OnlineFallbackThreshold is the similarity below which the local
	// knowledge base is considered to have no usable match.
	OnlineFallbackThreshold = 0.45

	// RAGThreshold marks a comfortably strong local match. Branching
	// keys on OnlineFallbackThreshold alone.
	RAGThreshold = 0.55

	// MinConfidence and MaxConfidence clamp the similarity-derived
	// confidence of grounded answers.
	MinConfidence = 0.3
	MaxConfidence = 0.95

	// OnlineConfidence and GenerativeConfidence are the fixed scores of
	// the two fallback branches.
	OnlineConfidence     = 0.6
	GenerativeConfidence = 0.85
)

// Answer modes.
const (
	ModeRAG    = "rag"
	ModeOnline = "online"
	ModeLLM    = "llm"
)

// Answer is the routed response to a question. Sources entries are
// pointers so that online citations without a URL serialize as null.
type Answer struct {
	Answer     string    `json:"answer"`
	Confidence float64   `json:"confidence"`
	Sources    []*string `json:"sources"`
	Mode       string    `json:"mode"`
}

// Embedder turns a question into a vector in the index's space.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OnlineSearcher answers from the web. It never fails: an empty answer
// means nothing was found.
type OnlineSearcher interface {
	Search(ctx context.Context, question string) websearch.Result
}

// Submitter records a new pending contribution.
type Submitter interface {
	Submit(p contribution.Payload) (string, error)
}

// IndexProvider exposes the current retrieval index.
type IndexProvider interface {
	Current() *knowledge.Index
}

// Router routes questions through retrieval, online search, and
// generation.
type Router struct {
	index         IndexProvider
	embedder      Embedder
	generator     Generator
	online        OnlineSearcher
	contributions Submitter
	logger        *slog.Logger
}

func New(index IndexProvider, embedder Embedder, generator Generator, online OnlineSearcher, contributions Submitter, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		index:         index,
		embedder:      embedder,
		generator:     generator,
		online:        online,
		contributions: contributions,
		logger:        logger,
	}
}

// Ask answers the question. With useGenerator false a strong local match
// returns the stored answer verbatim; otherwise the generator rephrases
// the retrieved context. Questions without a local match fall through to
// online search and finally to ungrounded generation.
func (r *Router) Ask(ctx context.Context, question string, useGenerator bool) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, errors.New("question is empty")
	}

	idx := r.index.Current()
	if idx == nil {
		return Answer{}, errors.New("retrieval index not ready")
	}

	query, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("embedding question: %w", err)
	}

	hits, err := idx.Search(query, TopK)
	if err != nil {
		return Answer{}, fmt.Errorf("searching index: %w", err)
	}

	var bestScore float64
	if len(hits) > 0 {
		bestScore = hits[0].Score
	}

	if len(hits) > 0 && bestScore >= OnlineFallbackThreshold {
		return r.answerLocal(ctx, question, hits, bestScore, useGenerator), nil
	}

	online := r.online.Search(ctx, question)
	if online.Answer != "" {
		return r.answerOnline(ctx, question, online), nil
	}

	return r.answerGenerative(ctx, question), nil
}

func (r *Router) answerLocal(ctx context.Context, question string, hits []knowledge.Hit, bestScore float64, useGenerator bool) Answer {
	sources := make([]*string, 0, len(hits))
	for _, h := range hits {
		id := h.Entry.ID
		sources = append(sources, &id)
	}

	conf := ragConfidence(bestScore)

	r.logger.Debug("question answered from local knowledge",
		"best_score", bestScore,
		"confidence", conf,
		"hits", len(hits),
		"generate", useGenerator,
	)

	if !useGenerator {
		return Answer{
			Answer:     hits[0].Entry.Answer,
			Confidence: conf,
			Sources:    sources,
			Mode:       ModeRAG,
		}
	}

	var ctxb strings.Builder
	for i, h := range hits {
		if i > 0 {
			ctxb.WriteString("\n\n")
		}
		fmt.Fprintf(&ctxb, "Q: %s\nA: %s", h.Entry.Question, h.Entry.Answer)
	}

	return Answer{
		Answer:     r.generate(ctx, buildPrompt(question, ctxb.String())),
		Confidence: conf,
		Sources:    sources,
		Mode:       ModeRAG,
	}
}

func (r *Router) answerOnline(ctx context.Context, question string, online websearch.Result) Answer {
	answer := r.generate(ctx, buildPrompt(question, online.Answer))

	refs := make([]knowledge.Reference, 0, len(online.Sources))
	sources := make([]*string, 0, len(online.Sources))
	for _, s := range online.Sources {
		refs = append(refs, knowledge.Reference{URL: s.URL, Title: s.Title})
		if s.URL == "" {
			sources = append(sources, nil)
			continue
		}
		url := s.URL
		sources = append(sources, &url)
	}

	id, err := r.contributions.Submit(contribution.Payload{
		Question:   question,
		Answer:     answer,
		Source:     "online-search",
		Confidence: OnlineConfidence,
		References: refs,
	})
	if err != nil {
		r.logger.Warn("failed to record online answer as contribution", "error", err)
	} else {
		r.logger.Info("online answer queued for moderation", "contribution_id", id)
	}

	return Answer{
		Answer:     answer,
		Confidence: OnlineConfidence,
		Sources:    sources,
		Mode:       ModeOnline,
	}
}

func (r *Router) answerGenerative(ctx context.Context, question string) Answer {
	r.logger.Debug("question answered without grounding")

	src := "llm-generated"

	return Answer{
		Answer:     r.generate(ctx, buildPrompt(question, "")),
		Confidence: GenerativeConfidence,
		Sources:    []*string{&src},
		Mode:       ModeLLM,
	}
}

// generate invokes the generator and folds failures into user-facing
// text so a slow or broken model never breaks the answer flow.
func (r *Router) generate(ctx context.Context, prompt string) string {
	text, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrTimeout) {
			r.logger.Warn("generation timed out")
			return i18n.T("answer.timeout")
		}

		r.logger.Error("generation failed", "error", err)
		return i18n.Sprintf("answer.error", err)
	}

	return text
}

func buildPrompt(question, context string) string {
	var b strings.Builder

	b.WriteString("Kamu adalah asisten ahli RFID dan sistem komunikasi radio.\n")
	b.WriteString("Jawab dengan bahasa Indonesia yang natural, jelas, dan profesional.\n\n")
	b.WriteString("Aturan:\n")
	b.WriteString("- Jangan terdengar seperti buku teks\n")
	b.WriteString("- Jangan menyebut kata \"konteks\" atau \"data di atas\"\n")
	b.WriteString("- Jika topik umum, jelaskan dari dasar\n")
	b.WriteString("- Jika teknis, jelaskan bertahap\n\n")
	b.WriteString("Referensi (jika relevan):\n")
	b.WriteString(context)
	b.WriteString("\n\nPertanyaan:\n")
	b.WriteString(question)
	b.WriteString("\n\nJawaban:")

	return b.String()
}

func ragConfidence(score float64) float64 {
	c := math.Min(MaxConfidence, math.Max(MinConfidence, score))
	return math.Round(c*100) / 100
}
