package testutil

import (
	"context"
	"strings"
	"sync"
)

// Generator provides deterministic generation responses for testing.
// It matches the prompt against registered substrings and returns the
// corresponding response; unmatched prompts get the fallback.
//
// Thread-safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rules    []generatorRule
	fallback string
	err      error
	calls    []string
}

type generatorRule struct {
	pattern  string
	response string
}

// NewGenerator creates a mock generator with the given fallback response.
func NewGenerator(fallback string) *Generator {
	return &Generator{fallback: fallback}
}

// AddResponse registers a pattern-response pair. When a prompt contains the
// pattern (case-insensitive), the response is returned. First match wins.
func (g *Generator) AddResponse(pattern, response string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, generatorRule{pattern: strings.ToLower(pattern), response: response})
}

// Fail makes every subsequent Generate call return err.
func (g *Generator) Fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

// Calls returns a copy of all prompts passed to Generate.
func (g *Generator) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	cp := make([]string, len(g.calls))
	copy(cp, g.calls)
	return cp
}

// Generate implements the generator capability.
func (g *Generator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, prompt)

	if g.err != nil {
		return "", g.err
	}

	lower := strings.ToLower(prompt)
	for _, r := range g.rules {
		if strings.Contains(lower, r.pattern) {
			return r.response, nil
		}
	}
	return g.fallback, nil
}
