// Package knowledge owns the durable set of approved knowledge items and
// the retrieval index derived from them.
//
// The index is rebuilt wholesale from the current approved set and swapped
// atomically; it is never patched in place. Concurrent question-answering
// requests read the current index without locking, while Init/Reload are
// serialized by a mutex.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/najihhome/rfidrag/internal/vecindex"
)

// Embedder turns text into fixed-dimension vectors.
// Interface defined here, by the consumer.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Store manages the approved dataset and its retrieval index.
//
// Store is safe for concurrent use: readers call Current without locking,
// Init and Reload serialize on an internal mutex and publish the new index
// with an atomic pointer swap.
type Store struct {
	path     string
	embedder Embedder
	logger   *slog.Logger

	mu      sync.Mutex // serializes Init/Reload
	current atomic.Pointer[Index]
}

// New creates a Store for the dataset snapshot at path.
// The index is not built until Init is called.
func New(path string, embedder Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		path:     path,
		embedder: embedder,
		logger:   logger,
	}
}

// Load reads the dataset snapshot at path and returns the approved items.
// Unreadable or unparseable data wraps ErrDataset; there is no silent empty
// fallback at this layer.
func Load(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrDataset, path, err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrDataset, path, err)
	}

	approved := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Status == StatusApproved {
			approved = append(approved, it)
		}
	}
	return approved, nil
}

// BuildIndex derives the retrieval index from the given items.
// Items with an empty question or answer are dropped here, not at storage
// time. Zero remaining items is ErrEmptyCorpus: downstream confidence math
// assumes a non-empty neighbor set, so this must be fatal rather than
// silently degraded.
func (s *Store) BuildIndex(ctx context.Context, items []Item) (*Index, error) {
	texts := make([]string, 0, len(items))
	entries := make([]Entry, 0, len(items))

	for _, it := range items {
		if it.Question == "" || it.Answer == "" {
			s.logger.Warn("skipping item with empty question or answer", "id", it.ID)
			continue
		}
		texts = append(texts, it.CorpusText())
		entries = append(entries, Entry{
			ID:       it.ID,
			Question: it.Question,
			Answer:   it.Answer,
			Category: it.Category,
		})
	}

	if len(texts) == 0 {
		return nil, ErrEmptyCorpus
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding corpus: %w", err)
	}

	flat, err := vecindex.Build(vectors)
	if err != nil {
		return nil, fmt.Errorf("building vector index: %w", err)
	}

	return &Index{flat: flat, entries: entries}, nil
}

// Init performs the first load and index build, establishing retrieval
// capability. Fatal errors (ErrDataset, ErrEmptyCorpus) propagate to the
// caller and should abort startup.
func (s *Store) Init(ctx context.Context) error {
	return s.Reload(ctx)
}

// Reload re-runs load and index build, then atomically replaces the active
// index. Safe to call while queries are in flight: requests holding the old
// reference complete against a consistent view.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := Load(s.path)
	if err != nil {
		return err
	}

	idx, err := s.BuildIndex(ctx, items)
	if err != nil {
		return err
	}

	s.current.Store(idx)
	s.logger.Info("retrieval index loaded", "items", idx.Size(), "dim", idx.Dim())
	return nil
}

// Current returns the active retrieval index, or nil before Init.
func (s *Store) Current() *Index {
	return s.current.Load()
}
