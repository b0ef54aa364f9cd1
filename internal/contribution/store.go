// Package contribution implements the moderated contribution workflow: a
// pending set awaiting a decision and the approved set it feeds.
//
// Both sets are persisted as complete JSON snapshots rewritten on every
// mutation. The load-modify-save pattern is inherently racy under
// concurrent writers, so every mutating operation holds an in-process
// mutex plus a cross-process file lock.
package contribution

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/najihhome/rfidrag/internal/knowledge"
)

// Default field values applied on submit.
const (
	DefaultCategory   = "Umum"
	DefaultDifficulty = "Basic"
	DefaultAuthor     = "System"
	DefaultSource     = "unknown"
	DefaultDomain     = "general"
	DefaultType       = "qna"
	DefaultLanguage   = "id"
	DefaultConfidence = 0.6

	// maxTitleLen bounds the title derived from the question.
	maxTitleLen = 60
)

// Payload is a contribution submission. Question and Answer are required;
// everything else is optional and default-filled.
type Payload struct {
	Title      string
	Question   string
	Answer     string
	Category   string
	Difficulty string
	Tags       []string
	Author     string
	Source     string
	Domain     string
	Type       string
	Language   string
	Confidence float64
	References []knowledge.Reference
}

// Store manages the pending and approved snapshots.
//
// Store is safe for concurrent use within a process; the flock guards the
// snapshots against writers in other processes.
type Store struct {
	pendingPath  string
	approvedPath string
	logger       *slog.Logger

	mu   sync.Mutex
	lock *flock.Flock
}

// New creates a Store over the two snapshot paths.
func New(pendingPath, approvedPath string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		pendingPath:  pendingPath,
		approvedPath: approvedPath,
		logger:       logger,
		lock:         flock.New(approvedPath + ".lock"),
	}
}

// Submit validates the payload, fills defaults, appends the contribution to
// the pending snapshot, and returns the assigned pending id.
func (s *Store) Submit(p Payload) (string, error) {
	if strings.TrimSpace(p.Question) == "" || strings.TrimSpace(p.Answer) == "" {
		return "", fmt.Errorf("%w: question and answer are required", ErrInvalidPayload)
	}

	item := s.newPendingItem(p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lockFiles(); err != nil {
		return "", err
	}
	defer s.unlockFiles()

	pending, err := readItems(s.pendingPath)
	if err != nil {
		return "", err
	}

	pending = append(pending, item)
	if err := writeItems(s.pendingPath, pending); err != nil {
		return "", err
	}

	s.logger.Info("contribution submitted", "id", item.ID, "source", item.Source)
	return item.ID, nil
}

// ListPending returns the pending set in insertion order.
func (s *Store) ListPending() ([]knowledge.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return readItems(s.pendingPath)
}

// Approve moves the pending contribution with the given id into the
// approved snapshot, assigning a fresh approved id from a persisted
// monotonic sequence. Returns ErrNotFound if the id is not pending; a
// second Approve of the same id therefore fails.
func (s *Store) Approve(id string) (knowledge.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lockFiles(); err != nil {
		return knowledge.Item{}, err
	}
	defer s.unlockFiles()

	pending, err := readItems(s.pendingPath)
	if err != nil {
		return knowledge.Item{}, err
	}

	pos := -1
	for i, it := range pending {
		if it.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return knowledge.Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	approved, err := readItems(s.approvedPath)
	if err != nil {
		return knowledge.Item{}, err
	}

	seq, err := s.nextSeq(approved)
	if err != nil {
		return knowledge.Item{}, err
	}

	item := pending[pos]
	item.ID = fmt.Sprintf("rfid-%06d", seq)
	item.Status = knowledge.StatusApproved
	item.UpdatedAt = time.Now().UTC()
	if item.Content == "" {
		item.Content = item.Answer
	}

	pending = append(pending[:pos], pending[pos+1:]...)
	approved = append(approved, item)

	if err := writeItems(s.pendingPath, pending); err != nil {
		return knowledge.Item{}, err
	}
	if err := writeItems(s.approvedPath, approved); err != nil {
		return knowledge.Item{}, err
	}
	if err := s.writeSeq(seq); err != nil {
		return knowledge.Item{}, err
	}

	s.logger.Info("contribution approved", "pending_id", id, "approved_id", item.ID)
	return item, nil
}

// Reject removes the contribution from the pending set, keeping no trace.
// A missing id is a no-op success, so Reject is idempotent.
func (s *Store) Reject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lockFiles(); err != nil {
		return err
	}
	defer s.unlockFiles()

	pending, err := readItems(s.pendingPath)
	if err != nil {
		return err
	}

	kept := pending[:0]
	for _, it := range pending {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(pending) {
		return nil
	}

	if err := writeItems(s.pendingPath, kept); err != nil {
		return err
	}

	s.logger.Info("contribution rejected", "id", id)
	return nil
}

// newPendingItem builds the default-filled pending item for a payload.
func (s *Store) newPendingItem(p Payload) knowledge.Item {
	now := time.Now().UTC()

	item := knowledge.Item{
		ID:         "pending-" + pendingSuffix(),
		Title:      p.Title,
		Question:   p.Question,
		Answer:     p.Answer,
		Category:   p.Category,
		Difficulty: p.Difficulty,
		Tags:       p.Tags,
		Author:     p.Author,
		Source:     p.Source,
		Domain:     p.Domain,
		Type:       p.Type,
		Language:   p.Language,
		Status:     knowledge.StatusPending,
		Confidence: p.Confidence,
		References: p.References,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if item.Title == "" {
		item.Title = truncate(p.Question, maxTitleLen)
	}
	if item.Category == "" {
		item.Category = DefaultCategory
	}
	if item.Difficulty == "" {
		item.Difficulty = DefaultDifficulty
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if item.Author == "" {
		item.Author = DefaultAuthor
	}
	if item.Source == "" {
		item.Source = DefaultSource
	}
	if item.Domain == "" {
		item.Domain = DefaultDomain
	}
	if item.Type == "" {
		item.Type = DefaultType
	}
	if item.Language == "" {
		item.Language = DefaultLanguage
	}
	if item.Confidence == 0 {
		item.Confidence = DefaultConfidence
	}
	item.Content = item.CorpusText()

	return item
}

// nextSeq returns the next approved-id sequence number. The sequence is
// persisted in a sidecar file next to the approved snapshot; when the
// sidecar is absent (legacy datasets), it is recovered from the highest
// existing approved id so a rejected-then-compacted set never reuses ids.
func (s *Store) nextSeq(approved []knowledge.Item) (int, error) {
	seq := 0

	data, err := os.ReadFile(s.seqPath())
	switch {
	case err == nil:
		n, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
		if convErr != nil {
			return 0, fmt.Errorf("parsing sequence file %s: %w", s.seqPath(), convErr)
		}
		seq = n
	case os.IsNotExist(err):
		for _, it := range approved {
			if n, ok := approvedSeq(it.ID); ok && n > seq {
				seq = n
			}
		}
	default:
		return 0, fmt.Errorf("reading sequence file %s: %w", s.seqPath(), err)
	}

	return seq + 1, nil
}

func (s *Store) writeSeq(seq int) error {
	return atomicWrite(s.seqPath(), []byte(strconv.Itoa(seq)))
}

func (s *Store) seqPath() string {
	return s.approvedPath + ".seq"
}

func (s *Store) lockFiles() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("locking contribution store: %w", err)
	}
	return nil
}

func (s *Store) unlockFiles() {
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release contribution store lock", "error", err)
	}
}

// approvedSeq extracts the numeric suffix from an "rfid-NNNNNN" id.
func approvedSeq(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "rfid-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// pendingSuffix returns 8 hex characters from a fresh UUID.
func pendingSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// readItems loads a snapshot. A missing or empty file is an empty set;
// unparseable content is an error so a bad snapshot is never silently
// overwritten.
func readItems(path string) ([]knowledge.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []knowledge.Item{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []knowledge.Item{}, nil
	}

	var items []knowledge.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return items, nil
}

// writeItems rewrites a snapshot in full, atomically (temp file + rename).
func writeItems(path string, items []knowledge.Item) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return atomicWrite(path, data)
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
