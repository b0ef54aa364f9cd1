package contribution

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/najihhome/rfidrag/internal/knowledge"
	"github.com/najihhome/rfidrag/internal/log"
)

var (
	pendingIDPattern  = regexp.MustCompile(`^pending-[0-9a-f]{8}$`)
	approvedIDPattern = regexp.MustCompile(`^rfid-\d{6}$`)
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return New(
		filepath.Join(dir, "data_pending.json"),
		filepath.Join(dir, "data.json"),
		log.NewNop(),
	)
}

func validPayload() Payload {
	return Payload{
		Question: "What is an RFID tag?",
		Answer:   "A transponder that stores an identifier readable over radio.",
	}
}

func TestSubmit_AssignsPendingID(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Submit(validPayload())
	require.NoError(t, err)
	assert.Regexp(t, pendingIDPattern, id)
}

func TestSubmit_MissingFields(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Submit(Payload{Answer: "a"})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = store.Submit(Payload{Question: "q"})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = store.Submit(Payload{Question: "  ", Answer: "a"})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestSubmit_DefaultFilledRoundTrip(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Submit(validPayload())
	require.NoError(t, err)

	pending, err := store.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	it := pending[0]
	assert.Equal(t, id, it.ID)
	assert.Equal(t, "What is an RFID tag?", it.Title)
	assert.Equal(t, DefaultCategory, it.Category)
	assert.Equal(t, DefaultDifficulty, it.Difficulty)
	assert.Equal(t, []string{}, it.Tags)
	assert.Equal(t, DefaultAuthor, it.Author)
	assert.Equal(t, DefaultSource, it.Source)
	assert.Equal(t, DefaultDomain, it.Domain)
	assert.Equal(t, DefaultType, it.Type)
	assert.Equal(t, DefaultLanguage, it.Language)
	assert.Equal(t, knowledge.StatusPending, it.Status)
	assert.InDelta(t, DefaultConfidence, it.Confidence, 1e-9)
	assert.Contains(t, it.Content, "Question: What is an RFID tag?")
	assert.False(t, it.CreatedAt.IsZero())
	assert.Equal(t, it.CreatedAt, it.UpdatedAt)
}

func TestSubmit_LongQuestionTruncatedTitle(t *testing.T) {
	store := newTestStore(t)

	p := validPayload()
	for len(p.Question) <= maxTitleLen {
		p.Question += " and how does anti-collision work?"
	}

	_, err := store.Submit(p)
	require.NoError(t, err)

	pending, err := store.ListPending()
	require.NoError(t, err)
	assert.Len(t, []rune(pending[0].Title), maxTitleLen)
}

func TestSubmit_ExplicitFieldsPreserved(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Submit(Payload{
		Title:      "Anti-collision",
		Question:   "q",
		Answer:     "a",
		Category:   "Protokol",
		Difficulty: "Advanced",
		Tags:       []string{"uhf"},
		Author:     "Naj",
		Source:     "user",
		Confidence: 0.9,
	})
	require.NoError(t, err)

	pending, err := store.ListPending()
	require.NoError(t, err)

	it := pending[0]
	assert.Equal(t, "Anti-collision", it.Title)
	assert.Equal(t, "Protokol", it.Category)
	assert.Equal(t, "Advanced", it.Difficulty)
	assert.Equal(t, []string{"uhf"}, it.Tags)
	assert.Equal(t, "Naj", it.Author)
	assert.Equal(t, "user", it.Source)
	assert.InDelta(t, 0.9, it.Confidence, 1e-9)
}

func TestApprove_MovesToApprovedSet(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Submit(validPayload())
	require.NoError(t, err)

	item, err := store.Approve(id)
	require.NoError(t, err)

	assert.Regexp(t, approvedIDPattern, item.ID)
	assert.Equal(t, "rfid-000001", item.ID)
	assert.Equal(t, knowledge.StatusApproved, item.Status)

	pending, err := store.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	approved, err := knowledge.Load(store.approvedPath)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, item.ID, approved[0].ID)
}

func TestApprove_NotIdempotent(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Submit(validPayload())
	require.NoError(t, err)

	_, err = store.Approve(id)
	require.NoError(t, err)

	_, err = store.Approve(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApprove_UnknownID(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Approve("pending-ffffffff")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApprove_SequenceIsMonotonic(t *testing.T) {
	store := newTestStore(t)

	for i, want := range []string{"rfid-000001", "rfid-000002", "rfid-000003"} {
		p := validPayload()
		p.Question = p.Question + " variant"
		id, err := store.Submit(p)
		require.NoError(t, err, "submit %d", i)

		item, err := store.Approve(id)
		require.NoError(t, err)
		assert.Equal(t, want, item.ID)
	}
}

func TestApprove_SequenceSurvivesRejection(t *testing.T) {
	store := newTestStore(t)

	id1, err := store.Submit(validPayload())
	require.NoError(t, err)
	item1, err := store.Approve(id1)
	require.NoError(t, err)
	assert.Equal(t, "rfid-000001", item1.ID)

	// Rejecting a later contribution must not roll the sequence back.
	id2, err := store.Submit(validPayload())
	require.NoError(t, err)
	require.NoError(t, store.Reject(id2))

	id3, err := store.Submit(validPayload())
	require.NoError(t, err)
	item3, err := store.Approve(id3)
	require.NoError(t, err)
	assert.Equal(t, "rfid-000002", item3.ID)
}

func TestApprove_BackfillsContent(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Submit(validPayload())
	require.NoError(t, err)

	// Simulate a legacy pending item without derived content.
	pending, err := readItems(store.pendingPath)
	require.NoError(t, err)
	pending[0].Content = ""
	require.NoError(t, writeItems(store.pendingPath, pending))

	item, err := store.Approve(id)
	require.NoError(t, err)
	assert.Equal(t, item.Answer, item.Content)
}

func TestReject_Idempotent(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Submit(validPayload())
	require.NoError(t, err)

	require.NoError(t, store.Reject(id))

	pending, err := store.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Second reject of the same id is a no-op success.
	require.NoError(t, store.Reject(id))

	// So is rejecting an id that never existed.
	require.NoError(t, store.Reject("pending-00000000"))
}

func TestListPending_InsertionOrder(t *testing.T) {
	store := newTestStore(t)

	var ids []string
	for _, q := range []string{"first", "second", "third"} {
		id, err := store.Submit(Payload{Question: q, Answer: "a"})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	pending, err := store.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i, it := range pending {
		assert.Equal(t, ids[i], it.ID)
	}
}
