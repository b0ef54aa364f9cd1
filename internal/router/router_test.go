package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/najihhome/rfidrag/internal/contribution"
	"github.com/najihhome/rfidrag/internal/i18n"
	"github.com/najihhome/rfidrag/internal/knowledge"
	"github.com/najihhome/rfidrag/internal/llm"
	"github.com/najihhome/rfidrag/internal/log"
	"github.com/najihhome/rfidrag/internal/testutil"
	"github.com/najihhome/rfidrag/internal/websearch"
)

// stubEmbedder maps exact texts to fixed vectors so similarity between a
// question and a corpus entry can be dialed precisely. Unknown texts get
// a vector orthogonal to everything registered.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type fakeOnline struct {
	result websearch.Result
	calls  int
}

func (f *fakeOnline) Search(_ context.Context, _ string) websearch.Result {
	f.calls++
	return f.result
}

type fakeSubmitter struct {
	payloads []contribution.Payload
	err      error
}

func (f *fakeSubmitter) Submit(p contribution.Payload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.payloads = append(f.payloads, p)
	return "pending-0a1b2c3d", nil
}

type fixture struct {
	router    *Router
	generator *testutil.Generator
	online    *fakeOnline
	submitted *fakeSubmitter
}

const (
	questionRFID    = "Apa itu RFID?"
	answerRFID      = "RFID adalah teknologi identifikasi berbasis gelombang radio."
	questionFreq    = "Jelaskan frekuensi kerja RFID"
	answerFreq      = "RFID bekerja pada pita LF, HF, dan UHF."
	questionUnknown = "Bagaimana cuaca hari ini?"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	items := []knowledge.Item{
		approvedItem("rfid-000001", questionRFID, answerRFID),
		approvedItem("rfid-000002", questionFreq, answerFreq),
	}

	embedder := &stubEmbedder{vectors: map[string][]float32{
		items[0].CorpusText(): {1, 0, 0},
		items[1].CorpusText(): {0, 1, 0},
		questionRFID:          {1, 0, 0},
		questionFreq:          {0.6, 0.8, 0},
	}}

	path := filepath.Join(t.TempDir(), "data.json")
	data, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	store := knowledge.New(path, embedder, log.NewNop())
	require.NoError(t, store.Init(context.Background()))

	f := &fixture{
		generator: testutil.NewGenerator("jawaban dari generator"),
		online:    &fakeOnline{},
		submitted: &fakeSubmitter{},
	}
	f.router = New(store, embedder, f.generator, f.online, f.submitted, log.NewNop())

	return f
}

func approvedItem(id, question, answer string) knowledge.Item {
	now := time.Now().UTC()
	return knowledge.Item{
		ID:        id,
		Question:  question,
		Answer:    answer,
		Status:    knowledge.StatusApproved,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestAsk_LocalVerbatim(t *testing.T) {
	f := newFixture(t)

	ans, err := f.router.Ask(context.Background(), questionRFID, false)
	require.NoError(t, err)

	assert.Equal(t, ModeRAG, ans.Mode)
	assert.Equal(t, answerRFID, ans.Answer)
	assert.InDelta(t, MaxConfidence, ans.Confidence, 1e-9)
	require.NotEmpty(t, ans.Sources)
	require.NotNil(t, ans.Sources[0])
	assert.Equal(t, "rfid-000001", *ans.Sources[0])

	assert.Empty(t, f.generator.Calls(), "verbatim answers must not invoke the generator")
	assert.Zero(t, f.online.calls)
	assert.Empty(t, f.submitted.payloads)
}

func TestAsk_LocalGenerated(t *testing.T) {
	f := newFixture(t)
	f.generator.AddResponse("Apa itu RFID", "jawaban grounded")

	ans, err := f.router.Ask(context.Background(), questionRFID, true)
	require.NoError(t, err)

	assert.Equal(t, ModeRAG, ans.Mode)
	assert.Equal(t, "jawaban grounded", ans.Answer)

	calls := f.generator.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "Q: "+questionRFID)
	assert.Contains(t, calls[0], "A: "+answerRFID)
	assert.Contains(t, calls[0], "Pertanyaan:\n"+questionRFID)

	assert.Zero(t, f.online.calls)
	assert.Empty(t, f.submitted.payloads)
}

func TestAsk_LocalConfidenceTracksSimilarity(t *testing.T) {
	f := newFixture(t)

	ans, err := f.router.Ask(context.Background(), questionFreq, false)
	require.NoError(t, err)

	assert.Equal(t, ModeRAG, ans.Mode)
	assert.InDelta(t, 0.8, ans.Confidence, 1e-9)
	require.NotNil(t, ans.Sources[0])
	assert.Equal(t, "rfid-000002", *ans.Sources[0])
}

func TestAsk_OnlineBranch(t *testing.T) {
	f := newFixture(t)
	f.online.result = websearch.Result{
		Answer: "Cuaca dijelaskan oleh layanan meteorologi.",
		Sources: []websearch.Source{
			{URL: "https://example.com/cuaca", Title: "Cuaca"},
			{Title: "Sumber tanpa tautan"},
		},
	}

	ans, err := f.router.Ask(context.Background(), questionUnknown, true)
	require.NoError(t, err)

	assert.Equal(t, ModeOnline, ans.Mode)
	assert.InDelta(t, OnlineConfidence, ans.Confidence, 1e-9)
	assert.Equal(t, "jawaban dari generator", ans.Answer)

	require.Len(t, ans.Sources, 2)
	require.NotNil(t, ans.Sources[0])
	assert.Equal(t, "https://example.com/cuaca", *ans.Sources[0])
	assert.Nil(t, ans.Sources[1], "sources without a URL must serialize as null")

	calls := f.generator.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], f.online.result.Answer)

	require.Len(t, f.submitted.payloads, 1)
	p := f.submitted.payloads[0]
	assert.Equal(t, questionUnknown, p.Question)
	assert.Equal(t, ans.Answer, p.Answer)
	assert.Equal(t, "online-search", p.Source)
	assert.InDelta(t, OnlineConfidence, p.Confidence, 1e-9)
	require.Len(t, p.References, 2)
	assert.Equal(t, "https://example.com/cuaca", p.References[0].URL)
}

func TestAsk_OnlineSubmitFailureStillAnswers(t *testing.T) {
	f := newFixture(t)
	f.online.result = websearch.Result{Answer: "jawaban online"}
	f.submitted.err = errors.New("disk full")

	ans, err := f.router.Ask(context.Background(), questionUnknown, true)
	require.NoError(t, err)
	assert.Equal(t, ModeOnline, ans.Mode)
	assert.Equal(t, "jawaban dari generator", ans.Answer)
}

func TestAsk_PureGenerative(t *testing.T) {
	f := newFixture(t)

	ans, err := f.router.Ask(context.Background(), questionUnknown, true)
	require.NoError(t, err)

	assert.Equal(t, ModeLLM, ans.Mode)
	assert.InDelta(t, GenerativeConfidence, ans.Confidence, 1e-9)
	assert.Equal(t, "jawaban dari generator", ans.Answer)

	require.Len(t, ans.Sources, 1)
	require.NotNil(t, ans.Sources[0])
	assert.Equal(t, "llm-generated", *ans.Sources[0])

	assert.Equal(t, 1, f.online.calls)
	assert.Empty(t, f.submitted.payloads, "ungrounded answers are not queued for moderation")
}

func TestAsk_GeneratorTimeout(t *testing.T) {
	f := newFixture(t)
	f.generator.Fail(fmt.Errorf("calling generator: %w", llm.ErrTimeout))

	ans, err := f.router.Ask(context.Background(), questionRFID, true)
	require.NoError(t, err)

	assert.Equal(t, ModeRAG, ans.Mode)
	assert.Equal(t, i18n.T("answer.timeout"), ans.Answer)
}

func TestAsk_GeneratorFailure(t *testing.T) {
	f := newFixture(t)
	f.generator.Fail(errors.New("model exploded"))

	ans, err := f.router.Ask(context.Background(), questionUnknown, true)
	require.NoError(t, err)

	assert.Equal(t, ModeLLM, ans.Mode)
	assert.Contains(t, ans.Answer, "Terjadi kesalahan sistem")
	assert.Contains(t, ans.Answer, "model exploded")
}

func TestAsk_EmptyQuestion(t *testing.T) {
	f := newFixture(t)

	_, err := f.router.Ask(context.Background(), "   ", true)
	assert.Error(t, err)
}

type nilIndex struct{}

func (nilIndex) Current() *knowledge.Index { return nil }

func TestAsk_IndexNotReady(t *testing.T) {
	r := New(nilIndex{}, &stubEmbedder{}, testutil.NewGenerator(""), &fakeOnline{}, &fakeSubmitter{}, log.NewNop())

	_, err := r.Ask(context.Background(), "pertanyaan", true)
	assert.ErrorContains(t, err, "not ready")
}

func TestRAGConfidence(t *testing.T) {
	cases := []struct {
		score float64
		want  float64
	}{
		{0.2, 0.3},
		{0.3, 0.3},
		{0.456, 0.46},
		{0.5544, 0.55},
		{0.95, 0.95},
		{0.99, 0.95},
	}

	for _, tc := range cases {
		assert.InDelta(t, tc.want, ragConfidence(tc.score), 1e-9, "score %v", tc.score)
	}
}

func TestBuildPrompt_Shape(t *testing.T) {
	p := buildPrompt("pertanyaan", "referensi")

	assert.True(t, strings.HasPrefix(p, "Kamu adalah asisten ahli RFID"))
	assert.Contains(t, p, "Referensi (jika relevan):\nreferensi")
	assert.True(t, strings.HasSuffix(p, "Jawaban:"))
}
