package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"supportbot/internal/domain"
	"supportbot/internal/knowledge"
	"supportbot/internal/logger"
	"supportbot/internal/metrics"
	sessionmem "supportbot/internal/session/memory"
	"supportbot/internal/vectorstore/memory"
)

// oneHotEmbedder maps every corpus text to its own axis, so a query vector
// can address knowledge entries directly by index.
type oneHotEmbedder struct {
	mu      sync.RWMutex
	index   map[string]int
	dim     int
	queries map[string][]float64
	failOn  map[string]bool
}

func newOneHotEmbedder() *oneHotEmbedder {
	return &oneHotEmbedder{queries: map[string][]float64{}, failOn: map[string]bool{}}
}

func (e *oneHotEmbedder) Name() string { return "onehot" }

func (e *oneHotEmbedder) Prepare(corpus []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.index = make(map[string]int, len(corpus))
	for i, c := range corpus {
		e.index[c] = i
	}
	e.dim = len(corpus)
	return nil
}

func (e *oneHotEmbedder) Dimension() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dim
}

func (e *oneHotEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.failOn[text] {
		return nil, errors.New("embedding backend unavailable")
	}
	vec := make([]float64, e.dim)
	if q, ok := e.queries[text]; ok {
		copy(vec, q)
		return vec, nil
	}
	if i, ok := e.index[text]; ok {
		vec[i] = 1
	}
	return vec, nil
}

// toward builds a query vector with the given score on each entry id.
func (e *oneHotEmbedder) toward(scores map[string]float64) []float64 {
	vec := make([]float64, len(knowledge.Entries()))
	for i, entry := range knowledge.Entries() {
		vec[i] = scores[entry.ID]
	}
	return vec
}

type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	system  string
	history []domain.Turn
	query   string
	onCall  func()
}

func (f *fakeLLM) Complete(_ context.Context, system string, history []domain.Turn, query string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.system, f.history, f.query = system, history, query
	if f.onCall != nil {
		f.onCall()
	}
	return f.reply, f.err
}

type harness struct {
	svc      *SupportService
	embedder *oneHotEmbedder
	sessions *sessionmem.Store
	metrics  *metrics.Recorder
}

func defaultOptions() Options {
	return Options{
		SimilarityThreshold: 0.45,
		ContextBoost:        1.2,
		ShowConfidence:      true,
		MaxSuggestions:      2,
		EmbedConcurrency:    4,
	}
}

func newHarness(t *testing.T, llm domain.ChatModel, opts Options) *harness {
	t.Helper()
	h := &harness{
		embedder: newOneHotEmbedder(),
		sessions: sessionmem.NewStore(),
		metrics:  metrics.NewRecorder(nil),
	}
	h.svc = NewSupportService(Deps{
		Embedder: h.embedder,
		Store:    memory.NewStorage(),
		Sessions: h.sessions,
		LLM:      llm,
		Metrics:  h.metrics,
		Logger:   logger.NewTestLogger(t),
	}, opts)
	require.NoError(t, h.svc.Index(context.Background()))
	return h
}

func (h *harness) session(t *testing.T, id string) domain.ConversationContext {
	t.Helper()
	c, err := h.sessions.Load(context.Background(), id)
	require.NoError(t, err)
	return c
}

// ctxCheckingStore fails writes made with a finished context, the way a
// network-backed store would.
type ctxCheckingStore struct {
	*sessionmem.Store
}

func (s ctxCheckingStore) Save(ctx context.Context, id string, c domain.ConversationContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Save(ctx, id, c)
}
