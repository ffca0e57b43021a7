package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"supportbot/internal/config"
	"supportbot/internal/domain"
	"supportbot/internal/intent"
	"supportbot/internal/knowledge"
	"supportbot/internal/logger"
	"supportbot/internal/metrics"
)

// Options tune matching and reply shaping.
type Options struct {
	SimilarityThreshold float64
	ContextBoost        float64
	ShowConfidence      bool
	MaxSuggestions      int
	EmbedConcurrency    int
}

// OptionsFromConfig maps the application config onto Options.
func OptionsFromConfig(cfg *config.AppConfig) Options {
	return Options{
		SimilarityThreshold: cfg.Agent.SimilarityThreshold,
		ContextBoost:        cfg.Agent.ContextBoost,
		ShowConfidence:      cfg.Agent.ShowConfidence,
		MaxSuggestions:      cfg.Agent.MaxSuggestions,
		EmbedConcurrency:    cfg.Embedder.Concurrency,
	}
}

// Deps are the collaborators of the support service. LLM may be nil, in
// which case unmatched questions get a static reply.
type Deps struct {
	Embedder domain.Embedder
	Store    domain.VectorStore
	Sessions domain.SessionStore
	LLM      domain.ChatModel
	Metrics  *metrics.Recorder
	Logger   logger.Logger
}

// MetricsView is what the metrics callback shows: process-wide counters
// plus the size of one session's context.
type MetricsView struct {
	metrics.Counters
	AgentsDiscussed int `json:"agents_discussed"`
	TopicsCovered   int `json:"topics_covered"`
}

// Markdown renders the view for the chat UI.
func (m MetricsView) Markdown() string {
	return fmt.Sprintf("**Session Metrics:**\n"+
		"- Total queries: %d\n"+
		"- Agent inquiries: %d\n"+
		"- Company inquiries: %d\n"+
		"- LLM fallbacks: %d\n\n"+
		"**Context:**\n"+
		"- Agents discussed: %d\n"+
		"- Topics covered: %d\n",
		m.TotalQueries, m.AgentInquiries, m.CompanyInquiries, m.LLMFallbacks,
		m.AgentsDiscussed, m.TopicsCovered)
}

// SupportService answers chat messages from canned patterns, the knowledge
// base, or the LLM, in that order.
type SupportService struct {
	embedder domain.Embedder
	store    domain.VectorStore
	sessions domain.SessionStore
	llm      domain.ChatModel
	metrics  *metrics.Recorder
	log      logger.Logger
	detector *intent.Detector
	opts     Options

	locks [lockStripes]sync.Mutex
}

// lockStripes bounds the per-session locks; sessions hashing to the same
// stripe serialise against each other.
const lockStripes = 64

func NewSupportService(deps Deps, opts Options) *SupportService {
	if opts.ContextBoost < 1 {
		opts.ContextBoost = 1
	}
	if opts.EmbedConcurrency <= 0 {
		opts.EmbedConcurrency = 1
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	rec := deps.Metrics
	if rec == nil {
		rec = metrics.NewRecorder(nil)
	}
	return &SupportService{
		embedder: deps.Embedder,
		store:    deps.Store,
		sessions: deps.Sessions,
		llm:      deps.LLM,
		metrics:  rec,
		log:      log.With(map[string]interface{}{"component": "support_service"}),
		detector: intent.NewDetector(),
		opts:     opts,
	}
}

// Index embeds every knowledge entry and loads the vector store.
func (s *SupportService) Index(ctx context.Context) error {
	start := time.Now()
	entries := knowledge.Entries()

	corpus := make([]string, len(entries))
	for i, e := range entries {
		corpus[i] = e.Query
	}
	if err := s.embedder.Prepare(corpus); err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}

	vectors := make([][]float64, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.EmbedConcurrency)
	for i := range entries {
		g.Go(func() error {
			vec, err := s.embedder.Embed(gctx, corpus[i])
			if err != nil {
				return fmt.Errorf("embed %s: %w", entries[i].ID, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	dim := s.embedder.Dimension()
	if dim == 0 && len(vectors) > 0 {
		dim = len(vectors[0])
	}
	if err := s.store.Init(dim); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	if err := s.store.Upsert(entries, vectors); err != nil {
		return fmt.Errorf("upsert entries: %w", err)
	}

	s.log.Info("knowledge base indexed", map[string]interface{}{
		"entries":     len(entries),
		"embedder":    s.embedder.Name(),
		"dimension":   dim,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// Chat answers one message for a session. history is the conversation so
// far as rendered by the client, oldest first.
func (s *SupportService) Chat(ctx context.Context, sessionID, message string, history []domain.Turn) (domain.Reply, error) {
	s.metrics.Query()

	message = strings.TrimSpace(message)
	if message == "" {
		return s.reply(domain.Reply{Text: emptyMessageReply, Source: domain.SourceStatic}), nil
	}

	unlock := s.lock(sessionID)
	defer unlock()

	sctx, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("load session: %w", err)
	}
	defer func() {
		// the turn is answered even if the caller has gone away
		if err := s.sessions.Save(context.WithoutCancel(ctx), sessionID, sctx); err != nil {
			s.log.WithError(err).Warn("failed to save session", map[string]interface{}{"session_id": sessionID})
		}
	}()

	name := s.detector.Detect(message)
	sctx.UserIntent = name

	if canned, ok := s.detector.CannedReply(name); ok {
		sctx.AddTopic(name)
		return s.reply(domain.Reply{Text: canned, Source: domain.SourcePattern, Intent: name}), nil
	}

	entry, confidence, err := s.match(ctx, message, sctx.LastAgentID)
	if err != nil {
		s.log.WithError(err).Warn("knowledge search failed", map[string]interface{}{"session_id": sessionID})
		entry, confidence = nil, 0
	}

	if entry != nil {
		return s.reply(s.answer(*entry, confidence, message, &sctx, name)), nil
	}
	return s.reply(s.fallback(ctx, message, history, name)), nil
}

// Clear forgets a session's conversation context.
func (s *SupportService) Clear(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	defer unlock()
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Overview lists every agent.
func (s *SupportService) Overview() string {
	return knowledge.Overview()
}

// Metrics returns the counters and the size of the session's context. An
// empty session id reports counters only.
func (s *SupportService) Metrics(ctx context.Context, sessionID string) (MetricsView, error) {
	view := MetricsView{Counters: s.metrics.Snapshot()}
	if sessionID == "" {
		return view, nil
	}
	sctx, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return view, fmt.Errorf("load session: %w", err)
	}
	view.AgentsDiscussed = len(sctx.MentionedAgents)
	view.TopicsCovered = len(sctx.TopicsDiscussed)
	return view, nil
}

// match scores the whole knowledge base, boosts entries about the last
// discussed agent, and returns the best entry if it clears the threshold.
func (s *SupportService) match(ctx context.Context, query, lastAgent string) (*domain.KnowledgeEntry, float64, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("embed query: %w", err)
	}
	results, err := s.store.Search(vec, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}

	best, bestScore := -1, 0.0
	for i, r := range results {
		score := r.Score
		if lastAgent != "" && r.Entry.RelatedID == lastAgent {
			score *= s.opts.ContextBoost
		}
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return nil, 0, nil
	}

	s.metrics.MatchConfidence(bestScore)
	if bestScore < s.opts.SimilarityThreshold {
		return nil, bestScore, nil
	}
	e := results[best].Entry
	return &e, bestScore, nil
}

func (s *SupportService) answer(e domain.KnowledgeEntry, confidence float64, message string, sctx *domain.ConversationContext, name string) domain.Reply {
	var text string
	agent, isAgent := knowledge.AgentByID(e.RelatedID)
	if e.Category.IsAgent() && isAgent {
		s.metrics.AgentInquiry()
		text = knowledge.FormatAgent(agent, message)
		sctx.MentionAgent(agent.ID)
	} else {
		s.metrics.CompanyInquiry()
		text = e.Response
	}

	if s.opts.ShowConfidence {
		text += fmt.Sprintf(confidenceFormat, confidence*100)
	}

	suggestions := s.suggestions(*sctx)
	if len(suggestions) > 0 {
		var b strings.Builder
		b.WriteString(suggestionsHeader)
		for _, sg := range suggestions {
			b.WriteString("• " + sg + "\n")
		}
		text += b.String()
	}

	return domain.Reply{
		Text:        text,
		Source:      domain.SourceKnowledge,
		Intent:      name,
		Confidence:  confidence,
		Suggestions: suggestions,
	}
}

func (s *SupportService) suggestions(c domain.ConversationContext) []string {
	var out []string
	if c.LastAgentID != "" {
		for _, a := range knowledge.Agents {
			if !c.HasMentioned(a.ID) {
				out = append(out, "Learn about "+a.Name)
				break
			}
		}
	}
	if len(c.MentionedAgents) == 0 {
		out = append(out, suggestAllAgents)
	}
	if !c.HasTopic(knowledge.IntentPricing) {
		out = append(out, suggestPricing)
	}
	if !c.HasTopic(knowledge.IntentDemo) {
		out = append(out, suggestDemo)
	}
	if len(out) > s.opts.MaxSuggestions {
		out = out[:s.opts.MaxSuggestions]
	}
	return out
}

func (s *SupportService) fallback(ctx context.Context, message string, history []domain.Turn, name string) domain.Reply {
	if s.llm == nil {
		return domain.Reply{Text: noLLMReply, Source: domain.SourceStatic, Intent: name}
	}

	start := time.Now()
	text, err := s.llm.Complete(ctx, systemPrompt, history, message)
	s.metrics.LLMCall(time.Since(start), err)
	if err != nil {
		s.log.WithError(err).Warn("llm fallback failed", map[string]interface{}{
			"canceled": errors.Is(err, context.Canceled),
		})
		return domain.Reply{Text: fmt.Sprintf(llmErrorReplyFormat, err), Source: domain.SourceError, Intent: name}
	}

	s.metrics.LLMFallback()
	return domain.Reply{Text: text, Source: domain.SourceLLM, Intent: name}
}

func (s *SupportService) reply(r domain.Reply) domain.Reply {
	s.metrics.Reply(r.Source)
	return r
}

func (s *SupportService) lock(sessionID string) func() {
	mu := &s.locks[stripe(sessionID)]
	mu.Lock()
	return mu.Unlock
}

func stripe(sessionID string) int {
	return int(xxhash.Sum64String(sessionID) % lockStripes)
}
