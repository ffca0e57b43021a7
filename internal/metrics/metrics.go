// Package metrics counts chat traffic for the in-chat metrics view and
// exports the same signals to Prometheus.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"supportbot/internal/domain"
)

// Counters is a point-in-time copy of the running totals.
type Counters struct {
	TotalQueries     int64 `json:"total_queries"`
	AgentInquiries   int64 `json:"agent_inquiries"`
	CompanyInquiries int64 `json:"company_inquiries"`
	LLMFallbacks     int64 `json:"llm_fallbacks"`
}

// Recorder holds process-lifetime counters. They are never reset.
type Recorder struct {
	queries  atomic.Int64
	agent    atomic.Int64
	company  atomic.Int64
	fallback atomic.Int64

	queriesTotal prometheus.Counter
	repliesTotal *prometheus.CounterVec
	confidence   prometheus.Histogram
	llmDuration  *prometheus.HistogramVec
}

// NewRecorder registers the collectors on reg. A nil reg keeps them
// unregistered.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		queriesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "supportbot_queries_total",
			Help: "Total number of chat messages received",
		}),
		repliesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "supportbot_replies_total",
			Help: "Total number of replies by the pipeline stage that produced them",
		}, []string{"source"}),
		confidence: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "supportbot_match_confidence",
			Help:    "Best boosted similarity score per semantic search",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		llmDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name: "supportbot_llm_duration_seconds",
			Help: "Duration of chat-completion calls in seconds",
		}, []string{"outcome"}),
	}
}

func (r *Recorder) Query() {
	r.queries.Add(1)
	r.queriesTotal.Inc()
}

func (r *Recorder) AgentInquiry() { r.agent.Add(1) }

func (r *Recorder) CompanyInquiry() { r.company.Add(1) }

func (r *Recorder) LLMFallback() { r.fallback.Add(1) }

// Reply counts a reply by its source.
func (r *Recorder) Reply(source domain.ReplySource) {
	r.repliesTotal.WithLabelValues(string(source)).Inc()
}

// MatchConfidence observes the best score of a semantic search.
func (r *Recorder) MatchConfidence(score float64) {
	r.confidence.Observe(score)
}

// LLMCall observes one chat-completion call.
func (r *Recorder) LLMCall(d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.llmDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// Snapshot returns the current totals.
func (r *Recorder) Snapshot() Counters {
	return Counters{
		TotalQueries:     r.queries.Load(),
		AgentInquiries:   r.agent.Load(),
		CompanyInquiries: r.company.Load(),
		LLMFallbacks:     r.fallback.Load(),
	}
}
