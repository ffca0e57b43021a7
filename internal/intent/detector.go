// Package intent classifies chat messages by fixed phrase lists.
package intent

import (
	"math/rand/v2"
	"strings"
	"unicode"
	"unicode/utf8"

	"supportbot/internal/knowledge"
)

const (
	ProductOverview = "product_overview"
	General         = "general"

	agentPrefix = "agent_"

	// Phrases shorter than this must match a whole word.
	minPrefixLen = 4
)

// AgentIntent returns the intent name for a mention of the given agent.
func AgentIntent(agentID string) string {
	return agentPrefix + agentID
}

// Detector resolves a message to an intent. Priority is conversation
// patterns, then agent mentions, then product keywords, else General.
type Detector struct {
	patterns []knowledge.Pattern
	agents   []knowledge.Agent
	products []string
	pick     func(n int) int
}

// NewDetector builds a detector over the static catalog.
func NewDetector() *Detector {
	return &Detector{
		patterns: knowledge.Patterns,
		agents:   knowledge.Agents,
		products: knowledge.ProductKeywords,
		pick:     rand.IntN,
	}
}

// Detect returns the intent name for query.
func (d *Detector) Detect(query string) string {
	q := strings.ToLower(query)

	for _, p := range d.patterns {
		if matchAny(q, p.Phrases) {
			return p.Intent
		}
	}
	for _, a := range d.agents {
		if matchPhrase(q, strings.ToLower(a.ID)) {
			return AgentIntent(a.ID)
		}
	}
	if matchAny(q, d.products) {
		return ProductOverview
	}
	return General
}

// CannedReply returns the fixed reply for a conversation pattern intent.
// Agent, product and general intents have none.
func (d *Detector) CannedReply(intent string) (string, bool) {
	for _, p := range d.patterns {
		if p.Intent != intent {
			continue
		}
		if len(p.Responses) > 0 {
			return p.Responses[d.pick(len(p.Responses))], true
		}
		return p.Response, true
	}
	return "", false
}

func matchAny(q string, phrases []string) bool {
	for _, p := range phrases {
		if matchPhrase(q, p) {
			return true
		}
	}
	return false
}

// matchPhrase reports whether phrase occurs in q starting at a word boundary.
// Short phrases must also end at one, so "hi" does not fire on "this" or
// "history".
func matchPhrase(q, phrase string) bool {
	whole := utf8.RuneCountInString(phrase) < minPrefixLen
	for from := 0; from < len(q); {
		i := strings.Index(q[from:], phrase)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(phrase)
		if boundaryBefore(q, start) && (!whole || boundaryAfter(q, end)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(q[start:])
		from = start + size
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
