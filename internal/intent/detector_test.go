package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"supportbot/internal/knowledge"
)

func TestDetect(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		query string
		want  string
	}{
		{"Hello there", knowledge.IntentGreeting},
		{"HI", knowledge.IntentGreeting},
		{"Good evening!", knowledge.IntentGreeting},
		{"How much does it cost?", knowledge.IntentPricing},
		{"Can I see a demo?", knowledge.IntentDemo},
		{"Does it integrate with Epic?", knowledge.IntentIntegration},
		{"How long to deploy?", knowledge.IntentImplementation},
		{"EVA versus CAM", knowledge.IntentComparison},
		{"What is the ROI?", knowledge.IntentROI},
		{"Tell me about PHIL", AgentIntent("PHIL")},
		{"what does dana do", AgentIntent("DANA")},
		{"What are all your AI agents?", ProductOverview},
		{"this is great", General},
		{"Tell me about cameras", General},
		{"What is the weather like?", General},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.query))
		})
	}
}

func TestMatchPhrase(t *testing.T) {
	tests := []struct {
		q, phrase string
		want      bool
	}{
		{"hi there", "hi", true},
		{"this", "hi", false},
		{"history lesson", "hi", false},
		{"oh, hi!", "hi", true},
		{"integrates nicely", "integrate", true},
		{"reintegrate", "integrate", false},
		{"the pricing page", "pricing", true},
		{"show me around", "show me", true},
		{"", "hi", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchPhrase(tt.q, tt.phrase), "%q in %q", tt.phrase, tt.q)
	}
}

func TestCannedReply(t *testing.T) {
	d := NewDetector()
	d.pick = func(n int) int { return n - 1 }

	greeting, ok := d.CannedReply(knowledge.IntentGreeting)
	assert.True(t, ok)
	assert.Equal(t, knowledge.Patterns[0].Responses[2], greeting)

	pricing, ok := d.CannedReply(knowledge.IntentPricing)
	assert.True(t, ok)
	assert.Contains(t, pricing, "Our pricing is customized")

	_, ok = d.CannedReply(AgentIntent("EVA"))
	assert.False(t, ok)
	_, ok = d.CannedReply(General)
	assert.False(t, ok)
}
