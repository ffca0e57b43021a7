package domain

import "context"

// Category classifies what a knowledge entry answers.
type Category string

const (
	CategoryAgentDescription Category = "agent_description"
	CategoryAgentBenefits    Category = "agent_benefits"
	CategoryCompany          Category = "company"
	CategoryBenefits         Category = "benefits"
)

// IsAgent reports whether entries of this category describe a single product agent.
func (c Category) IsAgent() bool {
	return c == CategoryAgentDescription || c == CategoryAgentBenefits
}

// KnowledgeEntry is a static question/answer record. Entries are built once at
// startup and never mutated.
type KnowledgeEntry struct {
	ID        string
	Query     string
	Response  string
	Category  Category
	RelatedID string // agent id for agent categories, empty otherwise
}

// SearchResult represents a matching entry with a relevance score.
type SearchResult struct {
	Entry KnowledgeEntry
	Score float64
}

// Chat roles used in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is one message of the conversation history as rendered by the chat UI.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationContext is the mutable per-session state carried between turns.
type ConversationContext struct {
	LastAgentID     string   `json:"last_agent_id,omitempty"`
	MentionedAgents []string `json:"mentioned_agents,omitempty"`
	TopicsDiscussed []string `json:"topics_discussed,omitempty"`
	UserIntent      string   `json:"user_intent,omitempty"`
}

// HasTopic reports whether the topic was already discussed.
func (c *ConversationContext) HasTopic(topic string) bool {
	return contains(c.TopicsDiscussed, topic)
}

// AddTopic records a topic once.
func (c *ConversationContext) AddTopic(topic string) {
	if !contains(c.TopicsDiscussed, topic) {
		c.TopicsDiscussed = append(c.TopicsDiscussed, topic)
	}
}

// HasMentioned reports whether the agent was already discussed.
func (c *ConversationContext) HasMentioned(agentID string) bool {
	return contains(c.MentionedAgents, agentID)
}

// MentionAgent makes agentID the last discussed agent and records it once.
func (c *ConversationContext) MentionAgent(agentID string) {
	c.LastAgentID = agentID
	if !contains(c.MentionedAgents, agentID) {
		c.MentionedAgents = append(c.MentionedAgents, agentID)
	}
}

// Clone returns a deep copy.
func (c ConversationContext) Clone() ConversationContext {
	out := c
	out.MentionedAgents = append([]string(nil), c.MentionedAgents...)
	out.TopicsDiscussed = append([]string(nil), c.TopicsDiscussed...)
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ReplySource tells which stage of the pipeline produced a reply.
type ReplySource string

const (
	SourceStatic    ReplySource = "static"
	SourcePattern   ReplySource = "pattern"
	SourceKnowledge ReplySource = "knowledge"
	SourceLLM       ReplySource = "llm"
	SourceError     ReplySource = "error"
)

// Reply is the outcome of one chat turn.
type Reply struct {
	Text        string      `json:"reply"`
	Source      ReplySource `json:"source"`
	Intent      string      `json:"intent,omitempty"`
	Confidence  float64     `json:"confidence"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(entries []KnowledgeEntry, vectors [][]float64) error
	Search(vector []float64, topK int) ([]SearchResult, error)
	Clear() error
}

// ChatModel produces a completion for a conversation.
type ChatModel interface {
	Complete(ctx context.Context, system string, history []Turn, query string) (string, error)
}

// SessionStore keeps conversation context per chat session.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (ConversationContext, error)
	Save(ctx context.Context, sessionID string, c ConversationContext) error
	Clear(ctx context.Context, sessionID string) error
}
