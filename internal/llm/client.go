// Package llm talks to an OpenAI-compatible chat-completion API (Groq or
// OpenAI) for questions the knowledge base cannot answer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"supportbot/internal/config"
	"supportbot/internal/domain"
)

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"

	GroqBaseURL   = "https://api.groq.com/openai/v1"
	OpenAIBaseURL = "https://api.openai.com/v1"

	DefaultGroqModel   = "llama-3.3-70b-versatile"
	DefaultOpenAIModel = "gpt-4o-mini"
)

var (
	ErrEmptyCompletion = errors.New("LLM_EMPTY_COMPLETION")
	ErrLLMTimeout      = errors.New("LLM_TIMEOUT")
)

// Config is a resolved client configuration.
type Config struct {
	Provider     string
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float32
	MaxTokens    int
	Timeout      time.Duration
	HistoryTurns int
}

// Resolve picks the provider and API key from cfg and the environment.
// Provider "auto" prefers Groq, then OpenAI. ok is false when no provider
// is usable.
func Resolve(cfg config.LLMConfig) (Config, bool) {
	groqKey := os.Getenv(cfg.GroqAPIKeyEnv)
	openaiKey := os.Getenv(cfg.OpenAIAPIKeyEnv)

	out := Config{
		BaseURL:      cfg.BaseURL,
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		Timeout:      time.Duration(cfg.TimeoutSecs) * time.Second,
		HistoryTurns: cfg.HistoryTurns,
	}

	switch cfg.Provider {
	case ProviderGroq:
		out.Provider, out.APIKey = ProviderGroq, groqKey
	case ProviderOpenAI:
		out.Provider, out.APIKey = ProviderOpenAI, openaiKey
	case "auto", "":
		switch {
		case groqKey != "":
			out.Provider, out.APIKey = ProviderGroq, groqKey
		case openaiKey != "":
			out.Provider, out.APIKey = ProviderOpenAI, openaiKey
		}
	}
	if out.Provider == "" || out.APIKey == "" {
		return Config{}, false
	}

	if out.BaseURL == "" {
		out.BaseURL = OpenAIBaseURL
		if out.Provider == ProviderGroq {
			out.BaseURL = GroqBaseURL
		}
	}
	if out.Model == "" {
		out.Model = DefaultOpenAIModel
		if out.Provider == ProviderGroq {
			out.Model = DefaultGroqModel
		}
	}
	return out, true
}

// Client implements domain.ChatModel over go-openai.
type Client struct {
	client *goopenai.Client
	cfg    Config
}

// NewClient creates a chat client for a resolved configuration.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HistoryTurns < 0 {
		cfg.HistoryTurns = 0
	}
	oc := goopenai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	oc.HTTPClient = &http.Client{}
	return &Client{client: goopenai.NewClientWithConfig(oc), cfg: cfg}
}

// Provider returns the provider name.
func (c *Client) Provider() string { return c.cfg.Provider }

// Model returns the model name.
func (c *Client) Model() string { return c.cfg.Model }

// Complete sends the system prompt, the user and assistant turns among the
// last HistoryTurns of history, and query. It returns the first choice's text.
func (c *Client) Complete(ctx context.Context, system string, history []domain.Turn, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    c.messages(system, history, query),
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrLLMTimeout, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) messages(system string, history []domain.Turn, query string) []goopenai.ChatCompletionMessage {
	if n := c.cfg.HistoryTurns; len(history) > n {
		history = history[len(history)-n:]
	}

	msgs := make([]goopenai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: system})
	for _, t := range history {
		if t.Role != domain.RoleUser && t.Role != domain.RoleAssistant {
			continue
		}
		role := goopenai.ChatMessageRoleUser
		if t.Role == domain.RoleAssistant {
			role = goopenai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: role, Content: t.Content})
	}
	return append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: query})
}
