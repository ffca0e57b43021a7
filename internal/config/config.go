package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP chat endpoint.
type ServerConfig struct {
	Host             string `yaml:"host" mapstructure:"host"`
	Port             int    `yaml:"port" mapstructure:"port"`
	ReadTimeoutSecs  int    `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs int    `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env" mapstructure:"api_key_env"`
	Model       string `yaml:"model" mapstructure:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type        string                `yaml:"type" mapstructure:"type"`
	Concurrency int                   `yaml:"concurrency" mapstructure:"concurrency"`
	CachePath   string                `yaml:"cache_path" mapstructure:"cache_path"`
	OpenAI      *OpenAIEmbedderConfig `yaml:"openai,omitempty" mapstructure:"openai"`
}

// VectorStoreConfig selects the vector store implementation.
type VectorStoreConfig struct {
	Type       string `yaml:"type" mapstructure:"type"`
	Collection string `yaml:"collection" mapstructure:"collection"`
}

// LLMConfig configures the chat-completion fallback.
type LLMConfig struct {
	Provider        string  `yaml:"provider" mapstructure:"provider"`
	GroqAPIKeyEnv   string  `yaml:"groq_api_key_env" mapstructure:"groq_api_key_env"`
	OpenAIAPIKeyEnv string  `yaml:"openai_api_key_env" mapstructure:"openai_api_key_env"`
	BaseURL         string  `yaml:"base_url" mapstructure:"base_url"`
	Model           string  `yaml:"model" mapstructure:"model"`
	Temperature     float32 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens       int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	HistoryTurns    int     `yaml:"history_turns" mapstructure:"history_turns"`
}

// AgentConfig holds the matching and reply-shaping knobs.
type AgentConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	ContextBoost        float64 `yaml:"context_boost" mapstructure:"context_boost"`
	ShowConfidence      bool    `yaml:"show_confidence" mapstructure:"show_confidence"`
	MaxHistory          int     `yaml:"max_history" mapstructure:"max_history"`
	MaxSuggestions      int     `yaml:"max_suggestions" mapstructure:"max_suggestions"`
}

// RedisConfig contains connection details for the Redis session store.
type RedisConfig struct {
	Address  string `yaml:"address" mapstructure:"address"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// SessionConfig selects where conversation context lives.
type SessionConfig struct {
	Type    string      `yaml:"type" mapstructure:"type"`
	TTLSecs int         `yaml:"ttl_secs" mapstructure:"ttl_secs"`
	Redis   RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Embedder    EmbedderConfig    `yaml:"embedder" mapstructure:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store" mapstructure:"vector_store"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Agent       AgentConfig       `yaml:"agent" mapstructure:"agent"`
	Session     SessionConfig     `yaml:"session" mapstructure:"session"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string][]string{
	"server.host":                {"HOST"},
	"server.port":                {"PORT"},
	"embedder.type":              {"EMBEDDER"},
	"embedder.openai.model":      {"EMBEDDING_MODEL"},
	"embedder.openai.base_url":   {"EMBEDDING_BASE_URL"},
	"embedder.cache_path":        {"EMBEDDING_CACHE"},
	"vector_store.type":          {"VECTOR_STORE"},
	"llm.provider":               {"LLM_PROVIDER"},
	"llm.model":                  {"LLM_MODEL"},
	"llm.base_url":               {"LLM_BASE_URL"},
	"agent.similarity_threshold": {"SIMILARITY_THRESHOLD"},
	"agent.show_confidence":      {"CONFIDENCE_DISPLAY"},
	"agent.max_history":          {"MAX_HISTORY"},
	"session.type":               {"SESSION_STORE"},
	"session.redis.address":      {"REDIS_ADDR"},
	"session.redis.password":     {"REDIS_PASSWORD"},
	"logging.level":              {"LOG_LEVEL"},
	"logging.format":             {"LOG_FORMAT"},
}

// Load reads a config from a specified path. A missing file yields defaults.
// Environment variables listed in envBindings override file values.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/supportbot/config.yaml.
// If neither exists, it writes defaults to ~/.config/supportbot/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, Default()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{
		Server:      ServerConfig{Host: "0.0.0.0", Port: 8080, ReadTimeoutSecs: 15, WriteTimeoutSecs: 60},
		Embedder:    EmbedderConfig{Type: "tfidf", Concurrency: 4},
		VectorStore: VectorStoreConfig{Type: "memory", Collection: "knowledge"},
		LLM: LLMConfig{
			Provider:        "auto",
			GroqAPIKeyEnv:   "GROQ_API_KEY",
			OpenAIAPIKeyEnv: "OPENAI_API_KEY",
			Temperature:     0.7,
			MaxTokens:       300,
			TimeoutSecs:     30,
			HistoryTurns:    5,
		},
		Agent: AgentConfig{
			SimilarityThreshold: 0.45,
			ContextBoost:        1.2,
			ShowConfidence:      true,
			MaxHistory:          10,
			MaxSuggestions:      2,
		},
		Session: SessionConfig{Type: "memory", TTLSecs: 86400, Redis: RedisConfig{Address: "localhost:6379"}},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
	return cfg
}

// Validate checks value ranges and component names.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Agent.SimilarityThreshold < 0 || c.Agent.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("agent.similarity_threshold %.2f must be within [0,1]", c.Agent.SimilarityThreshold))
	}
	if c.Agent.ContextBoost < 1 {
		errs = append(errs, fmt.Errorf("agent.context_boost %.2f must be >= 1", c.Agent.ContextBoost))
	}
	if !oneOf(c.Embedder.Type, "tfidf", "openai") {
		errs = append(errs, fmt.Errorf("unknown embedder: %s", c.Embedder.Type))
	}
	if !oneOf(c.VectorStore.Type, "memory", "chromem") {
		errs = append(errs, fmt.Errorf("unknown vector store: %s", c.VectorStore.Type))
	}
	if !oneOf(c.LLM.Provider, "auto", "groq", "openai", "none") {
		errs = append(errs, fmt.Errorf("unknown llm provider: %s", c.LLM.Provider))
	}
	if !oneOf(c.Session.Type, "memory", "redis") {
		errs = append(errs, fmt.Errorf("unknown session store: %s", c.Session.Type))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout_secs", d.Server.ReadTimeoutSecs)
	v.SetDefault("server.write_timeout_secs", d.Server.WriteTimeoutSecs)
	v.SetDefault("embedder.type", d.Embedder.Type)
	v.SetDefault("embedder.concurrency", d.Embedder.Concurrency)
	v.SetDefault("vector_store.type", d.VectorStore.Type)
	v.SetDefault("vector_store.collection", d.VectorStore.Collection)
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.groq_api_key_env", d.LLM.GroqAPIKeyEnv)
	v.SetDefault("llm.openai_api_key_env", d.LLM.OpenAIAPIKeyEnv)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.timeout_secs", d.LLM.TimeoutSecs)
	v.SetDefault("llm.history_turns", d.LLM.HistoryTurns)
	v.SetDefault("agent.similarity_threshold", d.Agent.SimilarityThreshold)
	v.SetDefault("agent.context_boost", d.Agent.ContextBoost)
	v.SetDefault("agent.show_confidence", d.Agent.ShowConfidence)
	v.SetDefault("agent.max_history", d.Agent.MaxHistory)
	v.SetDefault("agent.max_suggestions", d.Agent.MaxSuggestions)
	v.SetDefault("session.type", d.Session.Type)
	v.SetDefault("session.ttl_secs", d.Session.TTLSecs)
	v.SetDefault("session.redis.address", d.Session.Redis.Address)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

func applyConfigDefaults(cfg *AppConfig) {
	cfg.Embedder.Type = strings.ToLower(strings.TrimSpace(cfg.Embedder.Type))
	cfg.VectorStore.Type = strings.ToLower(strings.TrimSpace(cfg.VectorStore.Type))
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.Session.Type = strings.ToLower(strings.TrimSpace(cfg.Session.Type))

	if cfg.Embedder.Concurrency <= 0 {
		cfg.Embedder.Concurrency = 1
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.MaxRetries == 0 {
			cfg.Embedder.OpenAI.MaxRetries = 3
		}
	}
	if cfg.LLM.HistoryTurns < 0 {
		cfg.LLM.HistoryTurns = 0
	}
	if cfg.Agent.MaxSuggestions < 0 {
		cfg.Agent.MaxSuggestions = 0
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "supportbot", "config.yaml"), nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, os.ErrNotExist) || errors.As(err, &notFound)
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
