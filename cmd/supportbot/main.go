package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"supportbot/internal/config"
	"supportbot/internal/domain"
	"supportbot/internal/embedding/cache"
	"supportbot/internal/embedding/openai"
	"supportbot/internal/embedding/tfidf"
	"supportbot/internal/llm"
	"supportbot/internal/logger"
	"supportbot/internal/metrics"
	"supportbot/internal/server"
	"supportbot/internal/service"
	sessionmem "supportbot/internal/session/memory"
	sessionredis "supportbot/internal/session/redis"
	"supportbot/internal/tui"
	"supportbot/internal/vectorstore"
	"supportbot/internal/vectorstore/chromem"
	"supportbot/internal/vectorstore/memory"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, mode string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/supportbot/config.yaml if not provided)")
	flag.StringVar(&mode, "mode", "web", "Run mode: web or tui")
	flag.Parse()
	if mode != "web" && mode != "tui" {
		fmt.Println("Usage: supportbot [--config=config.yaml] [--mode=web|tui]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zl.Sync() }()
	lg := logger.NewZapAdapter(zl)
	if mode == "tui" {
		// log lines would tear the alt screen
		lg = logger.NewNoOpLogger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Assemble components
	var emb domain.Embedder
	model := cfg.Embedder.Type
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		oc := cfg.Embedder.OpenAI
		client, err := openai.NewClient(openai.Config{
			BaseURL:    oc.BaseURL,
			APIKeyEnv:  oc.APIKeyEnv,
			Model:      oc.Model,
			Timeout:    time.Duration(oc.TimeoutSecs) * time.Second,
			MaxRetries: oc.MaxRetries,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		emb = client
		model = oc.Model
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}
	if cfg.Embedder.CachePath != "" {
		cached, err := cache.Open(cfg.Embedder.CachePath, emb, model)
		if err != nil {
			log.Fatalf("embedding cache init failed: %v", err)
		}
		defer cached.Close()
		emb = cached
	}

	var st vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "memory", "":
		st = memory.NewStorage()
	case "chromem":
		st = chromem.NewStorage(cfg.VectorStore.Collection)
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	var sessions domain.SessionStore
	switch cfg.Session.Type {
	case "memory", "":
		sessions = sessionmem.NewStore()
	case "redis":
		rs := sessionredis.NewStore(sessionredis.NewClient(cfg.Session.Redis), time.Duration(cfg.Session.TTLSecs)*time.Second)
		if err := rs.Ping(ctx); err != nil {
			log.Fatalf("redis session store unreachable: %v", err)
		}
		defer rs.Close()
		sessions = rs
	default:
		log.Fatalf("unknown session store: %s", cfg.Session.Type)
	}

	var chat domain.ChatModel
	if lc, ok := llm.Resolve(cfg.LLM); ok {
		client := llm.NewClient(lc)
		lg.Info("llm fallback enabled", map[string]interface{}{"provider": client.Provider(), "model": client.Model()})
		chat = client
	} else {
		lg.Warn("no llm api key found, unmatched questions get a static reply", nil)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := service.NewSupportService(service.Deps{
		Embedder: emb,
		Store:    st,
		Sessions: sessions,
		LLM:      chat,
		Metrics:  metrics.NewRecorder(reg),
		Logger:   lg,
	}, service.OptionsFromConfig(cfg))
	if err := svc.Index(ctx); err != nil {
		log.Fatalf("indexing failed: %v", err)
	}

	switch mode {
	case "tui":
		m := tui.New(svc, uuid.NewString(), cfg.Agent.MaxHistory)
		if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && ctx.Err() == nil {
			log.Fatal(err)
		}
	default:
		if err := server.New(*cfg, svc, reg, lg).Run(ctx); err != nil {
			log.Fatal(err)
		}
	}
}
