package server

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/family-activities/internal/config"
	"github.com/jonathan/family-activities/internal/db"
	"github.com/jonathan/family-activities/internal/embedding"
	"github.com/jonathan/family-activities/internal/llm"
	"github.com/jonathan/family-activities/internal/outreach"
	"github.com/jonathan/family-activities/internal/parsing"
	"github.com/jonathan/family-activities/internal/recommend"
	"github.com/jonathan/family-activities/internal/server/ratelimit"
)

// embeddingCacheSize bounds the embedding LRU shared by all requests
const embeddingCacheSize = 4096

// NewLLMClient picks a provider from the environment: OpenRouter when its key is
// set, then Gemini. It returns nil when neither key is set.
func NewLLMClient(ctx context.Context, env *config.EnvConfig) (llm.Client, error) {
	switch {
	case env.OpenRouterAPIKey != "":
		cfg := llm.DefaultOpenRouterConfig()
		cfg.SiteURL = env.SiteURL
		return llm.NewClient(ctx, cfg, env.OpenRouterAPIKey)
	case env.GeminiAPIKey != "":
		return llm.NewClient(ctx, llm.DefaultGeminiConfig(), env.GeminiAPIKey)
	default:
		return nil, nil
	}
}

// NewEmbedder returns OpenAI embeddings when OPENAI_API_KEY is set and the local
// hash embedder otherwise, behind an LRU cache either way.
func NewEmbedder(env *config.EnvConfig) (embedding.Embedder, error) {
	var inner embedding.Embedder = embedding.NewHashEmbedder(embedding.DefaultHashDimensions)
	if env.OpenAIAPIKey != "" {
		e, err := embedding.NewOpenAIEmbedder(env.OpenAIAPIKey, "")
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		inner = e
	}
	return embedding.NewCachedEmbedder(inner, embeddingCacheSize), nil
}

// openDatabase connects and migrates. Failures are logged and yield nil so the
// server still starts; database-backed routes then answer 503.
func openDatabase(ctx context.Context, url string) *db.DB {
	database, err := db.Connect(ctx, url)
	if err != nil {
		log.Printf("[server] database unavailable, starting without it: %v", err)
		return nil
	}
	if err := database.Migrate(ctx); err != nil {
		log.Printf("[server] database migration failed, starting without it: %v", err)
		database.Close()
		return nil
	}
	return database
}

// newServices wires the collaborators. A nil store leaves the database and
// recommendation routes unconfigured.
func newServices(store Store, embedder embedding.Embedder, client llm.Client) Services {
	services := Services{Emailer: outreach.NewGenerator(client)}
	if client != nil {
		services.Parser = parsing.NewFamilyParser(client)
	}
	if store == nil {
		return services
	}
	services.Store = store
	services.Recommender = recommend.NewEngine(store, embedder, recommend.DefaultEngineConfig())
	return services
}

// FromEnv builds a server with every collaborator configured from the environment
func FromEnv(ctx context.Context, port int) (*Server, error) {
	env, err := config.NewEnvConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	gate, err := config.NewGateConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create gate config: %w", err)
	}
	session, err := config.NewSessionConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create session config: %w", err)
	}

	database := openDatabase(ctx, env.Database.ConnectionString())
	closeDatabase := func() {
		if database != nil {
			database.Close()
		}
	}

	client, err := NewLLMClient(ctx, env)
	if err != nil {
		closeDatabase()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	if client == nil {
		log.Printf("[server] no LLM key set: parsing disabled, emails use templates")
	}

	embedder, err := NewEmbedder(env)
	if err != nil {
		closeDatabase()
		return nil, err
	}

	var store Store
	if database != nil {
		store = database
	}
	services := newServices(store, embedder, client)

	s, err := New(Config{
		Port:      port,
		Env:       env,
		Gate:      gate,
		Session:   session,
		RateLimit: ratelimit.LoadConfig(),
	}, services)
	if err != nil {
		closeDatabase()
		return nil, err
	}

	s.OnShutdown(closeDatabase)
	s.OnShutdown(func() {
		if err := embedder.Close(); err != nil {
			log.Printf("[server] failed to close embedder: %v", err)
		}
	})
	if client != nil {
		s.OnShutdown(func() {
			if err := client.Close(); err != nil {
				log.Printf("[server] failed to close LLM client: %v", err)
			}
		})
	}
	return s, nil
}
