// Package bootstrap is the composition root: it turns a resolved Config into
// a wired turn driver, owning provider selection for every capability. CLI
// commands call this instead of assembling ports themselves.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/counterware/clerk/api"
	"github.com/counterware/clerk/pkg/agent"
	"github.com/counterware/clerk/pkg/agent/llmport"
	"github.com/counterware/clerk/pkg/catalog"
	cataloginmemory "github.com/counterware/clerk/pkg/catalog/inmemory"
	catalogpostgres "github.com/counterware/clerk/pkg/catalog/postgres"
	catalogsqlite "github.com/counterware/clerk/pkg/catalog/sqlite"
	"github.com/counterware/clerk/pkg/config"
	"github.com/counterware/clerk/pkg/embeddings"
	embedollama "github.com/counterware/clerk/pkg/embeddings/ollama"
	embedopenai "github.com/counterware/clerk/pkg/embeddings/openai"
	"github.com/counterware/clerk/pkg/eventstream"
	eventskafka "github.com/counterware/clerk/pkg/eventstream/kafka"
	eventsnop "github.com/counterware/clerk/pkg/eventstream/nop"
	"github.com/counterware/clerk/pkg/llm"
	"github.com/counterware/clerk/pkg/search"
	threadsinmemory "github.com/counterware/clerk/pkg/threads/inmemory"
	threadssqlite "github.com/counterware/clerk/pkg/threads/sqlite"
	"github.com/counterware/clerk/pkg/vector"
	vectorchroma "github.com/counterware/clerk/pkg/vector/chroma"
	vectorsqlite "github.com/counterware/clerk/pkg/vector/sqlitevec"
	"github.com/counterware/clerk/pkg/websearch"
	"github.com/counterware/clerk/pkg/websearch/tavily"
)

// Runtime holds the wired system and the handles needed to shut it down.
type Runtime struct {
	Driver  *agent.Driver
	Catalog catalog.Driver
	Vector  vector.Driver

	closers []func() error
}

// Close releases every resource the runtime opened, last first.
func (r *Runtime) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Runtime) onClose(f func() error) {
	r.closers = append(r.closers, f)
}

// Stores holds only the storage-side components. Offline tasks like seeding
// use this instead of New so they don't need LLM or web search credentials.
type Stores struct {
	Catalog  catalog.Driver
	Vector   vector.Driver
	Embedder embeddings.Embedder

	closers []func() error
}

// Close releases every resource the stores opened, last first.
func (s *Stores) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewStores wires the catalog, vector index, and embedder from the config.
func NewStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	st := &Stores{}

	store, err := newCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st.Catalog = store
	st.closers = append(st.closers, store.Close)

	index, err := newVector(cfg, logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	st.Vector = index
	st.closers = append(st.closers, index.Close)

	embedder, err := newEmbedder(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	st.Embedder = embedder
	st.closers = append(st.closers, embedder.Close)

	return st, nil
}

// New wires a complete runtime from the config. Components that hold
// connections are registered for Close.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}

	store, err := newCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt.Catalog = store
	rt.onClose(store.Close)

	index, err := newVector(cfg, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Vector = index
	rt.onClose(index.Close)

	embedder, err := newEmbedder(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.onClose(embedder.Close)

	client, err := llm.New(llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.Target,
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("building completion client: %w", err)
	}
	rt.onClose(client.Close)

	web, err := newWebSearcher(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}

	threads, err := newThreads(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.onClose(threads.Close)

	publisher, err := newPublisher(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.onClose(publisher.Close)

	ports := agent.Ports{
		Understander: llmport.NewUnderstander(client, logger),
		Planner:      llmport.NewPlanner(client, logger),
		Reasoner:     llmport.NewReasoner(client, logger),
		Structured:   search.NewStructured(store, logger),
		Semantic:     search.NewSemantic(embedder, index, store, cfg.VectorStore.TopK, logger),
		Web:          web,
		Responder:    llmport.NewResponder(client, logger),
	}

	rt.Driver = agent.NewDriver(ports, threads, logger, agent.WithPublisher(publisher))
	return rt, nil
}

// NewServer wraps the runtime's driver in the HTTP API server.
func (r *Runtime) NewServer(cfg *config.Config, logger *slog.Logger) *api.Server {
	return api.NewServer(api.Config{ListenAddr: cfg.API.Listen}, r.Driver, logger)
}

func newCatalog(ctx context.Context, cfg *config.Config) (catalog.Driver, error) {
	switch cfg.Catalog.Provider {
	case "sqlite", "":
		return catalogsqlite.NewDriver(cfg.Catalog.SQLitePath)
	case "postgres":
		return catalogpostgres.NewDriver(ctx, cfg.Catalog.PostgresDSN)
	case "memory":
		return cataloginmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported catalog provider: %s", cfg.Catalog.Provider)
	}
}

func newVector(cfg *config.Config, logger *slog.Logger) (vector.Driver, error) {
	switch cfg.VectorStore.Provider {
	case "sqlite", "":
		return vectorsqlite.NewDriver(vectorsqlite.Config{
			DBPath:     cfg.VectorStore.SQLitePath,
			Dimensions: cfg.VectorStore.Dimensions,
		}, logger)
	case "chroma":
		return vectorchroma.NewDriver(vectorchroma.Config{
			URL:            cfg.VectorStore.Target,
			CollectionName: cfg.VectorStore.Collection,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", cfg.VectorStore.Provider)
	}
}

func newEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "ollama", "":
		return embedollama.NewEmbedder(embedollama.Config{
			BaseURL: cfg.Embedding.Target,
			Model:   cfg.Embedding.Model,
		})
	case "openai":
		return embedopenai.NewEmbedder(embedopenai.Config{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.Target,
			Model:   cfg.Embedding.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

func newWebSearcher(cfg *config.Config) (agent.WebSearcher, error) {
	switch cfg.WebSearch.Provider {
	case "tavily":
		if cfg.WebSearch.APIKey == "" {
			// No key means web search is effectively disabled rather
			// than a startup failure.
			return disabledWebSearcher{}, nil
		}
		return tavily.NewSearcher(tavily.Config{
			APIKey:     cfg.WebSearch.APIKey,
			MaxResults: cfg.WebSearch.MaxResults,
		})
	case "", "none":
		return disabledWebSearcher{}, nil
	default:
		return nil, fmt.Errorf("unsupported web search provider: %s", cfg.WebSearch.Provider)
	}
}

func newThreads(cfg *config.Config) (agent.ThreadStore, error) {
	switch cfg.Threads.Provider {
	case "sqlite", "":
		return threadssqlite.NewStore(cfg.Threads.SQLitePath)
	case "memory":
		return threadsinmemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported threads provider: %s", cfg.Threads.Provider)
	}
}

func newPublisher(cfg *config.Config) (eventstream.Publisher, error) {
	switch cfg.Events.Provider {
	case "nop", "":
		return eventsnop.NewPublisher(), nil
	case "kafka":
		return eventskafka.NewPublisher(eventskafka.Config{
			Brokers: cfg.Events.Brokers,
			Topic:   cfg.Events.Topic,
		})
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", cfg.Events.Provider)
	}
}

// disabledWebSearcher degrades web search to an empty result when no
// provider is configured.
type disabledWebSearcher struct{}

func (disabledWebSearcher) Search(_ context.Context, _ string) (*websearch.Result, error) {
	return &websearch.Result{}, nil
}
