package config

const (
	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0

	defaultCatalogProvider = "sqlite"
	defaultCatalogPath     = "clerk.db"

	defaultThreadsProvider = "sqlite"
	defaultThreadsPath     = "clerk.db"

	defaultAPIListen = ":8080"

	defaultLLMProvider = "openai"
	defaultLLMModel    = "gpt-4o-mini"

	defaultEmbeddingProvider = "ollama"
	defaultEmbeddingModel    = "nomic-embed-text"
	defaultEmbeddingTarget   = "http://localhost:11434"

	defaultVectorProvider   = "sqlite"
	defaultVectorPath       = "clerk.db"
	defaultVectorCollection = "products"
	defaultVectorDimensions = 768
	defaultVectorTopK       = 5

	defaultWebSearchProvider   = "tavily"
	defaultWebSearchMaxResults = 5

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "clerk.turns"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Catalog: CatalogConfig{
			Provider:   defaultCatalogProvider,
			SQLitePath: defaultCatalogPath,
		},
		Threads: ThreadsConfig{
			Provider:   defaultThreadsProvider,
			SQLitePath: defaultThreadsPath,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		LLM: LLMConfig{
			Provider: defaultLLMProvider,
			Model:    defaultLLMModel,
		},
		Embedding: EmbeddingConfig{
			Provider: defaultEmbeddingProvider,
			Model:    defaultEmbeddingModel,
			Target:   defaultEmbeddingTarget,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			SQLitePath: defaultVectorPath,
			Collection: defaultVectorCollection,
			Dimensions: defaultVectorDimensions,
			TopK:       defaultVectorTopK,
		},
		WebSearch: WebSearchConfig{
			Provider:   defaultWebSearchProvider,
			MaxResults: defaultWebSearchMaxResults,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
