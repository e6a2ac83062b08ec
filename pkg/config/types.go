// Package config holds the persistent clerk configuration stored as
// config.toml, plus the viper wiring that layers environment variables and
// CLI flags over it.
package config

// Config represents the persistent clerk configuration. The TOML layout
// uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Threads     ThreadsConfig     `toml:"threads"`
	API         APIConfig         `toml:"api"`
	LLM         LLMConfig         `toml:"llm"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	WebSearch   WebSearchConfig   `toml:"web_search"`
	Events      EventsConfig      `toml:"events"`
}

// CatalogConfig holds structured product store settings.
type CatalogConfig struct {
	// Provider is "sqlite", "postgres", or "memory".
	Provider    string `toml:"provider,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// ThreadsConfig holds conversation thread persistence settings.
type ThreadsConfig struct {
	// Provider is "sqlite" or "memory".
	Provider   string `toml:"provider,omitempty"`
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// LLMConfig holds completion provider settings.
type LLMConfig struct {
	// Provider is "openai", "anthropic", or "ollama".
	Provider string `toml:"provider,omitempty"`
	Model    string `toml:"model,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
	Target   string `toml:"target,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider,omitempty"`
	Model    string `toml:"model,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
	Target   string `toml:"target,omitempty"`
}

// VectorStoreConfig holds vector index settings.
type VectorStoreConfig struct {
	// Provider is "chroma" or "sqlite".
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Collection string `toml:"collection,omitempty"`
	SQLitePath string `toml:"sqlite_path,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
	TopK       int    `toml:"top_k,omitempty"`
}

// WebSearchConfig holds web search settings.
type WebSearchConfig struct {
	// Provider is "tavily" or "" (web search disabled).
	Provider   string `toml:"provider,omitempty"`
	APIKey     string `toml:"api_key,omitempty"`
	MaxResults int    `toml:"max_results,omitempty"`
}

// EventsConfig holds turn event publishing settings.
type EventsConfig struct {
	// Provider is "nop" or "kafka".
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}
