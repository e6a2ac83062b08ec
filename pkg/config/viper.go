package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads config.toml from configDir
// (if given and present), and binds environment variables with the CLERK_
// prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindFlag)
//  2. Environment variables (CLERK_API_LISTEN, CLERK_LLM_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("CLERK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a Config from the resolved viper state.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Catalog: CatalogConfig{
			Provider:    v.GetString("catalog.provider"),
			SQLitePath:  v.GetString("catalog.sqlite_path"),
			PostgresDSN: v.GetString("catalog.postgres_dsn"),
		},
		Threads: ThreadsConfig{
			Provider:   v.GetString("threads.provider"),
			SQLitePath: v.GetString("threads.sqlite_path"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		LLM: LLMConfig{
			Provider: v.GetString("llm.provider"),
			Model:    v.GetString("llm.model"),
			APIKey:   v.GetString("llm.api_key"),
			Target:   v.GetString("llm.target"),
		},
		Embedding: EmbeddingConfig{
			Provider: v.GetString("embedding.provider"),
			Model:    v.GetString("embedding.model"),
			APIKey:   v.GetString("embedding.api_key"),
			Target:   v.GetString("embedding.target"),
		},
		VectorStore: VectorStoreConfig{
			Provider:   v.GetString("vector_store.provider"),
			Target:     v.GetString("vector_store.target"),
			Collection: v.GetString("vector_store.collection"),
			SQLitePath: v.GetString("vector_store.sqlite_path"),
			Dimensions: v.GetUint("vector_store.dimensions"),
			TopK:       v.GetInt("vector_store.top_k"),
		},
		WebSearch: WebSearchConfig{
			Provider:   v.GetString("web_search.provider"),
			APIKey:     v.GetString("web_search.api_key"),
			MaxResults: v.GetInt("web_search.max_results"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  v.GetStringSlice("events.brokers"),
			Topic:    v.GetString("events.topic"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of
// truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("catalog.provider", d.Catalog.Provider)
	v.SetDefault("catalog.sqlite_path", d.Catalog.SQLitePath)
	v.SetDefault("catalog.postgres_dsn", d.Catalog.PostgresDSN)

	v.SetDefault("threads.provider", d.Threads.Provider)
	v.SetDefault("threads.sqlite_path", d.Threads.SQLitePath)

	v.SetDefault("api.listen", d.API.Listen)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.target", d.LLM.Target)

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.api_key", d.Embedding.APIKey)
	v.SetDefault("embedding.target", d.Embedding.Target)

	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.target", d.VectorStore.Target)
	v.SetDefault("vector_store.collection", d.VectorStore.Collection)
	v.SetDefault("vector_store.sqlite_path", d.VectorStore.SQLitePath)
	v.SetDefault("vector_store.dimensions", d.VectorStore.Dimensions)
	v.SetDefault("vector_store.top_k", d.VectorStore.TopK)

	v.SetDefault("web_search.provider", d.WebSearch.Provider)
	v.SetDefault("web_search.api_key", d.WebSearch.APIKey)
	v.SetDefault("web_search.max_results", d.WebSearch.MaxResults)

	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
}
