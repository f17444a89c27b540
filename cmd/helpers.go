package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/docchat-dev/docchat/internal/config"
	"github.com/docchat-dev/docchat/internal/embeddings"
	"github.com/docchat-dev/docchat/internal/llm"
	"github.com/docchat-dev/docchat/internal/pipeline"
)

// newEmbeddingRegistry builds the embedder registry backed by the serving
// backend the config selects. Catalog models are served either by an
// OpenAI-compatible embedding server or by Ollama.
func newEmbeddingRegistry(cfg *config.Config) *embeddings.Registry {
	return embeddings.NewRegistry(func(spec embeddings.ModelSpec) (embeddings.Embedder, error) {
		if cfg.EmbeddingBaseURL != "" {
			apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
			return embeddings.NewOpenAIEmbedder(apiKey, cfg.EmbeddingBaseURL, spec.ID, spec.Dimensions), nil
		}
		if cfg.Provider == config.ProviderOllama {
			return embeddings.NewOllamaEmbedder(spec.ID, spec.Dimensions, os.Getenv("OLLAMA_HOST")), nil
		}
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, os.Getenv("OPENAI_BASE_URL"), spec.ID, spec.Dimensions), nil
	})
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.RequestsPerMinute > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RequestsPerMinute)
	}
	return provider, nil
}

// newAnswerer wires the full question answering pipeline from config.
func newAnswerer(cfg *config.Config) (*pipeline.Answerer, error) {
	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	return pipeline.New(newEmbeddingRegistry(cfg), provider, pipeline.Config{
		GenerationTimeout: time.Duration(cfg.GenerationTimeoutSeconds) * time.Second,
		CacheIndexes:      cfg.CacheIndexes,
	}), nil
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docchat init` to create a config file", err)
	}
	return cfg, nil
}
