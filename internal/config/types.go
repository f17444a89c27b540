package config

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level docchat configuration, corresponding to .docchat.yml.
type Config struct {
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`

	// EmbeddingModel is a key of the embedding model catalog
	// (ernie-tiny, ernie-base, text2vec-base).
	EmbeddingModel string `yaml:"embedding_model" koanf:"embedding_model"`
	// EmbeddingBaseURL points at the OpenAI-compatible server hosting the
	// catalog models. Empty selects Ollama when provider is ollama.
	EmbeddingBaseURL string `yaml:"embedding_base_url" koanf:"embedding_base_url"`

	// DataDir holds uploads, the persisted knowledge index, and the
	// session database.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	// Per-request retrieval and sampling defaults, overridable per call.
	TopK        int     `yaml:"top_k" koanf:"top_k"`
	HistoryLen  int     `yaml:"history_len" koanf:"history_len"`
	Temperature float64 `yaml:"temperature" koanf:"temperature"`
	TopP        float64 `yaml:"top_p" koanf:"top_p"`

	// GenerationTimeoutSeconds bounds a single language model call.
	GenerationTimeoutSeconds int `yaml:"generation_timeout_seconds" koanf:"generation_timeout_seconds"`

	// CacheIndexes reuses built indexes keyed by file content hash and
	// embedding model instead of rebuilding on every question.
	CacheIndexes bool `yaml:"cache_indexes" koanf:"cache_indexes"`

	// RequestsPerMinute rate-limits LLM calls; 0 disables the limiter.
	RequestsPerMinute int `yaml:"requests_per_minute" koanf:"requests_per_minute"`

	// Include and Exclude are glob patterns for the ingest command.
	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`

	Server ServerConfig `yaml:"server" koanf:"server"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
