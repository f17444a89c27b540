package config

// DefaultExcludes are glob patterns excluded from ingest by default.
var DefaultExcludes = []string{
	"vendor/**",
	"node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
	"*.lock",
}

// DefaultIncludes covers the supported document formats.
var DefaultIncludes = []string{
	"**/*.txt",
	"**/*.md",
	"**/*.docx",
}

// DefaultConfig returns a Config with sensible defaults. The retrieval
// and sampling defaults match the reference demo settings.
func DefaultConfig() *Config {
	return &Config{
		Provider:                 ProviderOpenAI,
		Model:                    "gpt-4o-mini",
		EmbeddingModel:           "ernie-tiny",
		DataDir:                  ".docchat",
		TopK:                     6,
		HistoryLen:               3,
		Temperature:              0.01,
		TopP:                     0.9,
		GenerationTimeoutSeconds: 120,
		CacheIndexes:             true,
		Include:                  DefaultIncludes,
		Exclude:                  DefaultExcludes,
		Server: ServerConfig{
			Port: 8080,
		},
	}
}
