// Package pipeline orchestrates the retrieval-augmented answer flow:
// load a document, index it, retrieve context for a question, and ask
// the language model for a grounded answer.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/docchat-dev/docchat/internal/embeddings"
	"github.com/docchat-dev/docchat/internal/llm"
	"github.com/docchat-dev/docchat/internal/loader"
	"github.com/docchat-dev/docchat/internal/prompt"
	"github.com/docchat-dev/docchat/internal/session"
	"github.com/docchat-dev/docchat/internal/vectordb"
)

const defaultGenerationTimeout = 120 * time.Second

// Config tunes an Answerer.
type Config struct {
	// GenerationTimeout bounds the language model call. Zero means the
	// default of two minutes.
	GenerationTimeout time.Duration
	// MaxTokens caps the generated answer length. Zero lets the
	// provider pick its default.
	MaxTokens int
	// CacheIndexes enables reuse of built indexes keyed by file content
	// hash and embedding model, instead of rebuilding per question.
	CacheIndexes bool
}

// Request carries everything one answer call needs. History is owned by
// the caller; the pipeline never retains it between calls.
type Request struct {
	Query          string
	EmbeddingModel string
	FilePath       string
	TopK           int
	HistoryLen     int
	Temperature    float64
	TopP           float64
	History        session.History
}

// Result is the outcome of one answer call.
type Result struct {
	Answer   string
	History  session.History // caller's history plus the new turn
	Contexts []vectordb.SearchResult
	Prompt   string
}

// Answerer runs the retrieval-augmented answer pipeline. It is safe for
// concurrent use: the only shared state is the read-only embedder cache
// and, when enabled, the index cache.
type Answerer struct {
	registry *embeddings.Registry
	provider llm.Provider
	cfg      Config
	cache    *vectordb.IndexCache
}

// New creates an Answerer using the given embedder registry and language
// model provider.
func New(registry *embeddings.Registry, provider llm.Provider, cfg Config) *Answerer {
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = defaultGenerationTimeout
	}

	a := &Answerer{
		registry: registry,
		provider: provider,
		cfg:      cfg,
	}
	if cfg.CacheIndexes {
		a.cache = vectordb.NewIndexCache()
	}
	return a
}

// Answer runs one request through the pipeline and returns the generated
// answer along with the updated history. Every step before the model call
// is deterministic for identical inputs.
func (a *Answerer) Answer(ctx context.Context, req Request) (*Result, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if req.TopK < 1 {
		return nil, fmt.Errorf("top_k must be >= 1, got %d", req.TopK)
	}

	embedder, err := a.registry.Resolve(req.EmbeddingModel)
	if err != nil {
		return nil, err
	}

	store, err := a.indexFor(ctx, embedder, req.FilePath)
	if err != nil {
		return nil, err
	}

	results, err := store.Search(ctx, req.Query, req.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	contexts := make([]string, len(results))
	for i, r := range results {
		contexts[i] = r.Document.Content
	}
	grounded := prompt.Compose(contexts, req.Query)

	messages := buildMessages(req.History.Truncate(req.HistoryLen), grounded)

	genCtx, cancel := context.WithTimeout(ctx, a.cfg.GenerationTimeout)
	defer cancel()

	resp, err := a.provider.Complete(genCtx, llm.CompletionRequest{
		Messages:    messages,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: clamp01(req.Temperature),
		TopP:        clamp01(req.TopP),
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Answer:   resp.Content,
		History:  req.History.Append(session.Turn{Query: req.Query, Answer: resp.Content}),
		Contexts: results,
		Prompt:   grounded,
	}, nil
}

// indexFor builds the vector index for the file, or reuses a cached one
// keyed by file content hash and embedding model name.
func (a *Answerer) indexFor(ctx context.Context, embedder embeddings.Embedder, path string) (vectordb.VectorStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	hash := vectordb.CacheKey(data, embedder.Name())
	build := func() (vectordb.VectorStore, error) {
		elements, err := loader.Load(path)
		if err != nil {
			return nil, err
		}
		return vectordb.Build(ctx, embedder, documentsFrom(elements, hash))
	}

	if a.cache == nil {
		return build()
	}
	return a.cache.GetOrBuild(hash, build)
}

// documentsFrom converts loader elements into vector store documents.
func documentsFrom(elements []loader.Element, contentHash string) []vectordb.Document {
	now := time.Now()
	docs := make([]vectordb.Document, len(elements))
	for i, el := range elements {
		docs[i] = vectordb.Document{
			ID:      fmt.Sprintf("%s:%d", el.Metadata.Source, el.Metadata.Index),
			Content: el.Text,
			Metadata: vectordb.DocumentMetadata{
				Source:      el.Metadata.Source,
				Element:     el.Metadata.Index,
				ElementType: string(el.Metadata.Type),
				ContentHash: contentHash,
				IndexedAt:   now,
			},
		}
	}
	return docs
}

// buildMessages renders the trimmed history as alternating user/assistant
// messages followed by the grounded prompt.
func buildMessages(history session.History, grounded string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)*2+1)
	for _, turn := range history {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: turn.Query},
			llm.Message{Role: llm.RoleAssistant, Content: turn.Answer},
		)
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: grounded})
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
