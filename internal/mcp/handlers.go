package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docchat-dev/docchat/internal/embeddings"
	"github.com/docchat-dev/docchat/internal/loader"
	"github.com/docchat-dev/docchat/internal/pipeline"
	"github.com/docchat-dev/docchat/internal/vectordb"
)

// handleAskDocument runs a single question through the answer pipeline.
func (s *Server) handleAskDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := request.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: file_path"), nil
	}
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	req := pipeline.Request{
		Query:          question,
		EmbeddingModel: request.GetString("embedding_model", s.app.EmbeddingModel),
		FilePath:       filePath,
		TopK:           request.GetInt("top_k", s.app.TopK),
		Temperature:    s.app.Temperature,
		TopP:           s.app.TopP,
	}

	result, err := s.answerer.Answer(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	return mcp.NewToolResultText(result.Answer), nil
}

// handleSearchDocument builds an index over the document and returns the
// passages most similar to the query.
func (s *Server) handleSearchDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := request.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: file_path"), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 6)
	if limit <= 0 {
		limit = 6
	}

	embedder, err := s.registry.Resolve(s.app.EmbeddingModel)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolving embedder: %v", err)), nil
	}

	elements, err := loader.Load(filePath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading document: %v", err)), nil
	}

	docs := make([]vectordb.Document, len(elements))
	for i, el := range elements {
		docs[i] = vectordb.Document{
			ID:      fmt.Sprintf("%s-%d", filePath, el.Metadata.Index),
			Content: el.Text,
			Metadata: vectordb.DocumentMetadata{
				Source:      el.Metadata.Source,
				Element:     el.Metadata.Index,
				ElementType: string(el.Metadata.Type),
			},
		}
	}

	store, err := vectordb.Build(ctx, embedder, docs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("building index: %v", err)), nil
	}

	results, err := store.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No passages found."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// handleListModels returns the embedding model catalog keys.
func (s *Server) handleListModels(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	sb.WriteString("Available embedding models:\n")
	for _, key := range embeddings.Models() {
		if key == s.app.EmbeddingModel {
			sb.WriteString(fmt.Sprintf("- %s (default)\n", key))
		} else {
			sb.WriteString(fmt.Sprintf("- %s\n", key))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatSearchResults converts search results into a compact text format
// for agent consumption.
func formatSearchResults(results []vectordb.SearchResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d passage(s):\n", len(results)))
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n## %d. %s (element %d, similarity %.2f)\n",
			i+1, r.Document.Metadata.Source, r.Document.Metadata.Element, r.Similarity))
		sb.WriteString(r.Document.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
