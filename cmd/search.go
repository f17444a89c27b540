package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docchat-dev/docchat/internal/vectordb"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Semantically search an ingested knowledge base",
	Long: `Searches the persisted vector index built by docchat ingest and
prints the passages most similar to the query.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 6, "maximum number of passages")
	searchCmd.Flags().String("model", "", "embedding model key (overrides config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = cfg.EmbeddingModel
	}

	embedder, err := newEmbeddingRegistry(cfg).Resolve(model)
	if err != nil {
		return fmt.Errorf("resolving embedding model: %w", err)
	}

	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}

	indexDir := filepath.Join(cfg.DataDir, "index", model)
	if err := store.Load(ctx, indexDir); err != nil {
		return fmt.Errorf("loading index from %s: %w\nRun `docchat ingest` first to build it", indexDir, err)
	}
	if store.Count() == 0 {
		fmt.Println("Index is empty. Run `docchat ingest` first.")
		return nil
	}

	results, err := store.Search(ctx, args[0], limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No passages found.")
		return nil
	}

	fmt.Printf("Found %d passage(s):\n\n", len(results))
	for i, r := range results {
		fmt.Printf("  %d. [%.1f%%] %s (element %d, %s)\n", i+1, r.Similarity*100,
			r.Document.Metadata.Source, r.Document.Metadata.Element, r.Document.Metadata.ElementType)
		fmt.Printf("     %s\n\n", truncate(r.Document.Content, 160))
	}
	return nil
}
