package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/docchat-dev/docchat/internal/loader"
	"github.com/docchat-dev/docchat/internal/progress"
	"github.com/docchat-dev/docchat/internal/vectordb"
	"github.com/docchat-dev/docchat/internal/walker"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Index a directory of documents into a persistent knowledge base",
	Long: `Walks a directory for supported documents (.txt, .md, .docx), splits
them into passages, embeds the passages, and persists the resulting
vector index under the data directory for later querying.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("model", "", "embedding model key (overrides config)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rootDir := "."
	if len(args) > 0 {
		rootDir = args[0]
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = cfg.EmbeddingModel
	}

	include := cfg.Include
	if len(include) == 0 {
		include = []string{"**/*.txt", "**/*.md", "**/*.docx"}
	}

	files, err := walker.Walk(walker.Config{
		RootDir: rootDir,
		Include: include,
		Exclude: cfg.Exclude,
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", rootDir, err)
	}
	if len(files) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	embedder, err := newEmbeddingRegistry(cfg).Resolve(model)
	if err != nil {
		return fmt.Errorf("resolving embedding model: %w", err)
	}

	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}

	reporter := progress.NewReporter()
	reporter.Start(len(files))

	indexed := 0
	for i, file := range files {
		reporter.Update(i, file.RelPath)

		elements, err := loader.Load(file.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nWarning: skipping %s: %v\n", file.RelPath, err)
			continue
		}

		docs := make([]vectordb.Document, len(elements))
		for j, el := range elements {
			docs[j] = vectordb.Document{
				ID:      fmt.Sprintf("%s#%d", file.RelPath, el.Metadata.Index),
				Content: el.Text,
				Metadata: vectordb.DocumentMetadata{
					Source:      file.RelPath,
					Element:     el.Metadata.Index,
					ElementType: string(el.Metadata.Type),
					ContentHash: file.ContentHash,
					IndexedAt:   time.Now(),
				},
			}
		}

		if err := store.AddDocuments(ctx, docs); err != nil {
			return fmt.Errorf("indexing %s: %w", file.RelPath, err)
		}
		indexed++
	}
	reporter.Finish()

	indexDir := filepath.Join(cfg.DataDir, "index", model)
	if err := store.Persist(ctx, indexDir); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}

	fmt.Printf("Indexed %d document(s), %d passage(s) in %s\n",
		indexed, store.Count(), time.Since(start).Round(time.Millisecond))
	fmt.Printf("Index written to %s\n", indexDir)
	return nil
}
