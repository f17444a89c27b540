package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docchat-dev/docchat/internal/pipeline"
	"github.com/docchat-dev/docchat/internal/vectordb"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question from a document",
	Long: `Retrieves the passages of the document most similar to the question
and asks the configured language model to answer using only those
passages.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringP("file", "f", "", "path to the document (.txt, .md, .docx)")
	askCmd.Flags().String("model", "", "embedding model key (overrides config)")
	askCmd.Flags().Int("top-k", 0, "number of passages to retrieve (overrides config)")
	askCmd.Flags().Bool("json", false, "output the answer and contexts as JSON")
	askCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	filePath, _ := cmd.Flags().GetString("file")
	model, _ := cmd.Flags().GetString("model")
	topK, _ := cmd.Flags().GetInt("top-k")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if model == "" {
		model = cfg.EmbeddingModel
	}
	if topK <= 0 {
		topK = cfg.TopK
	}

	answerer, err := newAnswerer(cfg)
	if err != nil {
		return err
	}

	result, err := answerer.Answer(ctx, pipeline.Request{
		Query:          args[0],
		EmbeddingModel: model,
		FilePath:       filePath,
		TopK:           topK,
		Temperature:    cfg.Temperature,
		TopP:           cfg.TopP,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printAnswerJSON(result)
	}

	fmt.Println(result.Answer)
	if verbose {
		printContexts(result.Contexts)
	}
	return nil
}

type answerJSON struct {
	Answer   string        `json:"answer"`
	Contexts []contextJSON `json:"contexts"`
}

type contextJSON struct {
	Rank       int     `json:"rank"`
	Similarity float64 `json:"similarity"`
	Source     string  `json:"source"`
	Content    string  `json:"content"`
}

func printAnswerJSON(result *pipeline.Result) error {
	out := answerJSON{Answer: result.Answer}
	for i, r := range result.Contexts {
		out.Contexts = append(out.Contexts, contextJSON{
			Rank:       i + 1,
			Similarity: float64(r.Similarity),
			Source:     r.Document.Metadata.Source,
			Content:    r.Document.Content,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printContexts(contexts []vectordb.SearchResult) {
	fmt.Printf("\nRetrieved %d passage(s):\n", len(contexts))
	for i, r := range contexts {
		fmt.Printf("  %d. [%.1f%%] %s (element %d)\n", i+1, r.Similarity*100,
			r.Document.Metadata.Source, r.Document.Metadata.Element)
		fmt.Printf("     %s\n", truncate(r.Document.Content, 120))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
