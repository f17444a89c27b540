package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docchat-dev/docchat/internal/embeddings"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the available embedding models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Println("Available embedding models:")
		for _, key := range embeddings.Models() {
			spec, _ := embeddings.Lookup(key)
			marker := ""
			if key == cfg.EmbeddingModel {
				marker = " (default)"
			}
			fmt.Printf("  %-14s %s (%d dims)%s\n", key, spec.ID, spec.Dimensions, marker)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
