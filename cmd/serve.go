package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/docchat-dev/docchat/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing document question answering tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		answerer, err := newAnswerer(cfg)
		if err != nil {
			return err
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "docchat MCP server started on stdio (model=%s, embeddings=%s)\n",
			cfg.Model, cfg.EmbeddingModel)

		srv := mcpserver.NewServer(newEmbeddingRegistry(cfg), answerer, cfg)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
