package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docchat-dev/docchat/internal/db"
	"github.com/docchat-dev/docchat/internal/server"
	"github.com/docchat-dev/docchat/internal/session"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP question answering server",
	Long:  `Starts the docchat HTTP server with a REST API for document upload and question answering, plus a WebSocket chat endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		answerer, err := newAnswerer(cfg)
		if err != nil {
			return err
		}

		// Open database.
		dbPath := filepath.Join(cfg.DataDir, "docchat.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		port := serverPort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(server.Config{
			Port:      port,
			UploadDir: filepath.Join(cfg.DataDir, "uploads"),
			AllowAll:  cfg.Server.AllowAll,
		}, cfg, answerer, session.NewStore(database))

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "docchat server v%s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  Uploads:  %s\n", filepath.Join(cfg.DataDir, "uploads"))

		return srv.Start()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
