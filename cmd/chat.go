package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/docchat-dev/docchat/internal/db"
	"github.com/docchat-dev/docchat/internal/pipeline"
	"github.com/docchat-dev/docchat/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question answering over a document",
	Long: `Starts an interactive chat loop over a document. Earlier turns are
passed back to the language model as conversational history. Type
/clear to forget the history and /exit to quit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringP("file", "f", "", "path to the document (.txt, .md, .docx)")
	chatCmd.Flags().String("session", "", "resume an existing session by id")
	chatCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	filePath, _ := cmd.Flags().GetString("file")
	sessionID, _ := cmd.Flags().GetString("session")

	answerer, err := newAnswerer(cfg)
	if err != nil {
		return err
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "docchat.db"))
	if err != nil {
		return fmt.Errorf("opening session database: %w", err)
	}
	defer database.Close()
	store := session.NewStore(database)

	if sessionID == "" {
		sess, err := store.Create(ctx, filepath.Base(filePath))
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		sessionID = sess.ID
	} else if _, err := store.Get(ctx, sessionID); err != nil {
		return fmt.Errorf("resuming session: %w", err)
	}

	fmt.Printf("Chatting over %s (session %s)\n", filePath, sessionID)
	fmt.Println("Type /clear to forget history, /exit to quit.")

	for {
		input, err := readLine("you")
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		switch strings.TrimSpace(input) {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/clear":
			if err := store.Clear(ctx, sessionID); err != nil {
				return fmt.Errorf("clearing session: %w", err)
			}
			fmt.Println("History cleared.")
			continue
		}

		history, err := store.History(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}

		result, err := answerer.Answer(ctx, pipeline.Request{
			Query:          input,
			EmbeddingModel: cfg.EmbeddingModel,
			FilePath:       filePath,
			TopK:           cfg.TopK,
			HistoryLen:     cfg.HistoryLen,
			Temperature:    cfg.Temperature,
			TopP:           cfg.TopP,
			History:        history,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Printf("\n%s\n\n", result.Answer)

		if err := store.AppendTurn(ctx, sessionID, session.Turn{
			Query:  input,
			Answer: result.Answer,
		}); err != nil {
			return fmt.Errorf("saving turn: %w", err)
		}
	}
}

func readLine(label string) (string, error) {
	prompt := promptui.Prompt{
		Label:       label,
		AllowEdit:   true,
		HideEntered: false,
	}
	return prompt.Run()
}
