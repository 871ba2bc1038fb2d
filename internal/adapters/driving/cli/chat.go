package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/tui"
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session over the corpus",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if newAnswerer == nil {
		return errors.New("answer service not configured")
	}

	ctx := context.Background()
	answerer, err := newAnswerer(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoCorpus) {
			return fmt.Errorf("no sources ingested yet, run `finsight ingest` first")
		}
		return fmt.Errorf("starting session: %w", err)
	}

	session := newSession()
	defer func() {
		if err := session.Close(context.Background()); err != nil {
			cmd.PrintErrf("saving session: %v\n", err)
		}
	}()

	program := tea.NewProgram(tui.New(answerer, session), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat session: %w", err)
	}
	return nil
}
