package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question over the ingested corpus",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	question := args[0]
	session.RecordUser(question)

	answer, err := answerer.Answer(ctx, question)
	if err != nil {
		return fmt.Errorf("answering: %w", err)
	}
	session.RecordAssistant(answer)

	cmd.Println(answer)
	return nil
}
