package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List stored sessions or show one transcript",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if referenceStore == nil {
		return errors.New("reference store not configured")
	}

	ctx := context.Background()

	if len(args) == 0 {
		ids, err := referenceStore.ListConversations(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			cmd.Println("No stored sessions.")
			return nil
		}
		for _, id := range ids {
			cmd.Println(id)
		}
		return nil
	}

	turns, err := referenceStore.GetConversation(ctx, args[0])
	if err != nil {
		return err
	}
	for _, turn := range turns {
		cmd.Printf("[%s] %s\n", turn.Role, turn.Content)
	}
	return nil
}
