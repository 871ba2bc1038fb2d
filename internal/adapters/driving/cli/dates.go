package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var datesRefresh bool

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "Show announcement dates extracted from ingested PDFs",
	RunE:  runDates,
}

func init() {
	datesCmd.Flags().BoolVar(&datesRefresh, "refresh", false, "rescan ingested PDFs before listing")
	rootCmd.AddCommand(datesCmd)
}

func runDates(cmd *cobra.Command, _ []string) error {
	if datesService == nil {
		return errors.New("dates service not configured")
	}

	ctx := context.Background()
	list := datesService.List
	if datesRefresh {
		list = datesService.Refresh
	}

	dates, err := list(ctx)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		cmd.Println("No announcement dates found.")
		return nil
	}

	for _, d := range dates {
		cmd.Printf("%s  (%s)\n", d.Date, d.Source)
	}
	return nil
}
