package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render <sales|stock|correlation>",
	Short: "Render a financial chart to PNG",
	Long: `Renders one of the built-in charts:
  sales        vehicles sold per year (bar)
  stock        stock close vs CAC40 on announcement dates (lines)
  correlation  vehicles sold vs average stock close (scatter)`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderOut, "out", "", "output PNG path (default: graphs dir)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if visualizeService == nil {
		return errors.New("visualize service not configured")
	}

	ctx := context.Background()

	var path string
	var err error
	switch args[0] {
	case "sales":
		path, err = visualizeService.SalesPerYear(ctx, renderOut)
	case "stock":
		path, err = visualizeService.StockVsIndex(ctx, renderOut)
	case "correlation":
		path, err = visualizeService.SalesStockCorrelation(ctx, renderOut)
	default:
		return fmt.Errorf("unknown chart %q (want sales, stock, or correlation)", args[0])
	}
	if err != nil {
		return err
	}

	cmd.Printf("Chart saved to %s\n", path)
	return nil
}
