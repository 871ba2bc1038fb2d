package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var salesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Show the vehicles sold per year reference table",
	RunE:  runSales,
}

func init() {
	rootCmd.AddCommand(salesCmd)
}

func runSales(cmd *cobra.Command, _ []string) error {
	if financeService == nil {
		return errors.New("finance service not configured")
	}

	sales, err := financeService.VehicleSales(context.Background())
	if err != nil {
		return err
	}

	cmd.Println("Year  Vehicles sold")
	for _, row := range sales {
		cmd.Printf("%d  %d\n", row.Year, row.VehiclesSold)
	}
	return nil
}
