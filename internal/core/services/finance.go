package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// vehicleSalesTable is the built-in group vehicle sales reference,
// taken from the published annual results.
var vehicleSalesTable = []domain.VehicleSales{
	{Year: 2020, VehiclesSold: 2951971},
	{Year: 2021, VehiclesSold: 2696401},
	{Year: 2022, VehiclesSold: 2051174},
	{Year: 2023, VehiclesSold: 2235000},
	{Year: 2024, VehiclesSold: 2264815},
}

// FinanceService exposes the vehicle sales reference table, keeping the
// CSV artifact and the SQLite mirror in step with the built-in data.
type FinanceService struct {
	paths Paths
	store driven.ReferenceStore
}

// NewFinanceService creates the vehicle sales reference service.
func NewFinanceService(paths Paths, store driven.ReferenceStore) *FinanceService {
	return &FinanceService{paths: paths, store: store}
}

// VehicleSales returns the sales table sorted by year, regenerating the
// reference CSV when absent and mirroring the table into the store.
func (s *FinanceService) VehicleSales(ctx context.Context) ([]domain.VehicleSales, error) {
	path := s.paths.VehicleSalesCSV()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.writeCSV(path); err != nil {
			return nil, err
		}
		logger.Debug("Regenerated %s", path)
	}

	if err := s.store.SaveVehicleSales(ctx, vehicleSalesTable); err != nil {
		return nil, fmt.Errorf("saving vehicle sales: %w", err)
	}

	sales := make([]domain.VehicleSales, len(vehicleSalesTable))
	copy(sales, vehicleSalesTable)
	return sales, nil
}

func (s *FinanceService) writeCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating financial dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"year", "vehicles_sold"}); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	for _, row := range vehicleSalesTable {
		record := []string{strconv.Itoa(row.Year), strconv.Itoa(row.VehiclesSold)}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}
