package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"marketpipe/pkg/contracts/domain"
)

// ClusterSummaryCSVFile is the spreadsheet-friendly cluster summary.
const ClusterSummaryCSVFile = "cluster-summary.csv"

// WriteClusterSummaryCSV writes one row per cluster with its efficiency
// breakdown. Clusters are assumed already ordered by ID.
func (w *Writer) WriteClusterSummaryCSV(clusters []domain.Cluster) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(w.dir, ClusterSummaryCSVFile)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cluster summary CSV: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	defer cw.Flush()

	header := []string{
		"Cluster_ID",
		"Main_Market",
		"Markets",
		"Market_Count",
		"Efficiency",
		"Connectivity",
		"Price_Integration",
		"Stability",
		"Conflict_Resilience",
		"Avg_Price",
		"Avg_Conflict",
		"Flow_Count",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, cl := range clusters {
		record := []string{
			strconv.Itoa(cl.ID),
			cl.MainMarket,
			strings.Join(cl.Markets, ";"),
			strconv.Itoa(cl.Metrics.MarketCount),
			formatFloat(cl.Metrics.Efficiency, 4),
			formatFloat(cl.Metrics.Connectivity, 4),
			formatFloat(cl.Metrics.PriceIntegration, 4),
			formatFloat(cl.Metrics.Stability, 4),
			formatFloat(cl.Metrics.ConflictResilience, 4),
			formatFloat(cl.Metrics.AvgPrice, 2),
			formatFloat(cl.Metrics.AvgConflict, 2),
			strconv.Itoa(len(cl.Flows)),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write CSV record for cluster %d: %w", cl.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush cluster summary CSV: %w", err)
	}
	w.logger.Info("wrote cluster summary", "file", path, "clusters", len(clusters))
	return nil
}

func formatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}
