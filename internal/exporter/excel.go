package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"marketpipe/pkg/contracts/domain"
)

// ExcelReportFile is the multi-sheet analysis workbook.
const ExcelReportFile = "market-analysis.xlsx"

// WriteExcelReport writes a workbook with one sheet per analysis view:
// cluster efficiency, market centrality, and regional performance.
func (w *Writer) WriteExcelReport(clusters []domain.Cluster, network domain.NetworkMetrics, performance []domain.RegionalPerformance) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeClusterSheet(f, clusters); err != nil {
		return err
	}
	if err := writeCentralitySheet(f, network); err != nil {
		return err
	}
	if err := writePerformanceSheet(f, performance); err != nil {
		return err
	}

	path := filepath.Join(w.dir, ExcelReportFile)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save excel report: %w", err)
	}
	w.logger.Info("wrote excel report", "file", path)
	return nil
}

func writeClusterSheet(f *excelize.File, clusters []domain.Cluster) error {
	const sheet = "Clusters"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename cluster sheet: %w", err)
	}
	headers := []any{"Cluster ID", "Main Market", "Market Count", "Efficiency",
		"Connectivity", "Price Integration", "Stability", "Conflict Resilience"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write cluster header: %w", err)
	}
	for i, cl := range clusters {
		row := []any{cl.ID, cl.MainMarket, cl.Metrics.MarketCount, cl.Metrics.Efficiency,
			cl.Metrics.Connectivity, cl.Metrics.PriceIntegration, cl.Metrics.Stability,
			cl.Metrics.ConflictResilience}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write cluster row %d: %w", cl.ID, err)
		}
	}
	return nil
}

func writeCentralitySheet(f *excelize.File, network domain.NetworkMetrics) error {
	const sheet = "Centrality"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create centrality sheet: %w", err)
	}
	headers := []any{"Market", "Degree", "Strength", "Betweenness"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write centrality header: %w", err)
	}

	markets := make([]string, 0, len(network.Centrality))
	for m := range network.Centrality {
		markets = append(markets, m)
	}
	sort.Strings(markets)

	for i, m := range markets {
		c := network.Centrality[m]
		row := []any{m, c.Degree, c.Strength, c.Betweenness}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write centrality row for %s: %w", m, err)
		}
	}
	return nil
}

func writePerformanceSheet(f *excelize.File, performance []domain.RegionalPerformance) error {
	const sheet = "Regional Performance"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create performance sheet: %w", err)
	}
	headers := []any{"Market", "Avg Price", "Volatility", "Avg Conflict", "Shocks", "Score"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write performance header: %w", err)
	}
	for i, p := range performance {
		row := []any{p.Market, p.AvgPrice, p.Volatility, p.AvgConflict, p.ShockCount, p.Score}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write performance row for %s: %w", p.Market, err)
		}
	}
	return nil
}
