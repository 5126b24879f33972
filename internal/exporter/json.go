package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Artifact file names, one per pipeline output.
const (
	SpatialWeightsFile      = "spatial-weights.json"
	MarketClustersFile      = "market-clusters.json"
	TimeSeriesAnalysisFile  = "time-series-analysis.json"
	MarketShocksFile        = "market-shocks.json"
	RegionalPerformanceFile = "regional-performance.json"
)

// Writer persists artifacts under a single output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a writer rooted at dir (nil logger uses slog.Default).
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// WriteJSON serializes v as indented JSON to name inside the output
// directory. The file is written to a temporary sibling first and renamed
// into place so readers never observe a partial artifact.
func (w *Writer) WriteJSON(name string, v any) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	target := filepath.Join(w.dir, name)
	tmp, err := os.CreateTemp(w.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename %s into place: %w", name, err)
	}

	w.logger.Info("wrote artifact", "file", target, "bytes", len(data))
	return nil
}
