package exporter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpipe/pkg/contracts/domain"
)

func testClusters() []domain.Cluster {
	return []domain.Cluster{
		{
			ID:         1,
			MainMarket: "aden",
			Markets:    []string{"aden", "lahj"},
			Flows:      []domain.Flow{{Source: "aden", Target: "lahj", FlowWeight: 10}},
			Metrics: domain.ClusterMetrics{
				Efficiency:   0.88,
				Connectivity: 1,
				MarketCount:  2,
			},
		},
	}
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	require.NoError(t, w.WriteJSON(MarketClustersFile, testClusters()))

	data, err := os.ReadFile(filepath.Join(dir, MarketClustersFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n"), "artifacts are pretty-printed")

	var round []domain.Cluster
	require.NoError(t, json.Unmarshal(data, &round))
	require.Len(t, round, 1)
	assert.Equal(t, "aden", round[0].MainMarket)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteJSONCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w := NewWriter(dir, nil)
	require.NoError(t, w.WriteJSON(SpatialWeightsFile, map[string]any{}))
	_, err := os.Stat(filepath.Join(dir, SpatialWeightsFile))
	assert.NoError(t, err)
}

func TestWriteClusterSummaryCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	require.NoError(t, w.WriteClusterSummaryCSV(testClusters()))

	file, err := os.Open(filepath.Join(dir, ClusterSummaryCSVFile))
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Cluster_ID", records[0][0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "aden", records[1][1])
	assert.Equal(t, "aden;lahj", records[1][2])
	assert.Equal(t, "0.8800", records[1][4])
}

func TestWriteExcelReport(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	network := domain.NetworkMetrics{
		Centrality: map[string]domain.Centrality{
			"aden": {Degree: 1, Strength: 10, Betweenness: 0},
			"lahj": {Degree: 1, Strength: 10, Betweenness: 0},
		},
	}
	performance := []domain.RegionalPerformance{
		{Market: "aden", AvgPrice: 100, Score: 0.9},
	}

	require.NoError(t, w.WriteExcelReport(testClusters(), network, performance))

	info, err := os.Stat(filepath.Join(dir, ExcelReportFile))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
