package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somasolver/somas/solver"
)

func TestWriteSummaryJSON_SkipsWhenDestinationUnset(t *testing.T) {
	result, err := WriteSummaryJSON(Destination{}, SummaryRecord{}, false)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
}

func TestWriteSummaryJSON_WritesSidecarNextToCSV(t *testing.T) {
	dir := t.TempDir()
	dest := Destination{CSVDir: dir, TraceName: "mytrace"}

	// mirror Write's directory creation so the sidecar has somewhere to land
	require.NoError(t, os.MkdirAll(filepath.Dir(dest.Path()), 0o755))

	rec := SummaryRecord{
		Status:    "SUCCESS",
		BestBytes: 1024,
		Algorithm: "ManyObjects",
	}
	result, err := WriteSummaryJSON(dest, rec, false)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, filepath.Join(dir, outputSubdir, "mytrace-out.json"), result.Path)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	var decoded SummaryRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rec, decoded)
}

func TestWriteSummaryJSON_GzipSidecar(t *testing.T) {
	dir := t.TempDir()
	dest := Destination{CSVDir: dir, TraceName: "mytrace"}
	require.NoError(t, os.MkdirAll(filepath.Dir(dest.Path()), 0o755))

	rec := SummaryRecord{Status: "SUCCESS", BestBytes: 2048}
	result, err := WriteSummaryJSON(dest, rec, true)
	require.NoError(t, err)
	assert.True(t, result.Compressed)
	assert.Equal(t, filepath.Join(dir, outputSubdir, "mytrace-out.json.gz"), result.Path)
}

func TestSummaryRecordFromSolve_CopiesFields(t *testing.T) {
	summary := &solver.Summary{
		Status:        solver.StatusSuccess,
		BestIndex:     3,
		BestBytes:     512,
		WorstBytes:    640,
		LifelongBytes: 128,
		Algorithm:     solver.AlgoManyObjects,
		Sort:          solver.SortGreaterSize,
		Fit:           solver.FitBestFit,
		ElapsedMicros: 42,
		SpreadPercent: 25.0,
		TensorCount:   2,
		Verified:      true,
		PhaseMicros:   map[string]int64{"portfolio_fanout": 900},
	}
	rec := SummaryRecordFromSolve(summary)
	assert.Equal(t, "SUCCESS", rec.Status)
	assert.Equal(t, int64(512), rec.BestBytes)
	assert.Equal(t, "ManyObjects", rec.Algorithm)
	assert.Equal(t, "GreaterSize", rec.Sort)
	assert.Equal(t, "BestFit", rec.Fit)
	assert.True(t, rec.Verified)
	assert.Equal(t, int64(900), rec.PhaseMicros["portfolio_fanout"])
}
