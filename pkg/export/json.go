package export

import (
	"path/filepath"

	somaserrors "github.com/somasolver/somas/pkg/errors"
	"github.com/somasolver/somas/pkg/writer"
	"github.com/somasolver/somas/solver"
)

// SummaryRecord is the JSON-serializable form of a solver.Summary, written
// as a sidecar next to the solved CSV so CI and dashboards can consume the
// portfolio outcome without parsing the offset table.
type SummaryRecord struct {
	Status        string            `json:"status"`
	BestIndex     int               `json:"best_index"`
	BestBytes     int64             `json:"best_bytes"`
	WorstBytes    int64             `json:"worst_bytes"`
	LifelongBytes int64             `json:"lifelong_bytes"`
	Algorithm     string            `json:"algorithm"`
	Sort          string            `json:"sort"`
	Fit           string            `json:"fit"`
	ElapsedMicros int64             `json:"elapsed_micros"`
	SpreadPercent float64           `json:"spread_percent"`
	TensorCount   int               `json:"tensor_count"`
	Verified      bool              `json:"verified"`
	PhaseMicros   map[string]int64  `json:"phase_micros,omitempty"`
}

// SummaryRecordFromSolve converts a solver.Summary into its JSON record.
func SummaryRecordFromSolve(s *solver.Summary) SummaryRecord {
	return SummaryRecord{
		Status:        s.Status.String(),
		BestIndex:     s.BestIndex,
		BestBytes:     s.BestBytes,
		WorstBytes:    s.WorstBytes,
		LifelongBytes: s.LifelongBytes,
		Algorithm:     s.Algorithm.String(),
		Sort:          s.Sort.String(),
		Fit:           s.Fit.String(),
		ElapsedMicros: s.ElapsedMicros,
		SpreadPercent: s.SpreadPercent,
		TensorCount:   s.TensorCount,
		Verified:      s.Verified,
		PhaseMicros:   s.PhaseMicros,
	}
}

// WriteSummaryJSON writes rec as JSON alongside dest's CSV path (same
// directory and stem). A Destination with no resolved path is a no-op,
// matching Write's CSV behavior. When gzipSidecar is true (the CSV itself
// was written gzip-compressed) the sidecar is gzipped too, as
// "<trace>-out.json.gz"; otherwise it is pretty-printed at
// "<trace>-out.json".
func WriteSummaryJSON(dest Destination, rec SummaryRecord, gzipSidecar bool) (*WriteResult, error) {
	csvPath := dest.Path()
	if csvPath == "" {
		return &WriteResult{Skipped: true}, nil
	}
	stem := csvPath[:len(csvPath)-len(filepath.Ext(csvPath))]

	if gzipSidecar {
		path := stem + ".json.gz"
		w := writer.NewGzipWriter[SummaryRecord]()
		if err := w.WriteToFile(rec, path); err != nil {
			return nil, somaserrors.Wrap(somaserrors.CodeOutputIOFailure,
				"failed to write gzipped summary json", err)
		}
		return &WriteResult{Path: path, Compressed: true}, nil
	}

	path := stem + ".json"
	w := writer.NewPrettyJSONWriter[SummaryRecord]()
	if err := w.WriteToFile(rec, path); err != nil {
		return nil, somaserrors.Wrap(somaserrors.CodeOutputIOFailure,
			"failed to write summary json", err)
	}
	return &WriteResult{Path: path}, nil
}
