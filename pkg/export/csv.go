// Package export writes the solved tensor table back out as CSV and,
// optionally, ships the file to object storage.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/somasolver/somas/internal/storage"
	"github.com/somasolver/somas/pkg/compression"
	somaserrors "github.com/somasolver/somas/pkg/errors"
	"github.com/somasolver/somas/solver"
)

var csvHeader = []string{"id", "lower", "upper", "size", "offset"}

// Row pairs a solved tensor with the lifetime bounds it was ingested with,
// since TensorDesc itself does not retain lower/upper once placed.
type Row struct {
	ID     int
	Lower  int64
	Upper  int64
	Size   int64
	Offset int64
}

// Encode renders rows as CSV bytes, sorted by id for a stable diff.
func Encode(rows []Row) ([]byte, error) {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, somaserrors.Wrap(somaserrors.CodeOutputIOFailure, "failed to write csv header", err)
	}
	for _, r := range sorted {
		record := []string{
			strconv.Itoa(r.ID),
			strconv.FormatInt(r.Lower, 10),
			strconv.FormatInt(r.Upper, 10),
			strconv.FormatInt(r.Size, 10),
			strconv.FormatInt(r.Offset, 10),
		}
		if err := w.Write(record); err != nil {
			return nil, somaserrors.Wrap(somaserrors.CodeOutputIOFailure, "failed to write csv row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, somaserrors.Wrap(somaserrors.CodeOutputIOFailure, "csv flush failed", err)
	}
	return buf.Bytes(), nil
}

// RowsFromTensors merges the solved offsets back into the lower/upper bounds
// ingest originally parsed.
func RowsFromTensors(tensors solver.TensorMap, lowers, uppers map[int]int64) []Row {
	rows := make([]Row, 0, len(tensors))
	for id, t := range tensors {
		rows = append(rows, Row{
			ID:     id,
			Lower:  lowers[id],
			Upper:  uppers[id],
			Size:   t.Size,
			Offset: t.Offset,
		})
	}
	return rows
}

// Destination resolves where the solved CSV should be written, mirroring
// the env-driven layout of the original tool:
// $CSV_DIR/mindspore-csv-out/$TRACE_NAME-out.csv.
// Either variable being unset means "do not write a file"; that is a no-op,
// not an error.
type Destination struct {
	CSVDir    string
	TraceName string
}

// outputSubdir mirrors the original tool's fixed output directory name.
const outputSubdir = "mindspore-csv-out"

// Path returns the destination file path, or "" if either component is empty.
func (d Destination) Path() string {
	if d.CSVDir == "" || d.TraceName == "" {
		return ""
	}
	return filepath.Join(d.CSVDir, outputSubdir, d.TraceName+"-out.csv")
}

// WriteResult reports what Write actually did, so callers can log it.
type WriteResult struct {
	Path       string
	Bytes      int
	Compressed bool
	Uploaded   bool
	Skipped    bool
}

// Options configures Write's optional compression and upload behavior.
type Options struct {
	Compressor compression.Compressor // nil disables compression
	Storage    storage.Storage        // nil disables upload
	UploadKey  string
}

// Write encodes rows to CSV and, if Destination resolves to a path, writes
// the file locally (optionally compressed) and uploads it (optionally) via
// Options.Storage. A Destination with no CSV_DIR or TRACE_NAME is a no-op:
// it logs nothing on its own, callers decide whether to warn.
func Write(ctx context.Context, dest Destination, rows []Row, opts Options) (*WriteResult, error) {
	path := dest.Path()
	if path == "" {
		return &WriteResult{Skipped: true}, nil
	}

	data, err := Encode(rows)
	if err != nil {
		return nil, err
	}

	if opts.Compressor != nil {
		data, err = opts.Compressor.Compress(data)
		if err != nil {
			return nil, somaserrors.Wrap(somaserrors.CodeOutputIOFailure, "failed to compress csv output", err)
		}
		path += compression.Extension(opts.Compressor.Type())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, somaserrors.Wrap(somaserrors.CodeOutputIOFailure, "failed to create output directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, somaserrors.Wrap(somaserrors.CodeOutputIOFailure, fmt.Sprintf("failed to write %s", path), err)
	}

	result := &WriteResult{Path: path, Bytes: len(data), Compressed: opts.Compressor != nil}

	if opts.Storage != nil {
		key := opts.UploadKey
		if key == "" {
			ext := ""
			if opts.Compressor != nil {
				ext = compression.Extension(opts.Compressor.Type())
			}
			key = storage.ArtifactKey(dest.TraceName, ext)
		}
		if err := storage.UploadFileWithRetry(ctx, opts.Storage, key, path); err != nil {
			return result, somaserrors.Wrap(somaserrors.CodeUploadError, fmt.Sprintf("failed to upload %s", key), err)
		}
		result.Uploaded = true
	}

	return result, nil
}
