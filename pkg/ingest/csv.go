// Package ingest reads tensor lifetime records from CSV and builds the
// TensorDesc map and conflict matrix the solver portfolio consumes.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	somaserrors "github.com/somasolver/somas/pkg/errors"
)

// Record is one row of the input CSV: id,lower,upper,size.
type Record struct {
	ID    int
	Lower int64
	Upper int64
	Size  int64
}

// ParseCSV reads the header line followed by id,lower,upper,size rows.
// lower must be strictly less than upper; size may be zero.
func ParseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, somaserrors.Wrap(somaserrors.CodeEmptyFile, "csv file has no header row", nil)
	}
	if err != nil {
		return nil, somaserrors.Wrap(somaserrors.CodeParseError, "failed to read csv header", err)
	}
	if len(header) != 4 {
		return nil, somaserrors.Wrap(somaserrors.CodeParseError, fmt.Sprintf("expected 4 columns, header has %d", len(header)), nil)
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, somaserrors.Wrap(somaserrors.CodeParseError, "failed to read csv row", err)
		}

		id, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, somaserrors.Wrap(somaserrors.CodeParseError, fmt.Sprintf("invalid id %q", row[0]), err)
		}
		lower, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return nil, somaserrors.Wrap(somaserrors.CodeParseError, fmt.Sprintf("invalid lower %q", row[1]), err)
		}
		upper, err := strconv.ParseInt(row[2], 10, 64)
		if err != nil {
			return nil, somaserrors.Wrap(somaserrors.CodeParseError, fmt.Sprintf("invalid upper %q", row[2]), err)
		}
		size, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil {
			return nil, somaserrors.Wrap(somaserrors.CodeParseError, fmt.Sprintf("invalid size %q", row[3]), err)
		}
		if lower < 0 || upper < 0 || size < 0 {
			return nil, somaserrors.Wrap(somaserrors.CodeInputInvalid, fmt.Sprintf("tensor %d has a negative field", id), nil)
		}
		if lower >= upper {
			return nil, somaserrors.Wrap(somaserrors.CodeInputInvalid, fmt.Sprintf("tensor %d has lower >= upper", id), nil)
		}

		records = append(records, Record{ID: id, Lower: lower, Upper: upper, Size: size})
	}

	return records, nil
}
