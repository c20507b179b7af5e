package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/crunchclean/internal/core"
)

// WriteCSV writes the output header and rows as UTF-8 CSV. Absent values
// become empty cells.
func WriteCSV(w io.Writer, rows []core.OutputRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(core.OutputColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a file produced by WriteCSV back into rows. The header must
// match core.OutputColumns exactly.
func ReadCSV(r io.Reader) ([]core.OutputRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(core.OutputColumns)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, core.ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidCSV, err)
	}
	for i, name := range core.OutputColumns {
		if header[i] != name {
			return nil, fmt.Errorf("%w: header column %d is %q, want %q", core.ErrInvalidCSV, i+1, header[i], name)
		}
	}

	rows := []core.OutputRow{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrInvalidCSV, err)
		}
		rows = append(rows, core.OutputRowFromValues(record))
	}
	return rows, nil
}
