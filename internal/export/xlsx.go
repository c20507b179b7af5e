package export

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/crunchclean/internal/core"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the cleaned table.
const SheetName = "Cleaned"

// columnWidths are in Excel character units, in core.OutputColumns order.
var columnWidths = []float64{28, 14, 24, 60, 36, 18, 16, 48}

// WriteXLSX writes the output as a single-sheet workbook with a bold header.
// Absent values are left as blank cells.
func WriteXLSX(w io.Writer, rows []core.OutputRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	// Widths must be set before the first row is written.
	for i, width := range columnWidths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	header := make([]interface{}, len(core.OutputColumns))
	for i, name := range core.OutputColumns {
		header[i] = excelize.Cell{StyleID: bold, Value: name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, xlsxValues(row)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func xlsxValues(row core.OutputRow) []interface{} {
	cells := []core.NullString{
		row.CompanyName,
		row.Website2,
		row.Website,
		row.Description,
		row.Sector,
		row.AnnouncementDate,
		row.Amount,
		row.Investors,
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		if c.Valid && c.String != "" {
			values[i] = c.String
		}
	}
	return values
}
