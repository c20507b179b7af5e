// Package export writes cleaned tables as CSV or XLSX.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/crunchclean/internal/core"
)

// Format is a download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// BaseName is the file name (without extension) offered for downloads.
const BaseName = "crunchbase_cleaned"

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w %q", core.ErrUnsupportedFormat, s)
	}
}

// FileName returns the download file name for the format.
func (f Format) FileName() string {
	return BaseName + "." + string(f)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write encodes rows in the format.
func (f Format) Write(w io.Writer, rows []core.OutputRow) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	default:
		return fmt.Errorf("%w %q", core.ErrUnsupportedFormat, string(f))
	}
}
