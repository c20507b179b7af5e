package core

// reader.go parses an uploaded export into a Table.
//
// The byte stream is decoded before the CSV reader sees it:
//   - utf-8: a leading BOM (common in Excel "CSV UTF-8" saves) is dropped and
//     invalid sequences become U+FFFD instead of failing the upload
//   - windows-1252: legacy Excel "CSV" saves on Windows
//
// The delimiter is fixed by the caller or sniffed from the header line.

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultPreviewRows is how many raw records a Table keeps for display.
const DefaultPreviewRows = 10

// sniffBytes bounds how much input is inspected to guess the delimiter.
const sniffBytes = 64 * 1024

// Encoding names accepted by ReadOptions.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

// DelimiterAuto asks ReadTable to guess the delimiter from the header line.
const DelimiterAuto = "auto"

// sniffCandidates are the delimiters DelimiterAuto chooses from, in order of
// preference on ties.
var sniffCandidates = []rune{',', ';', '\t', '|'}

// ReadOptions controls how an input file is decoded.
type ReadOptions struct {
	Delimiter   string // ",", ";", "tab", "|", "auto"; empty means ","
	Encoding    string // "utf-8" (default) or "windows-1252"
	PreviewRows int    // Raw records kept for display; 0 means DefaultPreviewRows, <0 none
}

// ParseDelimiter resolves a delimiter option. It returns 0 for DelimiterAuto.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", "tab", `\t`:
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	case DelimiterAuto:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnsupportedDelimiter, s)
	}
}

// decoder returns a reader that yields UTF-8 text for the named encoding.
func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingUTF8, "utf8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case EncodingWindows1252, "cp1252", "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedEncoding, encoding)
	}
}

// sniffDelimiter picks the candidate that occurs most often on the first
// line, ignoring quoted sections. Defaults to ',' when none occurs.
func sniffDelimiter(head []byte) rune {
	line := string(head)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	counts := make(map[rune]int, len(sniffCandidates))
	inQuotes := false
	for _, c := range line {
		if c == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[c]++
		}
	}

	best, bestCount := ',', 0
	for _, c := range sniffCandidates {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

// ReadTable parses a Crunchbase export.
//
// The first record is the header. Every column in RequiredColumns must be
// present (case-insensitive); otherwise the whole file is rejected with
// ErrMissingColumn naming all missing columns. Amount cells that are not
// numbers fail with ErrInvalidNumber naming the column and line.
func ReadTable(r io.Reader, opts ReadOptions) (*Table, error) {
	delim, err := ParseDelimiter(opts.Delimiter)
	if err != nil {
		return nil, err
	}

	dec, err := decoder(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReaderSize(dec, sniffBytes)
	if delim == 0 {
		head, err := br.Peek(sniffBytes)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, fmt.Errorf("read input: %w", err)
		}
		delim = sniffDelimiter(head)
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	idx := MakeHeaderIndex(header)
	if missing := idx.Missing(RequiredColumns); len(missing) > 0 {
		quoted := make([]string, len(missing))
		for i, m := range missing {
			quoted[i] = fmt.Sprintf("%q", m)
		}
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(quoted, ", "))
	}

	previewLimit := opts.PreviewRows
	if previewLimit == 0 {
		previewLimit = DefaultPreviewRows
	}

	t := &Table{Header: header}
	p := newRowParser(idx)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}

		line, _ := cr.FieldPos(0)
		row, err := p.parse(record, line)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)

		if len(t.Preview) < previewLimit {
			t.Preview = append(t.Preview, record)
		}
	}

	return t, nil
}

// rowParser extracts the referenced columns from a record.
type rowParser struct {
	pos map[string]int
}

func newRowParser(idx HeaderIndex) *rowParser {
	pos := make(map[string]int, len(RequiredColumns))
	for _, name := range RequiredColumns {
		pos[name], _ = idx.Lookup(name)
	}
	return &rowParser{pos: pos}
}

// raw returns the cell for a column; short records yield "".
func (p *rowParser) raw(record []string, col string) string {
	i := p.pos[col]
	if i >= len(record) {
		return ""
	}
	return record[i]
}

// text keeps free text as written; only an empty cell is absent.
func (p *rowParser) text(record []string, col string) NullString {
	return ToNullString(p.raw(record, col))
}

// code is a trimmed categorical value.
func (p *rowParser) code(record []string, col string) NullString {
	return ToNullString(strings.TrimSpace(p.raw(record, col)))
}

func (p *rowParser) amount(record []string, col string, line int) (NullFloat, error) {
	v, err := ParseAmount(p.raw(record, col))
	if err != nil {
		return NullFloat{}, fmt.Errorf("%w in column %q on line %d", err, col, line)
	}
	return v, nil
}

func (p *rowParser) parse(record []string, line int) (FundingRound, error) {
	raised, err := p.amount(record, ColMoneyRaised, line)
	if err != nil {
		return FundingRound{}, err
	}
	raisedUSD, err := p.amount(record, ColMoneyRaisedUSD, line)
	if err != nil {
		return FundingRound{}, err
	}

	return FundingRound{
		Line:                    line,
		OrganizationName:        p.text(record, ColOrgName),
		OrganizationWebsite:     p.code(record, ColOrgWebsite),
		OrganizationDescription: p.text(record, ColOrgDescription),
		OrganizationIndustries:  p.text(record, ColOrgIndustries),
		FundingType:             p.code(record, ColFundingType),
		MoneyRaised:             raised,
		MoneyRaisedCurrency:     p.code(record, ColCurrency),
		MoneyRaisedUSD:          raisedUSD,
		InvestorNames:           p.text(record, ColInvestorNames),
	}, nil
}
