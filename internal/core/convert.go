package core

// convert.go turns raw CSV cells into typed values.
//
// Crunchbase exports are usually clean, but files often pass through Excel
// before they reach us, which brings:
//   - Currency symbols and thousands separators in numbers
//   - Accounting negatives "(123.45)"
//   - Excel formula prefixes (="value") around header names
//   - Stray whitespace around values

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// currencyReplacer strips symbols and separators that may decorate amounts.
var currencyReplacer = strings.NewReplacer(
	"$", "",
	"\u20ac", "", // Euro
	"\u00a3", "", // Pound
	",", "",
	"\u00a0", "", // No-break space (Excel grouping)
	"\u202f", "", // Narrow no-break space (French grouping)
	" ", "",
)

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching. When a name repeats,
// the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = i
	}
	return idx
}

// Lookup returns the position of a column.
func (h HeaderIndex) Lookup(name string) (int, bool) {
	pos, ok := h[strings.ToLower(name)]
	return pos, ok
}

// Missing returns the names in want that are not in the index, in order.
func (h HeaderIndex) Missing(want []string) []string {
	var missing []string
	for _, name := range want {
		if _, ok := h.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// ParseAmount converts a money cell to a NullFloat.
// Empty cells are absent. Currency symbols, thousands separators and
// accounting parentheses are accepted.
func ParseAmount(s string) (NullFloat, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return NullFloat{}, nil
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = currencyReplacer.Replace(s)
	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return NullFloat{}, fmt.Errorf("%w %q", ErrInvalidNumber, raw)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NullFloat{}, fmt.Errorf("%w %q: %v", ErrInvalidNumber, raw, err)
	}
	return Float(f), nil
}
