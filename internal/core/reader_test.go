package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const testHeader = "Organization Name,Organization Website,Organization Description,Organization Industries," +
	"Funding Type,Money Raised,Money Raised Currency,Money Raised (in USD),Investor Names"

func TestReadTable(t *testing.T) {
	input := testHeader + "\n" +
		`Acme,https://www.acme.io, Rockets ,"Aerospace, Robotics",Seed,"1,000",EUR,1100,"Fund A, Fund B"` + "\n" +
		`Beta,,,,Series A ,,USD,2000000,` + "\n"

	table, err := ReadTable(strings.NewReader(input), ReadOptions{})
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Len(t, table.Header, 9)

	acme := table.Rows[0]
	assert.Equal(t, 2, acme.Line)
	assert.Equal(t, Text("Acme"), acme.OrganizationName)
	assert.Equal(t, Text(" Rockets "), acme.OrganizationDescription, "free text kept as written")
	assert.Equal(t, Text("Aerospace, Robotics"), acme.OrganizationIndustries)
	assert.Equal(t, Float(1000), acme.MoneyRaised)
	assert.Equal(t, Float(1100), acme.MoneyRaisedUSD)

	beta := table.Rows[1]
	assert.Equal(t, 3, beta.Line)
	assert.Equal(t, Text("Series A"), beta.FundingType, "codes are trimmed")
	assert.False(t, beta.OrganizationWebsite.Valid)
	assert.False(t, beta.MoneyRaised.Valid)
	assert.False(t, beta.InvestorNames.Valid)

	assert.Len(t, table.Preview, 2)
}

func TestReadTable_ColumnOrderAndCase(t *testing.T) {
	input := "investor names,MONEY RAISED (IN USD),Money Raised Currency,Money Raised,Funding Type," +
		"Organization Industries,Organization Description,Organization Website,Organization Name,Extra\n" +
		"Fund,10,USD,,Seed,Software,Desc,https://x.io,X,ignored\n"

	table, err := ReadTable(strings.NewReader(input), ReadOptions{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, Text("X"), table.Rows[0].OrganizationName)
	assert.Equal(t, Float(10), table.Rows[0].MoneyRaisedUSD)
}

func TestReadTable_MissingColumns(t *testing.T) {
	input := "Organization Name,Organization Website,Organization Description,Organization Industries," +
		"Money Raised,Money Raised (in USD),Investor Names\n"

	_, err := ReadTable(strings.NewReader(input), ReadOptions{})
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), `"Funding Type", "Money Raised Currency"`)
}

func TestReadTable_InvalidNumber(t *testing.T) {
	input := testHeader + "\n" +
		"Acme,,,,Seed,10,EUR,11,\n" +
		"Beta,,,,Seed,lots,EUR,11,\n"

	_, err := ReadTable(strings.NewReader(input), ReadOptions{})
	require.ErrorIs(t, err, ErrInvalidNumber)
	assert.Contains(t, err.Error(), `column "Money Raised" on line 3`)
}

func TestReadTable_Empty(t *testing.T) {
	_, err := ReadTable(strings.NewReader(""), ReadOptions{})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestReadTable_HeaderOnly(t *testing.T) {
	table, err := ReadTable(strings.NewReader(testHeader+"\n"), ReadOptions{})
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestReadTable_ShortRecord(t *testing.T) {
	table, err := ReadTable(strings.NewReader(testHeader+"\nAcme,https://acme.io\n"), ReadOptions{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, Text("https://acme.io"), table.Rows[0].OrganizationWebsite)
	assert.False(t, table.Rows[0].InvestorNames.Valid)
}

func TestReadTable_BOM(t *testing.T) {
	input := "\ufeff" + testHeader + "\nAcme,,,,Seed,,,,\n"

	table, err := ReadTable(strings.NewReader(input), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Organization Name", table.Header[0])
}

func TestReadTable_Windows1252(t *testing.T) {
	utf8 := testHeader + "\nSociété Générale,,,,Seed,,,,\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(utf8)
	require.NoError(t, err)

	table, err := ReadTable(strings.NewReader(encoded), ReadOptions{Encoding: EncodingWindows1252})
	require.NoError(t, err)
	assert.Equal(t, Text("Société Générale"), table.Rows[0].OrganizationName)
}

func TestReadTable_Delimiters(t *testing.T) {
	for _, tt := range []struct {
		name  string
		delim string
		sep   string
	}{
		{"explicit semicolon", ";", ";"},
		{"explicit tab", "tab", "\t"},
		{"sniffed semicolon", DelimiterAuto, ";"},
		{"sniffed pipe", DelimiterAuto, "|"},
		{"sniffed comma", DelimiterAuto, ","},
	} {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.ReplaceAll(testHeader, ",", tt.sep) + "\n" +
				strings.Join([]string{"Acme", "", "", "", "Seed", "1,5", "EUR", "2", ""}, tt.sep) + "\n"
			if tt.sep == "," {
				input = testHeader + "\nAcme,,,,Seed,\"1,5\",EUR,2,\n"
			}

			table, err := ReadTable(strings.NewReader(input), ReadOptions{Delimiter: tt.delim})
			require.NoError(t, err)
			require.Len(t, table.Rows, 1)
			assert.Equal(t, Text("Acme"), table.Rows[0].OrganizationName)
			assert.Equal(t, Float(15), table.Rows[0].MoneyRaised)
		})
	}
}

func TestReadTable_PreviewLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString(testHeader + "\n")
	for i := 0; i < 25; i++ {
		b.WriteString("Acme,,,,Seed,,,,\n")
	}

	table, err := ReadTable(strings.NewReader(b.String()), ReadOptions{})
	require.NoError(t, err)
	assert.Len(t, table.Rows, 25)
	assert.Len(t, table.Preview, DefaultPreviewRows)

	table, err = ReadTable(strings.NewReader(b.String()), ReadOptions{PreviewRows: -1})
	require.NoError(t, err)
	assert.Empty(t, table.Preview)
}

func TestReadTable_BadOptions(t *testing.T) {
	_, err := ReadTable(strings.NewReader(testHeader), ReadOptions{Delimiter: "#"})
	assert.ErrorIs(t, err, ErrUnsupportedDelimiter)

	_, err = ReadTable(strings.NewReader(testHeader), ReadOptions{Encoding: "ebcdic"})
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestParseDelimiter(t *testing.T) {
	for in, want := range map[string]rune{"": ',', ",": ',', "semicolon": ';', "TAB": '\t', "|": '|', "auto": 0} {
		got, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
