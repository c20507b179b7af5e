package core

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// Input column names of a Crunchbase funding-rounds export.
const (
	ColOrgName        = "Organization Name"
	ColOrgWebsite     = "Organization Website"
	ColOrgDescription = "Organization Description"
	ColOrgIndustries  = "Organization Industries"
	ColFundingType    = "Funding Type"
	ColMoneyRaised    = "Money Raised"
	ColCurrency       = "Money Raised Currency"
	ColMoneyRaisedUSD = "Money Raised (in USD)"
	ColInvestorNames  = "Investor Names"
)

// RequiredColumns lists every input column the cleaner reads.
// A file missing any of them is rejected as a whole.
var RequiredColumns = []string{
	ColOrgName,
	ColOrgWebsite,
	ColOrgDescription,
	ColOrgIndustries,
	ColFundingType,
	ColMoneyRaised,
	ColCurrency,
	ColMoneyRaisedUSD,
	ColInvestorNames,
}

// Output column names, in export order.
const (
	OutCompanyName  = "Company Name"
	OutWebsite2     = "Website 2"
	OutWebsite      = "Website"
	OutDescription  = "Description"
	OutSector       = "Secteur"
	OutAnnounceDate = "Date annonce levée"
	OutAmount       = "Montant"
	OutInvestors    = "Investisseurs"
)

// OutputColumns is the fixed header of a cleaned table.
var OutputColumns = []string{
	OutCompanyName,
	OutWebsite2,
	OutWebsite,
	OutDescription,
	OutSector,
	OutAnnounceDate,
	OutAmount,
	OutInvestors,
}

// NullString is a string that may be absent. Absent values export as empty
// cells and encode as JSON null.
type NullString struct {
	String string
	Valid  bool
}

// Text returns a present NullString.
func Text(s string) NullString {
	return NullString{String: s, Valid: true}
}

// ToNullString treats the empty string as absent.
func ToNullString(s string) NullString {
	if s == "" {
		return NullString{}
	}
	return Text(s)
}

// MarshalJSON implements json.Marshaler.
func (n NullString) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.String)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = NullString{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = Text(s)
	return nil
}

// NullFloat is a float64 that may be absent.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a present NullFloat.
func Float(f float64) NullFloat {
	return NullFloat{Float64: f, Valid: true}
}

// FundingRound is one row of a Crunchbase export, reduced to the columns the
// cleaner reads.
type FundingRound struct {
	Line int // Line number in the source file (header is line 1)

	OrganizationName        NullString
	OrganizationWebsite     NullString
	OrganizationDescription NullString
	OrganizationIndustries  NullString
	FundingType             NullString
	MoneyRaised             NullFloat
	MoneyRaisedCurrency     NullString
	MoneyRaisedUSD          NullFloat
	InvestorNames           NullString
}

// Table is a parsed input file.
type Table struct {
	Header  []string       // Header row as it appears in the file
	Preview [][]string     // First data records, untouched, for display
	Rows    []FundingRound // All data rows in file order
}

// OutputRow is one row of a cleaned table. Fields follow OutputColumns.
type OutputRow struct {
	CompanyName      NullString `json:"company_name"`
	Website2         NullString `json:"website_2"`
	Website          NullString `json:"website"`
	Description      NullString `json:"description"`
	Sector           NullString `json:"sector"`
	AnnouncementDate NullString `json:"announcement_date"`
	Amount           NullString `json:"amount"`
	Investors        NullString `json:"investors"`
}

// Values returns the row as export cells in OutputColumns order.
// Absent values become empty strings.
func (r OutputRow) Values() []string {
	return []string{
		r.CompanyName.String,
		r.Website2.String,
		r.Website.String,
		r.Description.String,
		r.Sector.String,
		r.AnnouncementDate.String,
		r.Amount.String,
		r.Investors.String,
	}
}

// OutputRowFromValues is the inverse of Values for a re-read export.
// Missing trailing cells are absent; the two placeholder columns are always
// present (empty).
func OutputRowFromValues(values []string) OutputRow {
	cell := func(i int) NullString {
		if i >= len(values) {
			return NullString{}
		}
		return ToNullString(values[i])
	}
	placeholder := func(i int) NullString {
		if i >= len(values) {
			return Text("")
		}
		return Text(values[i])
	}
	return OutputRow{
		CompanyName:      cell(0),
		Website2:         placeholder(1),
		Website:          cell(2),
		Description:      cell(3),
		Sector:           cell(4),
		AnnouncementDate: placeholder(5),
		Amount:           cell(6),
		Investors:        cell(7),
	}
}

// Stats summarizes one cleaning run.
type Stats struct {
	InitialRows    int     `json:"initial_rows"`
	FilteredRows   int     `json:"filtered_rows"`
	FinalRows      int     `json:"final_rows"`
	ExchangeRate   float64 `json:"exchange_rate"`
	RateSamples    int     `json:"rate_samples"`
	BackfilledRows int     `json:"backfilled_rows"`
}

// RateDefined reports whether the batch yielded a usable exchange rate.
func (s Stats) RateDefined() bool {
	return RateDefined(s.ExchangeRate)
}

// MarshalJSON encodes an undefined exchange rate as null.
func (s Stats) MarshalJSON() ([]byte, error) {
	type plain Stats
	aux := struct {
		plain
		ExchangeRate *float64 `json:"exchange_rate"`
	}{plain: plain(s)}
	if !math.IsNaN(s.ExchangeRate) && !math.IsInf(s.ExchangeRate, 0) {
		aux.ExchangeRate = &s.ExchangeRate
	}
	return json.Marshal(aux)
}

// UnmarshalJSON decodes a null exchange rate as NaN.
func (s *Stats) UnmarshalJSON(data []byte) error {
	type plain Stats
	aux := struct {
		*plain
		ExchangeRate *float64 `json:"exchange_rate"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.ExchangeRate = math.NaN()
	if aux.ExchangeRate != nil {
		s.ExchangeRate = *aux.ExchangeRate
	}
	return nil
}

// Cleaned is the output of Clean.
type Cleaned struct {
	Rows  []OutputRow
	Stats Stats
}

// Result is a stored cleaning run: the cleaned table plus what the UI needs
// to show it again (input preview, counts).
type Result struct {
	ID           string        `json:"id"`
	FileName     string        `json:"file_name"`
	CreatedAt    time.Time     `json:"created_at"`
	Duration     time.Duration `json:"duration"`
	Stats        Stats         `json:"stats"`
	InputHeader  []string      `json:"input_header"`
	InputPreview [][]string    `json:"input_preview"`
	Rows         []OutputRow   `json:"rows"`
}
