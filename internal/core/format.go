package core

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AmountPrefix precedes every formatted amount.
const AmountPrefix = "€M "

// AmountFormatter renders amounts with English thousands separators and no
// decimals, e.g. "€M 1,818,182".
type AmountFormatter struct {
	printer *message.Printer
}

// NewAmountFormatter creates a formatter.
func NewAmountFormatter() *AmountFormatter {
	return &AmountFormatter{printer: message.NewPrinter(language.English)}
}

// Format formats v. Absent amounts stay absent. Values that round to zero
// print as "€M 0", without a minus sign.
func (f *AmountFormatter) Format(v NullFloat) NullString {
	if !v.Valid {
		return NullString{}
	}
	x := v.Float64
	if math.Abs(x) <= 0.5 {
		x = 0
	}
	return Text(AmountPrefix + f.printer.Sprintf("%.0f", x))
}

// FormatAmount formats a single amount. Use an AmountFormatter for batches.
func FormatAmount(v NullFloat) NullString {
	return NewAmountFormatter().Format(v)
}

// Reshape maps filtered, backfilled rounds onto the output column set.
// Website 2 and the announcement date are left empty for manual completion.
func Reshape(rows []FundingRound) []OutputRow {
	f := NewAmountFormatter()
	out := make([]OutputRow, len(rows))
	for i, r := range rows {
		out[i] = OutputRow{
			CompanyName:      r.OrganizationName,
			Website2:         Text(""),
			Website:          ExtractDomain(r.OrganizationWebsite),
			Description:      r.OrganizationDescription,
			Sector:           r.OrganizationIndustries,
			AnnouncementDate: Text(""),
			Amount:           f.Format(r.MoneyRaised),
			Investors:        r.InvestorNames,
		}
	}
	return out
}
