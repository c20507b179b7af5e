package core

// ExcludedFundingTypes are round categories dropped from every export.
var ExcludedFundingTypes = []string{
	"Corporate Round",
	"Grant",
	"Post-IPO Debt",
	"Equity Crowdfunding",
	"Debt Financing",
	"Convertible Note",
	"Series C",
}

var excludedFundingTypes = func() map[string]struct{} {
	m := make(map[string]struct{}, len(ExcludedFundingTypes))
	for _, t := range ExcludedFundingTypes {
		m[t] = struct{}{}
	}
	return m
}()

// IsExcludedFundingType reports whether rounds of this type are dropped.
// Matching is exact; an absent type is never excluded.
func IsExcludedFundingType(t NullString) bool {
	if !t.Valid {
		return false
	}
	_, ok := excludedFundingTypes[t.String]
	return ok
}

// FilterRows returns a new slice without excluded rounds, in the original
// order, and how many rows were removed.
func FilterRows(rows []FundingRound) ([]FundingRound, int) {
	kept := make([]FundingRound, 0, len(rows))
	for _, r := range rows {
		if IsExcludedFundingType(r.FundingType) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, len(rows) - len(kept)
}
