package core

// currency.go fills in missing original-currency amounts.
//
// Crunchbase reports each round both in its original currency and in USD.
// Rounds recorded in USD sometimes lack the original amount. Those gaps are
// filled with one batch-wide rate: the median of usd/original over all
// non-USD rows that carry both amounts. The batch mixes source currencies;
// the single median is a deliberate approximation.

import (
	"math"
	"slices"
)

// USD is the currency code that marks a round as dollar-denominated.
const USD = "USD"

// DefaultExchangeRate is used when no row yields a rate.
const DefaultExchangeRate = 1.0

// isUSD reports whether the round is dollar-denominated.
// An absent currency is not USD.
func (f FundingRound) isUSD() bool {
	return f.MoneyRaisedCurrency.Valid && f.MoneyRaisedCurrency.String == USD
}

// rateCandidate reports whether a row carries both amounts in a non-USD
// currency.
func (f FundingRound) rateCandidate() bool {
	return !f.isUSD() && f.MoneyRaised.Valid && f.MoneyRaisedUSD.Valid
}

// ImpliedRates returns usd/original for every non-USD row with both amounts.
// Rows with a zero original amount have no defined rate and are skipped.
func ImpliedRates(rows []FundingRound) []float64 {
	var rates []float64
	for _, r := range rows {
		if !r.rateCandidate() || r.MoneyRaised.Float64 == 0 {
			continue
		}
		rates = append(rates, r.MoneyRaisedUSD.Float64/r.MoneyRaised.Float64)
	}
	return rates
}

// RepresentativeRate returns the median implied rate of the batch and the
// number of rates it was computed from.
//
// With no non-USD row carrying both amounts the rate is DefaultExchangeRate.
// When such rows exist but none has a usable (non-zero) original amount the
// rate is undefined (NaN) and BackfillAmounts leaves USD rows empty.
func RepresentativeRate(rows []FundingRound) (float64, int) {
	rates := ImpliedRates(rows)
	if len(rates) > 0 {
		return median(rates), len(rates)
	}
	for _, r := range rows {
		if r.rateCandidate() {
			return math.NaN(), 0
		}
	}
	return DefaultExchangeRate, 0
}

// RateDefined reports whether rate can be used for backfilling.
func RateDefined(rate float64) bool {
	return rate != 0 && !math.IsNaN(rate) && !math.IsInf(rate, 0)
}

// median sorts values in place.
func median(values []float64) float64 {
	slices.Sort(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}

// BackfillAmounts sets MoneyRaised = MoneyRaisedUSD / rate on USD rows that
// have a USD amount but no original amount. Rows with an original amount
// are left untouched. Returns the number of rows filled.
//
// A zero or non-finite rate would produce infinities, so nothing is filled.
func BackfillAmounts(rows []FundingRound, rate float64) int {
	if !RateDefined(rate) {
		return 0
	}

	filled := 0
	for i := range rows {
		r := &rows[i]
		if !r.isUSD() || r.MoneyRaised.Valid || !r.MoneyRaisedUSD.Valid {
			continue
		}
		r.MoneyRaised = Float(r.MoneyRaisedUSD.Float64 / rate)
		filled++
	}
	return filled
}
