package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func round(currency string, raised, usd NullFloat) FundingRound {
	return FundingRound{
		MoneyRaisedCurrency: ToNullString(currency),
		MoneyRaised:         raised,
		MoneyRaisedUSD:      usd,
	}
}

func TestImpliedRates(t *testing.T) {
	rows := []FundingRound{
		round("EUR", Float(1000), Float(1100)),
		round("GBP", Float(2000), Float(2500)),
		round("USD", Float(500), Float(500)),  // USD rows never contribute
		round("EUR", NullFloat{}, Float(900)), // missing original
		round("EUR", Float(800), NullFloat{}), // missing USD
		round("EUR", Float(0), Float(10)),     // zero original
		round("", Float(100), Float(120)),     // absent currency counts as non-USD
	}

	assert.Equal(t, []float64{1.1, 1.25, 1.2}, ImpliedRates(rows))
}

func TestRepresentativeRate(t *testing.T) {
	tests := []struct {
		name        string
		rows        []FundingRound
		wantRate    float64
		wantSamples int
	}{
		{
			name:        "no rows",
			rows:        nil,
			wantRate:    DefaultExchangeRate,
			wantSamples: 0,
		},
		{
			name: "only usd rows",
			rows: []FundingRound{
				round("USD", NullFloat{}, Float(1000)),
			},
			wantRate:    DefaultExchangeRate,
			wantSamples: 0,
		},
		{
			name: "odd count takes middle",
			rows: []FundingRound{
				round("EUR", Float(100), Float(130)),
				round("EUR", Float(100), Float(110)),
				round("EUR", Float(100), Float(120)),
			},
			wantRate:    1.2,
			wantSamples: 3,
		},
		{
			name: "even count averages middle pair",
			rows: []FundingRound{
				round("EUR", Float(100), Float(110)),
				round("EUR", Float(100), Float(120)),
			},
			wantRate:    1.15,
			wantSamples: 2,
		},
		{
			name: "only zero originals leave the rate undefined",
			rows: []FundingRound{
				round("EUR", Float(0), Float(100)),
				round("USD", NullFloat{}, Float(500)),
			},
			wantRate:    math.NaN(),
			wantSamples: 0,
		},
		{
			name: "zero originals are skipped beside usable rows",
			rows: []FundingRound{
				round("EUR", Float(0), Float(100)),
				round("EUR", Float(100), Float(110)),
			},
			wantRate:    1.1,
			wantSamples: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, samples := RepresentativeRate(tt.rows)
			if math.IsNaN(tt.wantRate) {
				assert.True(t, math.IsNaN(rate), "rate = %v", rate)
			} else {
				assert.InDelta(t, tt.wantRate, rate, 1e-9)
			}
			assert.Equal(t, tt.wantSamples, samples)
		})
	}
}

func TestRateDefined(t *testing.T) {
	assert.True(t, RateDefined(1.1))
	assert.True(t, RateDefined(DefaultExchangeRate))
	assert.False(t, RateDefined(0))
	assert.False(t, RateDefined(math.NaN()))
	assert.False(t, RateDefined(math.Inf(-1)))
}

func TestBackfillAmounts(t *testing.T) {
	rows := []FundingRound{
		round("USD", NullFloat{}, Float(2_000_000)), // filled
		round("USD", Float(5), Float(2_000_000)),    // has original, untouched
		round("EUR", NullFloat{}, Float(2_000_000)), // not USD, untouched
		round("USD", NullFloat{}, NullFloat{}),      // nothing to fill from
		round("", NullFloat{}, Float(2_000_000)),    // absent currency, untouched
	}

	filled := BackfillAmounts(rows, 1.1)

	assert.Equal(t, 1, filled)
	assert.True(t, rows[0].MoneyRaised.Valid)
	assert.InDelta(t, 1_818_181.818, rows[0].MoneyRaised.Float64, 0.001)
	assert.Equal(t, Float(5), rows[1].MoneyRaised)
	assert.False(t, rows[2].MoneyRaised.Valid)
	assert.False(t, rows[3].MoneyRaised.Valid)
	assert.False(t, rows[4].MoneyRaised.Valid)
}

func TestBackfillAmounts_UnusableRate(t *testing.T) {
	for _, rate := range []float64{0, math.NaN(), math.Inf(1)} {
		rows := []FundingRound{round("USD", NullFloat{}, Float(100))}
		assert.Zero(t, BackfillAmounts(rows, rate))
		assert.False(t, rows[0].MoneyRaised.Valid)
	}
}
