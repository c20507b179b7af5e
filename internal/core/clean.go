package core

// Clean runs the cleaning pipeline on a parsed table:
//
//  1. drop excluded funding types
//  2. compute the representative exchange rate over the remaining rows
//  3. backfill missing original amounts on USD rows
//  4. derive domains, format amounts, reshape to the output columns
//
// The input table is not modified.
func Clean(t *Table) Cleaned {
	if t == nil {
		return Cleaned{Rows: []OutputRow{}, Stats: Stats{ExchangeRate: DefaultExchangeRate}}
	}

	kept, removed := FilterRows(t.Rows)
	rate, samples := RepresentativeRate(kept)
	filled := BackfillAmounts(kept, rate)
	rows := Reshape(kept)

	return Cleaned{
		Rows: rows,
		Stats: Stats{
			InitialRows:    len(t.Rows),
			FilteredRows:   removed,
			FinalRows:      len(rows),
			ExchangeRate:   rate,
			RateSamples:    samples,
			BackfilledRows: filled,
		},
	}
}
