// Package core implements the Crunchbase export cleaner.
//
// It has no UI dependencies and is shared by the web server and the CLI.
//
// # Pipeline
//
// [ReadTable] parses an export into a [Table]. [Clean] then:
//
//  1. drops rounds whose funding type is in [ExcludedFundingTypes]
//  2. derives one exchange rate for the batch, the median of usd/original
//     over non-USD rows ([RepresentativeRate])
//  3. fills the original amount of USD rows that only carry a USD amount
//     ([BackfillAmounts])
//  4. maps each round onto [OutputColumns]: bare domain from the website
//     ([ExtractDomain]), amount formatted as "€M 1,234" ([FormatAmount]),
//     and two empty placeholder columns for manual completion
//
// # Service
//
// [Service] wraps the pipeline for concurrent callers. Runs are bounded by an
// [UploadLimiter] and results are kept in a [ResultStore] under a random id
// so they can be displayed and downloaded later.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each message has a code (VAL004, FILE005, ...) for support reference.
package core
