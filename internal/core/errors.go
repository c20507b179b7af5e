package core

import "errors"

// Sentinel errors. Their messages are the patterns MapError matches on, so
// wrapped errors keep their support code.
var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidNumber is returned for an amount cell that is not a number.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrEmptyFile is returned when the input has no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrInvalidCSV wraps encoding/csv parse errors.
	ErrInvalidCSV = errors.New("invalid csv")

	// ErrUnsupportedDelimiter is returned for an unknown delimiter option.
	ErrUnsupportedDelimiter = errors.New("unsupported delimiter")

	// ErrUnsupportedEncoding is returned for an unknown encoding option.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrResultNotFound is returned by result stores for unknown or expired ids.
	ErrResultNotFound = errors.New("result not found")
)

var (
	// ErrNoFile is returned when an upload request carries no file.
	ErrNoFile = errors.New("no file provided")

	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnsupportedFormat is returned for an unknown download format.
	ErrUnsupportedFormat = errors.New("unsupported format")
)
