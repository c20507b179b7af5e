package core

// error_messages.go maps technical errors to user-facing messages.
//
// # Error Codes Reference
//
// When users encounter errors, they can quote the code to support staff.
//
// # Validation Errors (VAL)
//
//	VAL002 - Invalid number: An amount column holds something that is not a number
//	         Action: Check the Money Raised columns on the reported line
//	         Patterns: "invalid number"
//
//	VAL004 - Missing column: Required column is missing from the CSV
//	         Action: Export the file again from Crunchbase with all default columns
//	         Patterns: "missing required column"
//
// # File Errors (FILE)
//
//	FILE001 - File too large: File exceeds the upload size limit
//	FILE002 - Invalid CSV: File could not be parsed as delimited text
//	FILE003 - Unsupported encoding: Encoding option not recognised
//	FILE004 - No file: No file was selected
//	FILE005 - Empty file: The uploaded file has no header row
//	FILE006 - Unsupported delimiter: Delimiter option not recognised
//
// # Upload Errors (UPL)
//
//	UPL002 - System busy: Too many uploads are being cleaned
//	UPL004 - Request cancelled
//	UPL005 - Request timeout
//
// # Result Errors (RES)
//
//	RES001 - Result not found: The cleaned table expired or never existed
//	RES002 - Unsupported format: Download format not offered
//
// # Rate Limiting (RATE)
//
//	RATE001 - Rate limited: Too many requests
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check application logs for the
// original technical error.
//
// Patterns are matched case-insensitively with strings.Contains; the first
// matching pattern wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Validation
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "An amount column contains a value that is not a number",
			Action:  "Check the Money Raised columns on the reported line",
			Code:    "VAL002",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from CSV",
			Action:  "Export the file again from Crunchbase with all default columns",
			Code:    "VAL004",
		},
	},

	// File
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Export fewer rows or split the file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Check the delimiter option and that quotes are balanced",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported encoding",
		msg: UserMessage{
			Message: "File encoding is not supported",
			Action:  "Choose UTF-8 or Windows-1252",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a Crunchbase CSV export to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported delimiter",
		msg: UserMessage{
			Message: "Delimiter is not supported",
			Action:  "Choose comma, semicolon, tab, pipe or auto-detect",
			Code:    "FILE006",
		},
	},

	// Upload
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "System is busy cleaning other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// Results
	{
		pattern: "result not found",
		msg: UserMessage{
			Message: "Cleaned table not found",
			Action:  "Results expire after a while. Upload the file again",
			Code:    "RES001",
		},
	},
	{
		pattern: "unsupported format",
		msg: UserMessage{
			Message: "Download format is not available",
			Action:  "Download as CSV or XLSX",
			Code:    "RES002",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
//
// Example:
//
//	err := fmt.Errorf("read: %w", ErrMissingColumn)
//	msg := MapError(err)
//	// msg.Code == "VAL004"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern (not ERR000).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
