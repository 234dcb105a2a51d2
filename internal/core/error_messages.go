// Package core provides the risk table engine.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Users can quote the code shown next to an error message.
//
// # Argument Errors (ARG001-ARG099)
//
//	ARG001 - Invalid argument: The request referenced a column or value that does not exist
//	         Action: Pick a column from the table header
//	         Patterns: "invalid argument"
//
//	ARG002 - Search too long: The search term exceeds the allowed length
//	         Action: Use a shorter search term
//	         Patterns: "search term too long"
//
// # Catalogue Errors (CAT001-CAT099)
//
//	CAT001 - Invalid catalogue: The risk catalogue is malformed
//	         Action: Fix the catalogue file and reload
//	         Patterns: "invalid catalog"
//
//	CAT002 - Catalogue unavailable: The risk catalogue could not be read
//	         Action: Check that the catalogue source is reachable
//	         Patterns: "catalog unavailable", "connection refused", "no such file"
//
//	SRC001 - Unsupported source: The catalogue source type is not supported
//	         Action: Use file:, csv:, postgres:// or sqlite: sources
//	         Patterns: "unsupported catalog source"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Export failed: The CSV export could not be written
//	         Action: Please try again
//	         Patterns: "write csv", "flush csv"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Request was cancelled
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout: Request timed out
//	         Patterns: "context deadline exceeded"
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument marks caller mistakes such as an out-of-range column.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrSearchTooLong is returned when a search term exceeds the configured limit.
var ErrSearchTooLong = errors.New("search term too long")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "search term too long",
		msg: UserMessage{
			Message: "The search term is too long",
			Action:  "Use a shorter search term",
			Code:    "ARG002",
		},
	},
	{
		pattern: "invalid argument",
		msg: UserMessage{
			Message: "The request referenced a column or value that does not exist",
			Action:  "Pick a column from the table header",
			Code:    "ARG001",
		},
	},
	{
		pattern: "unsupported catalog source",
		msg: UserMessage{
			Message: "The catalogue source type is not supported",
			Action:  "Use file:, csv:, postgres:// or sqlite: sources",
			Code:    "SRC001",
		},
	},
	{
		pattern: "invalid catalog",
		msg: UserMessage{
			Message: "The risk catalogue is malformed",
			Action:  "Fix the catalogue file and reload",
			Code:    "CAT001",
		},
	},
	{
		pattern: "catalog unavailable",
		msg: UserMessage{
			Message: "The risk catalogue could not be read",
			Action:  "Check that the catalogue source is reachable",
			Code:    "CAT002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The risk catalogue could not be read",
			Action:  "Check that the catalogue source is reachable",
			Code:    "CAT002",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The risk catalogue could not be read",
			Action:  "Check that the catalogue source is reachable",
			Code:    "CAT002",
		},
	},
	{
		pattern: "write csv",
		msg: UserMessage{
			Message: "The CSV export could not be written",
			Action:  "Please try again",
			Code:    "EXP001",
		},
	},
	{
		pattern: "flush csv",
		msg: UserMessage{
			Message: "The CSV export could not be written",
			Action:  "Please try again",
			Code:    "EXP001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
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
// If no pattern matches, a generic fallback message with code ERR000 is returned.
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
