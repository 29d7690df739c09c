// error_messages.go maps errors to user-facing messages.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Domain errors are matched with errors.Is first; everything else falls back
// to case-insensitive substring patterns on the error text.
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - No facilities: No facilities were selected
//	         Action: Select at least one facility
//	EXP002 - No fields: No fields were selected
//	         Action: Select at least one field
//	EXP003 - Too many facilities: Selection exceeds the export limit
//	         Action: Split the export into smaller selections
//	EXP004 - Unknown fields: None of the selected fields are recognised
//	         Action: Refresh the field list and select again
//	EXP005 - Facility not found: The facility does not exist
//	         Action: Refresh the facility list
//
// # Favorite Errors (FAV001-FAV099)
//
//	FAV001 - Duplicate name: A favorite with this name already exists
//	         Action: Choose a different name
//	FAV002 - Not found: The favorite does not exist
//	         Action: Refresh your favorites
//	FAV003 - Name required: A favorite name is required
//	         Action: Enter a name for the favorite
//
// # Batch Errors (BAT001-BAT099)
//
//	BAT001 - Not found: The batch does not exist or has expired
//	BAT002 - Not finished: The batch is still running
//	BAT003 - Busy: Too many batches are running
//	BAT004 - Failed: The batch could not produce any documents
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused ("connection refused")
//	DB002 - Connection reset ("connection reset")
//	DB003 - Timeout ("timeout", "context deadline exceeded")
//	DB004 - Deadlock ("deadlock")
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited ("rate limit")
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Support staff should check application
// logs for the original technical error when users report ERR000.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// sentinelMessage maps a domain error to its user message.
type sentinelMessage struct {
	target error
	msg    UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrNoFacilities, UserMessage{"No facilities were selected", "Select at least one facility", "EXP001"}},
	{ErrNoFields, UserMessage{"No fields were selected", "Select at least one field", "EXP002"}},
	{ErrTooManyFacilities, UserMessage{"Selection exceeds the export limit", "Split the export into smaller selections", "EXP003"}},
	{ErrFacilityNotFound, UserMessage{"The facility does not exist", "Refresh the facility list", "EXP005"}},
	{ErrDuplicateFavoriteName, UserMessage{"A favorite with this name already exists", "Choose a different name", "FAV001"}},
	{ErrFavoriteNotFound, UserMessage{"The favorite does not exist", "Refresh your favorites", "FAV002"}},
	{ErrFavoriteNameRequired, UserMessage{"A favorite name is required", "Enter a name for the favorite", "FAV003"}},
	{ErrBatchNotFound, UserMessage{"The batch does not exist or has expired", "Start a new batch", "BAT001"}},
	{ErrBatchNotFinished, UserMessage{"The batch is still running", "Wait for the batch to complete", "BAT002"}},
	{ErrTooManyBatches, UserMessage{"Too many batches are running", "Please wait a moment and try again", "BAT003"}},
	{ErrBatchFailed, UserMessage{"The batch could not produce any documents", "Check the batch errors and try again", "BAT004"}},
}

var unknownFieldsMessage = UserMessage{
	Message: "None of the selected fields are recognised",
	Action:  "Refresh the field list and select again",
	Code:    "EXP004",
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is searched in order; the first match wins.
var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller selection or try again later",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller selection or try again later",
			Code:    "DB003",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB004",
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

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	msg := MapError(fmt.Errorf("save: %w", ErrDuplicateFavoriteName))
//	// msg.Code == "FAV001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	// Checked first: it also matches ErrNoFields.
	var unknown *UnknownFieldsError
	if errors.As(err, &unknown) {
		return unknownFieldsMessage
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
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

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
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
