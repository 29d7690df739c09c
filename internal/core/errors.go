package core

import (
	"errors"
	"fmt"
	"strings"
)

// Selection errors.
var (
	ErrNoFacilities      = errors.New("no facilities selected")
	ErrNoFields          = errors.New("no fields selected")
	ErrTooManyFacilities = errors.New("too many facilities selected")
	ErrFacilityNotFound  = errors.New("facility not found")
)

// Favorite errors.
var (
	ErrDuplicateFavoriteName = errors.New("favorite name already exists")
	ErrFavoriteNotFound      = errors.New("favorite not found")
	ErrFavoriteNameRequired  = errors.New("favorite name is required")
)

// Batch errors.
var (
	ErrBatchNotFound      = errors.New("batch not found")
	ErrBatchNotFinished   = errors.New("batch has not finished")
	ErrBatchFailed        = errors.New("batch failed")
	ErrInvalidTransition  = errors.New("invalid batch status transition")
	ErrNoDocumentRendered = errors.New("no documents rendered")
)

// UnknownFieldsError reports a field selection in which no key is in the
// catalog. It unwraps to ErrNoFields.
type UnknownFieldsError struct {
	Keys []string
}

func (e *UnknownFieldsError) Error() string {
	return fmt.Sprintf("no known field keys: %s", strings.Join(e.Keys, ", "))
}

func (e *UnknownFieldsError) Unwrap() error { return ErrNoFields }

// FacilityError is a per-facility failure recorded by a batch.
type FacilityError struct {
	FacilityID int64  `json:"facility_id"`
	Message    string `json:"message"`
}

func (e FacilityError) Error() string {
	return fmt.Sprintf("facility %d: %s", e.FacilityID, e.Message)
}
