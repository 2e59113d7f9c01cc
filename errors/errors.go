// Package errors provides error handling for fundlink.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	if err := table.Read(path); err != nil {
//	    return errors.Wrapf(err, "read %s", path)
//	}
//
//	return errors.WithHint(err, "check the column names in the header row")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack returns the reportable stack trace attached to err, if any.
var GetStack = crdb.GetReportableStackTrace

// Sentinel errors shared across fundlink.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrInvalidInput indicates an input table or value could not be used
	ErrInvalidInput = New("invalid input")

	// ErrMissingColumn indicates a required column is absent from a table header
	ErrMissingColumn = New("missing column")

	// ErrSimilarity indicates the similarity provider failed
	ErrSimilarity = New("similarity provider failed")

	// ErrUnsupported indicates a configured option has no implementation
	ErrUnsupported = New("unsupported")
)

// IsSimilarityError checks if an error is or wraps ErrSimilarity
func IsSimilarityError(err error) bool {
	return err != nil && Is(err, ErrSimilarity)
}

// IsInvalidInputError checks if an error is or wraps ErrInvalidInput or ErrMissingColumn
func IsInvalidInputError(err error) bool {
	return err != nil && IsAny(err, ErrInvalidInput, ErrMissingColumn)
}

// WrapSimilarity marks err as a similarity provider failure with context
func WrapSimilarity(err error, context string) error {
	return Wrap(crdb.Mark(err, ErrSimilarity), context)
}

// NewInvalidInputError creates an invalid-input error with a formatted message
func NewInvalidInputError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidInput, Newf(format, args...).Error())
}
