// Package errors defines the error kinds returned by arbor's tree container.
// Concrete errors wrap one of the sentinels below with github.com/pkg/errors,
// so callers should test with the Is* helpers or errors.Cause().
package errors

import (
	"errors"
	"fmt"

	e "github.com/pkg/errors"
)

var (
	// ErrUniqueConstraint is returned when the same payload reference would
	// be attached twice below the same parent.
	ErrUniqueConstraint = errors.New("unique constraint violated")

	// ErrAmbiguousMatch is returned when a single-result lookup found several
	// candidates or a clone-affecting mutation was not disambiguated.
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrNotFound is only returned by keyed lookups that demand exactly one result.
	ErrNotFound = errors.New("no such node")

	// ErrUsage indicates a programming error by the caller
	// (bad position, foreign node, invalid signal).
	ErrUsage = errors.New("usage error")
)

//////////////

// ErrBadPosition is returned when an insert position cannot be resolved.
type ErrBadPosition struct {
	Reason string
}

func (err ErrBadPosition) Error() string {
	return fmt.Sprintf("bad position: %s", err.Reason)
}

// Cause implements the causer interface of github.com/pkg/errors.
func (err ErrBadPosition) Cause() error {
	return ErrUsage
}

//////////////

// UniqueConstraint creates an ErrUniqueConstraint with context.
func UniqueConstraint(format string, args ...interface{}) error {
	return e.Wrapf(ErrUniqueConstraint, format, args...)
}

// AmbiguousMatch creates an ErrAmbiguousMatch with context.
func AmbiguousMatch(format string, args ...interface{}) error {
	return e.Wrapf(ErrAmbiguousMatch, format, args...)
}

// NotFound creates an ErrNotFound with context.
func NotFound(format string, args ...interface{}) error {
	return e.Wrapf(ErrNotFound, format, args...)
}

// Usage creates an ErrUsage with context.
func Usage(format string, args ...interface{}) error {
	return e.Wrapf(ErrUsage, format, args...)
}

// IsUniqueConstraint checks if `err` is (or wraps) ErrUniqueConstraint.
func IsUniqueConstraint(err error) bool {
	return e.Cause(err) == ErrUniqueConstraint
}

// IsAmbiguousMatch checks if `err` is (or wraps) ErrAmbiguousMatch.
func IsAmbiguousMatch(err error) bool {
	return e.Cause(err) == ErrAmbiguousMatch
}

// IsNotFound checks if `err` is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return e.Cause(err) == ErrNotFound
}

// IsUsage checks if `err` is (or wraps) ErrUsage.
func IsUsage(err error) bool {
	return e.Cause(err) == ErrUsage
}
