/*
errors.go - Centralized error types for the sheet package

PURPOSE:
  All domain error types in one place. Callers branch with errors.Is /
  errors.As; the draft and API layers wrap these with step context.

ERROR CATEGORIES:
  1. Field validation errors - per-field messages, block a step advance
  2. Ledger errors - record lookup and minimum-content violations
  3. Completeness errors - placeholder trips blocking submission
*/
package sheet

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrTripNotFound is returned when a trip id is not in the ledger.
	ErrTripNotFound = errors.New("trip not found")

	// ErrExpenseNotFound is returned when an expense id is not in the ledger.
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrValidation is the root of every field validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrNoTrips marks an attempt to complete the trips step with an
	// empty trip ledger.
	ErrNoTrips = errors.New("a shift needs at least one trip")
)

// =============================================================================
// FIELD ERRORS - field-keyed validation failures
// =============================================================================

// FieldErrors maps field name to a human-readable problem. It is the
// error value handed back from a rejected step advance; already-stored
// data is never touched by a rejection.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e FieldErrors) Unwrap() error { return ErrValidation }

// OrNil turns an empty map into a nil error so callers can return the
// result of a validator directly.
func (e FieldErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// =============================================================================
// INCOMPLETE TRIPS - placeholders blocking submission
// =============================================================================

// IncompleteTripsError lists the sequence numbers of trips that are
// still placeholders or missing mandatory fields when submission is
// attempted.
type IncompleteTripsError struct {
	Sequences []int
}

func (e *IncompleteTripsError) Error() string {
	nums := make([]string, len(e.Sequences))
	for i, n := range e.Sequences {
		nums[i] = fmt.Sprintf("%d", n)
	}
	return "trips incomplete: sequence " + strings.Join(nums, ", ")
}
