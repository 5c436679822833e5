package skyindex

import (
	"errors"
	"fmt"

	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/internal/arena"
)

var (
	// ErrCapacityExceeded is returned when a booking would overfill a flight.
	ErrCapacityExceeded = index.ErrCapacityExceeded
	// ErrAllocationFailed is returned when index memory cannot be reserved.
	ErrAllocationFailed = index.ErrAllocationFailed
	// ErrFlightNotFound is returned when a booking references an unknown flight.
	ErrFlightNotFound = index.ErrFlightNotFound
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("skyindex: closed")
	// ErrCorrupted is returned when an index fails a structural check.
	ErrCorrupted = errors.New("skyindex: index corrupted")
	// ErrUnknownQuery is returned for an unsupported QueryKind.
	ErrUnknownQuery = errors.New("skyindex: unknown query")
	// ErrDiverged is returned when the two engines handle a booking differently.
	ErrDiverged = errors.New("skyindex: prototypes diverged")
)

// DivergenceError carries the per-engine outcome of a booking that the
// baseline and optimized engines did not handle alike. Either field may be nil.
type DivergenceError struct {
	Baseline  error
	Optimized error
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%v: baseline: %v, optimized: %v", ErrDiverged, e.Baseline, e.Optimized)
}

func (e *DivergenceError) Unwrap() []error {
	errs := []error{ErrDiverged}
	for _, err := range []error{e.Baseline, e.Optimized} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// BuildError reports which engine and component failed to build.
//
// The original underlying error can be accessed via errors.Unwrap.
type BuildError struct {
	Prototype Prototype
	Component string
	cause     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s %s: %v", e.Prototype, e.Component, e.cause)
}

func (e *BuildError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, index.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	// Structural failures surface as corruption.
	if errors.Is(err, index.ErrInvariantViolation) ||
		errors.Is(err, index.ErrLeak) ||
		errors.Is(err, arena.ErrDoubleFree) ||
		errors.Is(err, arena.ErrInvalidRef) {
		return fmt.Errorf("%w: %w", ErrCorrupted, err)
	}

	return err
}
