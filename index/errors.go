package index

import (
	"errors"
	"fmt"

	"github.com/hupe1980/skyindex/internal/arena"
)

var (
	// ErrAllocationFailed is returned when node or table memory cannot be reserved.
	ErrAllocationFailed = errors.New("allocation failed")
	// ErrCapacityExceeded is returned when a booking would overfill a flight.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrFlightNotFound is returned when a reservation references an unknown flight.
	ErrFlightNotFound = errors.New("flight not found")
	// ErrInvariantViolation is returned by structural validators.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrLeak is returned by Close when nodes remain allocated.
	ErrLeak = errors.New("node leak")
	// ErrClosed is returned when mutating a closed index.
	ErrClosed = errors.New("index closed")
)

// AllocationError reports a refused allocation. The index is unchanged.
type AllocationError struct {
	What      string // what was being allocated
	Requested int64  // slots or buckets requested
	cause     error
}

// NewAllocationError wraps cause.
func NewAllocationError(what string, requested int64, cause error) *AllocationError {
	return &AllocationError{What: what, Requested: requested, cause: cause}
}

func (e *AllocationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("allocation failed: %s (%d): %v", e.What, e.Requested, e.cause)
	}
	return fmt.Sprintf("allocation failed: %s (%d)", e.What, e.Requested)
}

func (e *AllocationError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrAllocationFailed}
	}
	return []error{ErrAllocationFailed, e.cause}
}

// CapacityError reports a rejected booking.
type CapacityError struct {
	FlightID    int32
	PassengerID int32
	Capacity    int32
	Count       int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: flight %d has %d/%d passengers, cannot admit passenger %d",
		e.FlightID, e.Count, e.Capacity, e.PassengerID)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// InvariantError reports a structural defect found by a validator.
type InvariantError struct {
	Index  string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: invariant violation: %s", e.Index, e.Detail)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }

// LeakError reports nodes still allocated after Close.
type LeakError struct {
	Index string
	Live  uint64
}

func (e *LeakError) Error() string {
	return fmt.Sprintf("%s: %d nodes leaked", e.Index, e.Live)
}

func (e *LeakError) Unwrap() error { return ErrLeak }

// WrapArenaError converts arena allocation failures into *AllocationError.
// Other errors are returned unchanged.
func WrapArenaError(what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, arena.ErrAllocationFailed) || errors.Is(err, arena.ErrMaxSlotsExceeded) {
		return NewAllocationError(what, 1, err)
	}
	return err
}
