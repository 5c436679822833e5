// Package capacity checks that the number of distinct passengers on a flight
// agrees with its seat capacity.
//
//	v := capacity.New(flights, reservations, capacity.AtMost)
//	report, err := v.Validate(flightID)
//
// A count above capacity is always an error. In Exact mode a count below
// capacity is an error as well, which suits fully populated datasets.
package capacity

import (
	"errors"
	"fmt"
	"iter"

	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/model"
)

// Mode selects which comparison counts as valid.
type Mode int

const (
	// AtMost accepts count <= capacity.
	AtMost Mode = iota
	// Exact accepts only count == capacity.
	Exact
)

// String returns a string representation of the Mode.
func (m Mode) String() string {
	switch m {
	case AtMost:
		return "at-most"
	case Exact:
		return "exact"
	default:
		return "unknown"
	}
}

// ParseMode parses "at-most" or "exact".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "at-most", "atmost", "":
		return AtMost, nil
	case "exact":
		return Exact, nil
	default:
		return 0, fmt.Errorf("capacity: unknown mode %q", s)
	}
}

// Status classifies a flight's occupancy.
type Status int

const (
	// Valid means count == capacity.
	Valid Status = iota
	// Under means count < capacity.
	Under
	// Over means count > capacity.
	Over
)

// String returns a string representation of the Status.
func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Under:
		return "under"
	case Over:
		return "over"
	default:
		return "unknown"
	}
}

// Report is the outcome of validating one flight.
type Report struct {
	FlightID int32
	Capacity int32
	Count    int
	Status   Status
}

// OverCapacityError reports a flight with more distinct passengers than seats.
type OverCapacityError struct {
	Report Report
}

func (e *OverCapacityError) Error() string {
	return fmt.Sprintf("flight %d over capacity: %d passengers, %d seats", e.Report.FlightID, e.Report.Count, e.Report.Capacity)
}

func (e *OverCapacityError) Unwrap() error { return index.ErrCapacityExceeded }

// ErrUnderCapacity is wrapped by UnderCapacityError.
var ErrUnderCapacity = errors.New("capacity: under capacity")

// UnderCapacityError reports an unfilled flight in Exact mode.
type UnderCapacityError struct {
	Report Report
}

func (e *UnderCapacityError) Error() string {
	return fmt.Sprintf("flight %d under capacity: %d passengers, %d seats", e.Report.FlightID, e.Report.Count, e.Report.Capacity)
}

func (e *UnderCapacityError) Unwrap() error { return ErrUnderCapacity }

// Validator compares unique passenger counts with flight capacities.
type Validator struct {
	flights index.FlightLookup
	counts  index.UniqueCounter
	mode    Mode
}

// New creates a Validator.
func New(flights index.FlightLookup, counts index.UniqueCounter, mode Mode) *Validator {
	return &Validator{flights: flights, counts: counts, mode: mode}
}

// Mode returns the validation mode.
func (v *Validator) Mode() Mode { return v.mode }

// Validate checks one flight. It returns index.ErrFlightNotFound for unknown
// flights, *OverCapacityError for Over, and in Exact mode
// *UnderCapacityError for Under. The report is filled in either way.
func (v *Validator) Validate(flightID int32) (Report, error) {
	f, ok := v.flights.Find(flightID)
	if !ok {
		return Report{FlightID: flightID}, index.ErrFlightNotFound
	}
	return v.check(f)
}

// ValidateAll checks every flight in flights and returns the reports of
// those that are not Valid. The error joins every failure in order.
func (v *Validator) ValidateAll(flights iter.Seq[model.Flight]) ([]Report, error) {
	var (
		reports []Report
		errs    []error
	)
	for f := range flights {
		r, err := v.check(f)
		if r.Status != Valid {
			reports = append(reports, r)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}

func (v *Validator) check(f model.Flight) (Report, error) {
	count := v.counts.CountUniquePassengers(f.ID)
	r := Report{FlightID: f.ID, Capacity: f.Capacity, Count: count}

	switch {
	case count > int(f.Capacity):
		r.Status = Over
		return r, &OverCapacityError{Report: r}
	case count < int(f.Capacity):
		r.Status = Under
		if v.mode == Exact {
			return r, &UnderCapacityError{Report: r}
		}
	default:
		r.Status = Valid
	}
	return r, nil
}
