package model

import "fmt"

// Dataset is a set of records loaded together. Slices may be in any order
// and may contain duplicate keys; later entries replace earlier ones.
type Dataset struct {
	Flights      []Flight
	Passengers   []Passenger
	Reservations []Reservation
}

// Validate checks the field limits of every record.
func (d Dataset) Validate() error {
	for i, f := range d.Flights {
		if err := f.Validate(); err != nil {
			return &RecordError{Kind: "flight", Index: i, Err: err}
		}
	}
	for i, p := range d.Passengers {
		if err := p.Validate(); err != nil {
			return &RecordError{Kind: "passenger", Index: i, Err: err}
		}
	}
	for i, r := range d.Reservations {
		if err := r.Validate(); err != nil {
			return &RecordError{Kind: "reservation", Index: i, Err: err}
		}
	}
	return nil
}

// RecordError locates an invalid record within a Dataset.
type RecordError struct {
	Kind  string
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s #%d: %v", e.Kind, e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
