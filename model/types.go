package model

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used by dataset files and reports.
const TimeLayout = "2006-01-02 15:04:05"

const (
	MaxFlightNumberLen   = 20
	MaxLocationLen       = 50
	MaxPassengerNameLen  = 100
	MaxPassportNumberLen = 20
	MaxSeatNumberLen     = 10
)

// Flight is a scheduled flight with a seat capacity.
type Flight struct {
	ID            int32
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureTime time.Time
	Capacity      int32
}

// Validate checks field limits.
func (f Flight) Validate() error {
	if err := checkLen("flight_number", f.FlightNumber, MaxFlightNumberLen); err != nil {
		return err
	}
	if err := checkLen("origin", f.Origin, MaxLocationLen); err != nil {
		return err
	}
	if err := checkLen("destination", f.Destination, MaxLocationLen); err != nil {
		return err
	}
	if f.Capacity < 0 {
		return &FieldError{Field: "capacity", Reason: "must not be negative"}
	}
	return nil
}

// Passenger is a traveller who can hold reservations.
type Passenger struct {
	ID             int32
	Name           string
	PassportNumber string
}

// Validate checks field limits.
func (p Passenger) Validate() error {
	if err := checkLen("name", p.Name, MaxPassengerNameLen); err != nil {
		return err
	}
	return checkLen("passport_number", p.PassportNumber, MaxPassportNumberLen)
}

// Reservation books a seat on a flight for a passenger.
// A passenger may hold several seats on the same flight.
type Reservation struct {
	FlightID    int32
	PassengerID int32
	BookingDate time.Time
	SeatNumber  string
}

// Key returns the composite identity of the reservation.
func (r Reservation) Key() ReservationKey {
	return ReservationKey{FlightID: r.FlightID, PassengerID: r.PassengerID, SeatNumber: r.SeatNumber}
}

// Validate checks field limits.
func (r Reservation) Validate() error {
	return checkLen("seat_number", r.SeatNumber, MaxSeatNumberLen)
}

// ReservationKey orders reservations by flight, then passenger, then seat.
type ReservationKey struct {
	FlightID    int32
	PassengerID int32
	SeatNumber  string
}

// Compare returns -1, 0 or +1 depending on whether k sorts before, equal to or after o.
func (k ReservationKey) Compare(o ReservationKey) int {
	if c := cmp.Compare(k.FlightID, o.FlightID); c != 0 {
		return c
	}
	if c := cmp.Compare(k.PassengerID, o.PassengerID); c != 0 {
		return c
	}
	return strings.Compare(k.SeatNumber, o.SeatNumber)
}

// String returns a string representation of the key.
func (k ReservationKey) String() string {
	return fmt.Sprintf("Res(%d:%d:%s)", k.FlightID, k.PassengerID, k.SeatNumber)
}

// CompareReservations orders reservations by their composite key.
// It is suitable for slices.SortFunc.
func CompareReservations(a, b Reservation) int {
	return a.Key().Compare(b.Key())
}

// FieldError reports a record field that violates its limits.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func checkLen(field, v string, limit int) error {
	if len(v) > limit {
		return &FieldError{Field: field, Reason: fmt.Sprintf("length %d exceeds %d", len(v), limit)}
	}
	return nil
}
