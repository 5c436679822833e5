package skyindex

import (
	"cmp"
	"context"
	"errors"
	"iter"
	"slices"
	"time"

	"github.com/hupe1980/skyindex/capacity"
	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/model"
)

// Prototype names one of the two index strategies.
type Prototype int

const (
	// Baseline uses an unbalanced BST, a sorted linked list and a dynamic array.
	Baseline Prototype = iota + 1
	// Optimized uses an AVL tree, a chained hash table and a composite-key BST.
	Optimized
)

// Prototypes lists every prototype in build order.
var Prototypes = []Prototype{Baseline, Optimized}

// String returns a string representation of the Prototype.
func (p Prototype) String() string {
	switch p {
	case Baseline:
		return "baseline"
	case Optimized:
		return "optimized"
	default:
		return "unknown"
	}
}

func (p Prototype) slot() (int, bool) {
	switch p {
	case Baseline, Optimized:
		return int(p) - 1, true
	default:
		return 0, false
	}
}

// FlightBooking is one reservation of a passenger joined with its flight.
// Found is false when the flight is not in the flight index.
type FlightBooking struct {
	Reservation model.Reservation
	Flight      model.Flight
	Found       bool
}

// PassengerBooking is one reservation on a flight joined with its passenger.
// AdditionalSeat is set when the passenger already appeared earlier in the
// same result.
type PassengerBooking struct {
	Reservation    model.Reservation
	Passenger      model.Passenger
	Found          bool
	AdditionalSeat bool
}

// Engine owns the three indexes of one prototype.
// It is not safe for concurrent use.
type Engine struct {
	prototype    Prototype
	flights      index.FlightIndex
	passengers   index.PassengerIndex
	reservations index.ReservationIndex
	validator    *capacity.Validator
	logger       *Logger
	metrics      MetricsCollector
	report       BuildReport
	closed       bool
}

// Prototype returns the strategy this engine implements.
func (e *Engine) Prototype() Prototype { return e.prototype }

// Report returns the build report of this engine.
func (e *Engine) Report() BuildReport { return e.report }

// Flight returns the flight with the given id.
func (e *Engine) Flight(id int32) (model.Flight, bool) {
	return e.flights.Find(id)
}

// FlightByNumber returns the lowest-id flight with the given number, ignoring case.
func (e *Engine) FlightByNumber(number string) (model.Flight, bool) {
	return e.flights.FindByNumber(number)
}

// Flights yields every flight in ascending id order.
func (e *Engine) Flights() iter.Seq[model.Flight] {
	return e.flights.All()
}

// Passenger returns the passenger with the given id.
func (e *Engine) Passenger(id int32) (model.Passenger, bool) {
	return e.passengers.Find(id)
}

// PassengerByName returns the lowest-id passenger whose name contains substr.
func (e *Engine) PassengerByName(substr string) (model.Passenger, bool) {
	return e.passengers.FindByName(substr)
}

// SearchPassengers returns every passenger whose name contains substr, in id order.
func (e *Engine) SearchPassengers(substr string) []model.Passenger {
	return e.passengers.SearchByName(substr)
}

// Passengers yields every passenger in ascending id order.
func (e *Engine) Passengers() iter.Seq[model.Passenger] {
	return func(yield func(model.Passenger) bool) {
		all := slices.Collect(e.passengers.All())
		slices.SortFunc(all, func(a, b model.Passenger) int { return cmp.Compare(a.ID, b.ID) })
		for _, p := range all {
			if !yield(p) {
				return
			}
		}
	}
}

// FlightsForPassenger returns the passenger's reservations joined with their
// flights, in reservation key order.
func (e *Engine) FlightsForPassenger(passengerID int32) []FlightBooking {
	res := e.reservations.ByPassenger(passengerID)
	out := make([]FlightBooking, 0, len(res))
	for _, r := range res {
		f, ok := e.flights.Find(r.FlightID)
		out = append(out, FlightBooking{Reservation: r, Flight: f, Found: ok})
	}
	return out
}

// PassengersOnFlight returns the flight's reservations joined with their
// passengers, in reservation key order.
func (e *Engine) PassengersOnFlight(flightID int32) []PassengerBooking {
	res := e.reservations.ByFlight(flightID)
	out := make([]PassengerBooking, 0, len(res))
	for i, r := range res {
		p, ok := e.passengers.Find(r.PassengerID)
		// Key order groups a passenger's seats together.
		extra := i > 0 && res[i-1].PassengerID == r.PassengerID
		out = append(out, PassengerBooking{Reservation: r, Passenger: p, Found: ok, AdditionalSeat: extra})
	}
	return out
}

// DistinctFlights returns the distinct flight ids a passenger booked, ascending.
func (e *Engine) DistinctFlights(passengerID int32) []int32 {
	return e.reservations.FlightsForPassenger(passengerID)
}

// CountReservations returns the number of reservations a passenger holds.
func (e *Engine) CountReservations(passengerID int32) int {
	return e.reservations.CountByPassenger(passengerID)
}

// CountUniquePassengers returns the number of distinct passengers on a flight.
func (e *Engine) CountUniquePassengers(flightID int32) int {
	return e.reservations.CountUniquePassengers(flightID)
}

// ValidateCapacity checks one flight against its capacity.
func (e *Engine) ValidateCapacity(flightID int32) (capacity.Report, error) {
	r, err := e.validator.Validate(flightID)
	if !errors.Is(err, index.ErrFlightNotFound) {
		e.metrics.RecordValidation(e.prototype, r.Status)
	}
	return r, err
}

// ValidateAll checks every flight and returns the reports that are not Valid.
func (e *Engine) ValidateAll(ctx context.Context) ([]capacity.Report, error) {
	reports, err := e.validator.ValidateAll(e.flights.All())
	for _, r := range reports {
		e.metrics.RecordValidation(e.prototype, r.Status)
	}
	e.logger.LogValidation(ctx, e.prototype, len(reports), err)
	return reports, err
}

// Book adds a reservation through capacity admission.
// It returns ErrFlightNotFound or an error wrapping ErrCapacityExceeded when
// the booking is rejected; the engine is unchanged in that case.
func (e *Engine) Book(ctx context.Context, r model.Reservation) error {
	if e.closed {
		return ErrClosed
	}
	err := e.reservations.AddWithValidation(r, e.flights)
	e.metrics.RecordBooking(e.prototype, err)
	e.logger.LogBooking(ctx, e.prototype, r.FlightID, r.PassengerID, err)
	return translateError(err)
}

// Counts returns the number of stored flights, passengers and reservations.
func (e *Engine) Counts() (flights, passengers, reservations int) {
	return e.flights.Len(), e.passengers.Len(), e.reservations.Len()
}

// NodeStats returns the combined node counters of all three indexes.
func (e *Engine) NodeStats() index.NodeStats {
	return e.flights.NodeStats().
		Add(e.passengers.NodeStats()).
		Add(e.reservations.NodeStats())
}

// Close releases all three indexes. Calling Close again is a no-op.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return translateError(errors.Join(
		e.flights.Close(),
		e.passengers.Close(),
		e.reservations.Close(),
	))
}

func (e *Engine) timed(kind QueryKind, fn func() (any, error)) Result {
	start := time.Now()
	v, err := fn()
	d := time.Since(start)
	e.metrics.RecordQuery(e.prototype, kind, d, err)
	return Result{Prototype: e.prototype, Duration: d, Value: v, Err: err}
}
