package skyindex

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/hupe1980/skyindex/model"
)

// QueryKind selects the operation a Query runs.
type QueryKind int

const (
	QueryFlight QueryKind = iota + 1
	QueryFlightByNumber
	QueryPassenger
	QueryPassengerByName
	QueryFlightsForPassenger
	QueryPassengersOnFlight
	QueryCountUnique
	QueryValidateCapacity
)

var queryNames = map[QueryKind]string{
	QueryFlight:              "flight",
	QueryFlightByNumber:      "flight_by_number",
	QueryPassenger:           "passenger",
	QueryPassengerByName:     "passenger_by_name",
	QueryFlightsForPassenger: "flights_for_passenger",
	QueryPassengersOnFlight:  "passengers_on_flight",
	QueryCountUnique:         "count_unique",
	QueryValidateCapacity:    "validate_capacity",
}

// String returns a string representation of the QueryKind.
func (k QueryKind) String() string {
	if s, ok := queryNames[k]; ok {
		return s
	}
	return "unknown"
}

// Query is one lookup dispatched to both engines.
// ID or Text is used depending on Kind.
type Query struct {
	Kind QueryKind
	ID   int32
	Text string
}

// String returns a string representation of the Query.
func (q Query) String() string {
	if q.Kind == QueryFlightByNumber || q.Kind == QueryPassengerByName {
		return fmt.Sprintf("%s(%q)", q.Kind, q.Text)
	}
	return fmt.Sprintf("%s(%d)", q.Kind, q.ID)
}

// FindFlight looks up a flight by id.
func FindFlight(id int32) Query { return Query{Kind: QueryFlight, ID: id} }

// FindFlightByNumber looks up a flight by number.
func FindFlightByNumber(number string) Query {
	return Query{Kind: QueryFlightByNumber, Text: number}
}

// FindPassenger looks up a passenger by id.
func FindPassenger(id int32) Query { return Query{Kind: QueryPassenger, ID: id} }

// FindPassengerByName looks up a passenger by name substring.
func FindPassengerByName(substr string) Query {
	return Query{Kind: QueryPassengerByName, Text: substr}
}

// FlightsForPassenger lists a passenger's bookings with flight details.
func FlightsForPassenger(id int32) Query { return Query{Kind: QueryFlightsForPassenger, ID: id} }

// PassengersOnFlight lists a flight's bookings with passenger details.
func PassengersOnFlight(id int32) Query { return Query{Kind: QueryPassengersOnFlight, ID: id} }

// CountUnique counts distinct passengers on a flight.
func CountUnique(id int32) Query { return Query{Kind: QueryCountUnique, ID: id} }

// ValidateCapacity checks a flight against its capacity.
func ValidateCapacity(id int32) Query { return Query{Kind: QueryValidateCapacity, ID: id} }

// Lookup is the value of a single-record query.
type Lookup[T any] struct {
	Value T
	Found bool
}

// Result is the outcome of a query on one engine.
type Result struct {
	Prototype Prototype
	Duration  time.Duration
	Value     any
	Err       error
}

// Comparison holds the results of one query on both engines.
type Comparison struct {
	Query     Query
	Baseline  Result
	Optimized Result
	// Agree reports whether both engines returned equal values and errors
	// of the same kind.
	Agree bool
}

// Speedup returns baseline duration divided by optimized duration.
func (c Comparison) Speedup() float64 {
	if c.Optimized.Duration <= 0 {
		return 0
	}
	return float64(c.Baseline.Duration) / float64(c.Optimized.Duration)
}

// Run executes q on this engine.
func (e *Engine) Run(q Query) Result {
	return e.timed(q.Kind, func() (any, error) {
		if e.closed {
			return nil, ErrClosed
		}
		switch q.Kind {
		case QueryFlight:
			f, ok := e.Flight(q.ID)
			return Lookup[model.Flight]{f, ok}, nil
		case QueryFlightByNumber:
			f, ok := e.FlightByNumber(q.Text)
			return Lookup[model.Flight]{f, ok}, nil
		case QueryPassenger:
			p, ok := e.Passenger(q.ID)
			return Lookup[model.Passenger]{p, ok}, nil
		case QueryPassengerByName:
			p, ok := e.PassengerByName(q.Text)
			return Lookup[model.Passenger]{p, ok}, nil
		case QueryFlightsForPassenger:
			return e.FlightsForPassenger(q.ID), nil
		case QueryPassengersOnFlight:
			return e.PassengersOnFlight(q.ID), nil
		case QueryCountUnique:
			return e.CountUniquePassengers(q.ID), nil
		case QueryValidateCapacity:
			return e.ValidateCapacity(q.ID)
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownQuery, q.Kind)
		}
	})
}

// Compare runs q on the baseline and then the optimized engine.
func (o *Orchestrator) Compare(ctx context.Context, q Query) (Comparison, error) {
	if o.closed {
		return Comparison{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return Comparison{}, err
	}
	if _, ok := queryNames[q.Kind]; !ok {
		return Comparison{}, fmt.Errorf("%w: %d", ErrUnknownQuery, q.Kind)
	}

	c := Comparison{
		Query:     q,
		Baseline:  o.Engine(Baseline).Run(q),
		Optimized: o.Engine(Optimized).Run(q),
	}
	c.Agree = reflect.DeepEqual(c.Baseline.Value, c.Optimized.Value) &&
		sameError(c.Baseline.Err, c.Optimized.Err)

	o.opts.logger.LogQuery(ctx, c)
	return c, nil
}

// CompareAll runs every query in order, stopping early if ctx is done.
func (o *Orchestrator) CompareAll(ctx context.Context, qs []Query) ([]Comparison, error) {
	out := make([]Comparison, 0, len(qs))
	for _, q := range qs {
		c, err := o.Compare(ctx, q)
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	for _, target := range []error{ErrCapacityExceeded, ErrFlightNotFound, ErrClosed} {
		if errors.Is(a, target) != errors.Is(b, target) {
			return false
		}
	}
	return true
}
