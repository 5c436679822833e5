package index

import (
	"iter"

	"github.com/hupe1980/skyindex/internal/arena"
	"github.com/hupe1980/skyindex/model"
)

// MemoryAcquirer reserves index memory without blocking.
// *resource.Controller satisfies it.
type MemoryAcquirer interface {
	TryAcquireMemory(bytes int64) bool
	ReleaseMemory(bytes int64)
}

// NodeStats reports node allocation counters of an index.
type NodeStats struct {
	Allocs uint64
	Frees  uint64
	Live   uint64
}

// NodeStatsOf converts arena counters.
func NodeStatsOf(s arena.Stats) NodeStats {
	return NodeStats{Allocs: s.Allocs, Frees: s.Frees, Live: s.Live}
}

// Add returns the element-wise sum of s and o.
func (s NodeStats) Add(o NodeStats) NodeStats {
	return NodeStats{Allocs: s.Allocs + o.Allocs, Frees: s.Frees + o.Frees, Live: s.Live + o.Live}
}

// FlightLookup resolves flights by id.
type FlightLookup interface {
	// Find returns the flight with the given id.
	Find(id int32) (model.Flight, bool)
}

// FlightIndex stores flights keyed by id.
type FlightIndex interface {
	FlightLookup

	// Insert adds or replaces a flight.
	Insert(f model.Flight) error

	// FindByNumber returns the lowest-id flight whose number matches, ignoring case.
	FindByNumber(number string) (model.Flight, bool)

	// Delete removes a flight and reports whether it was present.
	Delete(id int32) bool

	// All yields flights in ascending id order.
	All() iter.Seq[model.Flight]

	// Len returns the number of flights.
	Len() int

	// Height returns the tree height (0 when empty).
	Height() int

	// NodeStats returns node allocation counters.
	NodeStats() NodeStats

	// Close releases every node.
	Close() error
}

// PassengerIndex stores passengers keyed by id.
type PassengerIndex interface {
	// Insert adds or replaces a passenger.
	Insert(p model.Passenger) error

	// Find returns the passenger with the given id.
	Find(id int32) (model.Passenger, bool)

	// FindByName returns the lowest-id passenger whose name contains substr, ignoring case.
	FindByName(substr string) (model.Passenger, bool)

	// SearchByName returns all passengers whose name contains substr, in id order.
	SearchByName(substr string) []model.Passenger

	// All yields every passenger. The order is implementation defined.
	All() iter.Seq[model.Passenger]

	// Len returns the number of distinct passengers.
	Len() int

	// NodeStats returns node allocation counters.
	NodeStats() NodeStats

	// Close releases every node.
	Close() error
}

// UniqueCounter counts distinct passengers on a flight.
type UniqueCounter interface {
	CountUniquePassengers(flightID int32) int
}

// ReservationIndex stores reservations keyed by (flight, passenger, seat).
type ReservationIndex interface {
	UniqueCounter

	// Insert adds or replaces a reservation without capacity checks.
	Insert(r model.Reservation) error

	// AddWithValidation inserts r if Admit allows it.
	AddWithValidation(r model.Reservation, flights FlightLookup) error

	// ByFlight returns the reservations of a flight in key order.
	ByFlight(flightID int32) []model.Reservation

	// ByPassenger returns the reservations of a passenger in key order.
	ByPassenger(passengerID int32) []model.Reservation

	// CountByPassenger returns the number of reservations a passenger holds.
	CountByPassenger(passengerID int32) int

	// FlightsForPassenger returns the distinct flight ids a passenger booked, ascending.
	FlightsForPassenger(passengerID int32) []int32

	// All yields every reservation in key order.
	All() iter.Seq[model.Reservation]

	// Len returns the number of reservations.
	Len() int

	// NodeStats returns node allocation counters.
	NodeStats() NodeStats

	// Close releases every node.
	Close() error
}
