// Package reservationarray provides the baseline reservation index: a dynamic
// array scanned linearly on every query.
//
// Capacity grows geometrically according to a GrowthPolicy. Query results are
// sorted into composite-key order so they match reservationbst exactly.
package reservationarray

import (
	"iter"
	"slices"
	"unsafe"

	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/model"
)

// Compile-time check to ensure Array satisfies the index contract.
var _ index.ReservationIndex = (*Array)(nil)

var recordBytes = int64(unsafe.Sizeof(model.Reservation{}))

// GrowthPolicy decides the next capacity when the array is full.
type GrowthPolicy struct {
	// InitialCap is the capacity of the first allocation.
	InitialCap int
	// DoubleBelow: capacities below this double.
	DoubleBelow int
	// HalfBelow: capacities below this (and >= DoubleBelow) grow by half.
	HalfBelow int
	// Step is the fixed increment for capacities >= HalfBelow.
	Step int
}

// DefaultGrowthPolicy doubles below 100k, grows 50% below 500k and adds
// 100k slots beyond that.
var DefaultGrowthPolicy = GrowthPolicy{
	InitialCap:  1024,
	DoubleBelow: 100_000,
	HalfBelow:   500_000,
	Step:        100_000,
}

// Next returns the capacity that follows c.
func (g GrowthPolicy) Next(c int) int {
	switch {
	case c <= 0:
		return max(g.InitialCap, 1)
	case c < g.DoubleBelow:
		return c * 2
	case c < g.HalfBelow:
		return c + c/2
	default:
		return c + max(g.Step, 1)
	}
}

// Options contains configuration options for the array.
type Options struct {
	// MemoryAcquirer bounds the backing buffer. Nil means unlimited.
	MemoryAcquirer index.MemoryAcquirer

	// Growth controls how capacity increases.
	Growth GrowthPolicy
}

// DefaultOptions contains the default configuration options for the array.
var DefaultOptions = Options{
	Growth: DefaultGrowthPolicy,
}

// Array stores reservations in insertion order.
type Array struct {
	opts     Options
	items    []model.Reservation
	pos      map[model.ReservationKey]int
	reserved int64
	stats    index.NodeStats // one unit per backing buffer
	closed   bool
}

// New creates an empty array. The first buffer is allocated on first insert.
func New(optFns ...func(o *Options)) *Array {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Array{
		opts: opts,
		pos:  make(map[model.ReservationKey]int),
	}
}

// Insert appends r, or replaces the reservation with the same composite key.
func (a *Array) Insert(r model.Reservation) error {
	if a.closed {
		return index.ErrClosed
	}

	key := r.Key()
	if i, ok := a.pos[key]; ok {
		a.items[i] = r
		return nil
	}

	if len(a.items) == cap(a.items) {
		if err := a.grow(); err != nil {
			return err
		}
	}
	a.pos[key] = len(a.items)
	a.items = append(a.items, r)
	return nil
}

// AddWithValidation inserts r if index.Admit allows it.
func (a *Array) AddWithValidation(r model.Reservation, flights index.FlightLookup) error {
	if a.closed {
		return index.ErrClosed
	}
	if err := index.Admit(r, flights, a.ByFlight(r.FlightID)); err != nil {
		return err
	}
	return a.Insert(r)
}

// ByFlight returns the reservations of a flight in key order.
func (a *Array) ByFlight(flightID int32) []model.Reservation {
	return a.filter(func(r *model.Reservation) bool { return r.FlightID == flightID })
}

// ByPassenger returns the reservations of a passenger in key order.
func (a *Array) ByPassenger(passengerID int32) []model.Reservation {
	return a.filter(func(r *model.Reservation) bool { return r.PassengerID == passengerID })
}

// CountUniquePassengers returns the number of distinct passengers on a flight.
func (a *Array) CountUniquePassengers(flightID int32) int {
	return index.CountUnique(a.ByFlight(flightID))
}

// CountByPassenger returns the number of reservations a passenger holds.
func (a *Array) CountByPassenger(passengerID int32) int {
	count := 0
	for i := range a.items {
		if a.items[i].PassengerID == passengerID {
			count++
		}
	}
	return count
}

// FlightsForPassenger returns the distinct flights a passenger booked, ascending.
func (a *Array) FlightsForPassenger(passengerID int32) []int32 {
	return index.DistinctFlights(a.ByPassenger(passengerID))
}

// All yields every reservation in key order.
func (a *Array) All() iter.Seq[model.Reservation] {
	return func(yield func(model.Reservation) bool) {
		sorted := slices.Clone(a.items)
		slices.SortFunc(sorted, model.CompareReservations)
		for _, r := range sorted {
			if !yield(r) {
				return
			}
		}
	}
}

// Len returns the number of reservations.
func (a *Array) Len() int { return len(a.items) }

// Cap returns the current capacity.
func (a *Array) Cap() int { return cap(a.items) }

// NodeStats counts backing buffers: one Alloc per growth, one Free per
// released buffer.
func (a *Array) NodeStats() index.NodeStats { return a.stats }

// Close releases the backing buffer. Calling Close again is a no-op.
func (a *Array) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	if a.items != nil {
		a.release(a.reserved)
		a.stats.Frees++
		a.stats.Live--
	}
	a.items = nil
	a.pos = nil
	a.reserved = 0
	if a.stats.Live != 0 {
		return &index.LeakError{Index: "reservationarray", Live: a.stats.Live}
	}
	return nil
}

func (a *Array) filter(match func(r *model.Reservation) bool) []model.Reservation {
	var out []model.Reservation
	for i := range a.items {
		if match(&a.items[i]) {
			out = append(out, a.items[i])
		}
	}
	slices.SortFunc(out, model.CompareReservations)
	return out
}

// grow moves the items into a larger buffer. On failure the array is unchanged.
func (a *Array) grow() error {
	newCap := a.opts.Growth.Next(cap(a.items))
	bytes := int64(newCap) * recordBytes
	if a.opts.MemoryAcquirer != nil && !a.opts.MemoryAcquirer.TryAcquireMemory(bytes) {
		return index.NewAllocationError("reservation buffer", int64(newCap), nil)
	}

	items := make([]model.Reservation, len(a.items), newCap)
	copy(items, a.items)

	if a.items != nil {
		a.release(a.reserved)
		a.stats.Frees++
		a.stats.Live--
	}
	a.items = items
	a.reserved = bytes
	a.stats.Allocs++
	a.stats.Live++
	return nil
}

func (a *Array) release(bytes int64) {
	if a.opts.MemoryAcquirer != nil && bytes > 0 {
		a.opts.MemoryAcquirer.ReleaseMemory(bytes)
	}
}
