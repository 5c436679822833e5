package testutil

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/hupe1980/skyindex/model"
)

// Epoch is the departure time of the first generated flight.
var Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Shuffle shuffles s in place.
func Shuffle[T any](r *RNG, s []T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// Flight returns a flight with predictable fields derived from id.
func Flight(id, capacity int32) model.Flight {
	return model.Flight{
		ID:            id,
		FlightNumber:  fmt.Sprintf("SK%d", id),
		Origin:        "Oslo",
		Destination:   "Rome",
		DepartureTime: Epoch.Add(time.Duration(id) * time.Hour),
		Capacity:      capacity,
	}
}

// Passenger returns a passenger with predictable fields derived from id.
func Passenger(id int32) model.Passenger {
	return model.Passenger{
		ID:             id,
		Name:           fmt.Sprintf("Passenger %d", id),
		PassportNumber: fmt.Sprintf("PP%06d", id),
	}
}

// Reservation returns a reservation booked one day before Epoch.
func Reservation(flightID, passengerID int32, seat string) model.Reservation {
	return model.Reservation{
		FlightID:    flightID,
		PassengerID: passengerID,
		BookingDate: Epoch.Add(-24 * time.Hour),
		SeatNumber:  seat,
	}
}

// SortedFlights returns n flights with ids 1..n in ascending order.
func SortedFlights(n int, capacity int32) []model.Flight {
	out := make([]model.Flight, n)
	for i := range out {
		out[i] = Flight(int32(i+1), capacity)
	}
	return out
}

// ShuffledFlights returns n flights with ids 1..n in random order.
func (r *RNG) ShuffledFlights(n int, capacity int32) []model.Flight {
	out := SortedFlights(n, capacity)
	Shuffle(r, out)
	return out
}

// ShuffledPassengers returns n passengers with ids 1..n in random order.
func (r *RNG) ShuffledPassengers(n int) []model.Passenger {
	out := make([]model.Passenger, n)
	for i := range out {
		out[i] = Passenger(int32(i + 1))
	}
	Shuffle(r, out)
	return out
}

// Reservations returns n reservations spread over flights 1..flights and
// passengers 1..passengers. Seats are unique per flight.
func (r *RNG) Reservations(n, flights, passengers int) []model.Reservation {
	out := make([]model.Reservation, 0, n)
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range n {
		fid := int32(r.rand.Intn(flights) + 1)
		pid := int32(r.rand.Intn(passengers) + 1)
		out = append(out, Reservation(fid, pid, fmt.Sprintf("S%d", i)))
	}
	return out
}

// Fixture returns a small dataset with known answers:
//
//   - flight 1 (capacity 2): passenger 1 in seats 1A and 1B, passenger 2 in 2A
//   - flight 2 (capacity 3): passenger 3 in 5C
//   - passenger 3 holds no other reservation, passengers 1 and 2 fly only flight 1
func Fixture() model.Dataset {
	return model.Dataset{
		Flights: []model.Flight{
			Flight(1, 2),
			Flight(2, 3),
		},
		Passengers: []model.Passenger{
			{ID: 1, Name: "Ada Lovelace", PassportNumber: "GB100001"},
			{ID: 2, Name: "Grace Hopper", PassportNumber: "US200002"},
			{ID: 3, Name: "Alan Turing", PassportNumber: "GB300003"},
		},
		Reservations: []model.Reservation{
			Reservation(1, 1, "1A"),
			Reservation(1, 1, "1B"),
			Reservation(1, 2, "2A"),
			Reservation(2, 3, "5C"),
		},
	}
}
