package dataset

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/skyindex/model"
)

// Size is a generation preset: the number of flights.
type Size int

const (
	Small  Size = 100
	Medium Size = 1_000
	Large  Size = 10_000
	Huge   Size = 100_000
)

// First ids handed out by the generator.
const (
	FirstFlightID    = 1000
	FirstPassengerID = 2000
)

func (s Size) String() string {
	switch s {
	case Small:
		return "small"
	case Medium:
		return "medium"
	case Large:
		return "large"
	case Huge:
		return "huge"
	default:
		return strconv.Itoa(int(s))
	}
}

// ParseSize accepts a preset name or a positive flight count.
func ParseSize(s string) (Size, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small":
		return Small, nil
	case "medium":
		return Medium, nil
	case "large":
		return Large, nil
	case "huge":
		return Huge, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("dataset: invalid size %q", s)
	}
	return Size(n), nil
}

var (
	airlines = []string{"AA", "UA", "DL", "BA", "LH", "AF", "QF", "EK", "SQ", "CX", "JL", "NH"}

	cities = []string{
		"New York", "London", "Paris", "Tokyo", "Sydney", "Dubai", "Singapore",
		"Hong Kong", "Los Angeles", "Chicago", "Frankfurt", "Amsterdam", "Madrid",
		"Rome", "Toronto", "Beijing", "Shanghai", "Seoul", "Bangkok", "Istanbul",
		"Mumbai", "Delhi", "San Francisco", "Miami", "Dallas", "Atlanta", "Boston",
		"Seattle", "Melbourne", "Barcelona",
	}

	firstNames = []string{
		"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
		"William", "Elizabeth", "David", "Barbara", "Richard", "Susan", "Joseph",
		"Jessica", "Thomas", "Sarah", "Charles", "Karen", "Christopher", "Nancy",
		"Daniel", "Lisa", "Matthew", "Betty", "Anthony", "Margaret", "Mark", "Sandra",
		"Donald",
	}

	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
		"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
		"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson",
		"White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson",
	}
)

// Seats use rows 1-50 and skip the letters I and O.
const (
	seatLetters    = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	seatRows       = 50
	seatsPerFlight = seatRows * len(seatLetters)
)

const (
	minCapacity = 100
	maxCapacity = 400
	year        = 365 * 24 * time.Hour
)

// DefaultEpoch anchors generated timestamps so output is reproducible.
var DefaultEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// GenerateOptions sizes a synthetic dataset. Zero fields take defaults.
type GenerateOptions struct {
	Flights      int
	Passengers   int // default 5 × Flights
	Reservations int // default 10 × Flights
	Seed         int64
	Epoch        time.Time // default DefaultEpoch
}

// Generate builds a dataset with size flights using the default ratios.
func Generate(size Size, seed int64) model.Dataset {
	return GenerateWith(GenerateOptions{Flights: int(size), Seed: seed})
}

// GenerateWith builds a synthetic dataset.
//
// Each flight is first filled with distinct passengers up to its capacity;
// the remaining reservations are extra seats for passengers already on the
// flight. Capacities are scaled down when the reservation count cannot fill
// every flight, and the scaled capacity is what the flight records carry, so
// a fully generated dataset has unique_passengers == capacity on every flight.
func GenerateWith(o GenerateOptions) model.Dataset {
	if o.Flights <= 0 {
		return model.Dataset{}
	}
	if o.Passengers <= 0 {
		o.Passengers = 5 * o.Flights
	}
	if o.Reservations <= 0 {
		o.Reservations = 10 * o.Flights
	}
	if o.Epoch.IsZero() {
		o.Epoch = DefaultEpoch
	}

	g := &generator{
		rng:   rand.New(rand.NewSource(o.Seed)),
		epoch: o.Epoch.UTC().Truncate(time.Second),
	}
	ds := model.Dataset{
		Flights:    g.flights(o.Flights),
		Passengers: g.passengers(o.Passengers),
	}
	ds.Reservations = g.reservations(ds.Flights, o.Passengers, o.Reservations)
	return ds
}

type generator struct {
	rng   *rand.Rand
	epoch time.Time
}

func (g *generator) pick(xs []string) string {
	return xs[g.rng.Intn(len(xs))]
}

func (g *generator) offset(span time.Duration) time.Duration {
	return time.Duration(g.rng.Int63n(int64(span/time.Second))) * time.Second
}

func (g *generator) flights(n int) []model.Flight {
	out := make([]model.Flight, n)
	for i := range out {
		origin := g.rng.Intn(len(cities))
		dest := g.rng.Intn(len(cities) - 1)
		if dest >= origin {
			dest++
		}
		out[i] = model.Flight{
			ID:            int32(FirstFlightID + i),
			FlightNumber:  g.pick(airlines) + strconv.Itoa(100+g.rng.Intn(9000)),
			Origin:        cities[origin],
			Destination:   cities[dest],
			DepartureTime: g.epoch.Add(g.offset(year)),
			Capacity:      int32(minCapacity + g.rng.Intn(maxCapacity-minCapacity+1)),
		}
	}
	return out
}

func (g *generator) passengers(n int) []model.Passenger {
	out := make([]model.Passenger, n)
	for i := range out {
		passport := fmt.Sprintf("%c%c%06d", 'A'+g.rng.Intn(26), 'A'+g.rng.Intn(26), g.rng.Intn(1_000_000))
		out[i] = model.Passenger{
			ID:             int32(FirstPassengerID + i),
			Name:           g.pick(firstNames) + " " + g.pick(lastNames),
			PassportNumber: passport,
		}
	}
	return out
}

// seatKey identifies a seat on a flight.
type seatKey struct {
	flight int32
	seat   int16
}

func seatName(i int16) string {
	return strconv.Itoa(int(i)/len(seatLetters)+1) + string(seatLetters[int(i)%len(seatLetters)])
}

func (g *generator) reservations(flights []model.Flight, passengers, count int) []model.Reservation {
	total := 0
	for i := range flights {
		flights[i].Capacity = min(flights[i].Capacity, int32(passengers), int32(seatsPerFlight))
		total += int(flights[i].Capacity)
	}
	if total > count {
		scale := float64(count) / float64(total)
		for i := range flights {
			flights[i].Capacity = max(1, int32(float64(flights[i].Capacity)*scale))
		}
	}

	out := make([]model.Reservation, 0, count)
	taken := make(map[seatKey]struct{}, count)
	booked := make([][]int32, len(flights))

	seat := func(fid int32) (string, bool) {
		for range 64 {
			s := int16(g.rng.Intn(seatsPerFlight))
			k := seatKey{flight: fid, seat: s}
			if _, ok := taken[k]; !ok {
				taken[k] = struct{}{}
				return seatName(s), true
			}
		}
		return "", false
	}
	book := func(f model.Flight, pid int32, seatNo string) {
		out = append(out, model.Reservation{
			FlightID:    f.ID,
			PassengerID: pid,
			BookingDate: g.epoch.Add(-g.offset(year)),
			SeatNumber:  seatNo,
		})
	}

	for i, f := range flights {
		if len(out) >= count {
			break
		}
		want := min(int(f.Capacity), count-len(out))
		for _, p := range g.distinct(want, passengers) {
			pid := int32(FirstPassengerID + p)
			s, ok := seat(f.ID)
			if !ok {
				break
			}
			book(f, pid, s)
			booked[i] = append(booked[i], pid)
		}
		if len(booked[i]) < int(f.Capacity) && len(out) < count {
			flights[i].Capacity = int32(len(booked[i]))
		}
	}

	// Extra seats go to passengers already on the flight, so the number of
	// unique passengers never changes.
	for misses := 0; len(out) < count && misses < 4*len(flights); {
		i := g.rng.Intn(len(flights))
		if len(booked[i]) == 0 {
			misses++
			continue
		}
		s, ok := seat(flights[i].ID)
		if !ok {
			misses++
			continue
		}
		book(flights[i], booked[i][g.rng.Intn(len(booked[i]))], s)
	}
	return out
}

// distinct returns k distinct indices in [0, n).
func (g *generator) distinct(k, n int) []int {
	if k >= n {
		return g.rng.Perm(n)
	}
	if 2*k > n {
		return g.rng.Perm(n)[:k]
	}
	seen := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for len(out) < k {
		p := g.rng.Intn(n)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
