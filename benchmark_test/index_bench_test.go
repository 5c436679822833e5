package benchmark_test

import (
	"strconv"
	"testing"

	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/index/flightavl"
	"github.com/hupe1980/skyindex/index/flightbst"
	"github.com/hupe1980/skyindex/index/passengerhash"
	"github.com/hupe1980/skyindex/index/passengerlist"
	"github.com/hupe1980/skyindex/index/reservationarray"
	"github.com/hupe1980/skyindex/index/reservationbst"
	"github.com/hupe1980/skyindex/model"
	"github.com/hupe1980/skyindex/testutil"
)

const benchSeed = 4711

// ============================================================================
// Flight Index Benchmarks
// ============================================================================

func flightIndexes() map[string]func() index.FlightIndex {
	return map[string]func() index.FlightIndex{
		"bst": func() index.FlightIndex { return flightbst.New() },
		"avl": func() index.FlightIndex { return flightavl.New() },
	}
}

// BenchmarkFlightInsert compares tree construction on sorted and shuffled
// input. Sorted input degenerates the unbalanced BST into a list.
func BenchmarkFlightInsert(b *testing.B) {
	const n = 2000
	inputs := map[string][]model.Flight{
		"sorted":   testutil.SortedFlights(n, 100),
		"shuffled": testutil.NewRNG(benchSeed).ShuffledFlights(n, 100),
	}

	for name, newIndex := range flightIndexes() {
		for order, flights := range inputs {
			b.Run(name+"/"+order, func(b *testing.B) {
				b.ReportAllocs()
				for b.Loop() {
					idx := newIndex()
					for _, f := range flights {
						if err := idx.Insert(f); err != nil {
							b.Fatal(err)
						}
					}
					_ = idx.Close()
				}
				b.ReportMetric(float64(n*b.N)/b.Elapsed().Seconds(), "flights/sec")
			})
		}
	}
}

// BenchmarkFlightFind measures point lookups after sorted insertion.
func BenchmarkFlightFind(b *testing.B) {
	const n = 2000
	flights := testutil.SortedFlights(n, 100)

	for name, newIndex := range flightIndexes() {
		b.Run(name, func(b *testing.B) {
			idx := newIndex()
			defer idx.Close()
			for _, f := range flights {
				if err := idx.Insert(f); err != nil {
					b.Fatal(err)
				}
			}
			ids := testutil.NewRNG(benchSeed).Perm(n)

			b.ReportAllocs()
			i := 0
			for b.Loop() {
				if _, ok := idx.Find(int32(ids[i%n] + 1)); !ok {
					b.Fatal("missing flight")
				}
				i++
			}
		})
	}
}

// ============================================================================
// Passenger Index Benchmarks
// ============================================================================

func passengerIndexes(n int) map[string]func(b *testing.B) index.PassengerIndex {
	return map[string]func(b *testing.B) index.PassengerIndex{
		"list": func(*testing.B) index.PassengerIndex { return passengerlist.New() },
		"hash": func(b *testing.B) index.PassengerIndex {
			t, err := passengerhash.New(n)
			if err != nil {
				b.Fatal(err)
			}
			return t
		},
		"hash-grow": func(b *testing.B) index.PassengerIndex {
			t, err := passengerhash.New(1)
			if err != nil {
				b.Fatal(err)
			}
			return t
		},
	}
}

func BenchmarkPassengerInsert(b *testing.B) {
	for _, n := range []int{1_000, 5_000} {
		passengers := testutil.NewRNG(benchSeed).ShuffledPassengers(n)
		for name, newIndex := range passengerIndexes(n) {
			b.Run(name+"/n="+strconv.Itoa(n), func(b *testing.B) {
				b.ReportAllocs()
				for b.Loop() {
					idx := newIndex(b)
					for _, p := range passengers {
						if err := idx.Insert(p); err != nil {
							b.Fatal(err)
						}
					}
					_ = idx.Close()
				}
			})
		}
	}
}

func BenchmarkPassengerFind(b *testing.B) {
	const n = 5_000
	passengers := testutil.NewRNG(benchSeed).ShuffledPassengers(n)

	for name, newIndex := range passengerIndexes(n) {
		b.Run(name, func(b *testing.B) {
			idx := newIndex(b)
			defer idx.Close()
			for _, p := range passengers {
				if err := idx.Insert(p); err != nil {
					b.Fatal(err)
				}
			}

			i := 0
			for b.Loop() {
				if _, ok := idx.Find(int32(i%n) + 1); !ok {
					b.Fatal("missing passenger")
				}
				i++
			}
		})
	}
}

// ============================================================================
// Reservation Index Benchmarks
// ============================================================================

func reservationIndexes() map[string]func() index.ReservationIndex {
	return map[string]func() index.ReservationIndex{
		"array": func() index.ReservationIndex { return reservationarray.New() },
		"bst":   func() index.ReservationIndex { return reservationbst.New() },
	}
}

func BenchmarkReservationInsert(b *testing.B) {
	const n = 10_000
	rs := testutil.NewRNG(benchSeed).Reservations(n, 200, 1000)

	for name, newIndex := range reservationIndexes() {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				idx := newIndex()
				for _, r := range rs {
					if err := idx.Insert(r); err != nil {
						b.Fatal(err)
					}
				}
				_ = idx.Close()
			}
		})
	}
}

func BenchmarkCountUniquePassengers(b *testing.B) {
	const flights = 200
	rs := testutil.NewRNG(benchSeed).Reservations(20_000, flights, 1000)

	for name, newIndex := range reservationIndexes() {
		b.Run(name, func(b *testing.B) {
			idx := newIndex()
			defer idx.Close()
			for _, r := range rs {
				if err := idx.Insert(r); err != nil {
					b.Fatal(err)
				}
			}

			i := 0
			for b.Loop() {
				_ = idx.CountUniquePassengers(int32(i%flights) + 1)
				i++
			}
		})
	}
}
