// Package indextest provides conformance suites that every index
// implementation must pass. Backends call them from their own tests so the
// baseline and optimized variants are held to identical behavior.
package indextest

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/model"
)

// FlightMap is a FlightLookup backed by a map.
type FlightMap map[int32]model.Flight

// Find implements index.FlightLookup.
func (m FlightMap) Find(id int32) (model.Flight, bool) {
	f, ok := m[id]
	return f, ok
}

// RunFlightIndex exercises a FlightIndex produced by newIndex.
func RunFlightIndex(t *testing.T, newIndex func() index.FlightIndex) {
	t.Run("FindAfterShuffledInsert", func(t *testing.T) {
		idx := newIndex()
		rng := rand.New(rand.NewSource(11))
		perm := rng.Perm(500)
		for _, v := range perm {
			require.NoError(t, idx.Insert(model.Flight{ID: int32(v * 2), Capacity: int32(v)}))
		}
		assert.Equal(t, 500, idx.Len())

		for _, v := range perm {
			f, ok := idx.Find(int32(v * 2))
			require.True(t, ok)
			assert.Equal(t, int32(v), f.Capacity)
			_, ok = idx.Find(int32(v*2 + 1))
			assert.False(t, ok)
		}

		var got []int32
		for f := range idx.All() {
			got = append(got, f.ID)
		}
		assert.Len(t, got, 500)
		assert.True(t, slices.IsSorted(got))
		for i := 1; i < len(got); i++ {
			require.Less(t, got[i-1], got[i])
		}
		require.NoError(t, idx.Close())
	})

	t.Run("Empty", func(t *testing.T) {
		idx := newIndex()
		_, ok := idx.Find(1)
		assert.False(t, ok)
		assert.Zero(t, idx.Len())
		assert.Zero(t, idx.Height())
		assert.Empty(t, slices.Collect(idx.All()))
		require.NoError(t, idx.Close())
	})

	t.Run("CloseFreesEveryNode", func(t *testing.T) {
		idx := newIndex()
		for i := range int32(257) {
			require.NoError(t, idx.Insert(model.Flight{ID: i}))
		}
		require.NoError(t, idx.Close())
		stats := idx.NodeStats()
		assert.Equal(t, uint64(257), stats.Allocs)
		assert.Equal(t, stats.Allocs, stats.Frees)
		assert.Zero(t, stats.Live)
	})
}

// RunPassengerIndex exercises a PassengerIndex produced by newIndex.
func RunPassengerIndex(t *testing.T, newIndex func() index.PassengerIndex) {
	t.Run("DistinctCount", func(t *testing.T) {
		idx := newIndex()
		rng := rand.New(rand.NewSource(5))
		distinct := map[int32]string{}
		for i := range 3000 {
			id := int32(rng.Intn(1000))
			name := "p" + string(rune('a'+i%26))
			require.NoError(t, idx.Insert(model.Passenger{ID: id, Name: name}))
			distinct[id] = name
		}
		assert.Equal(t, len(distinct), idx.Len())

		for id, name := range distinct {
			p, ok := idx.Find(id)
			require.True(t, ok)
			assert.Equal(t, name, p.Name, "last write wins for %d", id)
		}
		_, ok := idx.Find(1000)
		assert.False(t, ok)
		require.NoError(t, idx.Close())
	})

	t.Run("NameSearch", func(t *testing.T) {
		idx := newIndex()
		require.NoError(t, idx.Insert(model.Passenger{ID: 3, Name: "James Brown"}))
		require.NoError(t, idx.Insert(model.Passenger{ID: 1, Name: "Emma BROWNING"}))
		require.NoError(t, idx.Insert(model.Passenger{ID: 2, Name: "Olivia Jones"}))

		p, ok := idx.FindByName("brown")
		require.True(t, ok)
		assert.Equal(t, int32(1), p.ID)

		got := idx.SearchByName("Brown")
		require.Len(t, got, 2)
		assert.Equal(t, int32(1), got[0].ID)
		assert.Equal(t, int32(3), got[1].ID)

		_, ok = idx.FindByName("zzz")
		assert.False(t, ok)
		require.NoError(t, idx.Close())
	})

	t.Run("CloseFreesEveryNode", func(t *testing.T) {
		idx := newIndex()
		for i := range int32(300) {
			require.NoError(t, idx.Insert(model.Passenger{ID: i * 7}))
		}
		require.NoError(t, idx.Close())
		stats := idx.NodeStats()
		assert.Equal(t, stats.Allocs, stats.Frees)
		assert.Zero(t, stats.Live)
		assert.ErrorIs(t, idx.Insert(model.Passenger{ID: 1}), index.ErrClosed)
	})
}

// RunReservationIndex exercises a ReservationIndex produced by newIndex.
func RunReservationIndex(t *testing.T, newIndex func() index.ReservationIndex) {
	t.Run("UniqueCount", func(t *testing.T) {
		idx := newIndex()
		for _, r := range []model.Reservation{
			{FlightID: 7, PassengerID: 1, SeatNumber: "1A"},
			{FlightID: 7, PassengerID: 1, SeatNumber: "1B"},
			{FlightID: 7, PassengerID: 2, SeatNumber: "2A"},
		} {
			require.NoError(t, idx.Insert(r))
		}
		assert.Equal(t, 2, idx.CountUniquePassengers(7))
		assert.Zero(t, idx.CountUniquePassengers(8))
		assert.Equal(t, 3, idx.Len())
		require.NoError(t, idx.Close())
	})

	t.Run("Upsert", func(t *testing.T) {
		idx := newIndex()
		r := model.Reservation{FlightID: 1, PassengerID: 1, SeatNumber: "3C"}
		require.NoError(t, idx.Insert(r))
		r.BookingDate = r.BookingDate.AddDate(0, 0, 1)
		require.NoError(t, idx.Insert(r))

		assert.Equal(t, 1, idx.Len())
		got := idx.ByFlight(1)
		require.Len(t, got, 1)
		assert.Equal(t, r.BookingDate, got[0].BookingDate)
		require.NoError(t, idx.Close())
	})

	t.Run("Queries", func(t *testing.T) {
		idx := newIndex()
		rng := rand.New(rand.NewSource(9))
		var all []model.Reservation
		seen := map[model.ReservationKey]bool{}
		for range 2000 {
			r := model.Reservation{
				FlightID:    int32(rng.Intn(20)),
				PassengerID: int32(rng.Intn(100)),
				SeatNumber:  string(rune('A' + rng.Intn(6))),
			}
			require.NoError(t, idx.Insert(r))
			if !seen[r.Key()] {
				seen[r.Key()] = true
				all = append(all, r)
			}
		}
		slices.SortFunc(all, model.CompareReservations)
		assert.Equal(t, len(all), idx.Len())
		assert.Equal(t, all, slices.Collect(idx.All()))

		for fid := int32(-1); fid <= 20; fid++ {
			var want []model.Reservation
			pids := map[int32]bool{}
			for _, r := range all {
				if r.FlightID == fid {
					want = append(want, r)
					pids[r.PassengerID] = true
				}
			}
			assert.Equal(t, want, idx.ByFlight(fid), "flight %d", fid)
			assert.Equal(t, len(pids), idx.CountUniquePassengers(fid))
		}

		for pid := int32(0); pid < 100; pid += 7 {
			var want []model.Reservation
			fids := map[int32]bool{}
			for _, r := range all {
				if r.PassengerID == pid {
					want = append(want, r)
					fids[r.FlightID] = true
				}
			}
			assert.Equal(t, want, idx.ByPassenger(pid), "passenger %d", pid)
			assert.Equal(t, len(want), idx.CountByPassenger(pid))
			flights := idx.FlightsForPassenger(pid)
			assert.Len(t, flights, len(fids))
			assert.True(t, slices.IsSorted(flights))
		}
		require.NoError(t, idx.Close())
	})

	t.Run("AddWithValidation", func(t *testing.T) {
		const capacity = 5
		idx := newIndex()
		flights := FlightMap{100: {ID: 100, Capacity: capacity}}

		for pid := range int32(capacity) {
			require.NoError(t, idx.AddWithValidation(model.Reservation{FlightID: 100, PassengerID: pid, SeatNumber: "1A"}, flights))
		}

		err := idx.AddWithValidation(model.Reservation{FlightID: 100, PassengerID: capacity, SeatNumber: "9A"}, flights)
		require.ErrorIs(t, err, index.ErrCapacityExceeded)
		assert.Equal(t, capacity, idx.Len())

		require.NoError(t, idx.AddWithValidation(model.Reservation{FlightID: 100, PassengerID: 0, SeatNumber: "1B"}, flights))
		assert.Equal(t, capacity+1, idx.Len())
		assert.Equal(t, capacity, idx.CountUniquePassengers(100))

		err = idx.AddWithValidation(model.Reservation{FlightID: 404, PassengerID: 1}, flights)
		require.ErrorIs(t, err, index.ErrFlightNotFound)
		require.NoError(t, idx.Close())
	})

	t.Run("ZeroCapacity", func(t *testing.T) {
		idx := newIndex()
		flights := FlightMap{1: {ID: 1, Capacity: 0}}
		err := idx.AddWithValidation(model.Reservation{FlightID: 1, PassengerID: 1}, flights)
		require.ErrorIs(t, err, index.ErrCapacityExceeded)
		assert.Zero(t, idx.Len())
		require.NoError(t, idx.Close())
	})

	t.Run("Close", func(t *testing.T) {
		idx := newIndex()
		for i := range int32(100) {
			require.NoError(t, idx.Insert(model.Reservation{FlightID: i % 3, PassengerID: i}))
		}
		require.NoError(t, idx.Close())
		stats := idx.NodeStats()
		assert.Equal(t, stats.Allocs, stats.Frees)
		assert.Zero(t, stats.Live)
		assert.ErrorIs(t, idx.Insert(model.Reservation{}), index.ErrClosed)
		require.NoError(t, idx.Close())
	})
}
