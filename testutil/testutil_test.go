package testutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(4711)
	b := NewRNG(4711)

	assert.Equal(t, a.Perm(20), b.Perm(20))
	assert.Equal(t, int64(4711), a.Seed())

	first := a.Intn(1000)
	a.Reset()
	a.Perm(20)
	assert.Equal(t, first, a.Intn(1000))
}

func TestShuffledFlights(t *testing.T) {
	rng := NewRNG(1)
	flights := rng.ShuffledFlights(50, 10)
	require.Len(t, flights, 50)

	ids := make([]int32, 0, len(flights))
	for _, f := range flights {
		ids = append(ids, f.ID)
		require.NoError(t, f.Validate())
	}
	assert.False(t, slices.IsSorted(ids))
	slices.Sort(ids)
	assert.Equal(t, int32(1), ids[0])
	assert.Equal(t, int32(50), ids[49])
}

func TestReservations(t *testing.T) {
	rs := NewRNG(2).Reservations(100, 5, 7)
	require.Len(t, rs, 100)

	seats := map[string]bool{}
	for _, r := range rs {
		assert.GreaterOrEqual(t, r.FlightID, int32(1))
		assert.LessOrEqual(t, r.FlightID, int32(5))
		assert.LessOrEqual(t, r.PassengerID, int32(7))
		assert.False(t, seats[r.SeatNumber])
		seats[r.SeatNumber] = true
	}
}

func TestFixture(t *testing.T) {
	ds := Fixture()
	require.NoError(t, ds.Validate())
	assert.Len(t, ds.Flights, 2)
	assert.Len(t, ds.Passengers, 3)
	assert.Len(t, ds.Reservations, 4)
}
