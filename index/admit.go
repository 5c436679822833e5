package index

import (
	"math"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/skyindex/model"
)

// maxDenseSpan bounds the id range for which CountUnique uses a dense bitmap.
const maxDenseSpan = 1 << 24

// Admit decides whether r may be added to a flight whose current reservations
// are onFlight. It returns ErrFlightNotFound for unknown flights and a
// *CapacityError when r's passenger is new to the flight and the flight is full.
// An extra seat for a passenger already on the flight is always admitted.
func Admit(r model.Reservation, flights FlightLookup, onFlight []model.Reservation) error {
	f, ok := flights.Find(r.FlightID)
	if !ok {
		return ErrFlightNotFound
	}

	for _, existing := range onFlight {
		if existing.PassengerID == r.PassengerID {
			return nil
		}
	}

	if n := CountUnique(onFlight); n >= int(f.Capacity) {
		return &CapacityError{FlightID: f.ID, PassengerID: r.PassengerID, Capacity: f.Capacity, Count: n}
	}
	return nil
}

// CountUnique returns the number of distinct passenger ids in rs.
// Dense id ranges use a bitset offset by the smallest id; sparse ranges fall
// back to a roaring bitmap.
func CountUnique(rs []model.Reservation) int {
	switch len(rs) {
	case 0:
		return 0
	case 1:
		return 1
	}

	lo, hi := int64(math.MaxInt32), int64(math.MinInt32)
	for _, r := range rs {
		lo = min(lo, int64(r.PassengerID))
		hi = max(hi, int64(r.PassengerID))
	}

	span := hi - lo + 1
	if span > maxDenseSpan && span > int64(len(rs))*64 {
		rb := roaring.New()
		for _, r := range rs {
			rb.Add(sortable(r.PassengerID))
		}
		return int(rb.GetCardinality())
	}

	seen := bitset.New(uint(span))
	count := 0
	for _, r := range rs {
		i := uint(int64(r.PassengerID) - lo)
		if !seen.Test(i) {
			seen.Set(i)
			count++
		}
	}
	return count
}

// DistinctFlights returns the distinct flight ids in rs in ascending order.
func DistinctFlights(rs []model.Reservation) []int32 {
	if len(rs) == 0 {
		return nil
	}
	rb := roaring.New()
	for _, r := range rs {
		rb.Add(sortable(r.FlightID))
	}
	out := make([]int32, 0, rb.GetCardinality())
	it := rb.Iterator()
	for it.HasNext() {
		out = append(out, unsortable(it.Next()))
	}
	return out
}

// sortable maps int32 onto uint32 preserving order.
func sortable(v int32) uint32 { return uint32(v) ^ (1 << 31) }

func unsortable(v uint32) int32 { return int32(v ^ (1 << 31)) }

// ContainsFold reports whether substr is within s, ignoring case.
// An empty substr matches every s.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
