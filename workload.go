package skyindex

import (
	"math"
	"math/rand"
	"strings"

	"github.com/hupe1980/skyindex/model"
)

// missRate is the share of id queries that target an id absent from the dataset.
const missRate = 0.1

// RandomQueries returns n queries over ds, cycling through every QueryKind.
// Most ids and texts are drawn from ds; about one in ten ids is absent so
// that misses are exercised too. The same seed yields the same workload.
func RandomQueries(ds model.Dataset, n int, seed int64) []Query {
	rng := rand.New(rand.NewSource(seed))
	kinds := make([]QueryKind, 0, len(queryNames))
	for k := QueryFlight; k <= QueryValidateCapacity; k++ {
		kinds = append(kinds, k)
	}

	var flightRange, passengerRange idRange
	for _, f := range ds.Flights {
		flightRange.add(f.ID)
	}
	for _, p := range ds.Passengers {
		passengerRange.add(p.ID)
	}

	flightID := func() int32 {
		if len(ds.Flights) == 0 || rng.Float64() < missRate {
			return flightRange.miss(rng)
		}
		return ds.Flights[rng.Intn(len(ds.Flights))].ID
	}
	passengerID := func() int32 {
		if len(ds.Passengers) == 0 || rng.Float64() < missRate {
			return passengerRange.miss(rng)
		}
		return ds.Passengers[rng.Intn(len(ds.Passengers))].ID
	}

	out := make([]Query, 0, n)
	for i := range n {
		q := Query{Kind: kinds[i%len(kinds)]}
		switch q.Kind {
		case QueryFlightByNumber:
			q.Text = "ZZ0000"
			if len(ds.Flights) > 0 {
				q.Text = ds.Flights[rng.Intn(len(ds.Flights))].FlightNumber
				if rng.Intn(2) == 0 {
					q.Text = strings.ToLower(q.Text)
				}
			}
		case QueryPassengerByName:
			q.Text = "Nobody"
			if len(ds.Passengers) > 0 {
				name := ds.Passengers[rng.Intn(len(ds.Passengers))].Name
				if j := strings.LastIndexByte(name, ' '); j >= 0 {
					name = name[j+1:]
				}
				q.Text = name
			}
		case QueryPassenger, QueryFlightsForPassenger:
			q.ID = passengerID()
		default:
			q.ID = flightID()
		}
		out = append(out, q)
	}
	return out
}

// idRange tracks the smallest and largest id of a record set.
type idRange struct {
	lo, hi int32
	set    bool
}

func (r *idRange) add(id int32) {
	if !r.set {
		r.lo, r.hi, r.set = id, id, true
		return
	}
	r.lo = min(r.lo, id)
	r.hi = max(r.hi, id)
}

// miss returns an id outside [lo, hi], above the range when it fits in an
// int32 and below it otherwise. Only a range spanning every int32 has no
// outside id; hi is returned then.
func (r *idRange) miss(rng *rand.Rand) int32 {
	off := int64(1 + rng.Int31n(1000))
	if id := int64(r.hi) + off; id <= math.MaxInt32 {
		return int32(id)
	}
	if id := int64(r.lo) - off; id >= math.MinInt32 {
		return int32(id)
	}
	return r.hi
}
