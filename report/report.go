// Package report summarizes a comparison run of both prototypes into a
// serializable document.
package report

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/hupe1980/skyindex"
	"github.com/hupe1980/skyindex/blobstore"
	"github.com/hupe1980/skyindex/capacity"
	"github.com/hupe1980/skyindex/codec"
)

// Report is the document written at the end of a run.
type Report struct {
	GeneratedAt   time.Time      `json:"generatedAt" yaml:"generatedAt"`
	Builds        []Build        `json:"builds" yaml:"builds"`
	Queries       []QueryStats   `json:"queries" yaml:"queries"`
	TotalQueries  int            `json:"totalQueries" yaml:"totalQueries"`
	Disagreements []Disagreement `json:"disagreements,omitempty" yaml:"disagreements,omitempty"`
	Invalid       []Validation   `json:"invalidFlights,omitempty" yaml:"invalidFlights,omitempty"`
}

// Build summarizes one BuildReport. Durations are milliseconds.
type Build struct {
	Prototype          string  `json:"prototype" yaml:"prototype"`
	Flights            int     `json:"flights" yaml:"flights"`
	Passengers         int     `json:"passengers" yaml:"passengers"`
	Reservations       int     `json:"reservations" yaml:"reservations"`
	Rejected           int     `json:"rejected" yaml:"rejected"`
	FlightMs           float64 `json:"flightMs" yaml:"flightMs"`
	PassengerMs        float64 `json:"passengerMs" yaml:"passengerMs"`
	ReservationMs      float64 `json:"reservationMs" yaml:"reservationMs"`
	TotalMs            float64 `json:"totalMs" yaml:"totalMs"`
	PassengerTableSize int     `json:"passengerTableSize,omitempty" yaml:"passengerTableSize,omitempty"`
	TableRetries       int     `json:"tableRetries,omitempty" yaml:"tableRetries,omitempty"`
	LiveNodes          uint64  `json:"liveNodes" yaml:"liveNodes"`
	PeakRSSBytes       int64   `json:"peakRssBytes,omitempty" yaml:"peakRssBytes,omitempty"`
}

// QueryStats aggregates the comparisons of one query kind.
type QueryStats struct {
	Kind        string  `json:"kind" yaml:"kind"`
	Count       int     `json:"count" yaml:"count"`
	Disagree    int     `json:"disagree" yaml:"disagree"`
	BaselineMs  float64 `json:"baselineMs" yaml:"baselineMs"`
	OptimizedMs float64 `json:"optimizedMs" yaml:"optimizedMs"`
	// Speedup is total baseline time over total optimized time.
	Speedup float64 `json:"speedup" yaml:"speedup"`
}

// Disagreement records a query whose results differed between prototypes.
type Disagreement struct {
	Query          string `json:"query" yaml:"query"`
	BaselineError  string `json:"baselineError,omitempty" yaml:"baselineError,omitempty"`
	OptimizedError string `json:"optimizedError,omitempty" yaml:"optimizedError,omitempty"`
}

// Validation is a flight that failed capacity validation.
type Validation struct {
	FlightID int32  `json:"flightId" yaml:"flightId"`
	Capacity int32  `json:"capacity" yaml:"capacity"`
	Count    int    `json:"count" yaml:"count"`
	Status   string `json:"status" yaml:"status"`
}

// New builds a Report from build reports and comparisons. Query kinds are
// listed in the order they first appear.
func New(builds []skyindex.BuildReport, comps []skyindex.Comparison) *Report {
	r := &Report{
		GeneratedAt:  time.Now().UTC(),
		TotalQueries: len(comps),
	}
	for _, b := range builds {
		r.Builds = append(r.Builds, Build{
			Prototype:          b.Prototype.String(),
			Flights:            b.Flights,
			Passengers:         b.Passengers,
			Reservations:       b.Reservations,
			Rejected:           b.Rejected,
			FlightMs:           ms(b.FlightTime),
			PassengerMs:        ms(b.PassengerTime),
			ReservationMs:      ms(b.ReservationTime),
			TotalMs:            ms(b.Total),
			PassengerTableSize: b.PassengerTableSize,
			TableRetries:       b.TableRetries,
			LiveNodes:          b.Nodes.Live,
			PeakRSSBytes:       b.PeakRSS,
		})
	}

	type totals struct {
		stats               QueryStats
		baseline, optimized time.Duration
	}
	byKind := map[skyindex.QueryKind]*totals{}
	var order []skyindex.QueryKind
	for _, c := range comps {
		t, ok := byKind[c.Query.Kind]
		if !ok {
			t = &totals{stats: QueryStats{Kind: c.Query.Kind.String()}}
			byKind[c.Query.Kind] = t
			order = append(order, c.Query.Kind)
		}
		t.stats.Count++
		t.baseline += c.Baseline.Duration
		t.optimized += c.Optimized.Duration
		if !c.Agree {
			t.stats.Disagree++
			r.Disagreements = append(r.Disagreements, Disagreement{
				Query:          c.Query.String(),
				BaselineError:  errString(c.Baseline.Err),
				OptimizedError: errString(c.Optimized.Err),
			})
		}
	}
	for _, k := range order {
		t := byKind[k]
		t.stats.BaselineMs = ms(t.baseline)
		t.stats.OptimizedMs = ms(t.optimized)
		if t.optimized > 0 {
			t.stats.Speedup = float64(t.baseline) / float64(t.optimized)
		}
		r.Queries = append(r.Queries, t.stats)
	}
	return r
}

// AddInvalid appends capacity validation failures sorted by flight id.
func (r *Report) AddInvalid(reports []capacity.Report) {
	for _, v := range reports {
		r.Invalid = append(r.Invalid, Validation{
			FlightID: v.FlightID,
			Capacity: v.Capacity,
			Count:    v.Count,
			Status:   v.Status.String(),
		})
	}
	slices.SortFunc(r.Invalid, func(a, b Validation) int { return cmp.Compare(a.FlightID, b.FlightID) })
}

// Agree reports whether every compared query agreed.
func (r *Report) Agree() bool { return len(r.Disagreements) == 0 }

// Encode writes r to w with c.
func (r *Report) Encode(w io.Writer, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}
	b, err := c.Marshal(r)
	if err != nil {
		return fmt.Errorf("report: encode %s: %w", c.Name(), err)
	}
	_, err = w.Write(b)
	return err
}

// Save stores r as the blob name, picking the codec from its extension.
func (r *Report) Save(ctx context.Context, store blobstore.BlobStore, name string) error {
	c := codec.ForFile(name)
	b, err := c.Marshal(r)
	if err != nil {
		return fmt.Errorf("report: encode %s: %w", c.Name(), err)
	}
	if err := store.Put(ctx, name, b); err != nil {
		return fmt.Errorf("report: save %s: %w", name, err)
	}
	return nil
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
