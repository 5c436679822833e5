package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/hupe1980/skyindex"
	"github.com/hupe1980/skyindex/blobstore"
	"github.com/hupe1980/skyindex/capacity"
	"github.com/hupe1980/skyindex/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comparisons() []skyindex.Comparison {
	return []skyindex.Comparison{
		{
			Query:     skyindex.FindFlight(1000),
			Baseline:  skyindex.Result{Duration: 4 * time.Millisecond},
			Optimized: skyindex.Result{Duration: time.Millisecond},
			Agree:     true,
		},
		{
			Query:     skyindex.CountUnique(1000),
			Baseline:  skyindex.Result{Duration: 2 * time.Millisecond},
			Optimized: skyindex.Result{Duration: 2 * time.Millisecond},
			Agree:     true,
		},
		{
			Query:     skyindex.FindFlight(1001),
			Baseline:  skyindex.Result{Duration: 2 * time.Millisecond, Err: skyindex.ErrClosed},
			Optimized: skyindex.Result{Duration: time.Millisecond},
		},
	}
}

func TestNew(t *testing.T) {
	builds := []skyindex.BuildReport{{
		Prototype:    skyindex.Baseline,
		Flights:      3,
		Passengers:   2,
		Reservations: 4,
		Total:        1500 * time.Microsecond,
	}}

	r := New(builds, comparisons())

	require.Len(t, r.Builds, 1)
	assert.Equal(t, "baseline", r.Builds[0].Prototype)
	assert.InDelta(t, 1.5, r.Builds[0].TotalMs, 1e-9)

	require.Len(t, r.Queries, 2)
	assert.Equal(t, QueryStats{
		Kind:        "flight",
		Count:       2,
		Disagree:    1,
		BaselineMs:  6,
		OptimizedMs: 2,
		Speedup:     3,
	}, r.Queries[0])
	assert.Equal(t, "count_unique", r.Queries[1].Kind)
	assert.InDelta(t, 1.0, r.Queries[1].Speedup, 1e-9)

	assert.Equal(t, 3, r.TotalQueries)
	assert.False(t, r.Agree())
	require.Len(t, r.Disagreements, 1)
	assert.Equal(t, "flight(1001)", r.Disagreements[0].Query)
	assert.Equal(t, skyindex.ErrClosed.Error(), r.Disagreements[0].BaselineError)
	assert.Empty(t, r.Disagreements[0].OptimizedError)
}

func TestAddInvalid(t *testing.T) {
	r := New(nil, nil)
	assert.True(t, r.Agree())

	r.AddInvalid([]capacity.Report{
		{FlightID: 1002, Capacity: 1, Count: 2, Status: capacity.Over},
		{FlightID: 1000, Capacity: 5, Count: 2, Status: capacity.Under},
	})
	require.Len(t, r.Invalid, 2)
	assert.Equal(t, int32(1000), r.Invalid[0].FlightID)
	assert.Equal(t, "under", r.Invalid[0].Status)
	assert.Equal(t, "over", r.Invalid[1].Status)
}

func TestEncode(t *testing.T) {
	r := New(nil, comparisons())

	var buf bytes.Buffer
	require.NoError(t, r.Encode(&buf, nil))
	assert.Contains(t, buf.String(), `"totalQueries": 3`)

	var decoded Report
	require.NoError(t, codec.Default.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.Queries, decoded.Queries)

	buf.Reset()
	require.NoError(t, r.Encode(&buf, codec.YAML{}))
	assert.Contains(t, buf.String(), "totalQueries: 3")
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	r := New(nil, comparisons())

	require.NoError(t, r.Save(ctx, store, "reports/run.yaml"))
	require.NoError(t, r.Save(ctx, store, "reports/run.json"))

	names, err := store.List(ctx, "reports/")
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/run.json", "reports/run.yaml"}, names)

	rc, _, err := blobstore.OpenReader(ctx, store, "reports/run.yaml")
	require.NoError(t, err)
	defer rc.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(rc)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, codec.YAML{}.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.TotalQueries)
}
