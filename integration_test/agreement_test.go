package integration_test

import (
	"cmp"
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skyindex"
	"github.com/hupe1980/skyindex/blobstore"
	"github.com/hupe1980/skyindex/capacity"
	"github.com/hupe1980/skyindex/dataset"
	"github.com/hupe1980/skyindex/model"
	"github.com/hupe1980/skyindex/resource"
)

// TestPrototypesAgree builds both prototypes from the same generated data and
// checks that every query returns identical results.
func TestPrototypesAgree(t *testing.T) {
	for _, size := range []dataset.Size{10, dataset.Small, dataset.Medium} {
		t.Run(size.String(), func(t *testing.T) {
			ctx := context.Background()
			ds := dataset.Generate(size, int64(size)+1)

			orch, err := skyindex.Build(ctx, ds, skyindex.WithValidation(capacity.Exact))
			require.NoError(t, err)
			defer orch.Close()

			for _, r := range orch.Reports() {
				assert.Zero(t, r.Rejected, r.Prototype.String())
				assert.Equal(t, len(ds.Flights), r.Flights)
				assert.Equal(t, len(ds.Passengers), r.Passengers)
				assert.Equal(t, len(ds.Reservations), r.Reservations)
			}

			comps, err := orch.CompareAll(ctx, skyindex.RandomQueries(ds, 2000, 9))
			require.NoError(t, err)
			for _, c := range comps {
				require.True(t, c.Agree, "%s: %v vs %v", c.Query, c.Baseline.Value, c.Optimized.Value)
			}

			base, opt := orch.Engine(skyindex.Baseline), orch.Engine(skyindex.Optimized)
			assert.Equal(t, slices.Collect(base.Flights()), slices.Collect(opt.Flights()))
			assert.Equal(t, slices.Collect(base.Passengers()), slices.Collect(opt.Passengers()))
			for _, f := range ds.Flights {
				assert.Equal(t, base.CountUniquePassengers(f.ID), opt.CountUniquePassengers(f.ID))
			}
			for _, p := range ds.Passengers[:min(len(ds.Passengers), 200)] {
				assert.Equal(t, base.DistinctFlights(p.ID), opt.DistinctFlights(p.ID))
				assert.Equal(t, base.CountReservations(p.ID), opt.CountReservations(p.ID))
			}

			reports, err := opt.ValidateAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, reports)
		})
	}
}

// TestTraversalOrder checks that every engine yields flights in ascending id
// order regardless of input order.
func TestTraversalOrder(t *testing.T) {
	ds := dataset.Generate(dataset.Small, 3)
	slices.Reverse(ds.Flights)

	orch, err := skyindex.Build(context.Background(), ds)
	require.NoError(t, err)
	defer orch.Close()

	for _, p := range skyindex.Prototypes {
		flights := slices.Collect(orch.Engine(p).Flights())
		require.Len(t, flights, len(ds.Flights))
		assert.True(t, slices.IsSortedFunc(flights, func(a, b model.Flight) int { return cmp.Compare(a.ID, b.ID) }), p.String())
	}
}

// TestStoreRoundTrip saves a generated dataset, loads it back through a
// budgeted controller and checks the engines see the same data.
func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	ds := dataset.Generate(dataset.Small, 21)
	store := blobstore.NewLocalStore(t.TempDir())
	names := dataset.DefaultNames().WithCompression(dataset.LZ4)

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 256 << 20, MaxWorkers: 2})
	require.NoError(t, dataset.Save(ctx, store, names, ds, dataset.WithResourceController(rc)))

	loaded, err := dataset.Load(ctx, store, names, dataset.WithResourceController(rc))
	require.NoError(t, err)
	require.Equal(t, ds, loaded)

	orch, err := skyindex.Build(ctx, loaded, skyindex.WithResourceController(rc))
	require.NoError(t, err)

	comps, err := orch.CompareAll(ctx, skyindex.RandomQueries(loaded, 500, 1))
	require.NoError(t, err)
	for _, c := range comps {
		require.True(t, c.Agree, c.Query.String())
	}

	require.NoError(t, orch.Close())
	assert.Zero(t, rc.MemoryUsage(), "engines release their budget on Close")
}
