package passengerhash

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/model"
	"github.com/hupe1980/skyindex/resource"
)

func TestTable_New(t *testing.T) {
	tbl, err := New(100)
	require.NoError(t, err)
	assert.Equal(t, 149, tbl.Size())
	assert.Zero(t, tbl.Len())
}

func TestTable_InsertFind(t *testing.T) {
	tbl, err := New(10)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	inserted := map[int32]bool{}
	for range 5000 {
		id := int32(rng.Intn(4000)) - 1000
		require.NoError(t, tbl.Insert(model.Passenger{ID: id, Name: "P"}))
		inserted[id] = true
	}

	assert.Equal(t, len(inserted), tbl.Len())
	require.NoError(t, tbl.Validate())

	for id := int32(-1000); id < 3000; id++ {
		_, ok := tbl.Find(id)
		assert.Equal(t, inserted[id], ok, "id %d", id)
	}
	_, ok := tbl.Find(10_000)
	assert.False(t, ok)
}

func TestTable_Collisions(t *testing.T) {
	tbl, err := New(1, func(o *Options) { o.DisableGrowth = true })
	require.NoError(t, err)
	size := int32(tbl.Size())

	// All ids hash to bucket 0.
	for i := range int32(5) {
		require.NoError(t, tbl.Insert(model.Passenger{ID: i * size, Name: "x"}))
	}
	require.NoError(t, tbl.Insert(model.Passenger{ID: 2 * size, Name: "updated"}))

	assert.Equal(t, 5, tbl.Len())
	stats := tbl.ChainStats()
	assert.Equal(t, 1, stats.UsedBuckets)
	assert.Equal(t, 5, stats.LongestChain)

	p, ok := tbl.Find(2 * size)
	require.True(t, ok)
	assert.Equal(t, "updated", p.Name)

	// Chains append at the tail, so bucket order is insertion order.
	var got []int32
	for p := range tbl.All() {
		got = append(got, p.ID)
	}
	assert.Equal(t, []int32{0, size, 2 * size, 3 * size, 4 * size}, got)
	require.NoError(t, tbl.Validate())
}

func TestTable_NegativeIDs(t *testing.T) {
	tbl, err := New(10)
	require.NoError(t, err)
	for _, id := range []int32{-1, -149, -150, -2147483648} {
		require.NoError(t, tbl.Insert(model.Passenger{ID: id}))
		_, ok := tbl.Find(id)
		assert.True(t, ok)
	}
	require.NoError(t, tbl.Validate())
}

func TestTable_Growth(t *testing.T) {
	tbl, err := New(100)
	require.NoError(t, err)

	for i := range int32(10_000) {
		require.NoError(t, tbl.Insert(model.Passenger{ID: i}))
		assert.LessOrEqual(t, tbl.Load(), LoadFactor(tbl.Len()))
	}
	assert.True(t, IsPrime(tbl.Size()))
	assert.Positive(t, tbl.ChainStats().Resizes)
	require.NoError(t, tbl.Validate())
}

func TestTable_GrowthRefused(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64 << 10})
	tbl, err := New(100, func(o *Options) { o.MemoryAcquirer = rc })
	require.NoError(t, err)

	var insertErr error
	n := 0
	for i := range int32(100_000) {
		if insertErr = tbl.Insert(model.Passenger{ID: i}); insertErr != nil {
			break
		}
		n++
	}
	require.ErrorIs(t, insertErr, index.ErrAllocationFailed)
	assert.Equal(t, n, tbl.Len())
	require.NoError(t, tbl.Validate())

	for i := range int32(n) {
		_, ok := tbl.Find(i)
		require.True(t, ok)
	}

	require.NoError(t, tbl.Close())
	assert.Zero(t, rc.MemoryUsage())
}

func TestTable_NewRefused(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1024})
	_, err := New(1_000_000, func(o *Options) { o.MemoryAcquirer = rc })
	require.ErrorIs(t, err, index.ErrAllocationFailed)

	var ae *index.AllocationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "hash buckets", ae.What)

	_, err = New(MaxTableSize)
	require.ErrorIs(t, err, index.ErrAllocationFailed)
}

func TestTable_NameSearch(t *testing.T) {
	tbl, err := New(10)
	require.NoError(t, err)
	require.NoError(t, tbl.Insert(model.Passenger{ID: 30, Name: "Li Wei"}))
	require.NoError(t, tbl.Insert(model.Passenger{ID: 10, Name: "Wei Zhang"}))
	require.NoError(t, tbl.Insert(model.Passenger{ID: 20, Name: "Anna Schmidt"}))

	p, ok := tbl.FindByName("WEI")
	require.True(t, ok)
	assert.Equal(t, int32(10), p.ID)

	found := tbl.SearchByName("wei")
	require.Len(t, found, 2)
	assert.Equal(t, []int32{10, 30}, []int32{found[0].ID, found[1].ID})

	sorted := tbl.Sorted()
	assert.True(t, slices.IsSortedFunc(sorted, byID))
}

func TestTable_Close(t *testing.T) {
	tbl, err := New(1, func(o *Options) { o.DisableGrowth = true })
	require.NoError(t, err)
	for i := range int32(100) {
		require.NoError(t, tbl.Insert(model.Passenger{ID: i}))
	}
	require.NoError(t, tbl.Close())

	stats := tbl.NodeStats()
	assert.Equal(t, stats.Allocs, stats.Frees)
	assert.Zero(t, stats.Live)
	assert.Positive(t, stats.Allocs)
	assert.ErrorIs(t, tbl.Insert(model.Passenger{ID: 1}), index.ErrClosed)
	require.NoError(t, tbl.Close())
}
