package flightbst

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/model"
	"github.com/hupe1980/skyindex/resource"
)

func ids(t *Tree) []int32 {
	var out []int32
	for f := range t.All() {
		out = append(out, f.ID)
	}
	return out
}

func insertAll(tb testing.TB, t *Tree, keys ...int32) {
	tb.Helper()
	for _, k := range keys {
		require.NoError(tb, t.Insert(model.Flight{ID: k, FlightNumber: "SK" + string(rune('A'+k%26))}))
	}
}

func TestTree_InsertFind(t *testing.T) {
	tr := New()
	insertAll(t, tr, 50, 30, 70, 20, 40, 60, 80)

	assert.Equal(t, 7, tr.Len())
	assert.Equal(t, 3, tr.Height())

	for _, id := range []int32{20, 30, 40, 50, 60, 70, 80} {
		f, ok := tr.Find(id)
		require.True(t, ok)
		assert.Equal(t, id, f.ID)
	}
	for _, id := range []int32{0, 25, 81, -1} {
		_, ok := tr.Find(id)
		assert.False(t, ok)
	}
}

func TestTree_Upsert(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Insert(model.Flight{ID: 1, Capacity: 100}))
	require.NoError(t, tr.Insert(model.Flight{ID: 1, Capacity: 200}))

	assert.Equal(t, 1, tr.Len())
	f, ok := tr.Find(1)
	require.True(t, ok)
	assert.Equal(t, int32(200), f.Capacity)
}

func TestTree_Delete(t *testing.T) {
	tr := New()
	insertAll(t, tr, 50, 30, 70, 20, 40, 60, 80)
	assert.Equal(t, []int32{20, 30, 40, 50, 60, 70, 80}, ids(tr))

	assert.True(t, tr.Delete(20))  // leaf
	assert.True(t, tr.Delete(60))  // leaf
	assert.True(t, tr.Delete(50))  // root with two children
	assert.False(t, tr.Delete(50)) // already gone

	assert.Equal(t, []int32{30, 40, 70, 80}, ids(tr))
	assert.Equal(t, 4, tr.Len())

	_, ok := tr.Find(50)
	assert.False(t, ok)
}

func TestTree_DeleteOneChild(t *testing.T) {
	tr := New()
	insertAll(t, tr, 10, 5, 3)
	assert.True(t, tr.Delete(5))
	assert.Equal(t, []int32{3, 10}, ids(tr))
	assert.True(t, tr.Delete(10))
	assert.Equal(t, []int32{3}, ids(tr))
	assert.True(t, tr.Delete(3))
	assert.Empty(t, ids(tr))
	assert.Zero(t, tr.Height())
}

func TestTree_SortedInputDegenerates(t *testing.T) {
	tr := New()
	for i := range int32(2000) {
		require.NoError(t, tr.Insert(model.Flight{ID: i}))
	}
	assert.Equal(t, 2000, tr.Height())
	assert.True(t, slices.IsSorted(ids(tr)))
}

func TestTree_FindByNumber(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Insert(model.Flight{ID: 2, FlightNumber: "LH400"}))
	require.NoError(t, tr.Insert(model.Flight{ID: 1, FlightNumber: "lh400"}))
	require.NoError(t, tr.Insert(model.Flight{ID: 3, FlightNumber: "BA117"}))

	f, ok := tr.FindByNumber("LH400")
	require.True(t, ok)
	assert.Equal(t, int32(1), f.ID)

	_, ok = tr.FindByNumber("LH40")
	assert.False(t, ok)
}

func TestTree_Close(t *testing.T) {
	tr := New()
	insertAll(t, tr, 5, 3, 8, 1, 4, 7, 9)
	assert.True(t, tr.Delete(3))

	require.NoError(t, tr.Close())
	stats := tr.NodeStats()
	assert.Equal(t, stats.Allocs, stats.Frees)
	assert.Zero(t, stats.Live)

	require.NoError(t, tr.Close())
	assert.ErrorIs(t, tr.Insert(model.Flight{ID: 1}), index.ErrClosed)
	assert.Empty(t, ids(tr))
}

func TestTree_MemoryLimit(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1})
	tr := New(func(o *Options) {
		o.MemoryAcquirer = rc
		o.ChunkSlots = 16
	})

	err := tr.Insert(model.Flight{ID: 1})
	require.ErrorIs(t, err, index.ErrAllocationFailed)
	assert.Zero(t, tr.Len())
}
