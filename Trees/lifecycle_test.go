package Trees

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestInsert_AllocationFailureLeavesTreeUnchanged(t *testing.T) {
	alloc := new(MeteredAllocator)
	tree := New[int, Compact](Config{Allocator: alloc})
	alloc.Limit = 8 * tree.NodeBytes()
	for i := range 8 {
		_, err := tree.Insert(i)
		require.NoError(t, err)
	}
	before := tree.Keys()

	ok, err := tree.Insert(100)
	require.False(t, ok)
	require.ErrorIs(t, err, ErrAllocation)
	require.Contains(t, err.Error(), ErrBudgetExhausted.Error())
	require.Equal(t, before, tree.Keys())
	require.False(t, tree.Has(100))
	require.NoError(t, tree.Verify())
	require.EqualValues(t, 1, alloc.Refused)

	// a duplicate needs no new node
	ok, err = tree.Insert(3)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Compact(2), tree.Count(3))

	require.True(t, tree.Delete(0))
	ok, err = tree.Insert(100)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, alloc.Limit, alloc.PeakBytes)
}

func TestInsert_SizeOverflowIsRejected(t *testing.T) {
	tree := New[int, uint8](Config{})
	for i := range 255 {
		_, err := tree.Insert(i % 7)
		require.NoError(t, err)
	}
	require.Equal(t, uint8(255), tree.Size())

	for _, k := range []int{3, 1000} {
		ok, err := tree.Insert(k)
		require.False(t, ok)
		require.True(t, errors.Is(err, ErrSizeOverflow), "got %v", err)
	}
	require.Equal(t, uint8(255), tree.Size())
	require.NoError(t, tree.Verify())

	require.True(t, tree.Delete(3))
	ok, err := tree.Insert(1000)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFrom_Errors(t *testing.T) {
	_, err := From[int, Compact](Config{}, []int{1, 2, 2, 1})
	require.ErrorIs(t, err, ErrUnsorted)
	require.Contains(t, err.Error(), "index 3")

	_, err = From[int, uint8](Config{}, make([]int, 256))
	require.ErrorIs(t, err, ErrSizeOverflow)

	// duplicates collapse, so this fits
	tree, err := From[int, uint8](Config{Duplicates: IgnoreDuplicates}, make([]int, 256))
	require.NoError(t, err)
	require.Equal(t, uint8(1), tree.Size())

	alloc := &MeteredAllocator{Limit: 1}
	_, err = From[int, Compact](Config{Allocator: alloc}, []int{1, 2, 3})
	require.ErrorIs(t, err, ErrAllocation)
	require.Zero(t, alloc.LiveBytes)
}

func TestRelease_PoolingReusesSlots(t *testing.T) {
	alloc := new(MeteredAllocator)
	tree := New[int, Compact](Config{Pooling: true, Allocator: alloc})
	for i := range 100 {
		_, err := tree.Insert(i)
		require.NoError(t, err)
	}
	for i := 0; i < 100; i += 2 {
		require.True(t, tree.Delete(i))
	}
	require.Zero(t, alloc.FreeCalls)
	require.Equal(t, 50, tree.Stats().Pooled)
	require.NoError(t, tree.Verify())

	calls := alloc.AllocCalls
	for i := 1000; i < 1050; i++ {
		_, err := tree.Insert(i)
		require.NoError(t, err)
	}
	require.Equal(t, calls, alloc.AllocCalls, "pooled slots should be reused")
	require.Zero(t, tree.Stats().Pooled)
	_, err := tree.Insert(2000)
	require.NoError(t, err)
	require.Equal(t, calls+1, alloc.AllocCalls)
	require.NoError(t, tree.Verify())
}

func TestRelease_DenseWithoutPooling(t *testing.T) {
	alloc := new(MeteredAllocator)
	tree := New[int, Compact](Config{Allocator: alloc})
	for i := range 100 {
		_, err := tree.Insert(i)
		require.NoError(t, err)
	}
	for i := 0; i < 100; i += 3 {
		require.True(t, tree.Delete(i))
		require.NoError(t, tree.Verify())
	}
	require.EqualValues(t, 34, alloc.FreeCalls)
	require.Equal(t, uintptr(66)*tree.NodeBytes(), alloc.LiveBytes)
	require.Zero(t, tree.Stats().Pooled)
	require.Len(t, tree.ifs, 67)
	for i := range 100 {
		require.Equal(t, i%3 != 0, tree.Has(i), "key %d", i)
	}
}

func TestDestroy(t *testing.T) {
	for _, pooling := range []bool{false, true} {
		alloc := new(MeteredAllocator)
		tree := New[string, Wide](Config{Pooling: pooling, Allocator: alloc})
		for _, s := range strings.Fields("the quick brown fox jumps over the lazy dog") {
			_, err := tree.Insert(s)
			require.NoError(t, err)
		}
		tree.Delete("fox")
		require.NoError(t, tree.Destroy())
		require.Zero(t, alloc.LiveBytes)
		require.Equal(t, alloc.AllocCalls, alloc.FreeCalls)

		require.ErrorIs(t, tree.Destroy(), ErrDestroyed)
		_, err := tree.Insert("again")
		require.ErrorIs(t, err, ErrDestroyed)
		require.True(t, tree.IsEmpty())
		require.Zero(t, tree.Size())
		require.False(t, tree.Has("dog"))
		require.False(t, tree.Delete("dog"))
		_, _, ok := tree.Select(0)
		require.False(t, ok)
		_, _, ok = tree.Successor("a")
		require.False(t, ok)
		require.NoError(t, tree.Verify())
	}
}

func TestClear(t *testing.T) {
	alloc := new(MeteredAllocator)
	tree := New[int, Compact](Config{Pooling: true, Allocator: alloc})
	for i := range 1000 {
		_, err := tree.Insert(i)
		require.NoError(t, err)
	}
	for i := range 500 {
		tree.Delete(i)
	}
	tree.Clear()
	require.True(t, tree.IsEmpty())
	require.Zero(t, alloc.LiveBytes)
	require.Equal(t, Stats{Capacity: tree.Stats().Capacity, NodeBytes: tree.NodeBytes()}, tree.Stats())
	require.GreaterOrEqual(t, tree.Stats().Capacity, 1000)
	require.NoError(t, tree.Verify())

	_, err := tree.Insert(7)
	require.NoError(t, err)
	require.Equal(t, []int{7}, tree.Keys())
}

func TestNewFunc_CustomOrder(t *testing.T) {
	type version struct{ major, minor int }
	tree := NewFunc[version, Compact](Config{}, func(a, b version) int {
		// descending
		if a.major != b.major {
			return b.major - a.major
		}
		return b.minor - a.minor
	})
	for _, v := range []version{{1, 2}, {2, 0}, {1, 10}, {0, 9}, {2, 0}} {
		_, err := tree.Insert(v)
		require.NoError(t, err)
	}
	require.Equal(t, []version{{2, 0}, {2, 0}, {1, 10}, {1, 2}, {0, 9}}, tree.Keys())
	k, i, ok := tree.Successor(version{2, 0})
	require.True(t, ok)
	require.Equal(t, version{1, 10}, k)
	require.Equal(t, Compact(2), i)
	k, _, ok = tree.Ceiling(version{1, 5})
	require.True(t, ok)
	require.Equal(t, version{1, 2}, k)
	require.NoError(t, tree.Verify())
}

func TestVerify_DetectsCorruption(t *testing.T) {
	build := func() *OSTree[int, Compact] {
		tree, err := From[int, Compact](Config{}, []int{1, 2, 3, 4, 5, 6, 7})
		require.NoError(t, err)
		require.NoError(t, tree.Verify())
		return tree
	}
	var ie *InvariantError

	tree := build()
	tree.ifs[tree.root].red = true
	require.ErrorAs(t, tree.Verify(), &ie)
	require.Equal(t, "red root", ie.Reason)

	tree = build()
	tree.ifs[tree.root].sz++
	require.ErrorAs(t, tree.Verify(), &ie)
	require.Equal(t, uint64(tree.root), ie.Slot)

	tree = build()
	*tree.key(tree.minimum(tree.root)) = 100
	require.ErrorAs(t, tree.Verify(), &ie)
	require.Equal(t, "key out of order", ie.Reason)

	tree = build()
	tree.ifs[tree.maximum(tree.root)].red = false
	require.ErrorAs(t, tree.Verify(), &ie)
	require.Contains(t, ie.Reason, "black height")
}

func TestStats(t *testing.T) {
	tree := New[int64, Wide](Config{Hint: 16})
	require.Equal(t, Stats{Capacity: 16, NodeBytes: tree.NodeBytes()}, tree.Stats())
	for i := range int64(15) {
		_, err := tree.Insert(i)
		require.NoError(t, err)
	}
	s := tree.Stats()
	require.Equal(t, uint64(15), s.Size)
	require.Equal(t, 15, s.Nodes)
	require.LessOrEqual(t, s.Height, 8) // 2*log2(16)
	require.Equal(t, "ignore", IgnoreDuplicates.String())
}
