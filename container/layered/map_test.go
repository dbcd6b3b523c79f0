package layered

import (
	"sort"
	"testing"

	"github.com/prysmaticlabs/ghost/testing/assert"
	"github.com/prysmaticlabs/ghost/testing/require"
)

func TestMap_WithLeavesParentUnchanged(t *testing.T) {
	base := New[string, int]()
	m1 := base.With(map[string]int{"a": 1, "b": 2})
	m2 := m1.With(map[string]int{"b": 3, "c": 4})

	_, ok := base.Get("a")
	assert.False(t, ok)
	v, ok := m1.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	v, ok = m2.Get("b")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	assert.Equal(t, 0, base.Len())
	assert.Equal(t, 2, m1.Len())
	assert.Equal(t, 3, m2.Len())
}

func TestMap_WithEmptyWritesReturnsSameMap(t *testing.T) {
	m := New[int, int]().With(map[int]int{1: 1})
	assert.Same(t, m, m.With(nil))
}

func TestMap_WritesCopied(t *testing.T) {
	w := map[int]int{1: 1}
	m := New[int, int]().With(w)
	w[1] = 2
	w[2] = 2
	v, _ := m.Get(1)
	assert.Equal(t, 1, v)
	assert.False(t, m.Has(2))
}

func TestMap_RangeYieldsNewestValues(t *testing.T) {
	m := New[int, string]().
		With(map[int]string{1: "old", 2: "two"}).
		With(map[int]string{1: "new"})
	got := map[int]string{}
	m.Range(func(k int, v string) bool {
		got[k] = v
		return true
	})
	assert.Equal(t, map[int]string{1: "new", 2: "two"}, got)

	count := 0
	m.Range(func(int, string) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestMap_Flattens(t *testing.T) {
	m := New[int, int]()
	for i := 0; i < MaxDepth*2; i++ {
		m = m.With(map[int]int{i % 5: i})
		require.LessOrEqual(t, m.Depth(), MaxDepth)
	}
	assert.Equal(t, 5, m.Len())
	keys := m.Keys()
	sort.Ints(keys)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, keys)
	last := MaxDepth*2 - 1
	v, ok := m.Get(last % 5)
	require.True(t, ok)
	assert.Equal(t, last, v)
}

func TestFromMap(t *testing.T) {
	src := map[string]int{"x": 1}
	m := FromMap(src)
	src["x"] = 9
	v, _ := m.Get("x")
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, m.Len())
}
