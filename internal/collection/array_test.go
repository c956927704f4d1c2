package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-idb/internal/testutil"
)

type item struct {
	id int
}

func items(n int) []*item {
	out := make([]*item, n)
	for i := range out {
		out[i] = &item{id: i}
	}
	return out
}

func ids(a *Array[item]) []int {
	var out []int
	for _, it := range a.All() {
		out = append(out, it.id)
	}
	return out
}

func TestArray_Growth(t *testing.T) {
	a := New[item]()
	assert.Equal(t, 0, a.Cap())

	wantCaps := map[int]int{1: 4, 4: 4, 5: 8, 8: 8, 9: 16, 17: 32}
	for i, it := range items(17) {
		a.Add(it)
		if want, ok := wantCaps[i+1]; ok {
			assert.Equal(t, want, a.Cap(), "capacity after %d adds", i+1)
		}
	}
	assert.Equal(t, 17, a.Len())
}

func TestArray_AddNil(t *testing.T) {
	a := New[item]()
	testutil.RequireViolation(t, "collection.add", func() { a.Add(nil) })
}

func TestArray_GetOutOfRange(t *testing.T) {
	a := New[item]()
	a.Add(&item{})

	testutil.RequireViolation(t, "collection.get", func() { a.Get(1) })
	testutil.RequireViolation(t, "collection.get", func() { a.Get(-1) })
}

func TestArray_RemoveAt(t *testing.T) {
	tests := []struct {
		name    string
		queue   bool
		removed int
		want    []int
	}{
		{"unordered swaps last into hole", false, 1, []int{0, 4, 2, 3}},
		{"unordered remove last", false, 4, []int{0, 1, 2, 3}},
		{"ordered shifts", true, 1, []int{0, 2, 3, 4}},
		{"ordered remove first", true, 0, []int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New[item]()
			if tt.queue {
				a = NewQueue[item]()
			}
			for _, it := range items(5) {
				a.Add(it)
			}

			got := a.RemoveAt(tt.removed)
			assert.Equal(t, tt.removed, got.id)
			assert.Equal(t, tt.want, ids(a))
		})
	}
}

func TestArray_Remove(t *testing.T) {
	a := NewQueue[item]()
	all := items(3)
	for _, it := range all {
		a.Add(it)
	}

	got, ok := a.Remove(all[1])
	require.True(t, ok)
	assert.Same(t, all[1], got)

	_, ok = a.Remove(all[1])
	assert.False(t, ok, "second removal finds nothing")
	assert.Equal(t, []int{0, 2}, ids(a))
	assert.True(t, a.Contains(all[2]))
	assert.False(t, a.Contains(all[1]))
}

func TestArray_Pop(t *testing.T) {
	a := NewQueue[item]()
	for _, it := range items(3) {
		a.Add(it)
	}

	for want := 0; want < 3; want++ {
		got, ok := a.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got.id)
	}
	_, ok := a.Pop()
	assert.False(t, ok)
}

func TestArray_Owning(t *testing.T) {
	var destroyed []int
	a := New(Owning(func(it *item) { destroyed = append(destroyed, it.id) }))
	for _, it := range items(3) {
		a.Add(it)
	}

	removed := a.RemoveAt(0)
	assert.Equal(t, 0, removed.id)
	assert.Empty(t, destroyed, "RemoveAt never destroys")

	a.Clear()
	assert.ElementsMatch(t, []int{1, 2}, destroyed)
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 4, a.Cap(), "Clear keeps storage")

	a.Add(&item{id: 9})
	a.Reset()
	assert.Contains(t, destroyed, 9)
	assert.Equal(t, 0, a.Cap(), "Reset releases storage")
}

func TestArray_NonOwningNeverDestroys(t *testing.T) {
	a := New[item]()
	all := items(2)
	for _, it := range all {
		a.Add(it)
	}
	a.Reset()

	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 0, all[0].id)
}

func TestArray_TakeFrom(t *testing.T) {
	var destroyed int
	dst := New(Owning(func(*item) { destroyed++ }))
	dst.Add(&item{id: 100})

	src := New[item]()
	for _, it := range items(3) {
		src.Add(it)
	}

	dst.TakeFrom(src)
	assert.Equal(t, 1, destroyed, "previous contents dropped")
	assert.Equal(t, []int{0, 1, 2}, ids(dst))
	assert.Equal(t, 0, src.Len())

	dst.TakeFrom(dst)
	assert.Equal(t, 3, dst.Len(), "taking from itself is a no-op")
}

func TestArray_AllStopsEarly(t *testing.T) {
	a := New[item]()
	for _, it := range items(4) {
		a.Add(it)
	}

	var seen int
	for range a.All() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
	assert.Len(t, a.Items(), 4)
}
