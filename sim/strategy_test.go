package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFOContainerOrder(t *testing.T) {
	c := newStrategyContainer[int](FCFS, nil)
	c.Push(orderedItem[int]{value: 1, seq: 1})
	c.Push(orderedItem[int]{value: 2, seq: 2})
	c.Push(orderedItem[int]{value: 3, seq: 3})

	for _, want := range []int{1, 2, 3} {
		got, ok := c.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got.value)
	}
}

func TestLIFOContainerOrder(t *testing.T) {
	c := newStrategyContainer[int](LCFS, nil)
	c.Push(orderedItem[int]{value: 1, seq: 1})
	c.Push(orderedItem[int]{value: 2, seq: 2})
	c.Push(orderedItem[int]{value: 3, seq: 3})

	for _, want := range []int{3, 2, 1} {
		got, ok := c.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got.value)
	}
}

func TestPriorityContainerOrder(t *testing.T) {
	c := newStrategyContainer[string](StaticPriorities, nil)
	c.Push(orderedItem[string]{value: "A", seq: 1, priority: 3})
	c.Push(orderedItem[string]{value: "B", seq: 2, priority: 1})
	c.Push(orderedItem[string]{value: "C", seq: 3, priority: 2})

	for _, want := range []string{"B", "C", "A"} {
		got, ok := c.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got.value)
	}
}

func TestPriorityContainerTiesBreakByInsertionSeq(t *testing.T) {
	c := newStrategyContainer[string](StaticPriorities, nil)
	c.Push(orderedItem[string]{value: "first", seq: 1, priority: 5})
	c.Push(orderedItem[string]{value: "second", seq: 2, priority: 5})

	got, _ := c.Pop()
	assert.Equal(t, "first", got.value, "equal priority should break by insertion order")
}

func TestSIROContainerDrawsEveryItemExactlyOnce(t *testing.T) {
	c := newStrategyContainer[int](SIRO, rand.New(rand.NewSource(1)))
	n := 20
	for i := 0; i < n; i++ {
		c.Push(orderedItem[int]{value: i, seq: uint64(i)})
	}
	seen := map[int]bool{}
	for i := 0; i < n; i++ {
		item, ok := c.Pop()
		require.True(t, ok, "pop %d", i)
		assert.False(t, seen[item.value], "value %d popped twice", item.value)
		seen[item.value] = true
	}
	assert.Len(t, seen, n)
}

func TestContainerRemoveDropsExactSeq(t *testing.T) {
	c := newStrategyContainer[int](FCFS, nil)
	c.Push(orderedItem[int]{value: 1, seq: 1})
	c.Push(orderedItem[int]{value: 2, seq: 2})
	c.Push(orderedItem[int]{value: 3, seq: 3})

	require.True(t, c.Remove(2))
	assert.Equal(t, 2, c.Len())
	got, _ := c.Pop()
	assert.Equal(t, 1, got.value)
	got, _ = c.Pop()
	assert.Equal(t, 3, got.value, "2 should be gone")
}
