package sim

import (
	"container/heap"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// StrategyTag selects waiter/item ordering for a Resource or Queue. This
// is a small closed variant (the specification's source ships only these
// four disciplines; dispatch is a switch, not an open interface).
type StrategyTag int

const (
	FCFS StrategyTag = iota
	LCFS
	SIRO
	StaticPriorities
)

func (t StrategyTag) String() string {
	switch t {
	case FCFS:
		return "FCFS"
	case LCFS:
		return "LCFS"
	case SIRO:
		return "SIRO"
	case StaticPriorities:
		return "StaticPriorities"
	default:
		return "Unknown"
	}
}

// orderedItem wraps a stored value with the bookkeeping every strategy
// needs: a monotonically increasing insertion sequence (for FIFO/LIFO
// ordering and deterministic tie-breaks) and an optional priority (for
// StaticPriorities).
type orderedItem[T any] struct {
	value    T
	seq      uint64
	priority int
}

// strategyContainer is the storage discipline shared by Resource.Waiters
// and Queue's store/output-waiter containers. Implementations dispatch on
// the StrategyTag family; there is no open extension point, matching the
// closed variant the specification describes.
type strategyContainer[T any] interface {
	Push(item orderedItem[T])
	Pop() (orderedItem[T], bool)
	// Remove deletes the first queued item with the given sequence number.
	// Used to drop a cancelled waiter from a Resource's wait list.
	Remove(seq uint64) bool
	Len() int
	Peek() (orderedItem[T], bool)
}

// newStrategyContainer builds the container implementation for tag. rng is
// consulted only by the SIRO container and may be nil for the other three
// strategies.
func newStrategyContainer[T any](tag StrategyTag, rng *rand.Rand) strategyContainer[T] {
	switch tag {
	case FCFS:
		return &fifoContainer[T]{}
	case LCFS:
		return &lifoContainer[T]{}
	case SIRO:
		if rng == nil {
			logrus.Panicf("strategy: SIRO container requires a non-nil RNG")
		}
		return &siroContainer[T]{rng: rng}
	case StaticPriorities:
		return &priorityContainer[T]{}
	default:
		logrus.Panicf("strategy: unknown strategy tag %v", tag)
		return nil
	}
}

// fifoContainer implements FCFS: append to tail, remove from head.
type fifoContainer[T any] struct {
	items []orderedItem[T]
}

func (c *fifoContainer[T]) Push(item orderedItem[T]) { c.items = append(c.items, item) }

func (c *fifoContainer[T]) Pop() (orderedItem[T], bool) {
	if len(c.items) == 0 {
		var zero orderedItem[T]
		return zero, false
	}
	item := c.items[0]
	c.items = c.items[1:]
	return item, true
}

func (c *fifoContainer[T]) Peek() (orderedItem[T], bool) {
	if len(c.items) == 0 {
		var zero orderedItem[T]
		return zero, false
	}
	return c.items[0], true
}

func (c *fifoContainer[T]) Remove(seq uint64) bool {
	for i, item := range c.items {
		if item.seq == seq {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *fifoContainer[T]) Len() int { return len(c.items) }

// lifoContainer implements LCFS: append to tail, remove from tail.
type lifoContainer[T any] struct {
	items []orderedItem[T]
}

func (c *lifoContainer[T]) Push(item orderedItem[T]) { c.items = append(c.items, item) }

func (c *lifoContainer[T]) Pop() (orderedItem[T], bool) {
	n := len(c.items)
	if n == 0 {
		var zero orderedItem[T]
		return zero, false
	}
	item := c.items[n-1]
	c.items = c.items[:n-1]
	return item, true
}

func (c *lifoContainer[T]) Peek() (orderedItem[T], bool) {
	n := len(c.items)
	if n == 0 {
		var zero orderedItem[T]
		return zero, false
	}
	return c.items[n-1], true
}

func (c *lifoContainer[T]) Remove(seq uint64) bool {
	for i, item := range c.items {
		if item.seq == seq {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *lifoContainer[T]) Len() int { return len(c.items) }

// siroContainer implements SIRO ("serve in random order"): append
// anywhere, remove from a uniformly chosen position.
type siroContainer[T any] struct {
	items []orderedItem[T]
	rng   *rand.Rand
}

func (c *siroContainer[T]) Push(item orderedItem[T]) { c.items = append(c.items, item) }

func (c *siroContainer[T]) Pop() (orderedItem[T], bool) {
	n := len(c.items)
	if n == 0 {
		var zero orderedItem[T]
		return zero, false
	}
	idx := c.rng.Intn(n)
	item := c.items[idx]
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return item, true
}

func (c *siroContainer[T]) Peek() (orderedItem[T], bool) {
	if len(c.items) == 0 {
		var zero orderedItem[T]
		return zero, false
	}
	// Peek is defined to observe the head-of-insertion item; the random
	// draw only happens on Pop.
	return c.items[0], true
}

func (c *siroContainer[T]) Remove(seq uint64) bool {
	for i, item := range c.items {
		if item.seq == seq {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *siroContainer[T]) Len() int { return len(c.items) }

// priorityContainer implements StaticPriorities: a keyed min-heap over a
// comparable (int) priority, tie-broken by insertion sequence.
type priorityContainer[T any] struct {
	items priorityHeap[T]
}

type priorityHeap[T any] []orderedItem[T]

func (h priorityHeap[T]) Len() int { return len(h) }
func (h priorityHeap[T]) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h priorityHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *priorityHeap[T]) Push(x any)   { *h = append(*h, x.(orderedItem[T])) }
func (h *priorityHeap[T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (c *priorityContainer[T]) Push(item orderedItem[T]) { heap.Push(&c.items, item) }

func (c *priorityContainer[T]) Pop() (orderedItem[T], bool) {
	if len(c.items) == 0 {
		var zero orderedItem[T]
		return zero, false
	}
	return heap.Pop(&c.items).(orderedItem[T]), true
}

func (c *priorityContainer[T]) Peek() (orderedItem[T], bool) {
	if len(c.items) == 0 {
		var zero orderedItem[T]
		return zero, false
	}
	return c.items[0], true
}

func (c *priorityContainer[T]) Remove(seq uint64) bool {
	for i, item := range c.items {
		if item.seq == seq {
			heap.Remove(&c.items, i)
			return true
		}
	}
	return false
}

func (c *priorityContainer[T]) Len() int { return len(c.items) }
