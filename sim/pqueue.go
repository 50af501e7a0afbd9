package sim

import "container/heap"

// scheduledAction is one entry in the event queue's min-heap: a deferred
// computation parameterized by the Point it fires at.
type scheduledAction struct {
	time   float64
	seq    uint64 // insertion sequence, breaks time ties deterministically (FIFO)
	action func(Point)
}

// actionHeap implements heap.Interface, ordering by time then insertion
// sequence. Grounded on the teacher's EventQueue/EventHeap
// (container/heap.Interface over a slice, with a secondary deterministic
// tie-break key), generalized here to carry an arbitrary deferred action
// instead of a fixed Event type.
type actionHeap []*scheduledAction

func (h actionHeap) Len() int { return len(h) }

func (h actionHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}

func (h actionHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *actionHeap) Push(x any) {
	*h = append(*h, x.(*scheduledAction))
}

func (h *actionHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (h *actionHeap) peek() *scheduledAction {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

func (h *actionHeap) pushAction(a *scheduledAction) { heap.Push(h, a) }

func (h *actionHeap) popAction() *scheduledAction { return heap.Pop(h).(*scheduledAction) }
