package sim

// SignalSource is a publish-subscribe notifier operating inside the Event
// context. Subscriptions are weak: disposing a Subscription unregisters
// its handler from the source's registry. Handlers added while a Trigger
// is in progress take effect only on the next Trigger — the handler slice
// is snapshotted at trigger-start, resolving the open question the
// specification leaves about in-trigger subscription visibility.
type SignalSource[T any] struct {
	handlers []signalHandler[T]
	nextID   uint64
}

type signalHandler[T any] struct {
	id uint64
	fn func(T)
}

// NewSignalSource creates an empty signal source.
func NewSignalSource[T any]() *SignalSource[T] {
	return &SignalSource[T]{}
}

// Subscription is the disposable handle returned by Subscribe.
type Subscription[T any] struct {
	src *SignalSource[T]
	id  uint64
}

// Dispose unregisters the handler. Safe to call more than once.
func (s *Subscription[T]) Dispose() {
	if s == nil || s.src == nil {
		return
	}
	h := s.src.handlers
	for i, entry := range h {
		if entry.id == s.id {
			s.src.handlers = append(h[:i], h[i+1:]...)
			break
		}
	}
	s.src = nil
}

// Subscribe registers fn to run on every subsequent Trigger, in
// subscription order, and returns a handle that unregisters it.
func (s *SignalSource[T]) Subscribe(fn func(T)) *Subscription[T] {
	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, signalHandler[T]{id: id, fn: fn})
	return &Subscription[T]{src: s, id: id}
}

// Trigger synchronously invokes every handler subscribed as of the start
// of this call, in subscription order, within the Event context. A
// handler's exception propagates to the caller of Trigger.
func (s *SignalSource[T]) Trigger(v T) {
	snapshot := make([]signalHandler[T], len(s.handlers))
	copy(snapshot, s.handlers)
	for _, h := range snapshot {
		h.fn(v)
	}
}

// HandlerCount reports how many handlers are currently subscribed. Used by
// tests to confirm cancellation cleanup removed a process's subscription.
func (s *SignalSource[T]) HandlerCount() int { return len(s.handlers) }

// Observable pairs a readable value with a change signal: Read returns
// the current value, Changed fires whenever it changes.
type Observable[T any] struct {
	Read    func() T
	Changed *SignalSource[struct{}]
}

// NewObservable wraps a plain value accessor with its own change signal,
// which callers fire explicitly (e.g. from the code that mutates the cell
// this Observable reads).
func NewObservable[T any](read func() T) (Observable[T], *SignalSource[struct{}]) {
	changed := NewSignalSource[struct{}]()
	return Observable[T]{Read: read, Changed: changed}, changed
}

// MapObservable derives a new Observable by applying f to o's value. The
// derived Changed signal fires whenever o's does.
func MapObservable[A, B any](o Observable[A], f func(A) B) Observable[B] {
	return Observable[B]{
		Read:    func() B { return f(o.Read()) },
		Changed: o.Changed,
	}
}

// CombineObservables derives an Observable from two inputs via f. Its
// Changed signal is the union of both inputs' change signals: subscribing
// to it subscribes to both upstream signals and fires the combined
// handler whenever either does.
func CombineObservables[A, B, C any](a Observable[A], b Observable[B], f func(A, B) C) Observable[C] {
	union := NewSignalSource[struct{}]()
	a.Changed.Subscribe(func(struct{}) { union.Trigger(struct{}{}) })
	b.Changed.Subscribe(func(struct{}) { union.Trigger(struct{}{}) })
	return Observable[C]{
		Read:    func() C { return f(a.Read(), b.Read()) },
		Changed: union,
	}
}
