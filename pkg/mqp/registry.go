package mqp

import (
	"context"
	"sync"
)

// keyEntry is the per-key bookkeeping the registry keeps under its own
// lock: the store backing that key and the set of consumers subscribed
// to it.
type keyEntry[K comparable, V any] struct {
	store       valueStore[K, V]
	subscribers map[ConsumerID]struct{}
}

// Subscription is the handle returned by Registry.Subscribe. Calling
// Unsubscribe more than once, or unsubscribing after the registry has
// closed, is a safe no-op.
type Subscription interface {
	Unsubscribe()
}

type subscriptionHandle[K comparable, V any] struct {
	registry *Registry[K, V]
	key      K
	id       ConsumerID
	once     sync.Once
}

func (h *subscriptionHandle[K, V]) Unsubscribe() {
	h.once.Do(func() {
		h.registry.Unsubscribe(h.key, h.id)
	})
}

// Registry is the top-level multi-queue engine (C6): it owns one store per
// key and one processor per subscribed consumer, and routes Enqueue calls
// to the right store and Subscribe/Unsubscribe calls to the right
// processor, all under a single lock.
//
// K and V follow the same rules as Go's map keys and channel elements
// respectively: K must be comparable, V may be any type Enqueue should
// carry.
type Registry[K comparable, V any] struct {
	pool         Pool
	tuning       Tuning
	logger       Logger
	keyValidator func(K) bool

	mu         sync.RWMutex
	closed     bool
	keys       map[K]*keyEntry[K, V]
	processors map[ConsumerID]*consumerProcessor[K, V]
}

// NewRegistry builds a Registry that posts delivery work to pool. Options
// customize tuning, logging, and key validation; see options.go.
func NewRegistry[K comparable, V any](pool Pool, opts ...Option[K, V]) *Registry[K, V] {
	r := &Registry[K, V]{
		pool:       pool,
		tuning:     TuningSize,
		logger:     noopLogger{},
		keys:       make(map[K]*keyEntry[K, V]),
		processors: make(map[ConsumerID]*consumerProcessor[K, V]),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe attaches consumer, identified by id, to key. Subscribing the
// same id to the same key a second time is idempotent: it returns a
// Subscription equivalent to the first one rather than creating a second
// cursor.
func (r *Registry[K, V]) Subscribe(key K, id ConsumerID, consumer Consumer[K, V]) (Subscription, error) {
	if consumer == nil {
		return nil, ErrNilConsumer
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if r.keyValidator != nil && !r.keyValidator(key) {
		return nil, ErrInvalidKey
	}

	entry, ok := r.keys[key]
	if !ok {
		entry = &keyEntry[K, V]{
			store:       newValueStore[K, V](r.tuning, key),
			subscribers: make(map[ConsumerID]struct{}),
		}
		r.keys[key] = entry
	}

	if _, already := entry.subscribers[id]; already {
		return &subscriptionHandle[K, V]{registry: r, key: key, id: id}, nil
	}

	proc, ok := r.processors[id]
	if !ok {
		proc = newConsumerProcessor[K, V](id, consumer, r.pool, r.logger)
		r.processors[id] = proc
	}

	cursor := entry.store.CreateCursor(proc)
	proc.AddSubscription(key, cursor)
	entry.subscribers[id] = struct{}{}

	return &subscriptionHandle[K, V]{registry: r, key: key, id: id}, nil
}

// Unsubscribe detaches id from key. It is a no-op if id was never
// subscribed to key, including after the registry has closed.
func (r *Registry[K, V]) Unsubscribe(key K, id ConsumerID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.keys[key]
	if !ok {
		return
	}
	if _, ok := entry.subscribers[id]; !ok {
		return
	}
	proc, ok := r.processors[id]
	if !ok {
		return
	}

	delete(entry.subscribers, id)
	if len(entry.subscribers) == 0 {
		delete(r.keys, key)
	}

	proc.RemoveSubscription(key)
	if !proc.IsSubscribedToAny() {
		delete(r.processors, id)
	}
}

// Enqueue publishes value under key to every consumer currently subscribed
// to it. Enqueueing a key with no subscribers, or after Close, silently
// drops the value: there is no backlog for consumers that don't exist yet.
func (r *Registry[K, V]) Enqueue(key K, value V) {
	r.mu.RLock()
	entry, ok := r.keys[key]
	r.mu.RUnlock()
	if !ok {
		return
	}
	entry.store.AddValue(value)
}

// Close detaches every subscription, stops the underlying pool, and
// returns ErrClosed on any subsequent call. It blocks until the pool
// drains or ctx is done, whichever comes first.
func (r *Registry[K, V]) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.closed = true

	for key, entry := range r.keys {
		for id := range entry.subscribers {
			if proc, ok := r.processors[id]; ok {
				proc.RemoveSubscription(key)
			}
		}
	}
	r.keys = make(map[K]*keyEntry[K, V])
	r.processors = make(map[ConsumerID]*consumerProcessor[K, V])
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.pool.Stop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
