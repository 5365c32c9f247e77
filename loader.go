package unigraph

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
)

// Thunk is a deferred result. Calling it flushes the batch the value belongs
// to, if that has not happened yet, and blocks until the value is resolved.
type Thunk[V any] func() (V, error)

// Resolved returns a thunk of an already known value.
func Resolved[V any](value V) Thunk[V] {
	return func() (V, error) {
		return value, nil
	}
}

// BatchFunc fetches the values of a deduplicated key set. Keys missing from
// the returned map resolve to the zero value of V. A non-nil error fails
// every key of the batch.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	observer func(size int)
}

// WithBatchObserver registers a callback invoked with the key count of every
// batch right before it is fetched.
func WithBatchObserver(observer func(size int)) LoaderOption {
	return func(o *loaderOptions) {
		o.observer = observer
	}
}

type loaderEntry[V any] struct {
	value V
	err   error
	done  chan struct{}
	batch *loaderBatch
}

type loaderBatch struct {
	once sync.Once
}

// Loader collapses single key lookups into grouped fetches and caches the
// results. It is meant to live for exactly one request.
//
// Keys requested with Load are collected into a pending batch. The batch is
// flushed, with exactly one BatchFunc call, by the first invocation of any
// thunk belonging to it or by Dispatch. Keys requested after the flush start
// a new batch. A key already known to the loader is never fetched twice,
// unless its batch failed: failed keys are evicted so that a later batch can
// retry them.
type Loader[K comparable, V any] struct {
	fetch    BatchFunc[K, V]
	observer func(size int)

	mu           sync.Mutex
	cache        map[K]*loaderEntry[V]
	pending      *loaderBatch
	pendingKeys  []K
	pendingItems map[K]*loaderEntry[V]
}

func NewLoader[K comparable, V any](fetch BatchFunc[K, V], opts ...LoaderOption) *Loader[K, V] {
	options := new(loaderOptions)
	for _, opt := range opts {
		opt(options)
	}

	return &Loader[K, V]{
		fetch:    fetch,
		observer: options.observer,
		cache:    make(map[K]*loaderEntry[V]),
	}
}

// Load registers key in the pending batch, unless it is already known, and
// returns a thunk for its value.
func (l *Loader[K, V]) Load(ctx context.Context, key K) Thunk[V] {
	l.mu.Lock()
	entry, ok := l.cache[key]
	if !ok {
		if l.pending == nil {
			l.pending = new(loaderBatch)
			l.pendingItems = make(map[K]*loaderEntry[V])
		}

		entry = &loaderEntry[V]{
			done:  make(chan struct{}),
			batch: l.pending,
		}
		l.cache[key] = entry
		l.pendingKeys = append(l.pendingKeys, key)
		l.pendingItems[key] = entry
	}
	l.mu.Unlock()

	return func() (V, error) {
		l.dispatch(ctx, entry.batch)
		<-entry.done

		return entry.value, entry.err
	}
}

// LoadMany loads every key and returns a thunk for the values in the order
// of keys. Repeated keys share one lookup.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) Thunk[[]V] {
	thunks := lo.Map(keys, func(key K, _ int) Thunk[V] {
		return l.Load(ctx, key)
	})

	return func() ([]V, error) {
		ret := make([]V, 0, len(thunks))
		for _, thunk := range thunks {
			value, err := thunk()
			if err != nil {
				return nil, err
			}

			ret = append(ret, value)
		}

		return ret, nil
	}
}

// Dispatch flushes the pending batch, if any, and waits for it to resolve.
func (l *Loader[K, V]) Dispatch(ctx context.Context) {
	l.mu.Lock()
	b := l.pending
	l.mu.Unlock()

	l.dispatch(ctx, b)
}

// Prime stores a resolved value for key unless the key is already known.
func (l *Loader[K, V]) Prime(key K, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.cache[key]; ok {
		return
	}

	done := make(chan struct{})
	close(done)
	l.cache[key] = &loaderEntry[V]{
		value: value,
		done:  done,
	}
}

// Clear forgets key. Thunks already handed out are not affected.
func (l *Loader[K, V]) Clear(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.cache, key)
}

func (l *Loader[K, V]) dispatch(ctx context.Context, b *loaderBatch) {
	if b == nil {
		return
	}

	b.once.Do(func() {
		l.mu.Lock()
		if l.pending != b {
			l.mu.Unlock()
			return
		}
		keys, items := l.pendingKeys, l.pendingItems
		l.pending, l.pendingKeys, l.pendingItems = nil, nil, nil
		l.mu.Unlock()

		l.run(ctx, keys, items)
	})
}

func (l *Loader[K, V]) run(ctx context.Context, keys []K, items map[K]*loaderEntry[V]) {
	if l.observer != nil {
		l.observer(len(keys))
	}

	values, err := l.safeFetch(ctx, keys)

	if err != nil {
		l.mu.Lock()
		for _, key := range keys {
			if l.cache[key] == items[key] {
				delete(l.cache, key)
			}
		}
		l.mu.Unlock()
	}

	for _, key := range keys {
		entry := items[key]
		if err != nil {
			entry.err = err
		} else {
			entry.value = values[key]
		}

		close(entry.done)
	}
}

func (l *Loader[K, V]) safeFetch(ctx context.Context, keys []K) (values map[K]V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("batch function panicked: %v", r)
		}
	}()

	return l.fetch(ctx, keys)
}

// NewEntityLoader returns a loader fetching records of kind by primary key
// with one FetchMatching call per batch. Results are matched to keys by the
// key of each mapped record, not by position; if storage returns several
// rows for one key the first one wins. Keys without a row resolve to nil.
func NewEntityLoader[T Entity](st Storage, kind Kind[T], opts ...LoaderOption) *Loader[int64, *T] {
	return NewLoader(func(ctx context.Context, keys []int64) (map[int64]*T, error) {
		rows, err := st.FetchMatching(ctx, kind.Collection(), kind.KeyField(), keys)
		if err != nil {
			return nil, fmt.Errorf("cannot batch load %s: %w", kind.Name(), err)
		}

		items, err := kind.FromRows(rows)
		if err != nil {
			return nil, err
		}

		ret := make(map[int64]*T, len(items))
		for i := range items {
			key := items[i].Key()
			if _, ok := ret[key]; ok {
				continue
			}

			ret[key] = &items[i]
		}

		return ret, nil
	}, opts...)
}
