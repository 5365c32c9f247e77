package university

import (
	"context"
	"slices"
	"sync"

	"github.com/Alp4ka/unigraph"
)

// tCountingStorage records the calls made through it.
type tCountingStorage struct {
	unigraph.Storage

	mu       sync.Mutex
	calls    map[string][]string
	matching map[string][][]int64
}

func newCountingStorage(st unigraph.Storage) *tCountingStorage {
	return &tCountingStorage{
		Storage:  st,
		calls:    map[string][]string{},
		matching: map[string][][]int64{},
	}
}

func (s *tCountingStorage) record(method, collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[method] = append(s.calls[method], collection)
}

// count returns how many times method was called for collection.
func (s *tCountingStorage) count(method, collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(slices.DeleteFunc(slices.Clone(s.calls[method]), func(c string) bool {
		return c != collection
	}))
}

func (s *tCountingStorage) matchingKeys(collection string) [][]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.matching[collection]
}

func (s *tCountingStorage) FetchOne(ctx context.Context, collection, keyField string, key int64) (unigraph.Row, error) {
	s.record("FetchOne", collection)
	return s.Storage.FetchOne(ctx, collection, keyField, key)
}

func (s *tCountingStorage) FetchMatching(ctx context.Context, collection, keyField string, keys []int64) ([]unigraph.Row, error) {
	s.record("FetchMatching", collection)

	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	s.mu.Lock()
	s.matching[collection] = append(s.matching[collection], sorted)
	s.mu.Unlock()

	return s.Storage.FetchMatching(ctx, collection, keyField, keys)
}
