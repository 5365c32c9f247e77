package graph

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/require"

	"github.com/Alp4ka/unigraph"
	"github.com/Alp4ka/unigraph/internal/testdb"
	"github.com/Alp4ka/unigraph/university"
)

// tCountingStorage records the storage calls made through it.
type tCountingStorage struct {
	unigraph.Storage

	mu       sync.Mutex
	calls    []string
	matching map[string][][]int64
}

func (s *tCountingStorage) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, call)
}

func (s *tCountingStorage) count(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}

	return n
}

func (s *tCountingStorage) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

func (s *tCountingStorage) matchingKeys(collection string) [][]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.matching[collection]
}

func (s *tCountingStorage) FetchOne(ctx context.Context, collection, keyField string, key int64) (unigraph.Row, error) {
	s.record("FetchOne " + collection)
	return s.Storage.FetchOne(ctx, collection, keyField, key)
}

func (s *tCountingStorage) FetchAll(ctx context.Context, collection, keyField string) ([]unigraph.Row, error) {
	s.record("FetchAll " + collection)
	return s.Storage.FetchAll(ctx, collection, keyField)
}

func (s *tCountingStorage) FetchRange(ctx context.Context, collection, keyField string, r unigraph.Range) ([]unigraph.Row, error) {
	s.record("FetchRange " + collection)
	return s.Storage.FetchRange(ctx, collection, keyField, r)
}

func (s *tCountingStorage) FetchMatching(ctx context.Context, collection, keyField string, keys []int64) ([]unigraph.Row, error) {
	s.record("FetchMatching " + collection)

	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	s.mu.Lock()
	s.matching[collection] = append(s.matching[collection], sorted)
	s.mu.Unlock()

	return s.Storage.FetchMatching(ctx, collection, keyField, keys)
}

func (s *tCountingStorage) Count(ctx context.Context, collection string) (int64, error) {
	s.record("Count " + collection)
	return s.Storage.Count(ctx, collection)
}

// newTestHandler returns a handler over the seeded sqlite fixture and the
// storage wrapper observing it.
func newTestHandler(t *testing.T, opts ...university.LoadersOption) (*Handler, *tCountingStorage) {
	t.Helper()

	st := &tCountingStorage{
		Storage:  testdb.Open(t),
		matching: map[string][][]int64{},
	}

	schema, err := NewSchema()
	require.NoError(t, err)

	return NewHandler(schema, st, opts...), st
}

func execute(t *testing.T, h *Handler, query string) *graphql.Result {
	t.Helper()

	return h.Execute(context.Background(), Request{Query: query})
}

// dataJSON returns the data of a successful result as JSON.
func dataJSON(t *testing.T, result *graphql.Result) string {
	t.Helper()

	require.Empty(t, result.Errors)
	data, err := json.Marshal(result.Data)
	require.NoError(t, err)

	return string(data)
}
