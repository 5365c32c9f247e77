package unigraph

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/lo"
)

type tRoom struct {
	ID       int64
	Capacity int64
}

func (r tRoom) Key() int64 {
	return r.ID
}

var tRoomKind = NewKind("room", "room", "room_id", func(row Row) (tRoom, error) {
	id, err := row.Int64("room_id")
	if err != nil {
		return tRoom{}, err
	}

	capacity, err := row.Int64("capacity")
	if err != nil {
		return tRoom{}, err
	}

	return tRoom{ID: id, Capacity: capacity}, nil
})

func newRoomRows(keys ...int64) []Row {
	return lo.Map(keys, func(key int64, _ int) Row {
		return Row{"room_id": key, "capacity": key * 10}
	})
}

// fakeStorage keeps collections in memory and counts calls per method.
type fakeStorage struct {
	mu       sync.Mutex
	keyField string
	rows     map[string][]Row
	calls    map[string]int
	matching [][]int64
	err      error
}

func newFakeStorage(keyField string) *fakeStorage {
	return &fakeStorage{
		keyField: keyField,
		rows:     make(map[string][]Row),
		calls:    make(map[string]int),
	}
}

func (s *fakeStorage) with(collection string, rows ...Row) *fakeStorage {
	s.rows[collection] = append(s.rows[collection], rows...)
	return s
}

func (s *fakeStorage) track(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[method]++

	return s.err
}

func (s *fakeStorage) callCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[method]
}

func (s *fakeStorage) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.Sum(lo.Values(s.calls))
}

func (s *fakeStorage) sorted(collection, keyField string, desc bool) []Row {
	rows := append([]Row(nil), s.rows[collection]...)
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := rows[i].Int64(keyField)
		b, _ := rows[j].Int64(keyField)
		if desc {
			return a > b
		}
		return a < b
	})

	return rows
}

func (s *fakeStorage) FetchOne(_ context.Context, collection, keyField string, key int64) (Row, error) {
	if err := s.track("FetchOne"); err != nil {
		return nil, err
	}

	for _, row := range s.rows[collection] {
		if k, _ := row.Int64(keyField); k == key {
			return row, nil
		}
	}

	return nil, nil
}

func (s *fakeStorage) FetchAll(_ context.Context, collection, keyField string) ([]Row, error) {
	if err := s.track("FetchAll"); err != nil {
		return nil, err
	}

	return s.sorted(collection, keyField, false), nil
}

func (s *fakeStorage) FetchRange(_ context.Context, collection, keyField string, r Range) ([]Row, error) {
	if err := s.track("FetchRange"); err != nil {
		return nil, err
	}

	rows := lo.Filter(s.sorted(collection, keyField, r.Direction() == DirectionDESC), func(row Row, _ int) bool {
		key, _ := row.Int64(keyField)
		switch r.Operator {
		case OperatorGT:
			return key > r.Value
		case OperatorLT:
			return key < r.Value
		default:
			return true
		}
	})

	rows = lo.Drop(rows, r.Offset)
	if len(rows) > r.Limit {
		rows = rows[:r.Limit]
	}

	return rows, nil
}

func (s *fakeStorage) FetchMatching(_ context.Context, collection, keyField string, keys []int64) ([]Row, error) {
	if err := s.track("FetchMatching"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.matching = append(s.matching, append([]int64(nil), keys...))
	s.mu.Unlock()

	// Reverse order on purpose: callers must not rely on positions.
	rows := s.sorted(collection, keyField, true)

	return lo.Filter(rows, func(row Row, _ int) bool {
		key, _ := row.Int64(keyField)
		return lo.Contains(keys, key)
	}), nil
}

func (s *fakeStorage) Count(_ context.Context, collection string) (int64, error) {
	if err := s.track("Count"); err != nil {
		return 0, err
	}

	return int64(len(s.rows[collection])), nil
}

var _ Storage = (*fakeStorage)(nil)

func roomKeys(items []CursorItem[tRoom]) []int64 {
	return lo.Map(items, func(item CursorItem[tRoom], _ int) int64 {
		return item.Item.ID
	})
}
