// Package gormstore implements unigraph.Storage on top of gorm. Collections
// are plain tables; rows are returned as column maps with the values the
// database driver produced.
package gormstore

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/Alp4ka/unigraph"
	"github.com/Alp4ka/unigraph/internal/ctxlog"
	"github.com/Alp4ka/unigraph/metrics"
)

const (
	opFetchOne      = "fetch_one"
	opFetchAll      = "fetch_all"
	opFetchRange    = "fetch_range"
	opFetchMatching = "fetch_matching"
	opCount         = "count"
)

type Option func(*Store)

// WithQueryTimeout bounds every storage call. Zero disables the bound.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.queryTimeout = timeout
	}
}

// WithMaxInClause sets the largest IN list of a single statement.
func WithMaxInClause(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxInClause = n
		}
	}
}

// Store is safe for concurrent use; all requests share the connection pool
// of the underlying *gorm.DB.
type Store struct {
	db           *gorm.DB
	queryTimeout time.Duration
	maxInClause  int
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:          db,
		maxInClause: DefaultMaxInClause,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewFromConfig opens the database described by config.
func NewFromConfig(config Config) (*Store, error) {
	db, err := Open(config)
	if err != nil {
		return nil, err
	}

	return New(db, WithQueryTimeout(config.QueryTimeout), WithMaxInClause(config.MaxInClause)), nil
}

// DB returns the GORM database instance.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping tests the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (s *Store) FetchOne(ctx context.Context, collection, keyField string, key int64) (unigraph.Row, error) {
	if err := validateTarget(collection, keyField); err != nil {
		return nil, err
	}

	var rows []map[string]any
	err := s.run(ctx, collection, opFetchOne, func(db *gorm.DB) error {
		return db.Table(collection).
			Where(equalCondition(keyField, key)).
			Limit(1).
			Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return rows[0], nil
}

func (s *Store) FetchAll(ctx context.Context, collection, keyField string) ([]unigraph.Row, error) {
	if err := validateTarget(collection, keyField); err != nil {
		return nil, err
	}

	var rows []map[string]any
	err := s.run(ctx, collection, opFetchAll, func(db *gorm.DB) error {
		return db.Table(collection).
			Order(unigraph.OrderBy{Column: keyField, Direction: unigraph.DirectionASC}.ToSQL()).
			Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	return toRows(rows), nil
}

func (s *Store) FetchRange(ctx context.Context, collection, keyField string, r unigraph.Range) ([]unigraph.Row, error) {
	if err := validateTarget(collection, keyField); err != nil {
		return nil, err
	}
	if r.Limit < unigraph.MinLimit {
		return nil, fmt.Errorf("%w: range limit %d", unigraph.ErrLimitBelowMinimum, r.Limit)
	}

	cond := keyCondition{Column: keyField, Operator: r.Operator, Value: r.Value}
	if !cond.Operator.IsNone() {
		if err := cond.validate(); err != nil {
			return nil, err
		}
	}

	orderBy := r.OrderBy(keyField)
	if err := orderBy.Validate(); err != nil {
		return nil, err
	}

	var rows []map[string]any
	err := s.run(ctx, collection, opFetchRange, func(db *gorm.DB) error {
		db = db.Table(collection)
		if !cond.Operator.IsNone() {
			db = db.Where(cond.toGORMExpression())
		}

		db = db.Order(orderBy.ToSQL()).Limit(r.Limit)
		if r.Offset > 0 {
			db = db.Offset(r.Offset)
		}

		return db.Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	return toRows(rows), nil
}

// FetchMatching issues one statement per MaxInClause keys. Duplicate keys are
// removed before querying.
func (s *Store) FetchMatching(ctx context.Context, collection, keyField string, keys []int64) ([]unigraph.Row, error) {
	if err := validateTarget(collection, keyField); err != nil {
		return nil, err
	}

	keys = lo.Uniq(keys)
	if len(keys) == 0 {
		return []unigraph.Row{}, nil
	}

	var rows []map[string]any
	err := s.run(ctx, collection, opFetchMatching, func(db *gorm.DB) error {
		for _, chunk := range lo.Chunk(keys, s.maxInClause) {
			var chunkRows []map[string]any
			err := db.Table(collection).
				Where(matchingCondition(keyField, chunk)).
				Find(&chunkRows).Error
			if err != nil {
				return err
			}

			rows = append(rows, chunkRows...)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return toRows(rows), nil
}

func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	if err := unigraph.ValidateIdentifier(collection); err != nil {
		return 0, fmt.Errorf("invalid collection: %w", err)
	}

	var total int64
	err := s.run(ctx, collection, opCount, func(db *gorm.DB) error {
		return db.Table(collection).Count(&total).Error
	})
	if err != nil {
		return 0, err
	}

	return total, nil
}

// run executes fn with a request bound session, records the duration and
// wraps failures into unigraph.ErrStorage.
func (s *Store) run(ctx context.Context, collection, operation string, fn func(db *gorm.DB) error) error {
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	logger := ctxlog.FromContext(ctx).With("collection", collection, "operation", operation)

	start := time.Now()
	err := fn(s.db.WithContext(ctx))
	elapsed := time.Since(start)

	metrics.StorageQueryDuration.WithLabelValues(collection, operation).Observe(elapsed.Seconds())

	if err != nil {
		metrics.StorageErrorsTotal.WithLabelValues(collection, operation).Inc()
		logger.ErrorContext(ctx, "storage query failed", "error", err, "duration", elapsed)
		return fmt.Errorf("%w: %s %s: %w", unigraph.ErrStorage, operation, collection, err)
	}

	logger.DebugContext(ctx, "storage query", "duration", elapsed)

	return nil
}

func validateTarget(collection, keyField string) error {
	if err := unigraph.ValidateIdentifier(collection); err != nil {
		return fmt.Errorf("invalid collection: %w", err)
	}
	if err := unigraph.ValidateIdentifier(keyField); err != nil {
		return fmt.Errorf("invalid key field: %w", err)
	}

	return nil
}

func toRows(rows []map[string]any) []unigraph.Row {
	return lo.Map(rows, func(row map[string]any, _ int) unigraph.Row {
		return row
	})
}

var _ unigraph.Storage = (*Store)(nil)
