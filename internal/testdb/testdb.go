// Package testdb opens seeded in-memory sqlite databases for integration
// tests.
package testdb

import (
	_ "embed"
	"testing"

	"github.com/Alp4ka/unigraph/gormstore"
)

//go:embed university.sql
var universitySQL string

// Open returns a Store over a private in-memory database holding the
// university fixture. The store is closed when the test ends.
func Open(tb testing.TB, opts ...gormstore.Option) *gormstore.Store {
	tb.Helper()

	config := gormstore.DefaultConfig()
	config.DSN = "file::memory:"
	config.LogLevel = "silent"
	// Every connection would see its own empty database.
	config.MaxOpenConns, config.MaxIdleConns = 1, 1
	config.ConnMaxIdleTime = 0

	db, err := gormstore.Open(config)
	if err != nil {
		tb.Fatalf("cannot open test database: %v", err)
	}

	s := gormstore.New(db, opts...)
	tb.Cleanup(func() {
		_ = s.Close()
	})

	if err := db.Exec(universitySQL).Error; err != nil {
		tb.Fatalf("cannot seed test database: %v", err)
	}

	return s
}
