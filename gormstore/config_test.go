package gormstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "default is valid", mutate: func(c *Config) {}},
		{
			name: "mysql from parts",
			mutate: func(c *Config) {
				c.Dialect, c.DSN = DialectMySQL, ""
				c.Host, c.Port, c.Database, c.Username = "localhost", 3306, "university", "reader"
			},
		},
		{
			name:    "unknown dialect",
			mutate:  func(c *Config) { c.Dialect = "oracle" },
			wantErr: "unsupported dialect",
		},
		{
			name:    "postgres without host",
			mutate:  func(c *Config) { c.Dialect, c.DSN = DialectPostgres, "" },
			wantErr: "host is required",
		},
		{
			name: "postgres with bad port",
			mutate: func(c *Config) {
				c.Dialect, c.DSN, c.Host, c.Port = DialectPostgres, "", "db", 70000
			},
			wantErr: "port must be between",
		},
		{
			name:    "sqlite without dsn",
			mutate:  func(c *Config) { c.DSN = "" },
			wantErr: "requires a dsn",
		},
		{
			name:    "idle above open",
			mutate:  func(c *Config) { c.MaxOpenConns, c.MaxIdleConns = 1, 2 },
			wantErr: "max_idle_conns",
		},
		{
			name:    "no connections",
			mutate:  func(c *Config) { c.MaxOpenConns, c.MaxIdleConns = 0, 0 },
			wantErr: "max_open_conns",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.QueryTimeout = -1 },
			wantErr: "query_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_GetDSN(t *testing.T) {
	c := Config{
		Dialect:  DialectMySQL,
		Host:     "db.local",
		Port:     3306,
		Database: "university",
		Username: "reader",
		Password: "secret",
	}
	dsn := c.GetDSN()
	assert.Contains(t, dsn, "reader:secret@tcp(db.local:3306)/university")
	assert.Contains(t, dsn, "parseTime=true")

	c.Dialect, c.Port = DialectPostgres, 5432
	assert.Equal(t, "host=db.local port=5432 user=reader password=secret dbname=university sslmode=disable", c.GetDSN())

	c.DSN = "postgres://override"
	assert.Equal(t, "postgres://override", c.GetDSN())
}

func TestOpen_SQLite(t *testing.T) {
	c := DefaultConfig()
	c.DSN = "file::memory:"
	c.MaxOpenConns, c.MaxIdleConns = 1, 1

	db, err := Open(c)
	require.NoError(t, err)

	s := New(db)
	defer s.Close()

	require.NoError(t, db.Exec("CREATE TABLE room (room_id INTEGER PRIMARY KEY, capacity INTEGER)").Error)
	require.NoError(t, db.Exec("INSERT INTO room VALUES (1, 10), (2, 20)").Error)

	assert.NoError(t, s.Ping(t.Context()))

	total, err := s.Count(t.Context(), "room")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestOpen_Invalid(t *testing.T) {
	_, err := Open(Config{Dialect: "oracle"})
	assert.ErrorContains(t, err, "invalid config")
}

func Test_getLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, getLogLevel("INFO"))
	assert.Equal(t, logger.Warn, getLogLevel("warn"))
	assert.Equal(t, logger.Silent, getLogLevel("silent"))
	assert.Equal(t, logger.Error, getLogLevel(""))
}
