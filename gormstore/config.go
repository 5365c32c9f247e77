package gormstore

import (
	"fmt"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const (
	// DefaultMaxInClause bounds the number of keys in one IN list. Larger key
	// sets are fetched in several statements.
	DefaultMaxInClause = 1000
)

// Config holds database connection and query settings.
type Config struct {
	Dialect Dialect `yaml:"dialect"`

	// DSN is used as-is when set. Otherwise a DSN is built from the
	// connection settings below (mysql and postgres only).
	DSN string `yaml:"dsn"`

	// Connection Settings
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"` // postgres only

	// Connection Pool Settings
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`

	// Query Settings
	QueryTimeout time.Duration `yaml:"query_timeout"`
	MaxInClause  int           `yaml:"max_in_clause"`

	// LogLevel of the gorm logger: silent, error, warn, info.
	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Dialect:         DialectSQLite,
		DSN:             "file:unigraph.db?mode=ro",
		MaxOpenConns:    16,
		MaxIdleConns:    4,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
		QueryTimeout:    5 * time.Second,
		MaxInClause:     DefaultMaxInClause,
		LogLevel:        "error",
	}
}

// Validate checks if the database configuration is valid.
func (c *Config) Validate() error {
	switch c.Dialect {
	case DialectMySQL, DialectPostgres:
		if c.DSN == "" {
			if c.Host == "" {
				return fmt.Errorf("database host is required")
			}
			if c.Port < 1 || c.Port > 65535 {
				return fmt.Errorf("database port must be between 1 and 65535, got %d", c.Port)
			}
			if c.Database == "" {
				return fmt.Errorf("database name is required")
			}
			if c.Username == "" {
				return fmt.Errorf("database username is required")
			}
		}
	case DialectSQLite:
		if c.DSN == "" {
			return fmt.Errorf("sqlite requires a dsn")
		}
	default:
		return fmt.Errorf("unsupported dialect '%s'", c.Dialect)
	}

	if c.MaxOpenConns < 1 {
		return fmt.Errorf("max_open_conns must be at least 1")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns cannot be greater than max_open_conns")
	}
	if c.QueryTimeout < 0 {
		return fmt.Errorf("query_timeout cannot be negative")
	}
	if c.MaxInClause < 0 {
		return fmt.Errorf("max_in_clause cannot be negative")
	}

	return nil
}

// GetDSN returns the data source name for the configured dialect.
func (c *Config) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	switch c.Dialect {
	case DialectMySQL:
		cfg := gomysql.Config{
			User:                 c.Username,
			Passwd:               c.Password,
			Net:                  "tcp",
			Addr:                 fmt.Sprintf("%s:%d", c.Host, c.Port),
			DBName:               c.Database,
			Loc:                  time.UTC,
			ParseTime:            true,
			AllowNativePasswords: true,
		}
		return cfg.FormatDSN()
	case DialectPostgres:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.Username, c.Password, c.Database, sslMode)
	default:
		return ""
	}
}

func (c *Config) dialector() (gorm.Dialector, error) {
	switch c.Dialect {
	case DialectMySQL:
		return mysql.Open(c.GetDSN()), nil
	case DialectPostgres:
		return postgres.Open(c.GetDSN()), nil
	case DialectSQLite:
		return sqlite.Open(c.GetDSN()), nil
	default:
		return nil, fmt.Errorf("unsupported dialect '%s'", c.Dialect)
	}
}

// Open connects to the configured database and sets up the connection pool.
func Open(config Config) (*gorm.DB, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dialector, err := config.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(getLogLevel(config.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	return db, nil
}

func getLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Error
	}
}
