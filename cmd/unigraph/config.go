package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Alp4ka/unigraph/gormstore"
	"github.com/Alp4ka/unigraph/internal/server"
)

// Config is the layout of the YAML configuration file.
type Config struct {
	Server   server.Config    `yaml:"server"`
	Log      LogConfig        `yaml:"log"`
	Database gormstore.Config `yaml:"database"`
	GraphQL  GraphQLConfig    `yaml:"graphql"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

type GraphQLConfig struct {
	// Batching groups relational lookups of one query level into a single
	// query per entity kind. Disabling it issues one query per lookup.
	Batching bool `yaml:"batching"`
}

func DefaultConfig() Config {
	return Config{
		Server: server.DefaultConfig(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Database: gormstore.DefaultConfig(),
		GraphQL: GraphQLConfig{
			Batching: true,
		},
	}
}

// LoadConfig reads the YAML configuration file over the defaults using strict
// parsing, so a misspelled key is an error instead of a silently ignored
// setting. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	// An empty file leaves the defaults in place.
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log: unknown level '%s'", c.Log.Level))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log: unknown format '%s'", c.Log.Format))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	return errors.Join(errs...)
}
