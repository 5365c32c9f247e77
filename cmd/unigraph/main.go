// Command unigraph serves the university dataset over GraphQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Alp4ka/unigraph/gormstore"
	"github.com/Alp4ka/unigraph/graph"
	"github.com/Alp4ka/unigraph/internal/server"
	"github.com/Alp4ka/unigraph/university"
)

func main() {
	// Use a minimal logger until the configured one is ready.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Args[1:], os.Stderr); err != nil {
		slog.Error("unigraph stopped", "error", err)
		os.Exit(1)
	}
}

func run(args []string, logW io.Writer) error {
	flagSet := flag.NewFlagSet("unigraph", flag.ContinueOnError)
	flagSet.SetOutput(logW)
	configPath := flagSet.String("config", "", "Path to the YAML configuration file.")
	addr := flagSet.String("addr", "", "Listen address. Overrides server.addr of the configuration.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.Log.Level, cfg.Log.Format, logW)
	slog.SetDefault(logger)

	store, err := gormstore.NewFromConfig(cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	schema, err := graph.NewSchema()
	if err != nil {
		return fmt.Errorf("cannot build schema: %w", err)
	}

	var loaderOpts []university.LoadersOption
	if !cfg.GraphQL.Batching {
		logger.Warn("relational batching is disabled")
		loaderOpts = append(loaderOpts, university.WithoutBatching())
	}

	srv := server.New(cfg.Server, graph.NewHandler(schema, store, loaderOpts...), store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

// newLogger builds the process logger. It does not set the global logger.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(handler)
}
