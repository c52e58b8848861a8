// Command fetch queries the configured providers once and prints the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cryptofeed/internal/aggregate"
	"cryptofeed/internal/config"
	"cryptofeed/internal/logging"
	"cryptofeed/internal/registry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{build: buildEngine}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// buildEngine wires the aggregator the same way the server does.
func buildEngine(ctx context.Context, cfgPath string) (engine, func(), error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}
	reg, err := registry.Build(ctx, cfg, registry.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	agg, err := reg.Aggregator(aggregate.WithLogger(log))
	if err != nil {
		reg.Close()
		return nil, nil, err
	}
	return agg, reg.Close, nil
}
