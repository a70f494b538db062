// Command tweetseed fills a twitter-like service with demo users, tweets and
// subscriptions.
// Usage: go run ./cmd/tweetseed [-base-url URL] [-plan FILE] [-log-level LEVEL]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/raysh454/tweetseed/internal/app"
	"github.com/raysh454/tweetseed/internal/cli"
	"github.com/raysh454/tweetseed/internal/logging"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "tweetseed:", err)
		os.Exit(1)
	}
}

// run seeds the configured target. Call failures never surface here; only
// flag, config and plan errors do.
func run(argv []string, stdout, stderr io.Writer) error {
	fmt.Fprintln(stdout, "Start script")

	args, err := cli.ParseArgs(argv)
	if err != nil {
		return err
	}

	cfg := app.DefaultConfig()
	if err := cfg.LoadEnvFile(args.EnvFile); err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}
	cfg.ApplyArgs(args)

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.NewConsoleLogger(stderr, "tweetseed", level)

	application, err := app.NewApplication(cfg, args, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Shutdown(); err != nil {
			logger.Warn("shutdown failed", logging.Field{Key: "error", Value: err})
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
