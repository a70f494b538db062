// Command demoserver starts a local twitter-like API to seed against.
// Usage: go run ./cmd/demoserver [port] [dsn]
// Default port: 8080, default dsn: :memory:
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/raysh454/tweetseed/internal/demoserver"
	"github.com/raysh454/tweetseed/internal/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "demoserver:", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	cfg, err := parseArgs(argv)
	if err != nil {
		return err
	}

	fmt.Println("===========================================")
	fmt.Println("   Tweetseed Demo Server")
	fmt.Println("===========================================")
	fmt.Printf("Listening on :%d, database %s\n", cfg.Port, cfg.DSN)
	fmt.Println()

	logger := logging.NewConsoleLogger(os.Stderr, "demoserver", zerolog.InfoLevel)
	server, err := demoserver.NewDemoServer(cfg, logger)
	if err != nil {
		return err
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}

// parseArgs reads the optional positional port and dsn.
func parseArgs(argv []string) (demoserver.Config, error) {
	cfg := demoserver.DefaultConfig()
	if len(argv) > 2 {
		return cfg, fmt.Errorf("unexpected arguments: %v", argv[2:])
	}
	if len(argv) > 0 {
		port, err := strconv.Atoi(argv[0])
		if err != nil || port < 1 || port > 65535 {
			return cfg, fmt.Errorf("invalid port: %s", argv[0])
		}
		cfg.Port = port
	}
	if len(argv) > 1 {
		cfg.DSN = argv[1]
	}
	return cfg, nil
}
