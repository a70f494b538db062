package cli

import (
	"flag"
	"fmt"
	"io"
	"time"
)

// CLIArgs are the command-line arguments for a seeding run. Every field is
// optional; empty values leave the config untouched.
type CLIArgs struct {
	// BaseURL overrides the target service address.
	BaseURL string

	// PlanPath points at a TOML seed plan; empty means the built-in plan.
	PlanPath string

	// LogLevel is one of trace|debug|info|warn|error|off.
	LogLevel string

	// EnvFile is the dotenv file read before the environment.
	EnvFile string

	// Timeout per request; 0 means "use config default".
	Timeout time.Duration

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by passing
// arbitrary slices. The function is deterministic and does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("tweetseed", flag.ContinueOnError)
	var (
		baseURL  = fs.String("base-url", "", "Base URL of the target service (default http://localhost:8080)")
		planPath = fs.String("plan", "", "Path to a TOML seed plan (default: built-in demo plan)")
		logLevel = fs.String("log-level", "", "Log level: trace|debug|info|warn|error|off")
		envFile  = fs.String("env-file", ".env", "dotenv file to load before reading the environment")
		timeout  = fs.Duration("timeout", 0, "Per-request timeout (0=no timeout)")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *timeout < 0 {
		return nil, fmt.Errorf("-timeout must not be negative, got %s", *timeout)
	}

	return &CLIArgs{
		BaseURL:  *baseURL,
		PlanPath: *planPath,
		LogLevel: *logLevel,
		EnvFile:  *envFile,
		Timeout:  *timeout,
		RawArgs:  args,
	}, nil
}
