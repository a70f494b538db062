package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/raysh454/tweetseed/internal/cli"
	"github.com/raysh454/tweetseed/internal/logging"
	"github.com/raysh454/tweetseed/internal/utils"
	"github.com/raysh454/tweetseed/internal/webclient"
)

const (
	DefaultBaseURL = "http://localhost:8080"

	EnvBaseURL  = "TWEETSEED_BASE_URL"
	EnvPlan     = "TWEETSEED_PLAN"
	EnvLogLevel = "TWEETSEED_LOG_LEVEL"
	EnvTimeout  = "TWEETSEED_TIMEOUT"
)

// Config is the runtime configuration of a seeding run. Sources apply in
// order: DefaultConfig, dotenv file, process environment, CLI flags.
type Config struct {
	// BaseURL is the address of the target service.
	BaseURL string

	// PlanPath is an optional TOML plan; empty runs the built-in plan.
	PlanPath string

	LogLevel string

	// WebClient configuration
	WebClientCfg webclient.Config
}

// DefaultConfig reproduces the stock run: local service, built-in plan, no
// request timeout.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:  DefaultBaseURL,
		LogLevel: "info",
		WebClientCfg: webclient.Config{
			Client: webclient.ClientNetHTTP,
		},
	}
}

// ApplyEnv overrides fields from non-empty variables returned by getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvPlan)); v != "" {
		c.PlanPath = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.WebClientCfg.Timeout = d
	}
	return nil
}

// LoadEnvFile applies the variables in a dotenv file without touching the
// process environment. A missing file is not an error.
func (c *Config) LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	return c.ApplyEnv(func(k string) string { return vars[k] })
}

// ApplyArgs overrides fields with flags the user actually set.
func (c *Config) ApplyArgs(args *cli.CLIArgs) {
	if args == nil {
		return
	}
	if args.BaseURL != "" {
		c.BaseURL = args.BaseURL
	}
	if args.PlanPath != "" {
		c.PlanPath = args.PlanPath
	}
	if args.LogLevel != "" {
		c.LogLevel = args.LogLevel
	}
	if args.Timeout > 0 {
		c.WebClientCfg.Timeout = args.Timeout
	}
}

// Validate normalizes BaseURL and checks the remaining fields.
func (c *Config) Validate() error {
	base, err := utils.NormalizeBaseURL(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base url %q: %w", c.BaseURL, err)
	}
	c.BaseURL = base
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.WebClientCfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.WebClientCfg.Timeout)
	}
	return nil
}
