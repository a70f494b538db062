package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/tweetseed/internal/cli"
	"github.com/raysh454/tweetseed/internal/logging"
	"github.com/raysh454/tweetseed/internal/seeder"
	"github.com/raysh454/tweetseed/internal/webclient"
)

// Application is the runtime state container for one seeding run.
// It holds config, parsed CLI args and the services built from them.
type Application struct {
	Config *Config
	Args   *cli.CLIArgs

	Logger logging.Logger
	Client webclient.WebClient
	Seeder *seeder.Seeder
}

// NewApplication validates cfg and builds the webclient and seeder. Pass a
// nil client to construct the configured backend.
func NewApplication(cfg *Config, args *cli.CLIArgs, logger logging.Logger, client webclient.WebClient, opts ...seeder.Option) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if logger == nil {
		return nil, errors.New("app: nil logger")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if client == nil {
		wc, err := webclient.NewWebClient(cfg.WebClientCfg, logger)
		if err != nil {
			return nil, err
		}
		client = wc
	}

	s, err := seeder.New(client, cfg.BaseURL, logger, opts...)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Application{
		Config: cfg,
		Args:   args,
		Logger: logger,
		Client: client,
		Seeder: s,
	}, nil
}

// Plan returns the plan this run will execute.
func (a *Application) Plan() (seeder.Plan, error) {
	if a.Config.PlanPath == "" {
		return seeder.DefaultPlan(), nil
	}
	return seeder.LoadPlan(a.Config.PlanPath)
}

// Run loads the plan and seeds the target. Call failures are logged by the
// seeder and never returned.
func (a *Application) Run(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	plan, err := a.Plan()
	if err != nil {
		return err
	}
	if a.Config.PlanPath != "" {
		a.Logger.Debug("loaded seed plan", logging.Field{Key: "path", Value: a.Config.PlanPath})
	}
	return a.Seeder.Run(ctx, plan)
}

// Shutdown releases the webclient.
func (a *Application) Shutdown() error {
	if a == nil {
		return errors.New("application is nil")
	}
	return a.Client.Close()
}
