package factory

import (
	"context"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/schmitthub/cienv/internal/cmdutil"
	"github.com/schmitthub/cienv/internal/compose"
	"github.com/schmitthub/cienv/internal/config"
	"github.com/schmitthub/cienv/internal/docker"
	"github.com/schmitthub/cienv/internal/environment"
	"github.com/schmitthub/cienv/internal/iostreams"
	"github.com/schmitthub/cienv/internal/logger"
	"github.com/schmitthub/cienv/internal/metrics"
	"github.com/schmitthub/cienv/internal/naming"
	"github.com/schmitthub/cienv/internal/readiness"
	"github.com/schmitthub/cienv/internal/shell"
	"github.com/schmitthub/cienv/internal/sweep"
)

// New creates a fully-wired Factory with lazy-initialized dependency closures.
// Called exactly once at the CLI entry point (internal/cienv/cmd.go).
// Tests should NOT import this package; construct &cmdutil.Factory{} directly.
func New(version, commit string) *cmdutil.Factory {
	ios := iostreams.System()
	ios.Logger = logger.Global{}
	if !ios.IsOutputTTY() {
		ios.SetColorEnabled(false)
	}
	if config.IsCI() {
		ios.SetSpinnerDisabled(true)
	}

	f := &cmdutil.Factory{
		Version:   version,
		Commit:    commit,
		IOStreams: ios,
	}
	clk := clock.New()

	// --- Lazy dependency closures ---

	// Settings
	var (
		configOnce sync.Once
		configData *config.Settings
		configErr  error
	)
	f.Config = func() (*config.Settings, error) {
		configOnce.Do(func() {
			configData, configErr = config.Load()
		})
		return configData, configErr
	}

	f.Executor = func() (shell.Executor, error) {
		cfg, err := f.Config()
		if err != nil {
			return nil, err
		}
		return shell.New(cfg.Shell, logger.Global{}), nil
	}

	f.Compose = func() (*compose.Compose, error) {
		cfg, err := f.Config()
		if err != nil {
			return nil, err
		}
		exec, err := f.Executor()
		if err != nil {
			return nil, err
		}
		return compose.New(exec, cfg.Docker.Binary), nil
	}

	f.Naming = func() (*naming.Generator, error) {
		cfg, err := f.Config()
		if err != nil {
			return nil, err
		}
		g, err := naming.NewGrammar(cfg.Naming.Prefix, cfg.Naming.Divider)
		if err != nil {
			return nil, err
		}
		return naming.NewGenerator(g, clk), nil
	}

	// Metrics
	var (
		metricsOnce sync.Once
		metricsData *metrics.Metrics
	)
	f.Metrics = func() *metrics.Metrics {
		metricsOnce.Do(func() {
			url := ""
			if cfg, err := f.Config(); err == nil {
				url = cfg.Metrics.PushgatewayURL
			}
			metricsData = metrics.New(url)
		})
		return metricsData
	}

	// Engine API client, only opened for the api sweep backend.
	var (
		clientOnce sync.Once
		client     *docker.Client
		clientErr  error
	)
	apiClient := func(ctx context.Context) (*docker.Client, error) {
		clientOnce.Do(func() {
			client, clientErr = docker.NewClient(ctx)
		})
		return client, clientErr
	}
	f.Close = func() {
		if client != nil {
			_ = client.Close()
		}
	}

	janitor := func(ctx context.Context, backend string) (sweep.Janitor, error) {
		cfg, err := f.Config()
		if err != nil {
			return nil, err
		}
		if backend == "" {
			backend = cfg.Sweep.Backend
		}
		switch backend {
		case config.BackendAPI:
			c, err := apiClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("connecting to Docker: %w", err)
			}
			return docker.NewJanitor(c.API), nil
		case config.BackendCLI:
			exec, err := f.Executor()
			if err != nil {
				return nil, err
			}
			return compose.NewCLIJanitor(exec, cfg.Docker.Binary), nil
		default:
			return nil, cmdutil.FlagErrorf("unknown sweep backend %q", backend)
		}
	}

	f.Sweeper = func(ctx context.Context, backend string) (*sweep.Sweeper, error) {
		j, err := janitor(ctx, backend)
		if err != nil {
			return nil, err
		}
		gen, err := f.Naming()
		if err != nil {
			return nil, err
		}
		return sweep.New(j, gen.Grammar(), clk, logger.Global{}), nil
	}

	f.Provisioner = func(ctx context.Context) (*environment.Provisioner, error) {
		cfg, err := f.Config()
		if err != nil {
			return nil, err
		}
		runtime, err := f.Compose()
		if err != nil {
			return nil, err
		}
		gen, err := f.Naming()
		if err != nil {
			return nil, err
		}
		// A broken sweep backend must never block provisioning: the sweep
		// is skipped and pulls fall back to the docker CLI.
		var sweeper environment.Sweeper
		if sw, err := f.Sweeper(ctx, ""); err != nil {
			logger.Warn().Err(err).Msg("orphan sweep unavailable")
		} else {
			sweeper = sw
		}

		// Pulls follow the sweep backend so a CLI-only host never needs
		// the Engine API socket.
		var fetcher environment.ImageFetcher
		if cfg.Sweep.Backend == config.BackendAPI {
			if c, err := apiClient(ctx); err == nil {
				fetcher = docker.NewPuller(c.Pull)
			}
		}
		if fetcher == nil {
			exec, err := f.Executor()
			if err != nil {
				return nil, err
			}
			fetcher = compose.NewCLIPuller(exec, cfg.Docker.Binary)
		}

		m := f.Metrics()
		return environment.New(environment.Config{
			Runtime:       runtime,
			Fetcher:       fetcher,
			Sweeper:       sweeper,
			Generator:     gen,
			Checker:       readiness.NewHTTPChecker(cfg.Health.Path, clk),
			Retention:     cfg.Retention(),
			HealthTimeout: cfg.Health.Timeout,
			IOStreams:     ios,
			Logger:        logger.Global{},
			Metrics:       m,
			Clock:         clk,
		}), nil
	}

	return f
}
