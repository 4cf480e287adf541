package environment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/schmitthub/cienv/internal/compose"
	"github.com/schmitthub/cienv/internal/iostreams"
	"github.com/schmitthub/cienv/internal/logger"
	"github.com/schmitthub/cienv/internal/metrics"
	"github.com/schmitthub/cienv/internal/naming"
	"github.com/schmitthub/cienv/internal/readiness"
	"github.com/schmitthub/cienv/internal/shell"
	"github.com/schmitthub/cienv/internal/sweep"
)

// Config wires a Provisioner. Runtime is required; Fetcher and Sweeper
// are only needed when pulls or orphan cleanup are requested.
type Config struct {
	Runtime Runtime
	Fetcher ImageFetcher
	Sweeper Sweeper

	Generator *naming.Generator
	Poller    *readiness.Poller

	// Checker is the default readiness probe.
	Checker readiness.Checker

	// LoadTopology parses compose files. Defaults to compose.LoadTopology.
	LoadTopology func(path string) (*compose.Topology, error)

	Retention     sweep.Retention
	HealthTimeout time.Duration

	IOStreams *iostreams.IOStreams
	Logger    iostreams.Logger
	Metrics   *metrics.Metrics
	Clock     clock.Clock
}

// Provisioner runs environment lifecycles.
type Provisioner struct {
	cfg Config
}

// New fills defaults into cfg and returns a Provisioner.
func New(cfg Config) *Provisioner {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Generator == nil {
		cfg.Generator = naming.NewGenerator(nil, cfg.Clock)
	}
	if cfg.Poller == nil {
		cfg.Poller = readiness.NewPoller(cfg.Clock, cfg.Logger, cfg.Metrics)
	}
	if cfg.Checker == nil {
		cfg.Checker = readiness.NewHTTPChecker("", cfg.Clock)
	}
	if cfg.LoadTopology == nil {
		cfg.LoadTopology = compose.LoadTopology
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = readiness.DefaultTimeout
	}
	return &Provisioner{cfg: cfg}
}

// Provision starts an environment from composeFile.
//
// Once the runtime has been asked to start services, the returned
// Environment is non-nil even when an error is returned, so the caller can
// still tear it down. A readiness timeout leaves the environment running.
func (p *Provisioner) Provision(ctx context.Context, composeFile string, opts Options) (env *Environment, err error) {
	start := p.cfg.Clock.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		p.cfg.Metrics.ObserveProvision(outcome, p.cfg.Clock.Since(start))
	}()

	id := p.identity(opts)
	p.cfg.Metrics.SetEnvironment(id.Slug)
	logger.SetEnvironment(id.Slug)
	log := p.cfg.Logger

	if opts.OrphanCleanup {
		p.sweep(ctx, id, opts)
	}

	var topo *compose.Topology
	if opts.PullImages || opts.HealthCheck != nil {
		if topo, err = p.cfg.LoadTopology(composeFile); err != nil {
			return nil, err
		}
	}

	if opts.PullImages {
		if err := p.pull(ctx, topo, opts.Services); err != nil {
			return nil, err
		}
	}

	vars := opts.EnvVars.Resolve()
	if opts.PrintEnvVars && p.cfg.IOStreams != nil {
		PrintEnvVars(p.cfg.IOStreams.Out, vars)
	}

	env = &Environment{
		Identity:    id,
		ComposeFile: composeFile,
		Services:    opts.Services,
		Env:         vars,
	}

	log.Info().Str("env", id.Slug).Strs("services", opts.Services).Msg("starting environment")
	err = p.withSpinner(fmt.Sprintf("starting up runtime environment for this run (codenamed: %s)", id.DisplayName()), func() error {
		return p.cfg.Runtime.Up(ctx, env.Target(), opts.Services)
	})
	if err != nil {
		return env, err
	}

	if opts.HealthCheck != nil {
		if err = p.waitUntilReady(ctx, env, topo, opts); err != nil {
			log.Error().Err(err).Str("env", id.Slug).Msg("environment did not become ready")
			return env, err
		}
	}
	return env, nil
}

func (p *Provisioner) identity(opts Options) naming.Identity {
	if opts.Identity != nil {
		return *opts.Identity
	}
	return p.cfg.Generator.Generate()
}

func (p *Provisioner) sweep(ctx context.Context, id naming.Identity, opts Options) {
	if p.cfg.Sweeper == nil {
		p.cfg.Logger.Warn().Msg("orphan cleanup requested but no sweeper configured")
		return
	}
	r := p.cfg.Retention
	if opts.RetentionMinutes != nil {
		r.Minutes = *opts.RetentionMinutes
	}
	// Never reclaim the environment being joined.
	r.Exempt = append(append([]string(nil), r.Exempt...), id.Slug)

	report := p.cfg.Sweeper.Sweep(ctx, r)
	p.cfg.Metrics.ObserveSweep(report)
	if report.Removed > 0 || report.Failed > 0 {
		p.cfg.Logger.Info().
			Int("removed", report.Removed).
			Int("failed", report.Failed).
			Strs("projects", report.Projects).
			Msg("reclaimed orphaned containers")
	}
}

func (p *Provisioner) pull(ctx context.Context, topo *compose.Topology, services []string) error {
	images, err := topo.Images(services)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}
	if p.cfg.Fetcher == nil {
		return errors.New("image pull requested but no image fetcher configured")
	}

	return p.withSpinner(fmt.Sprintf("pulling %d images", len(images)), func() error {
		g, gctx := errgroup.WithContext(ctx)
		for _, ref := range images {
			g.Go(func() error {
				if err := p.cfg.Fetcher.Pull(gctx, ref); err != nil {
					return &ImageFetchError{Image: ref, Err: err}
				}
				p.cfg.Logger.Debug().Str("image", ref).Msg("image pulled")
				return nil
			})
		}
		return g.Wait()
	})
}

func (p *Provisioner) waitUntilReady(ctx context.Context, env *Environment, topo *compose.Topology, opts Options) error {
	services, err := topo.Select(opts.Services)
	if err != nil {
		return err
	}

	hc := opts.HealthCheck
	policies := readiness.Policies{
		Default:   readiness.Policy{Checker: p.cfg.Checker, Timeout: p.cfg.HealthTimeout},
		Overrides: make(map[string]readiness.Policy),
	}
	if hc.Timeout > 0 {
		policies.Default.Timeout = hc.Timeout
	}
	for name, c := range hc.Custom {
		o := policies.Overrides[name]
		o.Checker = c
		policies.Overrides[name] = o
	}
	for name, d := range hc.CustomTimeouts {
		o := policies.Overrides[name]
		o.Timeout = d
		policies.Overrides[name] = o
	}

	target := env.Target()
	resolver := readiness.ResolverFunc(func(ctx context.Context, service, portSpec string) (string, error) {
		return p.cfg.Runtime.Address(ctx, target, service, portSpec)
	})

	return p.withSpinner("waiting for services to become ready", func() error {
		return p.cfg.Poller.WaitUntilReady(ctx, resolver, services, policies, opts.Services)
	})
}

func (p *Provisioner) withSpinner(label string, fn func() error) error {
	if p.cfg.IOStreams == nil {
		return fn()
	}
	return p.cfg.IOStreams.RunWithSpinner(label, fn)
}

// Teardown stops env and removes its volumes. brutally kills containers
// instead of stopping them. An environment that is not running counts as
// already torn down.
func (p *Provisioner) Teardown(ctx context.Context, env *Environment, brutally bool) error {
	t := env.Target()

	stop, verb := p.cfg.Runtime.Down, "stopping"
	if brutally {
		stop, verb = p.cfg.Runtime.Kill, "killing"
	}
	if err := stop(ctx, t); err != nil && !shell.IsNotRunning(err) {
		return fmt.Errorf("%s environment %s: %w", verb, t.Project, err)
	}
	if err := p.cfg.Runtime.DownVolumes(ctx, t); err != nil && !shell.IsNotRunning(err) {
		return fmt.Errorf("removing volumes of environment %s: %w", t.Project, err)
	}

	p.cfg.Logger.Info().Str("env", t.Project).Bool("brutally", brutally).Msg("environment torn down")
	return nil
}

// Recreate tears env down gracefully and provisions a fresh identity from
// the same compose file. Services defaults to the ones env was started with.
func (p *Provisioner) Recreate(ctx context.Context, env *Environment, opts Options) (*Environment, error) {
	if err := p.Teardown(ctx, env, false); err != nil {
		return nil, err
	}
	opts.Identity = nil
	if len(opts.Services) == 0 {
		opts.Services = env.Services
	}
	return p.Provision(ctx, env.ComposeFile, opts)
}
