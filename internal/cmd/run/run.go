package run

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cienv/internal/cmdutil"
	"github.com/schmitthub/cienv/internal/compose"
	"github.com/schmitthub/cienv/internal/environment"
	"github.com/schmitthub/cienv/internal/iostreams"
	"github.com/schmitthub/cienv/internal/metrics"
	"github.com/schmitthub/cienv/internal/shell"
)

// Variables exported to the wrapped command.
const (
	EnvNameVar     = cmdutil.EnvNameEnv
	ProjectNameVar = "COMPOSE_PROJECT_NAME"
	ComposeFileVar = "COMPOSE_FILE"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	IOStreams   *iostreams.IOStreams
	Provisioner func(context.Context) (*environment.Provisioner, error)
	Executor    func() (shell.Executor, error)
	Compose     func() (*compose.Compose, error)
	Metrics     func() *metrics.Metrics

	Provision     cmdutil.ProvisionFlags
	Keep          bool
	Graceful      bool
	LogsOnFailure bool

	Command []string
}

// NewCmdRun creates the run command.
func NewCmdRun(f *cmdutil.Factory, runF func(context.Context, *RunOptions) error) *cobra.Command {
	opts := &RunOptions{
		IOStreams:   f.IOStreams,
		Provisioner: f.Provisioner,
		Executor:    f.Executor,
		Compose:     f.Compose,
		Metrics:     f.Metrics,
	}

	cmd := &cobra.Command{
		Use:   "run [flags] -- COMMAND [ARG...]",
		Short: "Run a command inside a fresh environment",
		Long: `Provisions an environment, runs COMMAND against it and tears it down
again, whatever the outcome. COMMAND sees ` + EnvNameVar + `, ` + ProjectNameVar + ` and
` + ComposeFileVar + ` plus every -e variable. cienv exits with COMMAND's exit code.

A single COMMAND argument is run as a shell line.`,
		Example: `  # Run the integration suite
  cienv run -f docker-compose.yml --health -- go test ./integration/...

  # Keep the environment around for debugging
  cienv run --keep -- 'make e2e'`,
		Args: cmdutil.RequiresMinArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Provision.Complete(cmd.Flags()); err != nil {
				return err
			}
			opts.Command = args
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return runRun(cmd.Context(), opts)
		},
	}

	// Everything after the first positional argument belongs to COMMAND.
	cmd.Flags().SetInterspersed(false)

	cmdutil.AddProvisionFlags(cmd, &opts.Provision)
	cmd.Flags().BoolVar(&opts.Keep, "keep", false, "Leave the environment running afterwards")
	cmd.Flags().BoolVar(&opts.Graceful, "graceful", false, "Stop containers instead of killing them on teardown")
	cmd.Flags().BoolVar(&opts.LogsOnFailure, "logs-on-failure", false, "Print the environment's logs when COMMAND fails")

	return cmd
}

func runRun(ctx context.Context, opts *RunOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	p, err := opts.Provisioner(ctx)
	if err != nil {
		return err
	}
	exec, err := opts.Executor()
	if err != nil {
		return err
	}

	ropts := environment.DefaultRegisterOptions()
	if ropts.Options, err = opts.Provision.Options(); err != nil {
		return err
	}
	ropts.ContainerCleanUp = !opts.Keep
	ropts.BrutallyKill = !opts.Graceful

	var (
		cmdErr error
		target *compose.Target
	)
	ropts.AfterProvision = func(env *environment.Environment) {
		t := env.Target()
		target = &t
	}
	if opts.LogsOnFailure {
		ropts.BeforeTeardown = func() {
			if cmdErr != nil && target != nil {
				dumpLogs(context.WithoutCancel(ctx), opts, *target)
			}
		}
	}

	var lc environment.Lifecycle
	id := p.Register(&lc, opts.Provision.File, ropts)

	m := opts.Metrics()
	defer func() {
		if err := m.Push(context.WithoutCancel(ctx)); err != nil {
			ios.Logger.Warn().Err(err).Msg("metrics push failed")
		}
	}()

	// Teardown must run even after the context is canceled.
	teardownCtx := context.WithoutCancel(ctx)

	if err := lc.RunBefore(ctx); err != nil {
		cmdErr = err
		return errors.Join(err, lc.RunAfter(teardownCtx))
	}

	env := map[string]string{
		EnvNameVar:     id.Slug,
		ProjectNameVar: id.Slug,
		ComposeFileVar: opts.Provision.File,
	}
	for k, v := range target.Env {
		env[k] = v
	}
	c := shell.Command{Env: env, Stdout: ios.Out, Stderr: ios.ErrOut}
	if len(opts.Command) == 1 {
		c.Line = opts.Command[0]
	} else {
		c.Args = opts.Command
	}

	fmt.Fprintf(ios.ErrOut, "%s running %s in %s\n", cs.Cyan(">"), c.String(), cs.Bold(id.DisplayName()))
	_, cmdErr = exec.Run(ctx, c)

	afterErr := lc.RunAfter(teardownCtx)
	if opts.Keep {
		fmt.Fprintf(ios.ErrOut, "%s environment %s kept; remove it with 'cienv down --name %s'\n", cs.WarningIcon(), id.Slug, id.Slug)
	}

	var exitErr *shell.ExitError
	if errors.As(cmdErr, &exitErr) && exitErr.Code > 0 {
		if afterErr != nil {
			fmt.Fprintf(ios.ErrOut, "%s teardown failed: %v\n", cs.FailureIcon(), afterErr)
		}
		return &cmdutil.ExitError{Code: exitErr.Code, Command: c.String()}
	}
	return errors.Join(cmdErr, afterErr)
}

func dumpLogs(ctx context.Context, opts *RunOptions, t compose.Target) {
	ios := opts.IOStreams
	c, err := opts.Compose()
	if err != nil {
		ios.Logger.Warn().Err(err).Msg("cannot fetch environment logs")
		return
	}
	out, err := c.Logs(ctx, t, "")
	if err != nil {
		ios.Logger.Warn().Err(err).Msg("cannot fetch environment logs")
		return
	}
	fmt.Fprintf(ios.ErrOut, "--- LOGS %s START\n%s--- LOGS %s END\n", t.Project, out, t.Project)
}
