// Package service implements the service control commands.
package service

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cienv/internal/cmdutil"
	"github.com/schmitthub/cienv/internal/compose"
	"github.com/schmitthub/cienv/internal/iostreams"
	"github.com/schmitthub/cienv/internal/naming"
)

// Service actions.
const (
	ActionStart   = "start"
	ActionStop    = "stop"
	ActionPause   = "pause"
	ActionUnpause = "unpause"
	ActionStatus  = "status"
)

// ServiceOptions holds options for the service subcommands.
type ServiceOptions struct {
	IOStreams *iostreams.IOStreams
	Compose   func() (*compose.Compose, error)
	Naming    func() (*naming.Generator, error)
	Getenv    func(string) string

	Target  cmdutil.TargetFlags
	Action  string
	Service string
}

// NewCmdService creates the service command group.
func NewCmdService(f *cmdutil.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service <command>",
		Short: "Control one service of an environment",
		Example: `  # Simulate a database outage
  cienv service pause db
  cienv service unpause db`,
		Args: cmdutil.NoArgs,
	}

	short := map[string]string{
		ActionStart:   "Start a stopped service",
		ActionStop:    "Stop a running service",
		ActionPause:   "Pause a running service",
		ActionUnpause: "Resume a paused service",
		ActionStatus:  "Report whether a service is running (exit status 1 when not)",
	}
	for _, action := range []string{ActionStart, ActionStop, ActionPause, ActionUnpause, ActionStatus} {
		cmd.AddCommand(NewCmdAction(f, action, short[action], nil))
	}
	return cmd
}

// NewCmdAction creates one service subcommand.
func NewCmdAction(f *cmdutil.Factory, action, short string, runF func(context.Context, *ServiceOptions) error) *cobra.Command {
	opts := &ServiceOptions{
		IOStreams: f.IOStreams,
		Compose:   f.Compose,
		Naming:    f.Naming,
		Getenv:    os.Getenv,
		Action:    action,
	}

	cmd := &cobra.Command{
		Use:   action + " SERVICE",
		Short: short,
		Args:  cmdutil.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Service = args[0]
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return serviceRun(cmd.Context(), opts)
		},
	}

	cmdutil.AddTargetFlags(cmd, &opts.Target)

	return cmd
}

func serviceRun(ctx context.Context, opts *ServiceOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	gen, err := opts.Naming()
	if err != nil {
		return err
	}
	env, err := opts.Target.Environment(gen, opts.Getenv)
	if err != nil {
		return err
	}
	c, err := opts.Compose()
	if err != nil {
		return err
	}
	t := env.Target()

	var verb func(context.Context, compose.Target, string) error
	switch opts.Action {
	case ActionStart:
		verb = c.Start
	case ActionStop:
		verb = c.Stop
	case ActionPause:
		verb = c.Pause
	case ActionUnpause:
		verb = c.Unpause
	case ActionStatus:
		running, err := c.IsRunning(ctx, t, opts.Service)
		if err != nil {
			return err
		}
		if !running {
			fmt.Fprintf(ios.Out, "%s is not running\n", opts.Service)
			return &cmdutil.ExitError{Code: 1}
		}
		fmt.Fprintf(ios.Out, "%s is running\n", opts.Service)
		return nil
	default:
		return fmt.Errorf("unknown service action %q", opts.Action)
	}

	if err := verb(ctx, t, opts.Service); err != nil {
		return err
	}
	fmt.Fprintf(ios.ErrOut, "%s %s: %s\n", cs.SuccessIcon(), opts.Action, opts.Service)
	return nil
}
