package logs

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

// LogsOptions holds options for the logs command.
type LogsOptions struct {
	IOStreams *iostreams.IOStreams
	Compose   func() (*compose.Compose, error)
	Naming    func() (*naming.Generator, error)
	Getenv    func(string) string

	Target  cmdutil.TargetFlags
	Service string
}

// NewCmdLogs creates the logs command.
func NewCmdLogs(f *cmdutil.Factory, runF func(context.Context, *LogsOptions) error) *cobra.Command {
	opts := &LogsOptions{
		IOStreams: f.IOStreams,
		Compose:   f.Compose,
		Naming:    f.Naming,
		Getenv:    os.Getenv,
	}

	cmd := &cobra.Command{
		Use:   "logs [SERVICE]",
		Short: "Print the logs of an environment",
		Long:  "Prints the logs of one service, or of every service when none is named.",
		Args:  cmdutil.RequiresMaxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Service = args[0]
			}
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return logsRun(cmd.Context(), opts)
		},
	}

	cmdutil.AddTargetFlags(cmd, &opts.Target)

	return cmd
}

func logsRun(ctx context.Context, opts *LogsOptions) error {
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

	out, err := c.Logs(ctx, env.Target(), opts.Service)
	if err != nil {
		return err
	}
	fmt.Fprint(opts.IOStreams.Out, out)
	return nil
}
