package down

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cienv/internal/cmdutil"
	"github.com/schmitthub/cienv/internal/environment"
	"github.com/schmitthub/cienv/internal/iostreams"
	"github.com/schmitthub/cienv/internal/naming"
)

// DownOptions holds options for the down command.
type DownOptions struct {
	IOStreams   *iostreams.IOStreams
	Provisioner func(context.Context) (*environment.Provisioner, error)
	Naming      func() (*naming.Generator, error)
	Getenv      func(string) string

	Target   cmdutil.TargetFlags
	Brutally bool
}

// NewCmdDown creates the down command.
func NewCmdDown(f *cmdutil.Factory, runF func(context.Context, *DownOptions) error) *cobra.Command {
	opts := &DownOptions{
		IOStreams:   f.IOStreams,
		Provisioner: f.Provisioner,
		Naming:      f.Naming,
		Getenv:      os.Getenv,
	}

	cmd := &cobra.Command{
		Use:   "down [flags]",
		Short: "Tear down an environment",
		Long: `Stops (or kills, with --brutal) every container of the environment and
removes its volumes. An environment that is already gone is not an error.`,
		Example: `  # Stop gracefully
  cienv down --name "$CIENV_ENV_NAME"

  # Kill immediately
  cienv down --brutal`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return downRun(cmd.Context(), opts)
		},
	}

	cmdutil.AddTargetFlags(cmd, &opts.Target)
	cmd.Flags().BoolVar(&opts.Brutally, "brutal", false, "Kill containers instead of stopping them")

	return cmd
}

func downRun(ctx context.Context, opts *DownOptions) error {
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
	p, err := opts.Provisioner(ctx)
	if err != nil {
		return err
	}

	if err := p.Teardown(ctx, env, opts.Brutally); err != nil {
		return err
	}
	fmt.Fprintf(ios.ErrOut, "%s environment %s torn down\n", cs.SuccessIcon(), cs.Bold(env.Identity.DisplayName()))
	return nil
}
