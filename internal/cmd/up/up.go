package up

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cienv/internal/cmdutil"
	"github.com/schmitthub/cienv/internal/environment"
	"github.com/schmitthub/cienv/internal/iostreams"
	"github.com/schmitthub/cienv/internal/metrics"
	"github.com/schmitthub/cienv/internal/naming"
)

// UpOptions holds options for the up command.
type UpOptions struct {
	IOStreams   *iostreams.IOStreams
	Provisioner func(context.Context) (*environment.Provisioner, error)
	Naming      func() (*naming.Generator, error)
	Metrics     func() *metrics.Metrics

	Provision cmdutil.ProvisionFlags
	Name      string
	JSON      bool
}

// NewCmdUp creates the up command.
func NewCmdUp(f *cmdutil.Factory, runF func(context.Context, *UpOptions) error) *cobra.Command {
	opts := &UpOptions{
		IOStreams:   f.IOStreams,
		Provisioner: f.Provisioner,
		Naming:      f.Naming,
		Metrics:     f.Metrics,
	}

	cmd := &cobra.Command{
		Use:   "up [flags]",
		Short: "Provision an ephemeral environment",
		Long: `Provisions a fresh environment from a compose file and prints its name.

Orphaned environments older than the retention window are swept first.
The environment keeps running after cienv exits; tear it down with
'cienv down --name <name>'.`,
		Example: `  # Start every service and capture the environment name
  CIENV_ENV_NAME=$(cienv up -f docker-compose.yml)

  # Start two services, pull images and wait for them to answer
  cienv up -s web -s db --pull --health

  # Start another service in an existing environment
  cienv up --name "$CIENV_ENV_NAME" -s worker`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Provision.Complete(cmd.Flags()); err != nil {
				return err
			}
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return upRun(cmd.Context(), opts)
		},
	}

	cmdutil.AddProvisionFlags(cmd, &opts.Provision)
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Join an existing environment instead of creating one")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the environment as JSON")

	return cmd
}

// Summary is the --json output of up.
type Summary struct {
	Name        string    `json:"name"`
	Codename    string    `json:"codename"`
	CreatedAt   time.Time `json:"created_at"`
	ComposeFile string    `json:"compose_file"`
	Services    []string  `json:"services,omitempty"`
}

func upRun(ctx context.Context, opts *UpOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	p, err := opts.Provisioner(ctx)
	if err != nil {
		return err
	}

	provisionOpts, err := buildOptions(opts)
	if err != nil {
		return err
	}

	m := opts.Metrics()
	defer func() {
		if err := m.Push(context.WithoutCancel(ctx)); err != nil {
			ios.Logger.Warn().Err(err).Msg("metrics push failed")
		}
	}()

	env, err := p.Provision(ctx, opts.Provision.File, provisionOpts)
	if err != nil {
		if env != nil {
			fmt.Fprintf(ios.ErrOut, "%s environment %s was left behind; remove it with 'cienv down --name %s'\n",
				cs.WarningIcon(), env.Identity.Slug, env.Identity.Slug)
		}
		return err
	}

	if opts.JSON {
		return cmdutil.WriteJSON(ios.Out, Summary{
			Name:        env.Identity.Slug,
			Codename:    env.Identity.Codename,
			CreatedAt:   env.Identity.CreatedAt().UTC(),
			ComposeFile: env.ComposeFile,
			Services:    env.Services,
		})
	}
	fmt.Fprintln(ios.Out, env.Identity.Slug)
	fmt.Fprintf(ios.ErrOut, "%s environment %s is up\n", cs.SuccessIcon(), cs.Bold(env.Identity.DisplayName()))
	return nil
}

func buildOptions(opts *UpOptions) (environment.Options, error) {
	o, err := opts.Provision.Options()
	if err != nil {
		return o, err
	}
	if opts.Name != "" {
		gen, err := opts.Naming()
		if err != nil {
			return o, err
		}
		id, err := gen.FromSlug(opts.Name)
		if err != nil {
			return o, cmdutil.FlagErrorWrap(err)
		}
		o.Identity = &id
	}
	return o, nil
}
