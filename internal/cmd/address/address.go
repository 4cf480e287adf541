package address

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

// AddressOptions holds options for the address command.
type AddressOptions struct {
	IOStreams *iostreams.IOStreams
	Compose   func() (*compose.Compose, error)
	Naming    func() (*naming.Generator, error)
	Getenv    func(string) string

	Target   cmdutil.TargetFlags
	Service  string
	PortSpec string
}

// NewCmdAddress creates the address command.
func NewCmdAddress(f *cmdutil.Factory, runF func(context.Context, *AddressOptions) error) *cobra.Command {
	opts := &AddressOptions{
		IOStreams: f.IOStreams,
		Compose:   f.Compose,
		Naming:    f.Naming,
		Getenv:    os.Getenv,
	}

	cmd := &cobra.Command{
		Use:   "address SERVICE PORT",
		Short: "Print the host address of a service port",
		Long: `Prints host:port for a port of a running service. PORT is the port
mapping from the compose file; a mapping that pins the host port
("8080:80", "127.0.0.1:5432:5432") resolves without asking the runtime.`,
		Example: `  # Where does the web service listen?
  cienv address web 80

  # UDP ports
  cienv address dns 53/udp`,
		Args: cmdutil.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Service, opts.PortSpec = args[0], args[1]
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return addressRun(cmd.Context(), opts)
		},
	}

	cmdutil.AddTargetFlags(cmd, &opts.Target)

	return cmd
}

func addressRun(ctx context.Context, opts *AddressOptions) error {
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

	addr, err := c.Address(ctx, env.Target(), opts.Service, opts.PortSpec)
	if err != nil {
		return err
	}
	fmt.Fprintln(opts.IOStreams.Out, addr)
	return nil
}
