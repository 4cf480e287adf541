package sweep

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cienv/internal/cmdutil"
	"github.com/schmitthub/cienv/internal/config"
	"github.com/schmitthub/cienv/internal/iostreams"
	"github.com/schmitthub/cienv/internal/metrics"
	"github.com/schmitthub/cienv/internal/sweep"
)

// SweepOptions holds options for the sweep command.
type SweepOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Settings, error)
	Sweeper   func(ctx context.Context, backend string) (*sweep.Sweeper, error)
	Metrics   func() *metrics.Metrics

	Retention    int
	RetentionSet bool
	All          bool
	Backend      string
	JSON         bool
}

// NewCmdSweep creates the sweep command.
func NewCmdSweep(f *cmdutil.Factory, runF func(context.Context, *SweepOptions) error) *cobra.Command {
	opts := &SweepOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
		Sweeper:   f.Sweeper,
		Metrics:   f.Metrics,
	}

	cmd := &cobra.Command{
		Use:   "sweep [flags]",
		Short: "Reclaim environments left behind by earlier runs",
		Long: `Removes every container whose name follows the cienv naming scheme and is
older than the retention window, the networks of their projects and any
unused volumes. Containers of other tools are never touched.

Failures on individual resources are reported but never fail the command.`,
		Example: `  # Use the configured retention
  cienv sweep

  # Reclaim everything cienv ever created, through the Engine API
  cienv sweep --all --backend api`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.RetentionSet = cmd.Flags().Changed("retention")
			if opts.RetentionSet && opts.Retention < 0 {
				return cmdutil.FlagErrorf("--retention must not be negative")
			}
			if opts.RetentionSet && opts.All {
				return cmdutil.FlagErrorf("--retention and --all are mutually exclusive")
			}
			switch opts.Backend {
			case "", config.BackendCLI, config.BackendAPI:
			default:
				return cmdutil.FlagErrorf("invalid --backend %q: want %s or %s", opts.Backend, config.BackendCLI, config.BackendAPI)
			}
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return sweepRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.Retention, "retention", 0, "Retention window in minutes (default from settings)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Reclaim every matching environment regardless of age")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "Runtime access: cli or api (default from settings)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the sweep report as JSON")

	return cmd
}

// Report is the --json output of sweep.
type Report struct {
	RetentionMinutes int      `json:"retention_minutes"`
	Inspected        int      `json:"inspected"`
	Matched          int      `json:"matched"`
	Stale            int      `json:"stale"`
	Removed          int      `json:"removed"`
	Failed           int      `json:"failed"`
	NetworkFailures  int      `json:"network_failures"`
	VolumesPruned    bool     `json:"volumes_pruned"`
	ListFailed       bool     `json:"list_failed"`
	Projects         []string `json:"projects"`
}

func sweepRun(ctx context.Context, opts *SweepOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	r := cfg.Retention()
	switch {
	case opts.All:
		r.Minutes = 0
	case opts.RetentionSet:
		r.Minutes = opts.Retention
	}

	s, err := opts.Sweeper(ctx, opts.Backend)
	if err != nil {
		return err
	}

	var report sweep.Report
	err = ios.RunWithSpinner("sweeping orphaned environments", func() error {
		report = s.Sweep(ctx, r)
		return nil
	})
	if err != nil {
		return err
	}

	m := opts.Metrics()
	m.ObserveSweep(report)
	if err := m.Push(ctx); err != nil {
		ios.Logger.Warn().Err(err).Msg("metrics push failed")
	}

	if opts.JSON {
		projects := report.Projects
		if projects == nil {
			projects = []string{}
		}
		return cmdutil.WriteJSON(ios.Out, Report{
			RetentionMinutes: r.Minutes,
			Inspected:        report.Inspected,
			Matched:          report.Matched,
			Stale:            report.Stale,
			Removed:          report.Removed,
			Failed:           report.Failed,
			NetworkFailures:  report.NetworkFailures,
			VolumesPruned:    report.VolumesPruned,
			ListFailed:       report.ListFailed,
			Projects:         projects,
		})
	}

	if report.ListFailed {
		fmt.Fprintf(ios.ErrOut, "%s could not list containers; nothing was swept\n", cs.WarningIcon())
		return nil
	}
	fmt.Fprintf(ios.Out, "%s removed %d of %d stale containers (%d matching, %d inspected)\n",
		cs.SuccessIcon(), report.Removed, report.Stale, report.Matched, report.Inspected)
	if len(report.Projects) > 0 {
		fmt.Fprintf(ios.Out, "  environments: %s\n", strings.Join(report.Projects, ", "))
	}
	if report.Failed > 0 || report.NetworkFailures > 0 {
		fmt.Fprintf(ios.ErrOut, "%s %d containers and %d networks could not be removed; see the log for details\n",
			cs.WarningIcon(), report.Failed, report.NetworkFailures)
	}
	return nil
}
