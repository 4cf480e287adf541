package cmdutil

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/schmitthub/cienv/internal/environment"
)

// ProvisionFlags are the provisioning flags shared by up and run.
type ProvisionFlags struct {
	File     string
	Services []string
	Vars     []string

	PrintEnv  bool
	Pull      bool
	NoCleanup bool

	// Retention is only applied when RetentionSet.
	Retention    int
	RetentionSet bool

	Health        bool
	HealthTimeout time.Duration
}

// AddProvisionFlags registers the provisioning flags on cmd.
func AddProvisionFlags(cmd *cobra.Command, pf *ProvisionFlags) {
	cmd.Flags().StringVarP(&pf.File, "file", "f", DefaultComposeFile, "Compose file describing the environment")
	cmd.Flags().StringSliceVarP(&pf.Services, "service", "s", nil, "Only start these services (repeatable)")
	AddEnvFlag(cmd, &pf.Vars)
	cmd.Flags().BoolVar(&pf.PrintEnv, "print-env", false, "Print the environment variables as export lines")
	cmd.Flags().BoolVar(&pf.Pull, "pull", false, "Pull service images before starting")
	cmd.Flags().BoolVar(&pf.NoCleanup, "no-cleanup", false, "Skip the orphan sweep")
	cmd.Flags().IntVar(&pf.Retention, "retention", 0, "Sweep retention in minutes (default from settings)")
	cmd.Flags().BoolVar(&pf.Health, "health", false, "Wait for services to answer their health endpoint")
	cmd.Flags().DurationVar(&pf.HealthTimeout, "health-timeout", 0, "Per-service readiness timeout (implies --health)")
}

// Complete records which of flags were set. Call it from RunE with
// cmd.Flags().
func (pf *ProvisionFlags) Complete(flags *pflag.FlagSet) error {
	pf.RetentionSet = flags.Changed("retention")
	if pf.RetentionSet && pf.Retention < 0 {
		return FlagErrorf("--retention must not be negative")
	}
	if flags.Changed("health-timeout") {
		if pf.HealthTimeout <= 0 {
			return FlagErrorf("--health-timeout must be positive")
		}
		pf.Health = true
	}
	return nil
}

// Options converts the flags into provisioning options.
func (pf *ProvisionFlags) Options() (environment.Options, error) {
	o := environment.DefaultOptions()
	o.Services = pf.Services
	o.PrintEnvVars = pf.PrintEnv
	o.PullImages = pf.Pull
	o.OrphanCleanup = !pf.NoCleanup

	vars, err := ParseEnvVars(pf.Vars)
	if err != nil {
		return o, err
	}
	o.EnvVars = environment.LiteralVars(vars)

	if pf.RetentionSet {
		r := pf.Retention
		o.RetentionMinutes = &r
	}
	if pf.Health {
		o.HealthCheck = &environment.HealthCheck{Timeout: pf.HealthTimeout}
	}
	return o, nil
}
