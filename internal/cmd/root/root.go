package root

import (
	"github.com/spf13/cobra"

	addresscmd "github.com/schmitthub/cienv/internal/cmd/address"
	downcmd "github.com/schmitthub/cienv/internal/cmd/down"
	logscmd "github.com/schmitthub/cienv/internal/cmd/logs"
	runcmd "github.com/schmitthub/cienv/internal/cmd/run"
	servicecmd "github.com/schmitthub/cienv/internal/cmd/service"
	sweepcmd "github.com/schmitthub/cienv/internal/cmd/sweep"
	upcmd "github.com/schmitthub/cienv/internal/cmd/up"
	versioncmd "github.com/schmitthub/cienv/internal/cmd/version"
	"github.com/schmitthub/cienv/internal/cmdutil"
	"github.com/schmitthub/cienv/internal/config"
	"github.com/schmitthub/cienv/internal/logger"
)

// NewCmdRoot creates the root command for the cienv CLI.
func NewCmdRoot(f *cmdutil.Factory, version, buildDate string) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "cienv",
		Short: "Ephemeral multi-service environments for CI",
		Long: `cienv starts an isolated copy of a compose project for every CI run,
waits for its services to answer, and cleans up after runs that never did.

Quick start:
  cienv run -f docker-compose.yml --health -- go test ./...   # one-shot
  export CIENV_ENV_NAME=$(cienv up --health)                   # long-lived
  cienv address web 80
  cienv down`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations: map[string]string{
			"versionInfo": versioncmd.Format(version, buildDate),
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initializeLogger(f, debug)

			logger.Debug().
				Str("version", f.Version).
				Bool("debug", debug).
				Msg("cienv starting")

			return nil
		},
		Version: f.Version,
	}

	cmd.PersistentFlags().BoolVarP(&debug, "debug", "D", false, "Enable debug logging")
	cmd.SetVersionTemplate(versioncmd.Format(version, buildDate))
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cmdutil.FlagErrorWrap(err)
	})

	cmd.AddCommand(upcmd.NewCmdUp(f, nil))
	cmd.AddCommand(downcmd.NewCmdDown(f, nil))
	cmd.AddCommand(runcmd.NewCmdRun(f, nil))
	cmd.AddCommand(sweepcmd.NewCmdSweep(f, nil))
	cmd.AddCommand(addresscmd.NewCmdAddress(f, nil))
	cmd.AddCommand(logscmd.NewCmdLogs(f, nil))
	cmd.AddCommand(servicecmd.NewCmdService(f))
	cmd.AddCommand(versioncmd.NewCmdVersion(f, version, buildDate))

	return cmd
}

// initializeLogger sets up the logger with file logging if possible.
// Falls back to console-only logging on any errors.
func initializeLogger(f *cmdutil.Factory, debug bool) {
	settings, err := f.Config()
	if err != nil {
		logger.Init(debug)
		logger.Warn().Err(err).Msg("file logging unavailable: failed to load settings")
		return
	}

	logsDir, err := config.LogsDir()
	if err != nil {
		logger.Init(debug)
		logger.Warn().Err(err).Msg("file logging unavailable: failed to get logs directory")
		return
	}

	if err := logger.InitWithFile(debug, logsDir, settings.Logging.LoggerConfig()); err != nil {
		logger.Init(debug)
		logger.Warn().Err(err).Msg("file logging unavailable: failed to initialize file writer")
	}
}
