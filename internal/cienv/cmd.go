package cienv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cienv/internal/cmd/factory"
	"github.com/schmitthub/cienv/internal/cmd/root"
	"github.com/schmitthub/cienv/internal/cmdutil"
	"github.com/schmitthub/cienv/internal/logger"
	"github.com/schmitthub/cienv/internal/signals"
)

// Build-time variables injected via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = ""
)

const (
	exitOk    = 0
	exitError = 1
	exitUsage = 2
)

// Main is the entry point for the cienv CLI.
// It initializes the Factory, creates the root command, and executes it.
func Main() int {
	// Ensure logs are flushed on exit
	defer logger.CloseFileWriter()

	f := factory.New(Version, Commit)
	defer f.Close()

	ctx, cancel := signals.SetupSignalContext(context.Background(), func(sig os.Signal) {
		fmt.Fprintf(f.IOStreams.ErrOut, "received %s, tearing down (interrupt again to abort)\n", sig)
	})
	defer cancel()

	rootCmd := root.NewCmdRoot(f, Version, BuildDate)
	cmd, err := rootCmd.ExecuteContextC(ctx)
	return exitCode(f.IOStreams.ErrOut, cmd, err)
}

// exitCode reports err on w and maps it to a process exit code.
func exitCode(w io.Writer, cmd *cobra.Command, err error) int {
	if err == nil {
		return exitOk
	}

	var exitErr *cmdutil.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Command != "" {
			fmt.Fprintf(w, "Error: %s\n", exitErr)
		}
		return exitErr.Code
	}
	if errors.Is(err, cmdutil.SilentError) {
		return exitError
	}

	fmt.Fprintf(w, "Error: %s\n", err)

	if cmdutil.IsUsageError(err) {
		if cmd != nil {
			fmt.Fprintln(w)
			fmt.Fprint(w, cmd.UsageString())
		}
		return exitUsage
	}

	if cmd != nil {
		fmt.Fprintf(w, "Run '%s --help' for usage.\n", cmd.CommandPath())
	}
	return exitError
}
