package version

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schmitthub/cienv/internal/cmdutil"
)

// Info is the --json output of version.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

// NewCmdVersion creates the "version" subcommand.
func NewCmdVersion(f *cmdutil.Factory, version, buildDate string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of cienv",
		Example: `  # Record the tool version next to test results
  cienv version --json > cienv-version.json`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !asJSON {
				_, err := fmt.Fprint(f.IOStreams.Out, cmd.Root().Annotations["versionInfo"])
				return err
			}
			info := Info{Version: strings.TrimPrefix(version, "v"), BuildDate: buildDate}
			if f.Commit != "none" {
				info.Commit = f.Commit
			}
			return cmdutil.WriteJSON(f.IOStreams.Out, info)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version, commit and build date as JSON")

	return cmd
}

// Format returns the version string for display.
func Format(version, buildDate string) string {
	version = strings.TrimPrefix(version, "v")

	var dateStr string
	if buildDate != "" {
		dateStr = fmt.Sprintf(" (%s)", buildDate)
	}

	return fmt.Sprintf("cienv version %s%s\n", version, dateStr)
}
