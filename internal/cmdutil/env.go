package cmdutil

import (
	"strings"

	"github.com/spf13/cobra"
)

// AddEnvFlag registers a repeatable -e/--env KEY=VALUE flag.
func AddEnvFlag(cmd *cobra.Command, target *[]string) {
	cmd.Flags().StringArrayVarP(target, "env", "e", nil, "Set a variable for compose interpolation (KEY=VALUE)")
}

// ParseEnvVars parses KEY=VALUE pairs. A bare KEY is an error; later
// occurrences of a key win.
func ParseEnvVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, FlagErrorf("invalid environment variable %q: expected KEY=VALUE", p)
		}
		vars[k] = v
	}
	return vars, nil
}
