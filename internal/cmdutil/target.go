package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/schmitthub/cienv/internal/environment"
	"github.com/schmitthub/cienv/internal/naming"
)

// DefaultComposeFile is used when --file is not given.
const DefaultComposeFile = "docker-compose.yml"

// EnvNameEnv supplies --name when the flag is not set, so a CI job can
// export the slug once after `cienv up`.
const EnvNameEnv = "CIENV_ENV_NAME"

// TargetFlags select an existing environment: its compose file, its slug
// and the variables its compose file interpolates.
type TargetFlags struct {
	File string
	Name string
	Vars []string
}

// AddTargetFlags registers -f/--file, -n/--name and -e/--env.
func AddTargetFlags(cmd *cobra.Command, t *TargetFlags) {
	cmd.Flags().StringVarP(&t.File, "file", "f", DefaultComposeFile, "Compose file describing the environment")
	cmd.Flags().StringVarP(&t.Name, "name", "n", "", "Environment name printed by 'cienv up' (default $"+EnvNameEnv+")")
	AddEnvFlag(cmd, &t.Vars)
}

// Environment rebuilds the environment the flags name. getenv supplies
// the CIENV_ENV_NAME fallback.
func (t *TargetFlags) Environment(gen *naming.Generator, getenv func(string) string) (*environment.Environment, error) {
	name := t.Name
	if name == "" && getenv != nil {
		name = getenv(EnvNameEnv)
	}
	if name == "" {
		return nil, FlagErrorf("an environment name is required: pass --name or set %s", EnvNameEnv)
	}
	id, err := gen.FromSlug(name)
	if err != nil {
		return nil, FlagErrorWrap(err)
	}
	vars, err := ParseEnvVars(t.Vars)
	if err != nil {
		return nil, err
	}
	return &environment.Environment{Identity: id, ComposeFile: t.File, Env: vars}, nil
}
