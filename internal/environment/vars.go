package environment

import (
	"fmt"
	"io"
	"sort"

	"github.com/schmitthub/cienv/internal/shell"
)

// EnvValue is an environment variable value: either a literal or a
// function evaluated when the environment is provisioned.
type EnvValue struct {
	literal  string
	deferred func() string
}

// Literal returns a fixed value.
func Literal(s string) EnvValue { return EnvValue{literal: s} }

// Deferred returns a value computed by fn at provisioning time.
func Deferred(fn func() string) EnvValue { return EnvValue{deferred: fn} }

// IsDeferred reports whether the value is computed lazily.
func (v EnvValue) IsDeferred() bool { return v.deferred != nil }

func (v EnvValue) resolve() string {
	if v.deferred != nil {
		return v.deferred()
	}
	return v.literal
}

// Vars maps variable names to values.
type Vars map[string]EnvValue

// LiteralVars wraps plain values.
func LiteralVars(m map[string]string) Vars {
	out := make(Vars, len(m))
	for k, v := range m {
		out[k] = Literal(v)
	}
	return out
}

// Resolve evaluates every value once and returns the plain mapping.
func (v Vars) Resolve() map[string]string {
	out := make(map[string]string, len(v))
	for k, val := range v {
		out[k] = val.resolve()
	}
	return out
}

const (
	envVarsStartMarker = "--- ENVIRONMENT VARIABLES START"
	envVarsEndMarker   = "--- ENVIRONMENT VARIABLES END"
)

// PrintEnvVars writes vars as sorted export lines between markers, ready to
// be sourced by a shell.
func PrintEnvVars(w io.Writer, vars map[string]string) {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, envVarsStartMarker)
	for _, k := range keys {
		fmt.Fprintf(w, "export %s=%s\n", k, shell.Quote(vars[k]))
	}
	fmt.Fprintln(w, envVarsEndMarker)
}
