package cmdutil

import (
	"context"

	"github.com/schmitthub/cienv/internal/compose"
	"github.com/schmitthub/cienv/internal/config"
	"github.com/schmitthub/cienv/internal/environment"
	"github.com/schmitthub/cienv/internal/iostreams"
	"github.com/schmitthub/cienv/internal/metrics"
	"github.com/schmitthub/cienv/internal/naming"
	"github.com/schmitthub/cienv/internal/shell"
	"github.com/schmitthub/cienv/internal/sweep"
)

// Factory provides shared dependencies for CLI commands.
// It is a dependency injection container: the struct defines what
// dependencies exist, while internal/cmd/factory wires the real
// implementations.
//
// Closure fields use lazy initialization internally. Commands extract
// only the fields they need into per-command Options structs.
type Factory struct {
	Version string
	Commit  string

	IOStreams *iostreams.IOStreams

	Config func() (*config.Settings, error)

	// Executor runs host commands through the configured shell.
	Executor func() (shell.Executor, error)
	Compose  func() (*compose.Compose, error)
	Naming   func() (*naming.Generator, error)

	// Sweeper builds an orphan sweeper on the given backend ("cli" or
	// "api"). An empty backend uses the configured one.
	Sweeper func(ctx context.Context, backend string) (*sweep.Sweeper, error)

	Provisioner func(ctx context.Context) (*environment.Provisioner, error)
	Metrics     func() *metrics.Metrics

	// Close releases the Engine API client, if one was opened.
	Close func()
}
