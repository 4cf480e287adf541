package sweep

import (
	"context"
	"errors"
)

// ErrAlreadyGone marks a removal that lost a race with the runtime: the
// resource was already stopped, removed, or being removed. Janitors wrap
// such failures with it and the sweeper counts them as reclaimed.
var ErrAlreadyGone = errors.New("resource already gone")

// Container is a live container as reported by the runtime.
type Container struct {
	ID   string
	Name string
}

// Janitor is the runtime surface the sweeper needs. Implementations exist
// for the docker CLI (compose.CLIJanitor) and the Engine API (docker.Janitor).
type Janitor interface {
	// ListContainers returns every container, running or not.
	ListContainers(ctx context.Context) ([]Container, error)

	// RemoveContainer force-removes a container and its anonymous volumes.
	RemoveContainer(ctx context.Context, id string) error

	// RemoveProjectNetworks removes every network owned by a compose project.
	RemoveProjectNetworks(ctx context.Context, project string) error

	// PruneVolumes removes volumes no container references.
	PruneVolumes(ctx context.Context) error
}
