package docker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/moby/moby/client"

	"github.com/schmitthub/cienv/internal/sweep"
)

// ComposeProjectLabel is set by compose on every resource of a project.
const ComposeProjectLabel = "com.docker.compose.project"

// Janitor implements sweep.Janitor against the Engine API.
type Janitor struct {
	api APIClient
}

var _ sweep.Janitor = (*Janitor)(nil)

// NewJanitor returns a Janitor using api.
func NewJanitor(api APIClient) *Janitor {
	return &Janitor{api: api}
}

// ListContainers returns every container. The leading slash the API puts
// on names is stripped.
func (j *Janitor) ListContainers(ctx context.Context) ([]sweep.Container, error) {
	res, err := j.api.ContainerList(ctx, client.ContainerListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}
	out := make([]sweep.Container, 0, len(res.Items))
	for _, c := range res.Items {
		if len(c.Names) == 0 {
			continue
		}
		out = append(out, sweep.Container{ID: c.ID, Name: strings.TrimPrefix(c.Names[0], "/")})
	}
	return out, nil
}

// RemoveContainer force-removes a container and its anonymous volumes.
func (j *Janitor) RemoveContainer(ctx context.Context, id string) error {
	_, err := j.api.ContainerRemove(ctx, id, client.ContainerRemoveOptions{Force: true, RemoveVolumes: true})
	return classify(err)
}

// RemoveProjectNetworks removes every network labelled with project.
// All networks are attempted; failures are joined.
func (j *Janitor) RemoveProjectNetworks(ctx context.Context, project string) error {
	f := client.Filters{}.Add("label", ComposeProjectLabel+"="+project)
	res, err := j.api.NetworkList(ctx, client.NetworkListOptions{Filters: f})
	if err != nil {
		return fmt.Errorf("listing networks of %s: %w", project, err)
	}

	var errs []error
	for _, n := range res.Items {
		if _, err := j.api.NetworkRemove(ctx, n.ID, client.NetworkRemoveOptions{}); err != nil {
			if err = classify(err); !errors.Is(err, sweep.ErrAlreadyGone) {
				errs = append(errs, fmt.Errorf("remove network %s: %w", n.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}

// PruneVolumes removes every volume no container references, named ones
// included.
func (j *Janitor) PruneVolumes(ctx context.Context) error {
	_, err := j.api.VolumePrune(ctx, client.VolumePruneOptions{Filters: client.Filters{}.Add("all", "true")})
	return err
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if cerrdefs.IsNotFound(err) || cerrdefs.IsConflict(err) {
		return fmt.Errorf("%w: %w", sweep.ErrAlreadyGone, err)
	}
	return err
}
