package docker_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/network"
	"github.com/moby/moby/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/cienv/internal/docker"
	"github.com/schmitthub/cienv/internal/docker/dockertest"
	"github.com/schmitthub/cienv/internal/sweep"
)

func TestJanitor_ListContainers(t *testing.T) {
	fake := &dockertest.FakeAPI{
		ContainerListFn: func(_ context.Context, opts client.ContainerListOptions) (client.ContainerListResult, error) {
			assert.True(t, opts.All, "stopped containers must be listed too")
			return client.ContainerListResult{Items: []container.Summary{
				{ID: "abc", Names: []string{"/cicontainerzenwuzzdivzz1700000000-0a1b2c3d-web-1"}},
				{ID: "nameless"},
				{ID: "def", Names: []string{"/postgres"}},
			}}, nil
		},
	}

	got, err := docker.NewJanitor(fake).ListContainers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []sweep.Container{
		{ID: "abc", Name: "cicontainerzenwuzzdivzz1700000000-0a1b2c3d-web-1"},
		{ID: "def", Name: "postgres"},
	}, got)
}

func TestJanitor_RemoveContainer(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantErr  bool
		wantGone bool
	}{
		{name: "removed"},
		{name: "not found", err: fmt.Errorf("No such container: abc: %w", cerrdefs.ErrNotFound), wantErr: true, wantGone: true},
		{name: "removal in progress", err: fmt.Errorf("removal already in progress: %w", cerrdefs.ErrConflict), wantErr: true, wantGone: true},
		{name: "daemon failure", err: errors.New("i/o timeout"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotOpts client.ContainerRemoveOptions
			fake := &dockertest.FakeAPI{
				ContainerRemoveFn: func(_ context.Context, id string, opts client.ContainerRemoveOptions) (client.ContainerRemoveResult, error) {
					gotOpts = opts
					return client.ContainerRemoveResult{}, tt.err
				},
			}

			err := docker.NewJanitor(fake).RemoveContainer(context.Background(), "abc")

			assert.True(t, gotOpts.Force)
			assert.True(t, gotOpts.RemoveVolumes)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantGone, errors.Is(err, sweep.ErrAlreadyGone))
		})
	}
}

func TestJanitor_RemoveProjectNetworks(t *testing.T) {
	items := make([]network.Summary, 3)
	items[0].ID = "n1"
	items[1].ID = "n2"
	items[2].ID = "n3"

	var removed []string
	fake := &dockertest.FakeAPI{
		NetworkListFn: func(_ context.Context, opts client.NetworkListOptions) (client.NetworkListResult, error) {
			return client.NetworkListResult{Items: items}, nil
		},
		NetworkRemoveFn: func(_ context.Context, id string, _ client.NetworkRemoveOptions) (client.NetworkRemoveResult, error) {
			removed = append(removed, id)
			switch id {
			case "n2":
				return client.NetworkRemoveResult{}, errors.New("network n2 has active endpoints")
			case "n3":
				return client.NetworkRemoveResult{}, fmt.Errorf("gone: %w", cerrdefs.ErrNotFound)
			}
			return client.NetworkRemoveResult{}, nil
		},
	}

	err := docker.NewJanitor(fake).RemoveProjectNetworks(context.Background(), "proj")

	assert.Equal(t, []string{"n1", "n2", "n3"}, removed, "every network is attempted")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "active endpoints")
	assert.NotContains(t, err.Error(), "gone")
}

func TestJanitor_PruneVolumes(t *testing.T) {
	fake := &dockertest.FakeAPI{
		VolumePruneFn: func(context.Context, client.VolumePruneOptions) (client.VolumePruneResult, error) {
			return client.VolumePruneResult{}, nil
		},
	}

	require.NoError(t, docker.NewJanitor(fake).PruneVolumes(context.Background()))
	assert.Equal(t, 1, fake.CallCount("VolumePrune"))
}

func TestJanitor_DrivesSweep(t *testing.T) {
	fake := &dockertest.FakeAPI{
		ContainerListFn: func(context.Context, client.ContainerListOptions) (client.ContainerListResult, error) {
			return client.ContainerListResult{Items: []container.Summary{
				{ID: "abc", Names: []string{"/cicontainerzenwuzzdivzz1000-0a1b2c3d-web-1"}},
				{ID: "def", Names: []string{"/postgres"}},
			}}, nil
		},
		ContainerRemoveFn: func(context.Context, string, client.ContainerRemoveOptions) (client.ContainerRemoveResult, error) {
			return client.ContainerRemoveResult{}, nil
		},
		NetworkListFn: func(context.Context, client.NetworkListOptions) (client.NetworkListResult, error) {
			return client.NetworkListResult{}, nil
		},
		VolumePruneFn: func(context.Context, client.VolumePruneOptions) (client.VolumePruneResult, error) {
			return client.VolumePruneResult{}, nil
		},
	}

	report := sweep.New(docker.NewJanitor(fake), nil, nil, nil).Sweep(context.Background(), sweep.Retention{Minutes: 5})

	assert.Equal(t, 1, report.Removed)
	assert.Equal(t, []string{"cicontainerzenwuzzdivzz1000-0a1b2c3d"}, report.Projects)
	assert.Equal(t, 1, fake.CallCount("ContainerRemove"))
}

type trackingReader struct {
	io.Reader
	closed bool
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

func TestPuller_DrainsAndCloses(t *testing.T) {
	body := &trackingReader{Reader: strings.NewReader(`{"status":"Pulling"}` + "\n")}
	p := docker.NewPuller(func(_ context.Context, ref string) (io.ReadCloser, error) {
		assert.Equal(t, "nginx:1.27", ref)
		return body, nil
	})

	require.NoError(t, p.Pull(context.Background(), "nginx:1.27"))
	assert.True(t, body.closed)
}

func TestPuller_Failure(t *testing.T) {
	p := docker.NewPuller(func(context.Context, string) (io.ReadCloser, error) {
		return nil, errors.New("manifest unknown")
	})

	err := p.Pull(context.Background(), "missing:latest")
	assert.EqualError(t, err, "pulling missing:latest: manifest unknown")
}

func TestClient_CloseNil(t *testing.T) {
	var c *docker.Client
	assert.NoError(t, c.Close())

	fake := &dockertest.FakeAPI{}
	c = &docker.Client{API: fake}
	assert.NoError(t, c.Close())
	assert.Equal(t, 1, fake.CallCount("Close"))
}
