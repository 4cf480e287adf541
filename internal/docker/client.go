// Package docker talks to the Docker Engine API directly. It backs the
// api sweep backend and image pre-pulling when the CLI is not wanted.
package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/moby/moby/client"
)

// APIClient is the subset of the moby client cienv uses.
type APIClient interface {
	ContainerList(ctx context.Context, opts client.ContainerListOptions) (client.ContainerListResult, error)
	ContainerRemove(ctx context.Context, container string, opts client.ContainerRemoveOptions) (client.ContainerRemoveResult, error)
	NetworkList(ctx context.Context, opts client.NetworkListOptions) (client.NetworkListResult, error)
	NetworkRemove(ctx context.Context, network string, opts client.NetworkRemoveOptions) (client.NetworkRemoveResult, error)
	VolumePrune(ctx context.Context, opts client.VolumePruneOptions) (client.VolumePruneResult, error)
	Ping(ctx context.Context, opts client.PingOptions) (client.PingResult, error)
	Close() error
}

// PullFunc starts an image pull and returns its progress stream.
type PullFunc func(ctx context.Context, ref string) (io.ReadCloser, error)

// Client bundles an API client with its pull function.
type Client struct {
	API  APIClient
	Pull PullFunc
}

// NewClient connects to the daemon configured by the DOCKER_* environment
// and verifies it answers.
func NewClient(ctx context.Context) (*Client, error) {
	cli, err := client.New(client.FromEnv)
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	if _, err := cli.Ping(ctx, client.PingOptions{}); err != nil {
		cli.Close()
		return nil, fmt.Errorf("connecting to docker daemon: %w", err)
	}
	return &Client{
		API: cli,
		Pull: func(ctx context.Context, ref string) (io.ReadCloser, error) {
			return cli.ImagePull(ctx, ref, client.ImagePullOptions{})
		},
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.API == nil {
		return nil
	}
	return c.API.Close()
}
