// Package dockertest provides a function-field fake of docker.APIClient.
//
// Each method delegates to its Fn field and records the call. A method
// whose Fn is nil panics, so unexpected calls fail loudly.
package dockertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/moby/moby/client"

	"github.com/schmitthub/cienv/internal/docker"
)

// FakeAPI is a test double for docker.APIClient.
type FakeAPI struct {
	mu    sync.Mutex
	Calls []string

	ContainerListFn   func(ctx context.Context, opts client.ContainerListOptions) (client.ContainerListResult, error)
	ContainerRemoveFn func(ctx context.Context, container string, opts client.ContainerRemoveOptions) (client.ContainerRemoveResult, error)
	NetworkListFn     func(ctx context.Context, opts client.NetworkListOptions) (client.NetworkListResult, error)
	NetworkRemoveFn   func(ctx context.Context, network string, opts client.NetworkRemoveOptions) (client.NetworkRemoveResult, error)
	VolumePruneFn     func(ctx context.Context, opts client.VolumePruneOptions) (client.VolumePruneResult, error)
	PingFn            func(ctx context.Context, opts client.PingOptions) (client.PingResult, error)
}

var _ docker.APIClient = (*FakeAPI)(nil)

func (f *FakeAPI) record(method string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, method)
	f.mu.Unlock()
}

func notImplemented(method string) {
	panic(fmt.Sprintf("not implemented: %s, set %sFn on FakeAPI", method, method))
}

// CallCount returns how many times method was called.
func (f *FakeAPI) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == method {
			n++
		}
	}
	return n
}

func (f *FakeAPI) ContainerList(ctx context.Context, opts client.ContainerListOptions) (client.ContainerListResult, error) {
	if f.ContainerListFn == nil {
		notImplemented("ContainerList")
	}
	f.record("ContainerList")
	return f.ContainerListFn(ctx, opts)
}

func (f *FakeAPI) ContainerRemove(ctx context.Context, container string, opts client.ContainerRemoveOptions) (client.ContainerRemoveResult, error) {
	if f.ContainerRemoveFn == nil {
		notImplemented("ContainerRemove")
	}
	f.record("ContainerRemove")
	return f.ContainerRemoveFn(ctx, container, opts)
}

func (f *FakeAPI) NetworkList(ctx context.Context, opts client.NetworkListOptions) (client.NetworkListResult, error) {
	if f.NetworkListFn == nil {
		notImplemented("NetworkList")
	}
	f.record("NetworkList")
	return f.NetworkListFn(ctx, opts)
}

func (f *FakeAPI) NetworkRemove(ctx context.Context, network string, opts client.NetworkRemoveOptions) (client.NetworkRemoveResult, error) {
	if f.NetworkRemoveFn == nil {
		notImplemented("NetworkRemove")
	}
	f.record("NetworkRemove")
	return f.NetworkRemoveFn(ctx, network, opts)
}

func (f *FakeAPI) VolumePrune(ctx context.Context, opts client.VolumePruneOptions) (client.VolumePruneResult, error) {
	if f.VolumePruneFn == nil {
		notImplemented("VolumePrune")
	}
	f.record("VolumePrune")
	return f.VolumePruneFn(ctx, opts)
}

func (f *FakeAPI) Ping(ctx context.Context, opts client.PingOptions) (client.PingResult, error) {
	if f.PingFn == nil {
		notImplemented("Ping")
	}
	f.record("Ping")
	return f.PingFn(ctx, opts)
}

// Close implements docker.APIClient.
func (f *FakeAPI) Close() error {
	f.record("Close")
	return nil
}
