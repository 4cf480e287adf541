package compose

import (
	"context"
	"testing"

	"github.com/schmitthub/cienv/internal/shell"
	"github.com/schmitthub/cienv/internal/shell/shelltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinnedAddress(t *testing.T) {
	tests := []struct {
		spec   string
		want   string
		wantOK bool
	}{
		{spec: "8080:8080", want: "0.0.0.0:8080", wantOK: true},
		{spec: "9000:80", want: "0.0.0.0:9000", wantOK: true},
		{spec: "127.0.0.1:5432:5432", want: "127.0.0.1:5432", wantOK: true},
		{spec: "5353:53/udp", want: "0.0.0.0:5353", wantOK: true},
		{spec: "80", wantOK: false},
		{spec: "80/udp", wantOK: false},
		{spec: "127.0.0.1::80", wantOK: false},
		{spec: "not:a:port:spec", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, ok := PinnedAddress(tt.spec)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddress_PinnedSkipsRuntime(t *testing.T) {
	fake := &shelltest.FakeExecutor{}

	addr, err := New(fake, "").Address(context.Background(), testTarget, "web", "8080:8080")

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", addr)
	assert.Empty(t, fake.Calls)
}

func TestAddress_QueriesRuntime(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		wantArgs []string
	}{
		{name: "bare port", spec: "80", wantArgs: prefix("port", "web", "80")},
		{name: "udp port", spec: "53/udp", wantArgs: prefix("port", "--protocol", "udp", "web", "53")},
		{name: "dynamic host port", spec: "127.0.0.1::80", wantArgs: prefix("port", "web", "80")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &shelltest.FakeExecutor{RunFn: func(context.Context, shell.Command) (shell.Result, error) {
				return shell.Result{Stdout: "0.0.0.0:49153\n"}, nil
			}}

			addr, err := New(fake, "").Address(context.Background(), testTarget, "web", tt.spec)

			require.NoError(t, err)
			assert.Equal(t, "0.0.0.0:49153", addr)
			require.Len(t, fake.Calls, 1)
			assert.Equal(t, tt.wantArgs, fake.Calls[0].Args)
		})
	}
}

func TestAddress_NotMemoized(t *testing.T) {
	answers := []string{"0.0.0.0:49153\n", "0.0.0.0:49200\n"}
	fake := &shelltest.FakeExecutor{}
	fake.RunFn = func(context.Context, shell.Command) (shell.Result, error) {
		return shell.Result{Stdout: answers[len(fake.Calls)-1]}, nil
	}
	c := New(fake, "")

	first, err := c.Address(context.Background(), testTarget, "web", "80")
	require.NoError(t, err)
	second, err := c.Address(context.Background(), testTarget, "web", "80")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:49153", first)
	assert.Equal(t, "0.0.0.0:49200", second)
}

func TestAddress_RuntimeFailure(t *testing.T) {
	fake := &shelltest.FakeExecutor{RunFn: func(_ context.Context, cmd shell.Command) (shell.Result, error) {
		return shell.Result{}, shelltest.Failure(cmd, "no container found for web_1")
	}}

	_, err := New(fake, "").Address(context.Background(), testTarget, "web", "80")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving web port 80")
}
