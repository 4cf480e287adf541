package address

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/shlex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/cienv/internal/cmdutil"
	"github.com/schmitthub/cienv/internal/compose"
	"github.com/schmitthub/cienv/internal/iostreams/iostreamstest"
	"github.com/schmitthub/cienv/internal/naming"
	"github.com/schmitthub/cienv/internal/shell"
	"github.com/schmitthub/cienv/internal/shell/shelltest"
)

func TestNewCmdAddress(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantService string
		wantPort    string
		wantName    string
		wantErr     string
	}{
		{name: "service and port", input: "web 80", wantService: "web", wantPort: "80"},
		{name: "with name", input: "-n myenv dns 53/udp", wantService: "dns", wantPort: "53/udp", wantName: "myenv"},
		{name: "missing port", input: "web", wantErr: "needs SERVICE PORT, got 1 argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &cmdutil.Factory{IOStreams: iostreamstest.New().IOStreams}

			var gotOpts *AddressOptions
			cmd := NewCmdAddress(f, func(_ context.Context, opts *AddressOptions) error {
				gotOpts = opts
				return nil
			})

			argv, err := shlex.Split(tt.input)
			require.NoError(t, err)
			cmd.SetArgs(argv)
			cmd.SetIn(&bytes.Buffer{})
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			_, err = cmd.ExecuteC()
			if tt.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantService, gotOpts.Service)
			assert.Equal(t, tt.wantPort, gotOpts.PortSpec)
			assert.Equal(t, tt.wantName, gotOpts.Target.Name)
		})
	}
}

func newOpts(t *testing.T, exec *shelltest.FakeExecutor) (*AddressOptions, *iostreamstest.TestIOStreams, string) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Unix(1700000000, 0))
	gen := naming.NewGenerator(nil, clk)
	ios := iostreamstest.New()
	slug := gen.Generate().Slug

	return &AddressOptions{
		IOStreams: ios.IOStreams,
		Compose:   func() (*compose.Compose, error) { return compose.New(exec, ""), nil },
		Naming:    func() (*naming.Generator, error) { return gen, nil },
		Getenv:    func(string) string { return "" },
		Target:    cmdutil.TargetFlags{File: "c.yml", Name: slug},
	}, ios, slug
}

func TestAddressRun_Pinned(t *testing.T) {
	exec := &shelltest.FakeExecutor{}
	opts, ios, _ := newOpts(t, exec)
	opts.Service, opts.PortSpec = "db", "127.0.0.1:5432:5432"

	require.NoError(t, addressRun(context.Background(), opts))

	assert.Equal(t, "127.0.0.1:5432\n", ios.OutBuf.String())
	assert.Empty(t, exec.Calls, "pinned ports need no runtime query")
}

func TestAddressRun_QueriesRuntime(t *testing.T) {
	exec := &shelltest.FakeExecutor{RunFn: func(context.Context, shell.Command) (shell.Result, error) {
		return shell.Result{Stdout: "0.0.0.0:49153\n"}, nil
	}}
	opts, ios, slug := newOpts(t, exec)
	opts.Service, opts.PortSpec = "web", "80"

	require.NoError(t, addressRun(context.Background(), opts))

	assert.Equal(t, "0.0.0.0:49153\n", ios.OutBuf.String())
	require.Len(t, exec.Calls, 1)
	assert.True(t, shelltest.Contains(exec.Calls[0], "-p "+slug, "port web 80"))
}
