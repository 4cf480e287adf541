package up

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/shlex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/cienv/internal/cmdutil"
	"github.com/schmitthub/cienv/internal/compose"
	"github.com/schmitthub/cienv/internal/environment"
	"github.com/schmitthub/cienv/internal/iostreams/iostreamstest"
	"github.com/schmitthub/cienv/internal/metrics"
	"github.com/schmitthub/cienv/internal/naming"
	"github.com/schmitthub/cienv/internal/shell"
	"github.com/schmitthub/cienv/internal/shell/shelltest"
)

func TestNewCmdUp(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		output     UpOptions
		wantErr    bool
		wantErrMsg string
	}{
		{
			name:   "defaults",
			output: UpOptions{Provision: cmdutil.ProvisionFlags{File: "docker-compose.yml"}},
		},
		{
			name:   "services and file",
			input:  "-f ci/compose.yml -s web -s db,cache",
			output: UpOptions{Provision: cmdutil.ProvisionFlags{File: "ci/compose.yml", Services: []string{"web", "db", "cache"}}},
		},
		{
			name:   "retention zero is explicit",
			input:  "--retention 0",
			output: UpOptions{Provision: cmdutil.ProvisionFlags{File: "docker-compose.yml", RetentionSet: true}},
		},
		{
			name:   "health timeout implies health",
			input:  "--health-timeout 45s",
			output: UpOptions{Provision: cmdutil.ProvisionFlags{File: "docker-compose.yml", Health: true, HealthTimeout: 45 * time.Second}},
		},
		{
			name:  "switches",
			input: "--pull --no-cleanup --print-env --json -e A=1 -n myenv",
			output: UpOptions{
				Provision: cmdutil.ProvisionFlags{File: "docker-compose.yml", Pull: true, NoCleanup: true, PrintEnv: true, Vars: []string{"A=1"}},
				Name:      "myenv",
				JSON:      true,
			},
		},
		{
			name:       "negative retention",
			input:      "--retention -1",
			wantErr:    true,
			wantErrMsg: "--retention must not be negative",
		},
		{
			name:       "positional args",
			input:      "web",
			wantErr:    true,
			wantErrMsg: `"up" takes no arguments, got "web"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &cmdutil.Factory{IOStreams: iostreamstest.New().IOStreams}

			var gotOpts *UpOptions
			cmd := NewCmdUp(f, func(_ context.Context, opts *UpOptions) error {
				gotOpts = opts
				return nil
			})

			argv := []string{}
			if tt.input != "" {
				parsed, err := shlex.Split(tt.input)
				require.NoError(t, err)
				argv = parsed
			}
			cmd.SetArgs(argv)
			cmd.SetIn(&bytes.Buffer{})
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			_, err := cmd.ExecuteC()
			if tt.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, gotOpts)
			assert.Equal(t, tt.output.Provision, gotOpts.Provision)
			assert.Equal(t, tt.output.Name, gotOpts.Name)
			assert.Equal(t, tt.output.JSON, gotOpts.JSON)
		})
	}
}

type testEnv struct {
	ios  *iostreamstest.TestIOStreams
	exec *shelltest.FakeExecutor
	gen  *naming.Generator
	opts *UpOptions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Unix(1700000000, 0))

	te := &testEnv{
		ios:  iostreamstest.New(),
		exec: &shelltest.FakeExecutor{},
		gen:  naming.NewGenerator(nil, clk),
	}
	p := environment.New(environment.Config{
		Runtime:   compose.New(te.exec, ""),
		Generator: te.gen,
		Clock:     clk,
	})
	te.opts = &UpOptions{
		IOStreams:   te.ios.IOStreams,
		Provisioner: func(context.Context) (*environment.Provisioner, error) { return p, nil },
		Naming:      func() (*naming.Generator, error) { return te.gen, nil },
		Metrics:     func() *metrics.Metrics { return metrics.New("") },
		Provision:   cmdutil.ProvisionFlags{File: "c.yml", NoCleanup: true},
	}
	return te
}

func TestUpRun_PrintsName(t *testing.T) {
	te := newTestEnv(t)

	require.NoError(t, upRun(context.Background(), te.opts))

	slug := strings.TrimSpace(te.ios.OutBuf.String())
	_, err := te.gen.FromSlug(slug)
	require.NoError(t, err, "stdout carries only the environment name")
	require.Len(t, te.exec.Calls, 1)
	assert.True(t, shelltest.Contains(te.exec.Calls[0], "compose -p "+slug+" -f c.yml up -d"))
	assert.Contains(t, te.ios.ErrBuf.String(), "is up")
}

func TestUpRun_JoinsExistingEnvironment(t *testing.T) {
	te := newTestEnv(t)
	existing := te.gen.Generate()
	te.opts.Name = existing.Slug
	te.opts.Provision.Services = []string{"worker"}

	require.NoError(t, upRun(context.Background(), te.opts))

	assert.Equal(t, existing.Slug+"\n", te.ios.OutBuf.String())
	assert.True(t, shelltest.Contains(te.exec.Calls[0], "-p "+existing.Slug, "up -d worker"))
}

func TestUpRun_JSON(t *testing.T) {
	te := newTestEnv(t)
	te.opts.JSON = true
	te.opts.Provision.Services = []string{"web"}

	require.NoError(t, upRun(context.Background(), te.opts))

	var got Summary
	require.NoError(t, json.Unmarshal([]byte(te.ios.OutBuf.String()), &got))
	assert.Equal(t, "c.yml", got.ComposeFile)
	assert.Equal(t, []string{"web"}, got.Services)
	assert.True(t, time.Unix(1700000000, 0).Equal(got.CreatedAt))
	assert.NotEmpty(t, got.Codename)
	assert.Contains(t, got.Name, got.Codename)
}

func TestUpRun_FailureNamesLeftoverEnvironment(t *testing.T) {
	te := newTestEnv(t)
	te.exec.RunFn = func(_ context.Context, cmd shell.Command) (shell.Result, error) {
		return shell.Result{}, shelltest.Failure(cmd, "port is already allocated")
	}

	err := upRun(context.Background(), te.opts)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "port is already allocated")
	assert.Empty(t, te.ios.OutBuf.String())
	assert.Contains(t, te.ios.ErrBuf.String(), "cienv down --name cicontainer")
}

func TestUpRun_InvalidName(t *testing.T) {
	te := newTestEnv(t)
	te.opts.Name = "someone-elses-project"

	err := upRun(context.Background(), te.opts)

	require.Error(t, err)
	assert.ErrorIs(t, err, naming.ErrInvalidIdentityFormat)
	assert.Empty(t, te.exec.Calls)
}
