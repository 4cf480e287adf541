// Package shell runs external commands (docker, docker compose, user test
// commands) and classifies their failures.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/google/shlex"
	"github.com/schmitthub/cienv/internal/iostreams"
	"github.com/schmitthub/cienv/internal/logger"
)

// DisabledShell turns off shell wrapping when used as the shell path.
const DisabledShell = "NO"

// DefaultShell is used when no shell is configured.
const DefaultShell = "/bin/sh"

// Command is one command invocation. Either Args or Line must be set; Args
// wins when both are.
type Command struct {
	Args []string
	Line string

	// Env is merged over the parent process environment.
	Env map[string]string

	// Stdout and Stderr, when set, receive output as it is produced in
	// addition to being captured.
	Stdout, Stderr io.Writer
}

// String renders the command as a shell line.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Line
	}
	quoted := make([]string, len(c.Args))
	for i, a := range c.Args {
		quoted[i] = Quote(a)
	}
	return strings.Join(quoted, " ")
}

// Result holds captured output of a successful run.
type Result struct {
	Stdout string
	Stderr string
}

// Executor runs commands.
type Executor interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExitError is returned when a command fails. Stderr carries the runtime's
// diagnostic, which is what callers inspect for "not running" races.
type ExitError struct {
	Command string
	Code    int
	Stdout  string
	Stderr  string
	Err     error
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command %q failed: %v: %s", e.Command, e.Err, msg)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Exec runs commands on the host, optionally through a shell.
type Exec struct {
	// Shell is the interpreter invoked as `<shell> -c <line>`. Empty or
	// DisabledShell executes the command directly.
	Shell string

	// Environ supplies the parent environment. Defaults to os.Environ.
	Environ func() []string

	Logger iostreams.Logger
}

// New returns an executor using the given shell.
func New(shellPath string, log iostreams.Logger) *Exec {
	if log == nil {
		log = logger.Nop()
	}
	return &Exec{Shell: shellPath, Environ: os.Environ, Logger: log}
}

// Run executes cmd and waits for it to finish.
func (e *Exec) Run(ctx context.Context, cmd Command) (Result, error) {
	c, err := e.command(ctx, cmd)
	if err != nil {
		return Result{}, err
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdout != nil {
		c.Stdout = io.MultiWriter(&stdout, cmd.Stdout)
	}
	if cmd.Stderr != nil {
		c.Stderr = io.MultiWriter(&stderr, cmd.Stderr)
	}

	e.logger().Debug().Str("command", cmd.String()).Msg("executing")

	runErr := c.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr != nil {
		exitErr := &ExitError{
			Command: cmd.String(),
			Code:    -1,
			Stdout:  res.Stdout,
			Stderr:  res.Stderr,
			Err:     runErr,
		}
		var ee *exec.ExitError
		if errors.As(runErr, &ee) {
			exitErr.Code = ee.ExitCode()
		}
		e.logger().Debug().Str("command", exitErr.Command).Int("code", exitErr.Code).Msg("command failed")
		return res, exitErr
	}
	return res, nil
}

func (e *Exec) command(ctx context.Context, cmd Command) (*exec.Cmd, error) {
	var c *exec.Cmd
	if e.Shell != "" && e.Shell != DisabledShell {
		c = exec.CommandContext(ctx, e.Shell, "-c", cmd.String())
	} else {
		argv := cmd.Args
		if len(argv) == 0 {
			var err error
			argv, err = shlex.Split(cmd.Line)
			if err != nil {
				return nil, fmt.Errorf("parsing command line %q: %w", cmd.Line, err)
			}
		}
		if len(argv) == 0 {
			return nil, errors.New("empty command")
		}
		c = exec.CommandContext(ctx, argv[0], argv[1:]...)
	}
	c.Env = MergeEnv(e.environ(), cmd.Env)
	return c, nil
}

func (e *Exec) environ() []string {
	if e.Environ == nil {
		return os.Environ()
	}
	return e.Environ()
}

func (e *Exec) logger() iostreams.Logger {
	if e.Logger == nil {
		return logger.Nop()
	}
	return e.Logger
}

// MergeEnv overlays vars on base (KEY=VALUE entries). Overlay keys are
// appended in sorted order so the result is deterministic.
func MergeEnv(base []string, vars map[string]string) []string {
	out := make([]string, 0, len(base)+len(vars))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if _, overridden := vars[k]; overridden {
			continue
		}
		out = append(out, kv)
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+vars[k])
	}
	return out
}

// Quote single-quotes s for a POSIX shell when it contains anything besides
// safe characters.
func Quote(s string) string {
	return shellescape.Quote(s)
}
