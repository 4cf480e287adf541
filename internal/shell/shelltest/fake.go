// Package shelltest provides test doubles for the shell package.
package shelltest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/schmitthub/cienv/internal/shell"
)

// FakeExecutor is a function-field test double for shell.Executor.
// RunFn receives every command; when nil, commands succeed with empty output.
// Every call is recorded in Calls.
type FakeExecutor struct {
	RunFn func(ctx context.Context, cmd shell.Command) (shell.Result, error)

	mu    sync.Mutex
	Calls []shell.Command
}

// Run implements shell.Executor.
func (f *FakeExecutor) Run(ctx context.Context, cmd shell.Command) (shell.Result, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	f.mu.Unlock()
	if f.RunFn == nil {
		return shell.Result{}, nil
	}
	return f.RunFn(ctx, cmd)
}

// Lines returns the recorded commands rendered as shell lines.
func (f *FakeExecutor) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.String()
	}
	return out
}

// Reset clears recorded calls.
func (f *FakeExecutor) Reset() {
	f.mu.Lock()
	f.Calls = nil
	f.mu.Unlock()
}

// Failure builds the error a real executor returns for a failed command.
func Failure(cmd shell.Command, stderr string) error {
	return &shell.ExitError{
		Command: cmd.String(),
		Code:    1,
		Stderr:  stderr,
		Err:     fmt.Errorf("exit status 1"),
	}
}

// Contains reports whether the rendered command contains every fragment.
func Contains(cmd shell.Command, fragments ...string) bool {
	line := cmd.String()
	for _, f := range fragments {
		if !strings.Contains(line, f) {
			return false
		}
	}
	return true
}
