package cmdutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagErrorf(t *testing.T) {
	err := FlagErrorf("unknown backend: %s", "ssh")
	assert.Equal(t, "unknown backend: ssh", err.Error())
	assert.True(t, IsUsageError(err))
}

func TestFlagErrorWrap(t *testing.T) {
	inner := errors.New("invalid env var")
	err := FlagErrorWrap(inner)

	var flagErr *FlagError
	require.True(t, errors.As(err, &flagErr))
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, inner, flagErr.Unwrap())

	assert.NoError(t, FlagErrorWrap(nil))
}

func TestIsUsageError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil},
		{name: "plain", err: errors.New("boom")},
		{name: "flag error", err: FlagErrorf("bad"), want: true},
		{name: "wrapped", err: fmt.Errorf("up: %w", FlagErrorf("bad")), want: true},
		{name: "joined", err: errors.Join(errors.New("teardown"), FlagErrorf("bad")), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUsageError(tt.err))
		})
	}
}

func TestSilentError(t *testing.T) {
	err := fmt.Errorf("sweep failed: %w", SilentError)
	assert.ErrorIs(t, err, SilentError)
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ExitError
		wantMsg string
	}{
		{name: "own status", err: &ExitError{Code: 1}, wantMsg: "exit status 1"},
		{name: "user command", err: &ExitError{Code: 3, Command: "make e2e"}, wantMsg: "make e2e: exit status 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("running tests: %w", tt.err)

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, tt.err.Code, exitErr.Code)
			assert.Equal(t, tt.wantMsg, exitErr.Error())
		})
	}
}
