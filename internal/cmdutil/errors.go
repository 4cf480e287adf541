package cmdutil

import (
	"errors"
	"fmt"
)

// ExitError carries a non-zero exit status out of a command so deferred
// teardown still runs before the process exits. Command names what was run
// inside the environment; it is empty for statuses cienv decides itself,
// such as a stopped service under 'service status'.
type ExitError struct {
	Code    int
	Command string
}

func (e *ExitError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
}

// FlagError marks a usage mistake: bad flags, bad arguments, or a missing
// environment name. Main prints it followed by the usage and exits 2.
type FlagError struct {
	err error
}

func (e *FlagError) Error() string { return e.err.Error() }
func (e *FlagError) Unwrap() error { return e.err }

// FlagErrorf creates a FlagError with a formatted message.
func FlagErrorf(format string, args ...any) error {
	return &FlagError{err: fmt.Errorf(format, args...)}
}

// FlagErrorWrap marks err as a usage mistake. A nil err stays nil.
func FlagErrorWrap(err error) error {
	if err == nil {
		return nil
	}
	return &FlagError{err: err}
}

// IsUsageError reports whether err, anywhere in its chain, is a FlagError.
func IsUsageError(err error) bool {
	var flagErr *FlagError
	return errors.As(err, &flagErr)
}

// SilentError signals that the error has already been displayed to the user.
// Main will exit non-zero but not print anything additional.
var SilentError = errors.New("SilentError")
