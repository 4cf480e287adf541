package shell

import (
	"errors"
	"strings"
)

// notRunningMarker is what docker and docker compose print when the target
// has already stopped or was never started.
const notRunningMarker = "is not running"

var goneMarkers = []string{
	notRunningMarker,
	"no such container",
	"no such network",
	"no such volume",
	"not found",
	"removal of container",
}

// IsNotRunning reports whether err is the runtime saying its target is not
// running. Teardown and orphan removal treat it as success.
func IsNotRunning(err error) bool {
	return errorContains(err, notRunningMarker)
}

// IsGone reports whether err says the resource no longer exists or is
// already being removed.
func IsGone(err error) bool {
	for _, m := range goneMarkers {
		if errorContains(err, m) {
			return true
		}
	}
	return false
}

func errorContains(err error, marker string) bool {
	if err == nil {
		return false
	}
	var ee *ExitError
	if errors.As(err, &ee) && strings.Contains(strings.ToLower(ee.Stderr), marker) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), marker)
}
