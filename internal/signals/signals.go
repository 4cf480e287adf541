// Package signals turns interrupts into context cancellation. This is a
// leaf package: stdlib only, no internal imports, no logging.
package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Shutdown lists the signals that cancel a run.
var Shutdown = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// SetupSignalContext creates a context that's canceled on the first
// SIGINT/SIGTERM. onSignal, if non-nil, is called with that signal.
//
// The handler is removed after the first signal, so a second one gets the
// default behavior and kills the process. Teardown that runs on a context
// detached from ctx can therefore be aborted by interrupting again.
func SetupSignalContext(parent context.Context, onSignal func(os.Signal)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, Shutdown...)

	go func() {
		select {
		case sig := <-sigChan:
			signal.Stop(sigChan)
			if onSignal != nil {
				onSignal(sig)
			}
			cancel()
		case <-ctx.Done():
			signal.Stop(sigChan)
		}
	}()

	return ctx, cancel
}
