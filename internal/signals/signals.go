// Package signals turns process termination signals into context
// cancellation. This is a leaf package: stdlib only, no internal imports,
// no logging.
package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Shutdown lists the signals SetupSignalContext listens for by default.
var Shutdown = []os.Signal{os.Interrupt, syscall.SIGTERM}

// InterruptedError is the cancellation cause recorded when a signal arrives.
type InterruptedError struct {
	Signal os.Signal
}

func (e *InterruptedError) Error() string {
	return "interrupted by " + e.Signal.String()
}

// SetupSignalContext creates a context that's canceled when one of sigs
// arrives, SIGINT and SIGTERM when none are given. context.Cause then
// returns an *InterruptedError.
func SetupSignalContext(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	if len(sigs) == 0 {
		sigs = Shutdown
	}
	ctx, cancel := context.WithCancelCause(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, sigs...)

	go func() {
		select {
		case sig := <-sigChan:
			cancel(&InterruptedError{Signal: sig})
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, func() { cancel(nil) }
}
