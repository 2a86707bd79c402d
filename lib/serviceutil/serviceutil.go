package serviceutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a child of parent that is cancelled on the first
// Ctrl+C (or SIGTERM), the signal becomes the context's cause. A second signal
// exits the process immediately.
func SignalContext(parent context.Context) context.Context {
	ctx, cancel := context.WithCancelCause(parent)

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			slog.Warn("interrupted, finishing up (signal again to force quit)", "signal", sig.String())
			cancel(fmt.Errorf("received %s", sig))
		case <-parent.Done():
			signal.Stop(sigs)
			return
		}
		<-sigs
		os.Exit(130)
	}()

	return ctx
}

func Fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}
