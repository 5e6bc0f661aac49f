//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// notifyContext returns a context cancelled on Ctrl+C, which stops a
// running batch or shuts the server down. SIGTERM does not exist on Windows.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
