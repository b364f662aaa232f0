//go:build !windows

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// registerQuitHandler exits on SIGQUIT without waiting for a transmission to
// finish. cleanup runs first so the buzzer is released and a raw terminal
// restored.
func registerQuitHandler(cleanup func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGQUIT)
	go func() {
		<-sigs
		cleanup()
		fmt.Fprintln(os.Stderr, "SIGQUIT, stopping immediately")
		os.Exit(1)
	}()
}
