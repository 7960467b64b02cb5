package cmdutil

import (
	"os"
	"os/signal"
	"syscall"
)

// InterruptChan returns a channel that is closed once the process receives
// SIGINT or SIGTERM. Closing (rather than sending) lets any number of
// goroutines observe the shutdown signal.
func InterruptChan() <-chan struct{} {
	ch := make(chan struct{})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		close(ch)
	}()

	return ch
}
