// Package signals keeps the interpreter running when the terminal interrupts,
// stops or terminates the foreground job.
package signals

import (
	"os"
	"os/signal"
)

// Suppress catches the signals in Suppressed and drops them until the
// returned function is called. Caught signals are reset to their default
// disposition when a child process is executed, so children can still be
// interrupted.
func Suppress() (stop func()) {
	return suppress(Suppressed, nil)
}

func suppress(sigs []os.Signal, seen func(os.Signal)) func() {
	signalq := make(chan os.Signal, len(sigs)+1)
	done := make(chan struct{})

	signal.Notify(signalq, sigs...)

	go func() {
		for {
			select {
			case s := <-signalq:
				if seen != nil {
					seen(s)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(signalq)
		close(done)
	}
}
