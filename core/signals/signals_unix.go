//go:build linux || darwin || dragonfly || freebsd || openbsd || netbsd
// +build linux darwin dragonfly freebsd openbsd netbsd

package signals

import (
	"os"

	"golang.org/x/sys/unix"
)

// Suppressed holds the signals the interpreter survives.
var Suppressed = []os.Signal{unix.SIGINT, unix.SIGTSTP, unix.SIGTERM}
