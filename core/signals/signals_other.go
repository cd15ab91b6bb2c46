//go:build !(linux || darwin || dragonfly || freebsd || openbsd || netbsd)
// +build !linux,!darwin,!dragonfly,!freebsd,!openbsd,!netbsd

package signals

import "os"

// Suppressed holds the signals the interpreter survives.
var Suppressed = []os.Signal{os.Interrupt}
