//go:build linux || darwin || dragonfly || freebsd || openbsd || netbsd
// +build linux darwin dragonfly freebsd openbsd netbsd

package shell

import "golang.org/x/sys/unix"

func searchable(dir string) error {
	return unix.Access(dir, unix.X_OK)
}
