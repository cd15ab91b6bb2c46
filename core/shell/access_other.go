//go:build !(linux || darwin || dragonfly || freebsd || openbsd || netbsd)
// +build !linux,!darwin,!dragonfly,!freebsd,!openbsd,!netbsd

package shell

func searchable(dir string) error {
	return nil
}
