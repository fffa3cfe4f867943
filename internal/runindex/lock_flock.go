//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package runindex

import (
	"os"

	"golang.org/x/sys/unix"
)

const haveFlock = true

// lockCounter takes an exclusive advisory lock on the counter file at path, creating it empty if needed. It returns a func that releases the lock. On any failure it returns
// a no-op func.
func lockCounter(path string) func() {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return func() {}
	}
	fd := int(f.Fd())
	for {
		err = unix.Flock(fd, unix.LOCK_EX)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		f.Close()
		return func() {}
	}
	return func() {
		_ = unix.Flock(fd, unix.LOCK_UN)
		f.Close()
	}
}
