//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package runindex

const haveFlock = false

// lockCounter is a no-op where flock(2) isn't available.
func lockCounter(path string) func() {
	return func() {}
}
