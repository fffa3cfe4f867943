// Package logwriter appends newline-terminated records to per-run log files named "{name}_{index}.{ext}".
//
// Each call is an independent open-append-close cycle: nothing is buffered between calls, so a crash loses at most the record being written. Files are created on first use
// and are never truncated, rotated, or removed.
package logwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/codalotl/filelog/internal/q/health"
)

// Path returns the file that (name, index, ext) maps to inside dir. With an empty dir it is exactly "{name}_{index}.{ext}".
func Path(dir, name string, index int, ext string) string {
	file := fmt.Sprintf("%s_%d.%s", name, index, ext)
	if dir == "" {
		return file
	}
	return filepath.Join(dir, file)
}

// Writer appends records to log files under a directory. Appends to the same path are serialized; appends to different paths don't contend. The zero value writes to
// the working directory.
type Writer struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns a Writer that places log files in dir ("" means the working directory).
func New(dir string) *Writer {
	return &Writer{dir: dir}
}

func (w *Writer) lockFor(path string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.locks == nil {
		w.locks = make(map[string]*sync.Mutex)
	}
	l, ok := w.locks[path]
	if !ok {
		l = &sync.Mutex{}
		w.locks[path] = l
	}
	return l
}

// Append writes payload verbatim followed by "\n" to the file for (name, index, ext), creating it if missing. The record is handed to the OS in a single write.
func (w *Writer) Append(name, ext string, index int, payload []byte) (err error) {
	path := Path(w.dir, name, index, ext)

	l := w.lockFor(path)
	l.Lock()
	defer l.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return health.Wrap("open log file", err, "path", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = health.Wrap("close log file", cerr, "path", path)
		}
	}()

	rec := make([]byte, 0, len(payload)+1)
	rec = append(rec, payload...)
	rec = append(rec, '\n')
	if _, err := f.Write(rec); err != nil {
		return health.Wrap("append log record", err, "path", path)
	}
	return nil
}
