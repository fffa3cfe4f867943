package filelog

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/codalotl/filelog/internal/logwriter"
	"github.com/codalotl/filelog/internal/q/health"
	"github.com/codalotl/filelog/internal/runindex"
)

const (
	// DefaultExtension is used when a caller doesn't name an extension.
	DefaultExtension = "log"

	// EnvVar pins the pre-increment run index. When set, the counter file is neither read nor written.
	EnvVar = runindex.DefaultEnvVar

	// CounterFile holds the last used run index between runs.
	CounterFile = runindex.DefaultCounterPath
)

// Config configures a Logger. The zero value logs into the working directory with the package defaults.
type Config struct {
	Dir              string // directory for the counter file and log files; "" is the working directory
	EnvVar           string // defaults to EnvVar
	CounterFile      string // defaults to CounterFile; relative names are resolved against Dir
	DefaultExtension string // defaults to DefaultExtension

	// Logger receives diagnostics (run index resolution, malformed counters, I/O failures). nil discards them.
	Logger *slog.Logger

	// LookupEnv replaces os.LookupEnv when reading EnvVar.
	LookupEnv func(key string) (string, bool)
}

// Logger writes records to "{name}_{index}.{ext}" files, where index is the run index resolved the first time the Logger is used. Create one with New. A Logger is safe
// for concurrent use, and its run index never changes once resolved.
type Logger struct {
	cfg    Config
	logger *slog.Logger
	w      *logwriter.Writer

	once    sync.Once
	index   int
	initErr error
}

// New returns a Logger for cfg. Nothing is read or written until the Logger is first used.
func New(cfg Config) *Logger {
	if cfg.DefaultExtension == "" {
		cfg.DefaultExtension = DefaultExtension
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Logger{
		cfg:    cfg,
		logger: logger,
		w:      logwriter.New(cfg.Dir),
	}
}

func (l *Logger) counterPath() string {
	name := l.cfg.CounterFile
	if name == "" {
		name = CounterFile
	}
	if l.cfg.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(l.cfg.Dir, name)
}

// ensure resolves the run index if it hasn't been yet. It reports whether this call did the resolving.
func (l *Logger) ensure() (resolved bool) {
	l.once.Do(func() {
		resolved = true
		l.resolve()
	})
	return resolved
}

func (l *Logger) resolve() {
	counter := l.counterPath()
	idx, res, err := runindex.Open(runindex.Source{
		EnvVar:      l.cfg.EnvVar,
		CounterPath: counter,
		LookupEnv:   l.cfg.LookupEnv,
	})
	l.index = idx.Current()

	switch {
	case res.Err != nil:
		health.LogWarn(l.logger, health.Wrap("ignoring unreadable run index", res.Err, "origin", res.Origin.String()), "counter", counter)
	case res.Malformed:
		// A corrupted counter looks exactly like a first run; say so, but carry on.
		health.LogWarn(l.logger, health.NewErr("ignoring malformed run index", "origin", res.Origin.String(), "raw", res.Raw), "counter", counter)
	}
	if err != nil {
		l.initErr = health.LogErr(l.logger, err)
	}
	l.logger.Debug("run index resolved", "index", l.index, "origin", res.Origin.String(), "counter", counter)
}

// Init resolves the run index if no earlier call has. It returns the error from persisting the counter file, if any, whichever call triggered resolution. The run index
// is usable even when Init returns an error.
func (l *Logger) Init() error {
	l.ensure()
	return l.initErr
}

// Index returns the run index, resolving it on first use. Repeated calls return the same value.
func (l *Logger) Index() int {
	l.ensure()
	return l.index
}

// Path returns the file a record for (name, ext) goes to in this run. An empty ext means the default extension.
func (l *Logger) Path(name, ext string) string {
	return logwriter.Path(l.cfg.Dir, name, l.Index(), l.ext(ext))
}

func (l *Logger) ext(ext string) string {
	if ext == "" {
		return l.cfg.DefaultExtension
	}
	return ext
}

// Write appends payload and a newline to the (name, ext) file for this run, creating the file if needed. An empty ext means the default extension.
//
// If this call is the one that resolves the run index and persisting the counter file fails, the record is still written and the persistence error is returned joined with
// any write error. Later calls don't repeat it.
func (l *Logger) Write(name, ext string, payload []byte) error {
	var initErr error
	if l.ensure() {
		initErr = l.initErr
	}

	var err error
	if werr := l.w.Append(name, l.ext(ext), l.index, payload); werr != nil {
		err = health.LogWrappedErr(l.logger, "write log record", werr, "name", name)
	}
	return errors.Join(initErr, err)
}

// Log formats a record with fmt.Sprintf semantics and appends it to the (name, default extension) file for this run.
func (l *Logger) Log(name, format string, args ...any) error {
	return l.Write(name, "", fmt.Appendf(nil, format, args...))
}

// LogExt is Log with an explicit extension.
func (l *Logger) LogExt(name, ext, format string, args ...any) error {
	return l.Write(name, ext, fmt.Appendf(nil, format, args...))
}
