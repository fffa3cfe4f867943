// Package runindex resolves, increments, and persists the run index: a counter that distinguishes successive runs of a program so each run's log files get distinct names.
//
// The pre-increment value comes from an environment variable when it is set, otherwise from a small counter file. Open performs the whole protocol: resolve, increment once,
// and write the new value back to the counter file unless the environment variable supplied it. An externally supplied index belongs to the caller, so many processes can
// share it without clobbering each other's counter file.
//
// Malformed input never fails resolution: an environment value or counter file that doesn't parse as a non-negative integer counts as zero.
package runindex

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/codalotl/filelog/internal/q/health"
)

const (
	DefaultEnvVar      = "FILE_LOG_INDEX"
	DefaultCounterPath = "log_index"
)

// Origin says where a resolved pre-increment value came from.
type Origin int

const (
	OriginDefault Origin = iota // no env var and no counter file
	OriginEnv                   // the env var was set (even if it didn't parse)
	OriginFile                  // the counter file existed (even if it didn't parse)
)

func (o Origin) String() string {
	switch o {
	case OriginEnv:
		return "env"
	case OriginFile:
		return "file"
	default:
		return "default"
	}
}

// Source names where a run index is read from and written to. The zero value uses DefaultEnvVar, DefaultCounterPath, and os.LookupEnv.
type Source struct {
	EnvVar      string
	CounterPath string // relative paths resolve against the working directory

	LookupEnv func(key string) (string, bool)
}

func (s Source) envVar() string {
	if s.EnvVar == "" {
		return DefaultEnvVar
	}
	return s.EnvVar
}

func (s Source) counterPath() string {
	if s.CounterPath == "" {
		return DefaultCounterPath
	}
	return s.CounterPath
}

func (s Source) lookupEnv(key string) (string, bool) {
	if s.LookupEnv == nil {
		return os.LookupEnv(key)
	}
	return s.LookupEnv(key)
}

// Index is a run index. The zero value is index 0.
type Index struct {
	value int
}

// Next increments i by one.
func (i *Index) Next() {
	i.value++
}

// Current returns the value of i.
func (i Index) Current() int {
	return i.value
}

// Persist overwrites the file at path with the decimal value of i (no trailing newline).
func (i Index) Persist(path string) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(i.value)), 0o644); err != nil {
		return health.Wrap("persist run index", err, "path", path, "index", i.value)
	}
	return nil
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Index  Index
	Origin Origin

	// Malformed is true when the env var or counter file was present but couldn't be used, and Index was defaulted to zero. Raw holds the text that didn't parse; Err
	// holds the read failure when the counter file exists but can't be read.
	Malformed bool
	Raw       string
	Err       error
}

// Resolve reads the pre-increment run index from src. The env var takes priority over the counter file. It never fails: a missing or malformed value yields index 0. An
// empty counter file is treated like a missing one.
func Resolve(src Source) Resolution {
	raw, ok := src.lookupEnv(src.envVar())
	return resolve(src, raw, ok)
}

// resolve is Resolve with the env var already looked up.
func resolve(src Source, envRaw string, envSet bool) Resolution {
	if envSet {
		return fromText(OriginEnv, envRaw)
	}

	path := src.counterPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Resolution{Origin: OriginDefault}
	}
	if err != nil {
		return Resolution{Origin: OriginFile, Malformed: true, Err: health.Wrap("read run index", err, "path", path)}
	}
	if len(data) == 0 {
		// An empty counter file is what lockCounter leaves behind on a first run.
		return Resolution{Origin: OriginDefault}
	}
	return fromText(OriginFile, string(data))
}

func fromText(origin Origin, raw string) Resolution {
	v, ok := parse(raw)
	if !ok {
		return Resolution{Origin: origin, Malformed: true, Raw: raw}
	}
	return Resolution{Index: Index{value: v}, Origin: origin}
}

// parse accepts decimal digits with at most one leading '+'. Whitespace is not trimmed. Values that would overflow int once incremented are rejected.
func parse(raw string) (int, bool) {
	u, err := strconv.ParseUint(strings.TrimPrefix(raw, "+"), 10, 64)
	if err != nil || u >= math.MaxInt {
		return 0, false
	}
	return int(u), true
}

// Open runs the construction protocol: resolve, increment once, and persist the new value unless the env var supplied it. The returned Index is always usable; a non-nil
// error reports only that persisting failed.
//
// Where the platform supports advisory locks, the counter file stays locked from read to write so concurrently starting processes get distinct indices. If the lock can't be
// taken the protocol runs unlocked.
func Open(src Source) (Index, Resolution, error) {
	envRaw, envSet := src.lookupEnv(src.envVar())
	if !envSet {
		unlock := lockCounter(src.counterPath())
		defer unlock()
	}

	res := resolve(src, envRaw, envSet)
	idx := res.Index
	idx.Next()
	if envSet {
		return idx, res, nil
	}
	return idx, res, idx.Persist(src.counterPath())
}
