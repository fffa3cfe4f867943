// Package health provides errors that carry slog-style key/value attributes alongside a message and an optional cause, plus helpers that log an error and return it in one
// step.
//
// An error built with Wrap renders as `msg[k=v ...] via cause` and unwraps to cause, so errors.Is and errors.As keep working through it.
package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"
)

// HealthErr is an error with a log-friendly message, attributes in the format of slog's args, and an optional wrapped cause.
type HealthErr struct {
	Message string
	wrapped error
	attrs   []any
}

// NewErr returns a new, unlogged error. args is in the same format as slog's args to Info: key/value pairs or slog.Attrs.
func NewErr(msg string, args ...any) error {
	return &HealthErr{Message: msg, attrs: args}
}

// Wrap returns a new error with msg and args that wraps cause.
func Wrap(msg string, cause error, args ...any) error {
	if cause == nil {
		// Don't panic; an error that names the mistake is easier to track down.
		cause = errors.New("health.Wrap called with a nil error")
	}
	return &HealthErr{Message: msg, wrapped: cause, attrs: args}
}

// Error serializes msg, attrs, and the wrapped error.
func (e *HealthErr) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.attrs) > 0 {
		b.WriteString("[")
		writeAttrs(&b, e.attrs)
		b.WriteString("]")
	}
	if e.wrapped != nil {
		b.WriteString(" via ")
		b.WriteString(e.wrapped.Error())
	}
	return b.String()
}

func (e *HealthErr) Unwrap() error {
	return e.wrapped
}

// Attr returns the value of the first attribute named key on e. Wrapped errors are not searched.
func (e *HealthErr) Attr(key string) (any, bool) {
	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "", 0)
	r.Add(e.attrs...)

	var (
		val   any
		found bool
	)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			val, found = a.Value.Any(), true
			return false
		}
		return true
	})
	return val, found
}

// LogErr logs err to logger at error level (if both are non-nil) and returns err unchanged:
//
//	return health.LogErr(logger, health.Wrap("persist", err, "path", p))
//
// A *HealthErr is logged with its own message, then its attrs, then a "via" attr holding the wrapped error, then args.
func LogErr(logger *slog.Logger, err error, args ...any) error {
	return logAt(logger, slog.LevelError, err, args...)
}

// LogWarn is LogErr at warn level, for errors that were recovered from but are still worth surfacing to an operator.
func LogWarn(logger *slog.Logger, err error, args ...any) error {
	return logAt(logger, slog.LevelWarn, err, args...)
}

// LogWrappedErr wraps cause with msg and args, logs it, and returns it.
func LogWrappedErr(logger *slog.Logger, msg string, cause error, args ...any) error {
	return LogErr(logger, Wrap(msg, cause, args...))
}

func logAt(logger *slog.Logger, level slog.Level, err error, args ...any) error {
	if logger == nil || err == nil {
		return err
	}

	h, ok := err.(*HealthErr)
	if !ok {
		logger.Log(context.Background(), level, err.Error(), args...)
		return err
	}

	all := make([]any, 0, len(h.attrs)+len(args)+1)
	all = append(all, h.attrs...)
	if h.wrapped != nil {
		all = append(all, slog.String("via", h.wrapped.Error()))
	}
	all = append(all, args...)
	logger.Log(context.Background(), level, h.Message, all...)
	return err
}

// writeAttrs writes attrs to b in the key=value format of slog's text handler. Ex: `num=3 str="hi"`.
func writeAttrs(b *strings.Builder, attrs []any) {
	if len(attrs) == 0 {
		return
	}
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.MessageKey {
				return slog.Attr{}
			}
			return a
		},
	}
	logger := slog.New(slog.NewTextHandler(&trimNewline{w: b}, opts))
	logger.Log(context.Background(), slog.LevelDebug, "", attrs...)
}

// trimNewline drops the single trailing newline slog.TextHandler puts on each record.
type trimNewline struct {
	w io.Writer
}

func (t *trimNewline) Write(p []byte) (int, error) {
	if n := len(p); n > 0 && p[n-1] == '\n' {
		if _, err := t.w.Write(p[:n-1]); err != nil {
			return 0, err
		}
		return n, nil
	}
	return t.w.Write(p)
}
