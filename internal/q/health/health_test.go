package health

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"testing"
)

func Test_writeAttrs(t *testing.T) {
	tests := []struct {
		name  string
		attrs []any
		want  string
	}{
		{name: "empty", attrs: []any{}, want: ""},
		{name: "simple pair", attrs: []any{"path", "log_index"}, want: `path=log_index`},
		{name: "multiple pairs", attrs: []any{"name", "sim", "index", 3, "ok", true}, want: `name=sim index=3 ok=true`},
		{name: "slog.Attr", attrs: []any{slog.String("ext", "csv"), slog.Int("index", 42)}, want: `ext=csv index=42`},
		{name: "quoted", attrs: []any{"raw", "not a number"}, want: `raw="not a number"`},
		{name: "malformed", attrs: []any{"dangling"}, want: `!BADKEY=dangling`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			writeAttrs(&b, tt.attrs)
			if got := b.String(); got != tt.want {
				t.Errorf("writeAttrs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHealthErr_Error(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "message only", err: NewErr("write failed"), want: "write failed"},
		{name: "message and attrs", err: NewErr("open log", "path", "sim_3.csv"), want: `open log[path=sim_3.csv]`},
		{name: "wrapped", err: Wrap("persist run index", errors.New("disk full"), "path", "log_index"), want: `persist run index[path=log_index] via disk full`},
		{
			name: "nested",
			err:  Wrap("write log", Wrap("open", NewErr("denied", "mode", "0644"), "path", "a_1.log"), "name", "a"),
			want: `write log[name=a] via open[path=a_1.log] via denied[mode=0644]`,
		},
		{name: "nil cause", err: Wrap("oops", nil), want: "oops via health.Wrap called with a nil error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHealthErr_Attr(t *testing.T) {
	err := Wrap("persist", fs.ErrPermission, "path", "log_index", slog.Int("index", 8))
	var h *HealthErr
	if !errors.As(err, &h) {
		t.Fatalf("expected *HealthErr")
	}

	v, ok := h.Attr("path")
	if !ok || v != "log_index" {
		t.Errorf("Attr(path) = %v, %v", v, ok)
	}
	v, ok = h.Attr("index")
	if !ok || v != int64(8) {
		t.Errorf("Attr(index) = %v (%T), %v", v, v, ok)
	}
	if _, ok := h.Attr("missing"); ok {
		t.Errorf("Attr(missing) found")
	}
}

func TestWrap_Unwraps(t *testing.T) {
	err := Wrap("outer", Wrap("inner", fs.ErrNotExist))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("errors.Is did not find fs.ErrNotExist through the chain")
	}

	var pe *fs.PathError
	err = Wrap("open", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission})
	if !errors.As(err, &pe) || pe.Path != "x" {
		t.Errorf("errors.As did not find *fs.PathError")
	}
}

func TestLogErr(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	base := errors.New("disk full")
	tests := []struct {
		name    string
		logger  *slog.Logger
		log     func(*slog.Logger, error, ...any) error
		err     error
		args    []any
		wantOut string
	}{
		{name: "nil logger", logger: nil, log: LogErr, err: base, wantOut: ""},
		{name: "nil error", logger: logger, log: LogErr, err: nil, wantOut: ""},
		{name: "plain error", logger: logger, log: LogErr, err: base, args: []any{"k", "v"}, wantOut: `level=ERROR msg="disk full" k=v`},
		{name: "health error", logger: logger, log: LogErr, err: NewErr("bad", "k", "v"), wantOut: `level=ERROR msg=bad k=v`},
		{
			name:    "wrapped with args",
			logger:  logger,
			log:     LogErr,
			err:     Wrap("persist", base, "path", "log_index"),
			args:    []any{"index", 8},
			wantOut: `level=ERROR msg=persist path=log_index via="disk full" index=8`,
		},
		{name: "warn", logger: logger, log: LogWarn, err: NewErr("malformed", "raw", "x"), wantOut: `level=WARN msg=malformed raw=x`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			got := tt.log(tt.logger, tt.err, tt.args...)
			if got != tt.err {
				t.Errorf("returned %v, want %v", got, tt.err)
			}

			out := strings.TrimSpace(buf.String())
			if parts := strings.SplitN(out, " ", 2); len(parts) == 2 && strings.HasPrefix(parts[0], "time=") {
				out = parts[1]
			}
			if out != tt.wantOut {
				t.Errorf("output = %q, want %q", out, tt.wantOut)
			}
		})
	}
}

func TestLogWrappedErr(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	err := LogWrappedErr(logger, "append", fs.ErrPermission, "path", "a_1.log")
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("expected wrapped fs.ErrPermission")
	}
	if !strings.Contains(buf.String(), `msg=append path=a_1.log via="permission denied"`) {
		t.Errorf("unexpected log output %q", buf.String())
	}
}
