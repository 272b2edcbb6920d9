package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ntsHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<opID>\t<message>\t<key=value ...>
//
// Every record goes to w. Records at or above consoleLevel are also copied
// to console when it is set.
type ntsHandler struct {
	w            io.Writer
	console      io.Writer
	consoleLevel slog.Level
	opID         string
	attrs        []slog.Attr
}

func (h *ntsHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *ntsHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	fmt.Fprintf(&buf, "%s\t%s\t%s\t%s", ts, r.Level.String(), h.opID, r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&buf, "\t%s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&buf, "\t%s=%v", a.Key, a.Value)
		return true
	})
	buf.WriteByte('\n')

	if _, err := h.w.Write(buf.Bytes()); err != nil {
		return err
	}
	if h.console != nil && r.Level >= h.consoleLevel {
		if _, err := h.console.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (h *ntsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ntsHandler{
		w:            h.w,
		console:      h.console,
		consoleLevel: h.consoleLevel,
		opID:         h.opID,
		attrs:        append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *ntsHandler) WithGroup(string) slog.Handler { return h }

// newLogger creates a structured logger that writes to a rotating
// logDir/nts.log and copies warnings and errors to stderr.
// It returns the slog.Logger and the rotating writer (for cleanup).
func newLogger(logDir string, opID string) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "nts.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
	}
	handler := &ntsHandler{
		w:            rotator,
		console:      os.Stderr,
		consoleLevel: slog.LevelWarn,
		opID:         opID,
	}
	return slog.New(handler), rotator, nil
}

// slogAdapter wraps *slog.Logger to satisfy the nts.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
