// Package logging wraps log/slog behind the small leveled interface the
// rest of the service logs through.
//
// The variadic args are key/value pairs:
//
//	log.Info("user signed in", "user_id", id, "transport", "cookie")
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goliatone/go-boards/auth"
)

// Options configures the root logger
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l}
}

// New builds a root logger from options. Format is "json" or "text".
func New(opts Options) *SlogLogger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var h slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		h = slog.NewTextHandler(out, hopts)
	} else {
		h = slog.NewJSONHandler(out, hopts)
	}

	return NewSlogLogger(slog.New(h))
}

// ParseLevel maps debug, info, warn and error. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s *SlogLogger) Debug(msg string, args ...any) {
	s.l.Debug(msg, args...)
}

func (s *SlogLogger) Info(msg string, args ...any) {
	s.l.Info(msg, args...)
}

func (s *SlogLogger) Warn(msg string, args ...any) {
	s.l.Warn(msg, args...)
}

func (s *SlogLogger) Error(msg string, args ...any) {
	s.l.Error(msg, args...)
}

func (s *SlogLogger) With(args ...any) *SlogLogger {
	return &SlogLogger{l: s.l.With(args...)}
}

// Named returns a child logger tagged with logger=name
func (s *SlogLogger) Named(name string) *SlogLogger {
	return s.With("logger", name)
}

func (s *SlogLogger) Slog() *slog.Logger {
	return s.l
}

// NewProvider hands out children of root named after the requesting
// component.
func NewProvider(root *SlogLogger) auth.LoggerProvider {
	if root == nil {
		root = NewSlogLogger(nil)
	}
	return auth.LoggerProviderFunc(func(name string) auth.Logger {
		return root.Named(name)
	})
}
