package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Environment variables that control logging
const (
	EnvLogFile       = "GITSTACK_LOG_FILE"
	EnvLogMaxSize    = "GITSTACK_LOG_MAX_SIZE"
	EnvLogMaxBackups = "GITSTACK_LOG_MAX_BACKUPS"
	EnvLogMaxAge     = "GITSTACK_LOG_MAX_AGE"
	EnvDebug         = "DEBUG"
)

// consoleHandler prints bare messages; debug output only when enabled
type consoleHandler struct {
	writer io.Writer
	debug  bool
	quiet  *bool
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if level == slog.LevelDebug {
		return h.debug
	}
	return true
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if *h.quiet {
		return nil
	}
	_, err := fmt.Fprintln(h.writer, record.Message)
	return err
}

func (h *consoleHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *consoleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// fanoutHandler sends each record to every handler that accepts its level
type fanoutHandler []slog.Handler

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanoutHandler, len(h))
	for i, handler := range h {
		next[i] = handler.WithAttrs(attrs)
	}
	return next
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	next := make(fanoutHandler, len(h))
	for i, handler := range h {
		next[i] = handler.WithGroup(name)
	}
	return next
}

// rotatingFile opens a lumberjack log, sized from the GITSTACK_LOG_* variables
func rotatingFile(path string, getenv func(string) string) *lumberjack.Logger {
	logger := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1,
		MaxBackups: 2,
		MaxAge:     30,
	}
	if n, ok := envInt(getenv, EnvLogMaxSize); ok && n > 0 {
		logger.MaxSize = n
	}
	if n, ok := envInt(getenv, EnvLogMaxBackups); ok && n >= 0 {
		logger.MaxBackups = n
	}
	if n, ok := envInt(getenv, EnvLogMaxAge); ok && n > 0 {
		logger.MaxAge = n
	}
	return logger
}

func envInt(getenv func(string) string, key string) (int, bool) {
	value := getenv(key)
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	return n, err == nil
}

// Splog is the command output and logging sink
type Splog struct {
	logger  *slog.Logger
	out     io.Writer
	logFile io.WriteCloser
	quiet   bool
}

// SplogOptions configure NewSplogWithOptions
type SplogOptions struct {
	// Out receives console output; defaults to stdout
	Out io.Writer
	// LogFile adds a rotating debug log at this path
	LogFile string
	// Debug prints debug messages to Out
	Debug bool
	// Getenv defaults to os.Getenv
	Getenv func(string) string
}

// NewSplog logs to stdout, with a log file when GITSTACK_LOG_FILE is set.
// Debug output is enabled by DEBUG.
func NewSplog() *Splog {
	splog, err := NewSplogWithOptions(SplogOptions{
		LogFile: os.Getenv(EnvLogFile),
		Debug:   os.Getenv(EnvDebug) != "",
	})
	if err != nil {
		splog, _ = NewSplogWithOptions(SplogOptions{Debug: os.Getenv(EnvDebug) != ""})
		splog.Warn("Not logging to %s: %v", os.Getenv(EnvLogFile), err)
	}
	return splog
}

// NewSplogWithOptions creates a Splog
func NewSplogWithOptions(opts SplogOptions) (*Splog, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}

	s := &Splog{out: opts.Out}
	handlers := fanoutHandler{&consoleHandler{writer: opts.Out, debug: opts.Debug, quiet: &s.quiet}}

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file := rotatingFile(opts.LogFile, opts.Getenv)
		s.logFile = file
		handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{
			Level: slog.LevelDebug,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String(a.Key, a.Value.Time().Format("2006-01-02 15:04:05.000"))
				}
				return a
			},
		}))
	}

	s.logger = slog.New(handlers)
	return s, nil
}

// SetQuiet suppresses console output
func (s *Splog) SetQuiet(quiet bool) {
	s.quiet = quiet
}

func (s *Splog) log(level slog.Level, prefix, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	s.logger.Log(context.Background(), level, prefix+msg)
}

// Info writes an informational message
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Info(format string, args ...interface{}) {
	s.log(slog.LevelInfo, "", format, args)
}

// Warn writes a warning
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Warn(format string, args ...interface{}) {
	s.log(slog.LevelWarn, "warning: ", format, args)
}

// Error writes an error
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Error(format string, args ...interface{}) {
	s.log(slog.LevelError, "error: ", format, args)
}

// Debug writes a message shown only in debug mode and in the log file
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Debug(format string, args ...interface{}) {
	s.log(slog.LevelDebug, "", format, args)
}

// Tip writes a hint for the user
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Tip(format string, args ...interface{}) {
	s.log(slog.LevelInfo, "hint: ", format, args)
}

// Page writes raw output, bypassing the logger
func (s *Splog) Page(content string) {
	if s.quiet {
		return
	}
	_, _ = fmt.Fprint(s.out, content)
}

// Newline writes an empty line
func (s *Splog) Newline() {
	s.Page("\n")
}

// Close flushes and closes the log file, if any
func (s *Splog) Close() error {
	if s.logFile != nil {
		return s.logFile.Close()
	}
	return nil
}
