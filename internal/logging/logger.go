// Package logging wraps zerolog with subsystem-scoped loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a zerolog logger plus the file it may own.
type Logger struct {
	zl     zerolog.Logger
	closer io.Closer
}

// Config selects the output level, style and optional log file.
type Config struct {
	Level string
	Style string // pretty, compact, json
	File  string
}

var levels = []struct {
	name  string
	level zerolog.Level
}{
	{"trace", zerolog.TraceLevel},
	{"debug", zerolog.DebugLevel},
	{"info", zerolog.InfoLevel},
	{"warn", zerolog.WarnLevel},
	{"error", zerolog.ErrorLevel},
	{"fatal", zerolog.FatalLevel},
	{"silent", zerolog.Disabled},
}

// ValidLevels lists the level names accepted by New.
var ValidLevels = func() []string {
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = l.name
	}
	return names
}()

// parseLevel maps a level name to zerolog. Unknown names mean info.
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range levels {
		if l.name == s {
			return l.level
		}
	}
	return zerolog.InfoLevel
}

// New returns a root logger on w. A nil w means a console writer on stderr.
func New(w io.Writer, level string) *Logger {
	if w == nil {
		w = console(time.RFC3339)
	}
	return &Logger{
		zl: zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger(),
	}
}

func console(timeFormat string) zerolog.ConsoleWriter {
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: timeFormat}
	if timeFormat == "" {
		cw.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	return cw
}

// FromConfig builds the process logger. With cfg.File set, records go to
// stderr and are appended to the file as JSON.
func FromConfig(cfg Config) (*Logger, error) {
	var out io.Writer = os.Stderr
	switch cfg.Style {
	case "json":
	case "compact":
		out = console("")
	default:
		out = console(time.Kitchen)
	}

	if cfg.File == "" {
		return New(out, cfg.Level), nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	l := New(zerolog.MultiLevelWriter(out, f), cfg.Level)
	l.closer = f
	return l, nil
}

// Sub tags records with a subsystem name.
func (l *Logger) Sub(subsystem string) *Logger {
	return l.With("subsystem", subsystem)
}

// With adds a string field to every record of the child.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

// Close releases the log file opened by FromConfig.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
