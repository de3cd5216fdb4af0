package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Level declares supported logging levels ordered by verbosity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// String returns the lower-case level name accepted by ParseLevel.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelSilent:
		return "silent"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel maps a config or flag value to a Level. An empty string is info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info", "notice":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent", "off":
		return LevelSilent, nil
	}
	return LevelInfo, fmt.Errorf("logging: unknown level %q", s)
}

// Printer is the contract implemented by Logger.
type Printer interface {
	Log(level Level, message string)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	WithComponent(name string) Printer
}

type levelMeta struct {
	tag       string
	colorCode string
}

var metas = map[Level]levelMeta{
	LevelDebug: {tag: "DEBUG", colorCode: "36"}, // Cyan
	LevelInfo:  {tag: " INFO", colorCode: "32"}, // Green
	LevelWarn:  {tag: " WARN", colorCode: "33"}, // Yellow
	LevelError: {tag: "ERROR", colorCode: "31"}, // Red
}

// Option customises Logger.
type Option func(*Logger)

// WithLevel configures the minimum emitted level.
func WithLevel(level Level) Option {
	return func(l *Logger) {
		l.level = level
	}
}

// WithTimeFormat sets the timestamp format (empty disables timestamps).
func WithTimeFormat(layout string) Option {
	return func(l *Logger) {
		l.timeFormat = layout
	}
}

// WithColored toggles ANSI colouring. Without it, colour follows whether
// stdout is a terminal.
func WithColored(colored bool) Option {
	return func(l *Logger) {
		l.colored = colored
	}
}

// WithWriter registers a dedicated writer for a level.
func WithWriter(level Level, w io.Writer) Option {
	return func(l *Logger) {
		if w != nil {
			l.writers[level] = w
		}
	}
}

// WithOutput routes every level to w.
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		if w == nil {
			return
		}
		for _, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
			l.writers[level] = w
		}
	}
}

type Logger struct {
	mu          sync.Mutex
	level       Level // fixed after New; read without mu
	timeFormat  string
	colored     bool
	component   string
	writers     map[Level]io.Writer
	timeNowFunc func() time.Time
}

// New instantiates a structured logger. Info and below go to stderr so that
// stdout stays reserved for command results.
func New(opts ...Option) *Logger {
	l := &Logger{
		level:      LevelInfo,
		timeFormat: "15:04:05.000",
		colored:    isTerminal(os.Stderr),
		writers: map[Level]io.Writer{
			LevelDebug: os.Stderr,
			LevelInfo:  os.Stderr,
			LevelWarn:  os.Stderr,
			LevelError: os.Stderr,
		},
		timeNowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// WithComponent clones the logger, appending component metadata.
func (l *Logger) WithComponent(name string) Printer {
	if l == nil {
		return NewNop()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	clone := l.cloneLocked()
	clone.component = name
	return clone
}

// SetTimeNow overrides the clock (primarily for tests).
func (l *Logger) SetTimeNow(fn func() time.Time) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timeNowFunc = fn
}

// Log emits message verbatim at level.
func (l *Logger) Log(level Level, message string) {
	l.emit(level, message)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.logf(LevelWarn, format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelError, format, args...)
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if !l.enabled(level) {
		return
	}
	l.emit(level, fmt.Sprintf(format, args...))
}

func (l *Logger) enabled(level Level) bool {
	return l != nil && level >= l.level && l.level != LevelSilent && level != LevelSilent
}

func (l *Logger) emit(level Level, message string) {
	if !l.enabled(level) {
		return
	}

	message = strings.TrimRight(message, "\n")
	if message == "" {
		return
	}

	lines := splitLines(message)

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := ""
	if l.timeFormat != "" {
		ts = l.timeNowFunc().Format(l.timeFormat)
	}

	meta := metas[level]
	writer := l.levelWriter(level)
	prefix := l.renderPrefix(meta, ts)
	connectors := renderConnectors(len(lines))

	for i, line := range lines {
		fmt.Fprintf(writer, "%s%s%s\n", prefix, connectors[i], line)
	}
}

func (l *Logger) levelWriter(level Level) io.Writer {
	if w, ok := l.writers[level]; ok && w != nil {
		return w
	}
	if w, ok := l.writers[LevelError]; ok && w != nil && level >= LevelError {
		return w
	}
	return os.Stderr
}

func (l *Logger) renderPrefix(meta levelMeta, timestamp string) string {
	builder := strings.Builder{}

	tag := meta.tag
	if l.colored && meta.colorCode != "" {
		tag = fmt.Sprintf("\033[%sm%s\033[0m", meta.colorCode, meta.tag)
	}
	builder.WriteString(tag)
	builder.WriteByte(' ')

	if timestamp != "" {
		builder.WriteString(timestamp)
		builder.WriteByte(' ')
	}
	if l.component != "" {
		builder.WriteByte('[')
		builder.WriteString(l.component)
		builder.WriteString("] ")
	} else {
		builder.WriteString(" ")
	}
	return builder.String()
}

func splitLines(msg string) []string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	lines := strings.Split(msg, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}

func renderConnectors(total int) []string {
	if total <= 1 {
		return []string{"   "}
	}
	connectors := make([]string, total)
	for i := 0; i < total; i++ {
		switch {
		case i == 0:
			connectors[i] = "┬── "
		case i == total-1:
			connectors[i] = "└── "
		default:
			connectors[i] = "├── "
		}
	}
	return connectors
}

// NopLogger discards every message.
type NopLogger struct{}

func (NopLogger) Log(Level, string)     {}
func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
func (NopLogger) WithComponent(string) Printer {
	return NopLogger{}
}

// NewNop returns a logger that suppresses output.
func NewNop() Printer {
	return NopLogger{}
}

func (l *Logger) cloneLocked() *Logger {
	return &Logger{
		level:       l.level,
		timeFormat:  l.timeFormat,
		colored:     l.colored,
		component:   l.component,
		writers:     l.writers,
		timeNowFunc: l.timeNowFunc,
	}
}
