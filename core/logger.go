package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel orders message severities; a logger drops everything below
// its configured level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelOff
)

var levelTags = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "OFF"}

func (l LogLevel) String() string {
	if l < LogLevelDebug || l > LogLevelOff {
		return "UNKNOWN"
	}
	return levelTags[l]
}

// ParseLogLevel maps the spellings accepted by SIGPLOT_LOG_LEVEL to a
// level.  WARNING and NONE are tolerated aliases.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LogLevelDebug, nil
	case "INFO":
		return LogLevelInfo, nil
	case "WARN", "WARNING":
		return LogLevelWarn, nil
	case "ERROR":
		return LogLevelError, nil
	case "OFF", "NONE":
		return LogLevelOff, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level: %s", s)
}

// Logger is the leveled surface the module logs through.  The console
// layer decorates it with presentation helpers; core and viz stay on
// the plain leveled calls.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// LeveledLogger filters by severity in front of a stdlib log.Logger.
// The level can be flipped at runtime from any goroutine.
type LeveledLogger struct {
	mu    sync.RWMutex
	level LogLevel
	out   *log.Logger
}

// NewLogger creates a leveled logger writing to output.
func NewLogger(output io.Writer, level LogLevel) *LeveledLogger {
	return &LeveledLogger{level: level, out: log.New(output, "", log.LstdFlags)}
}

func (l *LeveledLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *LeveledLogger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *LeveledLogger) emit(level LogLevel, format string, args ...any) {
	if level < l.GetLevel() {
		return
	}
	l.out.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

func (l *LeveledLogger) Debug(format string, args ...any) { l.emit(LogLevelDebug, format, args...) }
func (l *LeveledLogger) Info(format string, args ...any)  { l.emit(LogLevelInfo, format, args...) }
func (l *LeveledLogger) Warn(format string, args ...any)  { l.emit(LogLevelWarn, format, args...) }
func (l *LeveledLogger) Error(format string, args ...any) { l.emit(LogLevelError, format, args...) }

// root backs the package-level helpers.  Components take no logger
// dependency; they call Debug/Info/Warn/Error directly, so a single
// SetLogLevel governs the whole module.
var root Logger = NewLogger(os.Stderr, defaultLevel())

// defaultLevel reads SIGPLOT_LOG_LEVEL, quieting to errors-only under
// `go test` when the variable is absent or unparseable.
func defaultLevel() LogLevel {
	if s := os.Getenv("SIGPLOT_LOG_LEVEL"); s != "" {
		if level, err := ParseLogLevel(s); err == nil {
			return level
		}
	}
	if strings.HasSuffix(os.Args[0], ".test") {
		return LogLevelError
	}
	return LogLevelInfo
}

// SetLogLevel sets the module-wide log level.
func SetLogLevel(level LogLevel) { root.SetLevel(level) }

// GetLogLevel returns the module-wide log level.
func GetLogLevel() LogLevel { return root.GetLevel() }

// Debug logs through the module-wide logger.
func Debug(format string, args ...any) { root.Debug(format, args...) }

// Info logs through the module-wide logger.
func Info(format string, args ...any) { root.Info(format, args...) }

// Warn logs through the module-wide logger.
func Warn(format string, args ...any) { root.Warn(format, args...) }

// Error logs through the module-wide logger.
func Error(format string, args ...any) { root.Error(format, args...) }
