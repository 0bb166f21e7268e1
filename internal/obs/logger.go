package obs

import (
	"fmt"
	"log"

	"github.com/rs/zerolog"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is a minimal logging interface for observability.
type Logger interface {
	Logf(level Level, format string, args ...interface{})
}

// NopLogger discards all logs.
type NopLogger struct{}

func (NopLogger) Logf(level Level, format string, args ...interface{}) {}

// StdLogger adapts the standard library logger.
type StdLogger struct {
	L    *log.Logger
	Min  Level
	Pref string // optional prefix per log line
}

func (s StdLogger) Logf(level Level, format string, args ...interface{}) {
	if s.L == nil {
		return
	}
	if level < s.Min {
		return
	}
	if s.Pref != "" {
		s.L.Printf("%s[%s] "+format, append([]interface{}{s.Pref, level.String()}, args...)...)
	} else {
		s.L.Printf("[%s] "+format, append([]interface{}{level.String()}, args...)...)
	}
}

// ZerologLogger forwards log lines to a zerolog.Logger. Levels map one to
// one; the zerolog logger's own level filter applies.
type ZerologLogger struct {
	L zerolog.Logger
	// Component, if set, is attached to every event as "component".
	Component string
}

func (z ZerologLogger) Logf(level Level, format string, args ...interface{}) {
	ev := z.L.WithLevel(level.zerolog())
	if ev == nil {
		return
	}
	if z.Component != "" {
		ev = ev.Str("component", z.Component)
	}
	ev.Msg(fmt.Sprintf(format, args...))
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case Debug:
		return zerolog.DebugLevel
	case Info:
		return zerolog.InfoLevel
	case Warn:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.NoLevel
	}
}
