package logging

import (
	"io"
	"log"
	"strings"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Logger writes info/debug lines to one writer and errors to another.
type Logger struct {
	level       Level
	infoLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
}

// NewWithWriters sends info and debug lines to out and errors to errOut.
func NewWithWriters(level string, out, errOut io.Writer) *Logger {
	return &Logger{
		level:       ParseLevel(level),
		infoLogger:  log.New(out, "INFO: ", log.LstdFlags),
		errorLogger: log.New(errOut, "ERROR: ", log.LstdFlags),
		debugLogger: log.New(out, "DEBUG: ", log.LstdFlags),
	}
}

// ParseLevel falls back to info for unknown names.
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) Info(format string, v ...any) {
	if l.level == LevelError {
		return
	}
	l.infoLogger.Printf(format, v...)
}

func (l *Logger) Error(format string, v ...any) {
	l.errorLogger.Printf(format, v...)
}

func (l *Logger) Debug(format string, v ...any) {
	if l.level != LevelDebug {
		return
	}
	l.debugLogger.Printf(format, v...)
}

// Printf logs at info level so a *Logger can stand in for *log.Logger.
func (l *Logger) Printf(format string, v ...any) {
	l.Info(format, v...)
}

func (l *Logger) Debugf(format string, v ...any) {
	l.Debug(format, v...)
}
