package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Interface interface {
	Debug(message interface{}, args ...interface{})
	Info(message string, args ...interface{})
	Warn(message string, args ...interface{})
	Error(message interface{}, args ...interface{})
	Fatal(message interface{}, args ...interface{})
}

type Logger struct {
	logger *zerolog.Logger
}

var _ Interface = (*Logger)(nil)

func New(level string) *Logger {
	var l zerolog.Level

	switch strings.ToLower(level) {
	case "error":
		l = zerolog.ErrorLevel
	case "warn":
		l = zerolog.WarnLevel
	case "info":
		l = zerolog.InfoLevel
	case "debug":
		l = zerolog.DebugLevel
	default:
		l = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339

	logger := zerolog.New(os.Stdout).
		Level(l).
		With().
		Timestamp().
		Logger()

	return &Logger{logger: &logger}
}

// NewWithLogger wraps an already configured zerolog logger.
func NewWithLogger(zl zerolog.Logger) *Logger {
	return &Logger{logger: &zl}
}

func (l *Logger) Debug(message interface{}, args ...interface{}) {
	l.log(l.logger.Debug(), message, args...)
}

func (l *Logger) Info(message string, args ...interface{}) {
	l.log(l.logger.Info(), message, args...)
}

func (l *Logger) Warn(message string, args ...interface{}) {
	l.log(l.logger.Warn(), message, args...)
}

func (l *Logger) Error(message interface{}, args ...interface{}) {
	l.log(l.logger.Error(), message, args...)
}

func (l *Logger) Fatal(message interface{}, args ...interface{}) {
	// zerolog exits the process once a fatal event is written.
	l.log(l.logger.Fatal(), message, args...)
}

// log accepts either a format string with args, or an error followed by an
// optional format string describing where it happened.
func (l *Logger) log(e *zerolog.Event, message interface{}, args ...interface{}) {
	switch msg := message.(type) {
	case error:
		e = e.Err(msg)
		if len(args) > 0 {
			if format, ok := args[0].(string); ok {
				e.Msgf(format, args[1:]...)

				return
			}
		}
		e.Send()
	case string:
		if len(args) == 0 {
			e.Msg(msg)

			return
		}
		e.Msgf(msg, args...)
	default:
		e.Msg(fmt.Sprintf("message %v has unknown type %T", message, message))
	}
}
